package layerexts

import "testing"

func TestSixBitASCIIRoundTrip(t *testing.T) {
	want := "ABCD"
	packed, err := Encode6BitASCII(want)
	if err != nil {
		t.Fatalf("Encode6BitASCII: %v", err)
	}
	if len(packed) != 3 {
		t.Fatalf("expected 4 characters to pack into 3 bytes, got %d", len(packed))
	}
	got, err := Decode6BitASCII(packed, len(want))
	if err != nil {
		t.Fatalf("Decode6BitASCII: %v", err)
	}
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeBCDPlusRejectsReservedNibble(t *testing.T) {
	if _, err := DecodeBCDPlus([]byte{0x0D}, 1); err == nil {
		t.Fatal("expected error for reserved BCD+ nibble 0xD")
	}
}

func TestBCDPlusRoundTrip(t *testing.T) {
	want := "12-30.5"
	enc, err := EncodeBCDPlus(want)
	if err != nil {
		t.Fatalf("EncodeBCDPlus: %v", err)
	}
	got, err := DecodeBCDPlus(enc, len(want))
	if err != nil {
		t.Fatalf("DecodeBCDPlus: %v", err)
	}
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTypeLengthStringASCIIRoundTrip(t *testing.T) {
	enc, err := EncodeTypeLengthString(StringFormatASCII, "Temp Sensor 1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, n, err := DecodeTypeLengthString(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d bytes, want %d", n, len(enc))
	}
	if got != "Temp Sensor 1" {
		t.Fatalf("got %q", got)
	}
}

func TestTypeLengthStringSixBitRoundTrip(t *testing.T) {
	enc, err := EncodeTypeLengthString(StringFormatSixBitASCII, "FAN1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, _, err := DecodeTypeLengthString(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "FAN1" {
		t.Fatalf("got %q", got)
	}
}
