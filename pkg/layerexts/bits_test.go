package layerexts

import "testing"

func TestGetSetBits(t *testing.T) {
	var b byte
	SetBits(&b, 2, 3, 0x5)
	if got := GetBits(b, 2, 3); got != 0x5 {
		t.Fatalf("got %x, want 5", got)
	}
	// Surrounding bits untouched.
	SetBits(&b, 0, 2, 0x3)
	if got := GetBits(b, 2, 3); got != 0x5 {
		t.Fatalf("surrounding write clobbered field: got %x", got)
	}
}

func TestSignExtend(t *testing.T) {
	// -512 in 10-bit two's complement is 0b10 0000 0000 = 0x200.
	if got := SignExtend(0x200, 10); got != -512 {
		t.Fatalf("got %d, want -512", got)
	}
	// -128 in 10-bit two's complement is 0b11 1000 0000 = 0x380.
	if got := SignExtend(0x380, 10); got != -128 {
		t.Fatalf("got %d, want -128", got)
	}
	if got := SignExtend(0x1FF, 10); got != 511 {
		t.Fatalf("got %d, want 511", got)
	}
}

func TestUint16LERoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint16LE(buf, 1, 0xBEEF)
	got, err := Uint16LE(buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xBEEF {
		t.Fatalf("got %x", got)
	}
}
