package rmcp

import "testing"

func TestMD2Deterministic(t *testing.T) {
	a := MD2([]byte("foo"))
	b := MD2([]byte("foo"))
	if a != b {
		t.Errorf("MD2 is not deterministic: %x != %x", a, b)
	}
}

func TestMD2DiffersOnInput(t *testing.T) {
	a := MD2([]byte("foo"))
	b := MD2([]byte("bar"))
	if a == b {
		t.Error("MD2(\"foo\") and MD2(\"bar\") collided")
	}
}

func TestMD2HandlesBlockBoundary(t *testing.T) {
	// 16 bytes exactly: the padding must still add a full 16-byte block
	// (RFC 1319 padding is never zero bytes), not leave the message
	// unpadded.
	msg := make([]byte, 16)
	digest := MD2(msg)
	var zero [16]byte
	if digest == zero {
		t.Error("MD2 of a 16-byte-aligned message produced an all-zero digest, padding likely missing")
	}
}

func TestLegacyAuthCodeVariesWithSessionID(t *testing.T) {
	password := PadPassword([]byte("hunter2"))
	data := []byte{1, 2, 3, 4}

	a := LegacyAuthCode(password, 1, data, 1, false)
	b := LegacyAuthCode(password, 2, data, 1, false)
	if a == b {
		t.Error("LegacyAuthCode did not change with session ID")
	}
}

func TestLegacyAuthCodeVariesWithSequence(t *testing.T) {
	password := PadPassword([]byte("hunter2"))
	data := []byte{1, 2, 3, 4}

	a := LegacyAuthCode(password, 1, data, 1, false)
	b := LegacyAuthCode(password, 1, data, 2, false)
	if a == b {
		t.Error("LegacyAuthCode did not change with session sequence")
	}
}

func TestLegacyAuthCodeMD2VsMD5Differ(t *testing.T) {
	password := PadPassword([]byte("hunter2"))
	data := []byte{1, 2, 3, 4}

	md5Code := LegacyAuthCode(password, 1, data, 1, false)
	md2Code := LegacyAuthCode(password, 1, data, 1, true)
	if md5Code == md2Code {
		t.Error("MD2 and MD5 auth codes collided")
	}
}

func TestPadPasswordTruncatesAndPads(t *testing.T) {
	short := PadPassword([]byte("ab"))
	if short[0] != 'a' || short[1] != 'b' || short[2] != 0 {
		t.Errorf("got %x", short)
	}

	long := PadPassword([]byte("01234567890123456789"))
	if len(long) != 16 {
		t.Fatalf("got length %d", len(long))
	}
	if long[15] != '5' {
		t.Errorf("expected truncation to first 16 bytes, got %x", long)
	}
}
