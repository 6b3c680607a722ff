package rmcp

import (
	"bytes"
	"testing"

	"github.com/ironbmc/bmc/pkg/ipmi"
)

func TestLegacySessionHeaderRoundTrip(t *testing.T) {
	want := LegacySessionHeader{
		AuthType:  ipmi.AuthTypeMD5,
		Sequence:  7,
		SessionID: 0x1234abcd,
		AuthCode:  [16]byte{1, 2, 3, 4},
	}
	payload := []byte{0xde, 0xad, 0xbe, 0xef}

	got, body, err := UnmarshalLegacySessionHeader(want.Marshal(payload))
	if err != nil {
		t.Fatalf("UnmarshalLegacySessionHeader: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !bytes.Equal(body, payload) {
		t.Errorf("got payload %x, want %x", body, payload)
	}
}

func TestLegacySessionHeaderNoneHasNoAuthCode(t *testing.T) {
	h := LegacySessionHeader{AuthType: ipmi.AuthTypeNone, Sequence: 1, SessionID: 2}
	marshaled := h.Marshal([]byte{0xff})
	if len(marshaled) != legacySessionHeaderFixedLength+1+1 {
		t.Fatalf("AuthTypeNone header should omit the 16-byte auth code, got %d bytes", len(marshaled))
	}
	got, body, err := UnmarshalLegacySessionHeader(marshaled)
	if err != nil {
		t.Fatalf("UnmarshalLegacySessionHeader: %v", err)
	}
	if got.AuthType != ipmi.AuthTypeNone || got.Sequence != 1 || got.SessionID != 2 {
		t.Errorf("got %+v", got)
	}
	if !bytes.Equal(body, []byte{0xff}) {
		t.Errorf("got payload %x", body)
	}
}

func TestLegacySessionHeaderTooShort(t *testing.T) {
	if _, _, err := UnmarshalLegacySessionHeader([]byte{1, 2, 3}); err == nil {
		t.Error("expected error decoding truncated legacy session header")
	}
}

func TestLegacySessionHeaderTruncatedAuthCode(t *testing.T) {
	h := LegacySessionHeader{AuthType: ipmi.AuthTypeMD5, Sequence: 1, SessionID: 2}
	marshaled := h.Marshal(nil)
	if _, _, err := UnmarshalLegacySessionHeader(marshaled[:20]); err == nil {
		t.Error("expected error decoding header truncated mid auth code")
	}
}
