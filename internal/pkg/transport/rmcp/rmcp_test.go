package rmcp

import "testing"

func TestSessionHeaderRoundTrip(t *testing.T) {
	want := SessionHeader{
		PayloadType:   PayloadTypeIPMI,
		Encrypted:     true,
		Authenticated: true,
		SessionID:     0xdeadbeef,
		Sequence:      42,
		PayloadLength: 17,
	}
	got, err := UnmarshalSessionHeader(want.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalSessionHeader: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSessionHeaderTooShort(t *testing.T) {
	if _, err := UnmarshalSessionHeader([]byte{1, 2, 3}); err == nil {
		t.Error("expected error decoding truncated session header")
	}
}

func TestReplayWindow(t *testing.T) {
	var w ReplayWindow

	accept := func(seq uint32) bool { return w.Accept(seq) }

	if !accept(1) {
		t.Error("sequence 1 should be accepted (first sequence seen)")
	}
	if !accept(2) {
		t.Error("sequence 2 should be accepted (advances window)")
	}
	if !accept(3) {
		t.Error("sequence 3 should be accepted (advances window)")
	}
	if accept(2) {
		t.Error("duplicate sequence 2 should be dropped")
	}
	if !accept(20) {
		t.Error("sequence 20 should be accepted (advances window past its size)")
	}
	if accept(3) {
		t.Error("sequence 3, now far behind the window, should be dropped")
	}
}

func TestReplayWindowAcceptsZeroAlways(t *testing.T) {
	var w ReplayWindow
	w.Accept(100)
	if !w.Accept(0) {
		t.Error("sequence 0 (unsequenced payload) must always be accepted")
	}
}
