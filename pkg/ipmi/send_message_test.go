package ipmi

import (
	"bytes"
	"testing"
)

func TestWrapUnwrapSendMessage(t *testing.T) {
	inner := []byte{0x20, 0x18, 0xc8, 0x81, 0x04, 0x01, 0xff}

	wrapped, err := WrapSendMessage(ChannelNumber(7), true, inner)
	if err != nil {
		t.Fatalf("WrapSendMessage: %v", err)
	}
	if len(wrapped) != len(inner)+1 {
		t.Fatalf("got %d bytes, want %d", len(wrapped), len(inner)+1)
	}
	if wrapped[0] != (0x07 | 0x40) {
		t.Errorf("got channel byte %#x, want %#x", wrapped[0], 0x07|0x40)
	}
	if !bytes.Equal(wrapped[1:], inner) {
		t.Errorf("got inner bytes %x, want %x", wrapped[1:], inner)
	}

	channel, rsp, err := UnwrapSendMessage(wrapped)
	if err != nil {
		t.Fatalf("UnwrapSendMessage: %v", err)
	}
	if channel != ChannelNumber(7) {
		t.Errorf("got channel %v, want 7", channel)
	}
	if !bytes.Equal(rsp, inner) {
		t.Errorf("got %x, want %x", rsp, inner)
	}
}

func TestWrapSendMessageRejectsEmptyInner(t *testing.T) {
	if _, err := WrapSendMessage(ChannelNumber(1), false, nil); err == nil {
		t.Error("expected error wrapping an empty inner request")
	}
}

func TestUnwrapSendMessageRejectsEmpty(t *testing.T) {
	if _, _, err := UnwrapSendMessage(nil); err == nil {
		t.Error("expected error unwrapping an empty Send Message response")
	}
}
