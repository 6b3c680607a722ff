package ipmi

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// SendMessageTrackingMode selects whether the BMC should expect and
// route back a response to a bridged request (spec 4.7 bridging).
type SendMessageTrackingMode uint8

const (
	SendMessageNoTracking   SendMessageTrackingMode = 0x00
	SendMessageTrackRequest SendMessageTrackingMode = 0x01
)

// SendMessageRequest wraps an already-serialized IPMI Message destined
// for a channel the BMC bridges to (typically IPMB), per spec 4.7's
// single-hop bridging component. The wrapped message's own bytes are
// carried verbatim as Payload.
type SendMessageRequest struct {
	layers.BaseLayer

	Channel  ChannelNumber
	Tracking SendMessageTrackingMode
}

func (s *SendMessageRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(1)
	if err != nil {
		return err
	}
	var ch byte
	ch = uint8(s.Channel) & 0x0f
	if s.Tracking == SendMessageTrackRequest {
		ch |= 0x40
	}
	bytes[0] = ch
	return nil
}

// WrapSendMessage serializes innerRequest (already-checksummed Message
// bytes) as the payload of a Send Message request addressed to channel,
// tracking the response if trackResponse is set (spec 4.7). The caller
// is responsible for serializing innerRequest itself first, since the
// bridged message's own NetFn/command catalogue is identical to the
// top-level one and this package has no separate "inner message" type.
func WrapSendMessage(channel ChannelNumber, trackResponse bool, innerRequest []byte) ([]byte, error) {
	if len(innerRequest) == 0 {
		return nil, NewInvariantError("WrapSendMessage: inner request must not be empty")
	}
	tracking := SendMessageNoTracking
	if trackResponse {
		tracking = SendMessageTrackRequest
	}
	req := &SendMessageRequest{Channel: channel, Tracking: tracking}
	buf := gopacket.NewSerializeBuffer()
	if err := buf.AppendBytes(len(innerRequest)); err != nil {
		return nil, NewParseError("WrapSendMessage", err)
	}
	copy(buf.Bytes(), innerRequest)
	if err := req.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		return nil, NewParseError("WrapSendMessage", err)
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

// UnwrapSendMessage splits a Send Message response body into the
// channel byte and the bridged response's own bytes, ready for a
// second pass through Message.DecodeFromBytes.
func UnwrapSendMessage(data []byte) (ChannelNumber, []byte, error) {
	if len(data) < 1 {
		return 0, nil, NewParseError("UnwrapSendMessage", fmt.Errorf("empty Send Message response"))
	}
	channel := ChannelNumber(data[0] & 0x0f)
	return channel, data[1:], nil
}
