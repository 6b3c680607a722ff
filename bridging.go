package bmc

import (
	"context"
	"fmt"

	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/google/gopacket"
)

// ExecuteBridged performs a single-hop bridged exchange: reqBody is
// addressed as a normal request, wrapped in a Send Message targeting
// channel, and sent over the already-established session; the reply is
// unwrapped and decoded as if it had arrived directly (spec 4.7
// bridging). Only one hop is supported - the wrapped message is not
// itself re-wrapped.
func (s *Session) ExecuteBridged(ctx context.Context, channel ipmi.ChannelNumber, op ipmi.Operation, reqBody gopacket.SerializableLayer, rspBody bodyDecoder) (ipmi.CompletionCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	innerBytes, err := marshalMessage(op, s.seq, reqBody)
	if err != nil {
		return 0, err
	}

	wrapped, err := ipmi.WrapSendMessage(channel, true, innerBytes)
	if err != nil {
		return 0, err
	}

	sendReqBytes, err := marshalMessage(ipmi.OperationSendMessageReq, s.seq, rawBytesLayer(wrapped))
	if err != nil {
		return 0, err
	}

	commandsSent.WithLabelValues(op.Function.String(), fmt.Sprintf("0x%02x", uint8(op.Command))).Inc()

	rspBytes, err := s.ex.exchange(ctx, sendReqBytes)
	if err != nil {
		commandErrors.WithLabelValues("transport").Inc()
		return 0, fmt.Errorf("bmc: executing bridged %v via channel %v: %w", op, channel, err)
	}

	outerMsg, err := unmarshalMessage(rspBytes, nil)
	if err != nil {
		commandErrors.WithLabelValues("decode").Inc()
		return 0, err
	}
	if outerMsg.CompletionCode != ipmi.CompletionCodeNormal {
		commandErrors.WithLabelValues(outerMsg.CompletionCode.String()).Inc()
		return outerMsg.CompletionCode, nil
	}

	_, innerRsp, err := ipmi.UnwrapSendMessage(outerMsg.Payload)
	if err != nil {
		commandErrors.WithLabelValues("decode").Inc()
		return 0, err
	}

	innerMsg, err := unmarshalMessage(innerRsp, rspBody)
	if err != nil {
		commandErrors.WithLabelValues("decode").Inc()
		return 0, err
	}
	if innerMsg.CompletionCode != ipmi.CompletionCodeNormal {
		commandErrors.WithLabelValues(innerMsg.CompletionCode.String()).Inc()
	}
	return innerMsg.CompletionCode, nil
}

// GetSensorReadingBridged reads a sensor owned by a satellite controller
// reachable only via channel (typically IPMB), as opposed to GetSensorReading
// which targets the BMC itself.
func (s *Session) GetSensorReadingBridged(ctx context.Context, channel ipmi.ChannelNumber, sensorNumber uint8) (*ipmi.GetSensorReadingResponse, error) {
	req := &ipmi.GetSensorReadingRequest{SensorNumber: sensorNumber}
	rsp := &ipmi.GetSensorReadingResponse{}
	code, err := s.ExecuteBridged(ctx, channel, ipmi.OperationGetSensorReadingReq, req, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return nil, err
	}
	return rsp, nil
}

// rawBytes is a gopacket.SerializableLayer over an already-serialized
// byte slice, used to hand Send Message's pre-wrapped inner message to
// marshalMessage without re-running it through any body encoder.
type rawBytes []byte

func rawBytesLayer(b []byte) gopacket.SerializableLayer { return rawBytes(b) }

func (r rawBytes) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(len(r))
	if err != nil {
		return err
	}
	copy(bytes, r)
	return nil
}
