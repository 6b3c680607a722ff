package bmc

import (
	"context"
	"testing"

	"github.com/ironbmc/bmc/pkg/ipmi"
)

// fakeBridgedExchanger answers a Send Message request wrapping a Get
// Sensor Reading as if a satellite controller on the bridged channel had
// replied, so ExecuteBridged can be exercised without a real IPMB link.
type fakeBridgedExchanger struct {
	channel ipmi.ChannelNumber
	reading uint8
}

func (f *fakeBridgedExchanger) exchange(ctx context.Context, requestMessage []byte) ([]byte, error) {
	outerMsg, err := unmarshalMessage(requestMessage, nil)
	if err != nil {
		return nil, err
	}
	channel, innerReq, err := ipmi.UnwrapSendMessage(outerMsg.Payload)
	if err != nil {
		return nil, err
	}
	if channel != f.channel {
		panic("unexpected channel")
	}

	innerMsg, err := unmarshalMessage(innerReq, nil)
	if err != nil {
		return nil, err
	}

	innerRsp, err := marshalResponseMessage(innerMsg.Sequence, ipmi.OperationGetSensorReadingRsp, ipmi.CompletionCodeNormal,
		&ipmi.GetSensorReadingResponse{Reading: f.reading})
	if err != nil {
		return nil, err
	}

	wrapped, err := ipmi.WrapSendMessage(f.channel, true, innerRsp)
	if err != nil {
		return nil, err
	}
	return marshalResponseMessage(outerMsg.Sequence, ipmi.OperationSendMessageRsp, ipmi.CompletionCodeNormal, rawBytesLayer(wrapped))
}

func (f *fakeBridgedExchanger) close(ctx context.Context) error { return nil }

func TestExecuteBridgedGetSensorReading(t *testing.T) {
	sess := &Session{ex: &fakeBridgedExchanger{channel: ipmi.ChannelNumber(3), reading: 0x42}}

	rsp, err := sess.GetSensorReadingBridged(context.Background(), ipmi.ChannelNumber(3), 7)
	if err != nil {
		t.Fatalf("GetSensorReadingBridged: %v", err)
	}
	if rsp.Reading != 0x42 {
		t.Errorf("got reading %#x, want 0x42", rsp.Reading)
	}
}
