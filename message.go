package bmc

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/google/gopacket"
)

// remoteConsoleAddress is the software ID this library uses to identify
// itself as a requester: 0x81 is the first "system software" ID, with the
// LSB set indicating a software ID rather than a slave address.
const remoteConsoleAddress = ipmi.Address(0x81)

// bmcAddress is the slave address of the BMC itself (spec's addressing
// note: always 0x20, i.e. slave address 0x10 with the software-ID bit
// clear).
const bmcAddress = ipmi.Address(0x20)

// marshalMessage builds the wire bytes of an IPMI Message carrying op and,
// if non-nil, body. Checksums and the body's own internal lengths are
// computed automatically.
func marshalMessage(op ipmi.Operation, seq uint8, body gopacket.SerializableLayer) ([]byte, error) {
	msg := &ipmi.Message{
		Operation:        op,
		ResponderAddress: bmcAddress,
		ResponderLUN:     0,
		RequesterAddress: remoteConsoleAddress,
		RequesterLUN:     0,
		Sequence:         seq,
	}

	buf := gopacket.NewSerializeBuffer()
	toSerialize := []gopacket.SerializableLayer{msg}
	if body != nil {
		toSerialize = append(toSerialize, body)
	}
	if err := gopacket.SerializeLayers(buf, serializeOptions, toSerialize...); err != nil {
		return nil, fmt.Errorf("bmc: serializing %v request: %w", op, err)
	}
	return buf.Bytes(), nil
}

// bodyDecoder is satisfied by every response body in pkg/ipmi, including
// the handful (e.g. SetSessionPrivilegeLevelResponse) that deliberately
// don't implement the rest of gopacket.DecodingLayer because they are
// always decoded directly rather than dispatched through Operation's
// LayerType table.
type bodyDecoder interface {
	DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error
}

// unmarshalMessage decodes data as an IPMI Message, and, if the completion
// code is normal and rspBody is non-nil, decodes the message's payload
// into rspBody.
func unmarshalMessage(data []byte, rspBody bodyDecoder) (*ipmi.Message, error) {
	msg := &ipmi.Message{}
	if err := msg.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, ipmi.NewParseError("Message", err)
	}
	if msg.CompletionCode != ipmi.CompletionCodeNormal {
		return msg, nil
	}
	if rspBody != nil {
		if err := rspBody.DecodeFromBytes(msg.Payload, gopacket.NilDecodeFeedback); err != nil {
			return msg, err
		}
	}
	return msg, nil
}
