package bmc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ironbmc/bmc/internal/pkg/transport/rmcp"
	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/google/gopacket"
)

// fakeLegacyTransport answers Get Session Challenge and Activate Session
// with canned, correctly-framed IPMI 1.5 responses so V1Sessionless.NewSession
// can be exercised without a real BMC.
type fakeLegacyTransport struct {
	challengeSessionID uint32
	challenge          [16]byte
	activatedSessionID uint32
	next               []byte
}

func (f *fakeLegacyTransport) Send(data []byte) error {
	_, payload, err := rmcp.UnmarshalLegacySessionHeader(data)
	if err != nil {
		return err
	}
	msg := &ipmi.Message{}
	if err := msg.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
		return err
	}

	switch msg.Command {
	case ipmi.OperationGetSessionChallengeReq.Command:
		f.next, err = marshalResponseMessage(msg.Sequence, ipmi.OperationGetSessionChallengeRsp, ipmi.CompletionCodeNormal,
			&ipmi.GetSessionChallengeResponse{TemporarySessionID: f.challengeSessionID, Challenge: f.challenge})
	case ipmi.OperationActivateSessionReq.Command:
		f.next, err = marshalResponseMessage(msg.Sequence, ipmi.OperationActivateSessionRsp, ipmi.CompletionCodeNormal,
			&ipmi.ActivateSessionResponse{
				AuthType:                     ipmi.AuthTypeMD5,
				SessionID:                    f.activatedSessionID,
				InitialInboundSequenceNumber: 1,
				MaxPrivilegeLevel:            ipmi.PrivilegeLevelOperator,
			})
	default:
		return fmt.Errorf("fakeLegacyTransport: unexpected command 0x%02x", uint8(msg.Command))
	}
	return err
}

func (f *fakeLegacyTransport) Recv() ([]byte, error) { return f.next, nil }
func (f *fakeLegacyTransport) RemoteAddr() string    { return "fake" }
func (f *fakeLegacyTransport) Close() error          { return nil }

// marshalResponseMessage is marshalMessage's mirror image: it builds the
// wire bytes of a response, as a fake BMC would, rather than a request.
// body may be nil, e.g. for a non-normal completion code that carries no
// further data.
func marshalResponseMessage(seq uint8, op ipmi.Operation, code ipmi.CompletionCode, body gopacket.SerializableLayer) ([]byte, error) {
	msg := &ipmi.Message{
		Operation:        op,
		ResponderAddress: remoteConsoleAddress,
		ResponderLUN:     0,
		RequesterAddress: bmcAddress,
		RequesterLUN:     0,
		Sequence:         seq,
		CompletionCode:   code,
	}

	toSerialize := []gopacket.SerializableLayer{msg}
	if body != nil {
		toSerialize = append(toSerialize, body)
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, serializeOptions, toSerialize...); err != nil {
		return nil, fmt.Errorf("marshaling fake %v response: %w", op, err)
	}
	return buf.Bytes(), nil
}

func TestV1SessionlessNewSession(t *testing.T) {
	ft := &fakeLegacyTransport{
		challengeSessionID: 0x1111,
		challenge:          [16]byte{9, 9, 9},
		activatedSessionID: 0xcafebabe,
	}
	v := newV1Sessionless(ft, time.Second, ipmi.AuthTypeMD5)

	sess, err := v.NewSession(context.Background(), &SessionOpts{
		Username:          "admin",
		Password:          []byte("hunter2"),
		MaxPrivilegeLevel: ipmi.PrivilegeLevelOperator,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ex, ok := sess.ex.(*v1Exchanger)
	if !ok {
		t.Fatalf("session exchanger is %T, want *v1Exchanger", sess.ex)
	}
	if ex.sessionID != 0xcafebabe {
		t.Errorf("got session ID %#x, want %#x", ex.sessionID, 0xcafebabe)
	}
	if ex.authType != ipmi.AuthTypeMD5 {
		t.Errorf("got auth type %v, want MD5", ex.authType)
	}
}
