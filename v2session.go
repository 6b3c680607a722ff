package bmc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ironbmc/bmc/internal/pkg/transport"
	"github.com/ironbmc/bmc/internal/pkg/transport/rmcp"
	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/google/gopacket"
)

// rmcpPlusNextHeader is the fixed "Next Header" byte of the RMCP+ session
// trailer, always 0x07 (IPMI session trailer present) for the sessions
// this library establishes.
const rmcpPlusNextHeader = 0x07

// v2Exchanger implements exchanger over an established RMCP+ session:
// every outgoing Message is encrypted (AES-CBC-128) and then signed
// (HMAC-SHA1-96), per spec 13.8's "encrypt first, then authenticate" wire
// order; every incoming Message is verified, checked against the replay
// window, and then decrypted.
type v2Exchanger struct {
	t         transport.Transport
	sessionID uint32
	sequence  uint32
	window    rmcp.ReplayWindow

	integrity       *ipmi.HMACSHA196
	confidentiality *ipmi.AES128CBC
	logger          *slog.Logger
}

func (v *v2Exchanger) exchange(ctx context.Context, requestMessage []byte) ([]byte, error) {
	v.sequence++

	v.confidentiality.Plaintext = requestMessage
	encBuf := gopacket.NewSerializeBuffer()
	if err := v.confidentiality.SerializeTo(encBuf, serializeOptions); err != nil {
		return nil, fmt.Errorf("bmc: encrypting request: %w", err)
	}
	encrypted := encBuf.Bytes()

	header := rmcp.SessionHeader{
		PayloadType:   rmcp.PayloadTypeIPMI,
		Encrypted:     true,
		Authenticated: true,
		SessionID:     v.sessionID,
		Sequence:      v.sequence,
		PayloadLength: uint16(len(encrypted)),
	}
	signed := append(header.Marshal(), encrypted...)

	padLength := (4 - (len(signed)+2)%4) % 4
	for i := 0; i < padLength; i++ {
		signed = append(signed, 0xff)
	}
	signed = append(signed, uint8(padLength), rmcpPlusNextHeader)

	trailer := v.integrity.Sign(signed)
	packet := append(signed, trailer[:]...)

	raw, err := sendRecvWithRetry(ctx, v.t, packet, v.logger)
	if err != nil {
		return nil, err
	}
	return v.unwrap(ctx, raw)
}

func (v *v2Exchanger) unwrap(ctx context.Context, raw []byte) ([]byte, error) {
	header, err := rmcp.UnmarshalSessionHeader(raw)
	if err != nil {
		return nil, err
	}
	if header.SessionID != v.sessionID {
		return nil, fmt.Errorf("bmc: response session ID %#x does not match %#x", header.SessionID, v.sessionID)
	}

	rest := raw[rmcp.SessionHeaderLength:]
	if header.Authenticated {
		if len(rest) < ipmi.HMACSHA196TrailerLength {
			return nil, fmt.Errorf("bmc: response too short for integrity trailer")
		}
		signedLen := len(rest) - ipmi.HMACSHA196TrailerLength
		signed := append(append([]byte(nil), raw[:rmcp.SessionHeaderLength]...), rest[:signedLen]...)
		trailer := rest[signedLen:]
		if !v.integrity.Verify(signed, trailer) {
			return nil, fmt.Errorf("bmc: response failed integrity check")
		}
		rest = rest[:signedLen]
		if len(rest) >= 2 {
			padLength := rest[len(rest)-2]
			rest = rest[:len(rest)-2-int(padLength)]
		}
	}

	if !v.window.Accept(header.Sequence) {
		loggerOrDefault(v.logger).WarnContext(ctx, "bmc: dropping response outside replay window", "sequence", header.Sequence)
		return nil, fmt.Errorf("bmc: response sequence number %d rejected by replay window", header.Sequence)
	}

	if header.Encrypted {
		if err := v.confidentiality.DecodeFromBytes(rest, gopacket.NilDecodeFeedback); err != nil {
			return nil, fmt.Errorf("bmc: decrypting response: %w", err)
		}
		return v.confidentiality.Plaintext, nil
	}
	return rest, nil
}

func (v *v2Exchanger) close(ctx context.Context) error {
	req := &ipmi.CloseSessionRequest{SessionID: v.sessionID}
	reqBytes, err := marshalMessage(ipmi.OperationCloseSessionReq, 0, req)
	if err != nil {
		return err
	}
	_, err = v.exchange(ctx, reqBytes)
	return err
}
