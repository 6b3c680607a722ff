package bmc

import (
	"context"
	"log/slog"

	"github.com/ironbmc/bmc/internal/pkg/transport"
	"github.com/ironbmc/bmc/internal/pkg/transport/rmcp"
	"github.com/ironbmc/bmc/pkg/ipmi"
)

// v1Exchanger implements exchanger over an established IPMI 1.5 session:
// every message is framed with the legacy session header and, unless
// AuthType is AuthTypeNone, signed with the negotiated per-message
// authentication code (MD2, MD5, or the password itself for
// StraightPassword).
type v1Exchanger struct {
	t         transport.Transport
	sessionID uint32
	authType  ipmi.AuthType
	password  [16]byte
	outSeq    uint32
	logger    *slog.Logger
}

func (v *v1Exchanger) authCode(data []byte, seq uint32) [16]byte {
	switch v.authType {
	case ipmi.AuthTypeNone:
		return [16]byte{}
	case ipmi.AuthTypeStraightPassword:
		return v.password
	case ipmi.AuthTypeMD2:
		return rmcp.LegacyAuthCode(v.password, v.sessionID, data, seq, true)
	default: // AuthTypeMD5
		return rmcp.LegacyAuthCode(v.password, v.sessionID, data, seq, false)
	}
}

func (v *v1Exchanger) exchange(ctx context.Context, requestMessage []byte) ([]byte, error) {
	v.outSeq++
	header := rmcp.LegacySessionHeader{
		AuthType:  v.authType,
		Sequence:  v.outSeq,
		SessionID: v.sessionID,
		AuthCode:  v.authCode(requestMessage, v.outSeq),
	}
	raw, err := sendRecvWithRetry(ctx, v.t, header.Marshal(requestMessage), v.logger)
	if err != nil {
		return nil, err
	}
	_, payload, err := rmcp.UnmarshalLegacySessionHeader(raw)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (v *v1Exchanger) close(ctx context.Context) error {
	req := &ipmi.CloseSessionRequest{SessionID: v.sessionID}
	reqBytes, err := marshalMessage(ipmi.OperationCloseSessionReq, 0, req)
	if err != nil {
		return err
	}
	_, err = v.exchange(ctx, reqBytes)
	return err
}
