package bmc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironbmc/bmc/internal/pkg/transport"
	"github.com/ironbmc/bmc/internal/pkg/transport/rmcp"
	"github.com/ironbmc/bmc/pkg/ipmi"
)

// V1SessionlessTransport is a BMC connection using IPMI v1.5 framing,
// prior to session establishment.
type V1SessionlessTransport struct {
	Transport transport.Transport
	*V1Sessionless
}

// Address returns the remote address this transport is connected to.
func (v *V1SessionlessTransport) Address() string { return v.Transport.RemoteAddr() }

// Version always reports "1.5" for this transport.
func (v *V1SessionlessTransport) Version() string { return "1.5" }

// Close closes the underlying transport.
func (v *V1SessionlessTransport) Close() error { return v.Transport.Close() }

// V1Sessionless implements IPMI 1.5 session establishment: Get Session
// Challenge followed by Activate Session, using whichever per-message
// AuthType the caller selects (spec's legacy session component).
type V1Sessionless struct {
	t        transport.Transport
	timeout  time.Duration
	authType ipmi.AuthType
	logger   *slog.Logger
}

// newV1Sessionless constructs a V1Sessionless that activates sessions
// using authType (one of AuthTypeMD5, AuthTypeMD2, AuthTypeStraightPassword,
// or AuthTypeNone for an unauthenticated BMC).
func newV1Sessionless(t transport.Transport, timeout time.Duration, authType ipmi.AuthType) *V1Sessionless {
	return &V1Sessionless{t: t, timeout: timeout, authType: authType, logger: slog.Default()}
}

func (v *V1Sessionless) unauthenticatedRoundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	header := rmcp.LegacySessionHeader{AuthType: ipmi.AuthTypeNone}
	raw, err := sendRecvWithRetry(ctx, v.t, header.Marshal(payload), v.logger)
	if err != nil {
		return nil, err
	}
	_, body, err := rmcp.UnmarshalLegacySessionHeader(raw)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// NewSession performs Get Session Challenge followed by Activate
// Session and returns a ready-to-use Session (spec 4.5's IPMI 1.5
// establishment sequence).
func (v *V1Sessionless) NewSession(ctx context.Context, opts *SessionOpts) (*Session, error) {
	v1SessionsOpenAttempts.WithLabelValues(opts.MaxPrivilegeLevel.String()).Inc()
	if opts.Logger != nil {
		v.logger = opts.Logger
	}

	var username [16]byte
	copy(username[:], opts.Username)

	challengeReq := &ipmi.GetSessionChallengeRequest{AuthType: v.authType, Username: username}
	reqBytes, err := marshalMessage(ipmi.OperationGetSessionChallengeReq, 0, challengeReq)
	if err != nil {
		v1SessionsOpenFailures.WithLabelValues("session_challenge").Inc()
		return nil, err
	}
	rspBytes, err := v.unauthenticatedRoundTrip(ctx, reqBytes)
	if err != nil {
		v1SessionsOpenFailures.WithLabelValues("session_challenge").Inc()
		return nil, fmt.Errorf("bmc: get session challenge: %w", err)
	}
	challengeRsp := &ipmi.GetSessionChallengeResponse{}
	msg, err := unmarshalMessage(rspBytes, challengeRsp)
	if err != nil {
		v1SessionsOpenFailures.WithLabelValues("session_challenge").Inc()
		return nil, err
	}
	if err := ValidateResponse(msg.CompletionCode, nil); err != nil {
		v1SessionsOpenFailures.WithLabelValues("session_challenge").Inc()
		return nil, err
	}
	v.logger.DebugContext(ctx, "bmc: session challenge obtained", "temporary_session_id", challengeRsp.TemporarySessionID)

	password := [16]byte{}
	copy(password[:], opts.Password)

	activateReq := &ipmi.ActivateSessionRequest{
		AuthType:                      v.authType,
		MaxPrivilegeLevel:             opts.MaxPrivilegeLevel,
		Challenge:                     challengeRsp.Challenge,
		InitialOutboundSequenceNumber: 1,
	}
	ex := &v1Exchanger{t: v.t, sessionID: challengeRsp.TemporarySessionID, authType: v.authType, password: password, logger: v.logger}
	activateBytes, err := marshalMessage(ipmi.OperationActivateSessionReq, 0, activateReq)
	if err != nil {
		v1SessionsOpenFailures.WithLabelValues("activate_session").Inc()
		return nil, err
	}
	activateRspBytes, err := ex.exchange(ctx, activateBytes)
	if err != nil {
		v1SessionsOpenFailures.WithLabelValues("activate_session").Inc()
		return nil, fmt.Errorf("bmc: activate session: %w", err)
	}
	activateRsp := &ipmi.ActivateSessionResponse{}
	activateMsg, err := unmarshalMessage(activateRspBytes, activateRsp)
	if err != nil {
		v1SessionsOpenFailures.WithLabelValues("activate_session").Inc()
		return nil, err
	}
	if err := ValidateResponse(activateMsg.CompletionCode, nil); err != nil {
		v1SessionsOpenFailures.WithLabelValues("activate_session").Inc()
		return nil, err
	}
	v.logger.DebugContext(ctx, "bmc: session activated", "session_id", activateRsp.SessionID)

	ex.sessionID = activateRsp.SessionID
	ex.outSeq = 1
	return newSession(ex), nil
}
