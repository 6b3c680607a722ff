package bmc

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironbmc/bmc/internal/pkg/transport"
	"github.com/ironbmc/bmc/internal/pkg/transport/rmcp"
	"github.com/ironbmc/bmc/pkg/ipmi"
)

// SessionlessTransport is a BMC connection before any session has been
// established: enough to query capabilities and open a Session, but
// without a privilege level of its own.
type SessionlessTransport interface {
	// Address is the address this transport is connected to, as passed to
	// Dial/DialV2.
	Address() string

	// Version reports the IPMI version in use over this transport, e.g.
	// "2.0".
	Version() string

	// NewSession authenticates and establishes a new Session.
	NewSession(ctx context.Context, opts *SessionOpts) (*Session, error)

	// Close releases the underlying transport.
	Close() error
}

// V2SessionlessTransport is a BMC connection using IPMI v2.0 (RMCP+)
// framing, prior to session establishment.
type V2SessionlessTransport struct {
	Transport transport.Transport
	*V2Sessionless
}

// Address returns the remote address this transport is connected to.
func (v *V2SessionlessTransport) Address() string { return v.Transport.RemoteAddr() }

// Version always reports "2.0" for this transport.
func (v *V2SessionlessTransport) Version() string { return "2.0" }

// Close closes the underlying transport.
func (v *V2SessionlessTransport) Close() error {
	v2ConnectionsOpen.Dec()
	return v.Transport.Close()
}

// V2Sessionless implements the commands IPMI v2.0 allows before a session
// is established (spec's "sessionless" operations: Get Channel
// Authentication Capabilities, Get Channel Cipher Suites) and session
// establishment itself (Open Session Request/Response, RAKP 1-4).
type V2Sessionless struct {
	t       transport.Transport
	timeout time.Duration
	tag     uint8
	logger  *slog.Logger
}

func newV2Sessionless(t transport.Transport, timeout time.Duration) *V2Sessionless {
	return &V2Sessionless{t: t, timeout: timeout, logger: slog.Default()}
}

// sessionlessRoundTrip sends payload wrapped in an unauthenticated,
// unencrypted, session-ID-0 RMCP+ session header, and returns the payload
// of the reply with its own session header stripped.
func (v *V2Sessionless) sessionlessRoundTrip(ctx context.Context, payloadType rmcp.PayloadType, payload []byte) ([]byte, error) {
	header := rmcp.SessionHeader{
		PayloadType:   payloadType,
		PayloadLength: uint16(len(payload)),
	}
	packet := append(header.Marshal(), payload...)
	raw, err := sendRecvWithRetry(ctx, v.t, packet, v.logger)
	if err != nil {
		return nil, err
	}
	rspHeader, err := rmcp.UnmarshalSessionHeader(raw)
	if err != nil {
		return nil, err
	}
	body := raw[rmcp.SessionHeaderLength:]
	if int(rspHeader.PayloadLength) <= len(body) {
		body = body[:rspHeader.PayloadLength]
	}
	return body, nil
}

// nextMessageTag returns the next RAKP/Open-Session message tag, used to
// match replies during establishment.
func (v *V2Sessionless) nextMessageTag() uint8 {
	v.tag++
	return v.tag
}

// GetChannelAuthenticationCapabilities queries which authentication types
// and IPMI versions a channel supports, without needing a session.
func (v *V2Sessionless) GetChannelAuthenticationCapabilities(ctx context.Context, channel ipmi.ChannelNumber, maxPrivilege ipmi.PrivilegeLevel) (*ipmi.GetChannelAuthenticationCapabilitiesResponse, error) {
	req := &ipmi.GetChannelAuthenticationCapabilitiesRequest{
		Channel:           channel,
		MaxPrivilegeLevel: maxPrivilege,
	}
	reqBytes, err := marshalMessage(ipmi.OperationGetChannelAuthenticationCapabilitiesReq, v.nextMessageTag(), req)
	if err != nil {
		return nil, err
	}
	rspBytes, err := v.sessionlessRoundTrip(ctx, rmcp.PayloadTypeIPMI, reqBytes)
	if err != nil {
		return nil, err
	}
	rsp := &ipmi.GetChannelAuthenticationCapabilitiesResponse{}
	msg, err := unmarshalMessage(rspBytes, rsp)
	if err != nil {
		return nil, err
	}
	if err := ValidateResponse(msg.CompletionCode, nil); err != nil {
		return nil, err
	}
	return rsp, nil
}

// NewSession performs the full RMCP+ session establishment handshake (Open
// Session Request/Response followed by RAKP Messages 1-4, spec 4.5/4.6)
// and returns a ready-to-use Session using AES-CBC-128 confidentiality and
// HMAC-SHA1-96 integrity, the only cipher suite this library implements.
func (v *V2Sessionless) NewSession(ctx context.Context, opts *SessionOpts) (*Session, error) {
	v2SessionsOpenAttempts.WithLabelValues(opts.MaxPrivilegeLevel.String()).Inc()
	if opts.Logger != nil {
		v.logger = opts.Logger
	}

	consoleSessionID, err := randomUint32()
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("open_session").Inc()
		return nil, err
	}

	openReq := rmcp.OpenSessionRequest{
		MessageTag:               v.nextMessageTag(),
		MaxPrivilegeLevel:        opts.MaxPrivilegeLevel,
		RemoteConsoleSessionID:   consoleSessionID,
		AuthenticationAlgorithm:  ipmi.AuthenticationAlgorithmRAKPHMACSHA1,
		IntegrityAlgorithm:       ipmi.IntegrityAlgorithmHMACSHA1_96,
		ConfidentialityAlgorithm: ipmi.ConfidentialityAlgorithmAESCBC128,
	}
	rspBytes, err := v.sessionlessRoundTrip(ctx, rmcp.PayloadTypeOpenSessionReq, openReq.Marshal())
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("open_session").Inc()
		return nil, fmt.Errorf("bmc: open session request: %w", err)
	}
	openRsp, err := rmcp.UnmarshalOpenSessionResponse(rspBytes)
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("open_session").Inc()
		return nil, fmt.Errorf("bmc: open session response: %w", err)
	}
	if openRsp.AuthenticationAlgorithm != openReq.AuthenticationAlgorithm ||
		openRsp.IntegrityAlgorithm != openReq.IntegrityAlgorithm ||
		openRsp.ConfidentialityAlgorithm != openReq.ConfidentialityAlgorithm {
		v2SessionsOpenFailures.WithLabelValues("open_session").Inc()
		return nil, ipmi.NewSessionError("open session response names an unsupported cipher suite", nil)
	}
	v.logger.DebugContext(ctx, "bmc: open session established", "managed_system_session_id", openRsp.ManagedSystemSessionID)

	var consoleRandom [16]byte
	if _, err := rand.Read(consoleRandom[:]); err != nil {
		v2SessionsOpenFailures.WithLabelValues("rakp1").Inc()
		return nil, fmt.Errorf("bmc: generating RAKP1 random number: %w", err)
	}
	rakp1 := rmcp.RAKPMessage1{
		MessageTag:             v.nextMessageTag(),
		ManagedSystemSessionID: openRsp.ManagedSystemSessionID,
		RemoteConsoleRandom:    consoleRandom,
		MaxPrivilegeLevel:      opts.MaxPrivilegeLevel,
		Username:               opts.Username,
	}
	rakp2Bytes, err := v.sessionlessRoundTrip(ctx, rmcp.PayloadTypeRAKP1, rakp1.Marshal())
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("rakp1").Inc()
		return nil, fmt.Errorf("bmc: RAKP message 1: %w", err)
	}
	rakp2, err := rmcp.UnmarshalRAKPMessage2(rakp2Bytes)
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("rakp2").Inc()
		return nil, fmt.Errorf("bmc: RAKP message 2: %w", err)
	}

	wantAuthCode := rmcp.RAKP2AuthCode(opts.Password, consoleSessionID, consoleRandom, rakp2.ManagedSystemRandom, rakp2.ManagedSystemGUID, opts.MaxPrivilegeLevel, opts.Username)
	if !hmacEqual(wantAuthCode, rakp2.KeyExchangeAuthCode) {
		v2SessionsOpenFailures.WithLabelValues("rakp2_auth").Inc()
		return nil, fmt.Errorf("bmc: RAKP2 authentication code mismatch (wrong username or password)")
	}
	v.logger.DebugContext(ctx, "bmc: RAKP2 authentication code verified")

	sik := rmcp.SessionIntegrityKey(opts.Password, consoleRandom, rakp2.ManagedSystemRandom, opts.MaxPrivilegeLevel, opts.Username)
	keyMaterial := sikKeyMaterialGenerator{sik: sik}

	rakp3 := rmcp.RAKPMessage3{
		MessageTag:             v.nextMessageTag(),
		ManagedSystemSessionID: openRsp.ManagedSystemSessionID,
		KeyExchangeAuthCode:    rmcp.RAKP3AuthCode(opts.Password, rakp2.ManagedSystemRandom, openRsp.ManagedSystemSessionID, opts.MaxPrivilegeLevel, opts.Username),
	}
	rakp4Bytes, err := v.sessionlessRoundTrip(ctx, rmcp.PayloadTypeRAKP3, rakp3.Marshal())
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("rakp3").Inc()
		return nil, fmt.Errorf("bmc: RAKP message 3: %w", err)
	}
	rakp4, err := rmcp.UnmarshalRAKPMessage4(rakp4Bytes)
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("rakp4").Inc()
		return nil, fmt.Errorf("bmc: RAKP message 4: %w", err)
	}
	wantICV := rmcp.RAKP4IntegrityCheckValue(sik, consoleSessionID, consoleRandom, rakp2.ManagedSystemGUID)
	if !hmacEqual(wantICV, rakp4.IntegrityCheckValue) {
		v2SessionsOpenFailures.WithLabelValues("rakp4_icv").Inc()
		return nil, fmt.Errorf("bmc: RAKP4 integrity check value mismatch")
	}
	v.logger.DebugContext(ctx, "bmc: RAKP4 integrity check value verified, session established")

	suite, err := deriveCipherSuite(ipmi.ConfidentialityAlgorithmAESCBC128, ipmi.IntegrityAlgorithmHMACSHA1_96, keyMaterial)
	if err != nil {
		v2SessionsOpenFailures.WithLabelValues("confidentiality").Inc()
		return nil, err
	}

	ex := &v2Exchanger{
		t:               v.t,
		sessionID:       openRsp.ManagedSystemSessionID,
		integrity:       suite.integrity,
		confidentiality: suite.confidentiality,
		sequence:        1,
		logger:          v.logger,
	}
	return newSession(ex), nil
}

// sikKeyMaterialGenerator implements AdditionalKeyMaterialGenerator over a
// session's derived Session Integrity Key.
type sikKeyMaterialGenerator struct {
	sik []byte
}

func (g sikKeyMaterialGenerator) K(n int) []byte {
	return rmcp.AdditionalKeyMaterial(g.sik, byte(n))
}

// hmacEqual reports whether want and got are the same bytes, without
// branching on how far into the comparison they first differ: handshake
// auth codes and integrity check values must never be compared in a way
// that lets a timing attack narrow down the correct value byte by byte.
func hmacEqual(want, got []byte) bool {
	return subtle.ConstantTimeCompare(want, got) == 1
}

func randomUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}
