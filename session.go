package bmc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/google/gopacket"
	"github.com/prometheus/client_golang/prometheus"
)

// AdditionalKeyMaterialGenerator derives the Kn key material RMCP+ uses for
// everything beyond the Session Integrity Key itself: K1 for the integrity
// algorithm, K2 for the confidentiality algorithm, and so on for any
// future use (spec 13.32). Sessions implement this over their negotiated
// SIK; tests can substitute a fixed-output fake.
type AdditionalKeyMaterialGenerator interface {
	K(n int) []byte
}

// SessionOpts configures a new authenticated session (spec 4.5).
type SessionOpts struct {
	// Username identifies the account to authenticate as. An empty
	// username requests the BMC's anonymous/null-username login, if
	// enabled.
	Username string

	// Password authenticates Username. For IPMI v2.0 RAKP-HMAC-SHA1 this
	// may be up to 20 bytes; for IPMI v1.5 MD2/MD5 it is truncated/padded
	// to 16 bytes.
	Password []byte

	// MaxPrivilegeLevel is the highest privilege level requested for the
	// session. The BMC may grant a lower level.
	MaxPrivilegeLevel ipmi.PrivilegeLevel

	// Logger receives handshake phase transitions, replay drops, and
	// transport retries for this session. A nil Logger uses slog.Default().
	Logger *slog.Logger
}

// exchanger abstracts what differs between an IPMI v1.5 session (4-byte
// running sequence number, MD2/MD5 per-message authcode) and an IPMI v2.0
// RMCP+ session (AES-CBC-128 confidentiality, HMAC-SHA1-96 integrity, a
// 16-entry replay window) once the session is established: framing,
// optionally encrypting, and optionally signing one already-built Message,
// and doing the reverse for its response.
type exchanger interface {
	exchange(ctx context.Context, requestMessage []byte) (responseMessage []byte, err error)
	close(ctx context.Context) error
}

// Session is an established, authenticated IPMI session - either IPMI 1.5
// or IPMI 2.0 (RMCP+) - exposing the command catalogue as Go methods (spec
// 4.5 Session core). Which variant is in play is entirely encapsulated by
// the exchanger implementation; callers never need to know.
type Session struct {
	mu  sync.Mutex
	ex  exchanger
	seq uint8
}

func newSession(ex exchanger) *Session {
	sessionGaugeFor(ex).Inc()
	return &Session{ex: ex}
}

// sessionGaugeFor selects the open-sessions gauge matching ex's IPMI
// version, so v1.5 and v2.0 sessions are counted separately.
func sessionGaugeFor(ex exchanger) prometheus.Gauge {
	if _, ok := ex.(*v1Exchanger); ok {
		return v1SessionsOpen
	}
	return v2SessionsOpen
}

// Close tears the session down. The underlying transport is left open;
// callers retain ownership of it via the SessionlessTransport that created
// this session.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessionGaugeFor(s.ex).Dec()
	return s.ex.close(ctx)
}

// Execute sends a single request/response exchange: op identifies the
// network function and command, reqBody (if non-nil) is serialized as its
// data bytes, and rspBody (if non-nil) is populated from the response's
// data bytes when the completion code is normal. The completion code is
// always returned so callers can distinguish "understood but declined"
// from a transport failure.
func (s *Session) Execute(ctx context.Context, op ipmi.Operation, reqBody gopacket.SerializableLayer, rspBody bodyDecoder) (ipmi.CompletionCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	reqBytes, err := marshalMessage(op, s.seq, reqBody)
	if err != nil {
		return 0, err
	}

	commandsSent.WithLabelValues(op.Function.String(), fmt.Sprintf("0x%02x", uint8(op.Command))).Inc()

	rspBytes, err := s.ex.exchange(ctx, reqBytes)
	if err != nil {
		commandErrors.WithLabelValues("transport").Inc()
		return 0, fmt.Errorf("bmc: executing %v: %w", op, err)
	}

	msg, err := unmarshalMessage(rspBytes, rspBody)
	if err != nil {
		commandErrors.WithLabelValues("decode").Inc()
		return 0, err
	}
	if msg.CompletionCode != ipmi.CompletionCodeNormal {
		commandErrors.WithLabelValues(msg.CompletionCode.String()).Inc()
	}
	return msg.CompletionCode, nil
}

// ChassisControl issues a Chassis Control command, e.g. to power the
// system on or off (spec command catalogue).
func (s *Session) ChassisControl(ctx context.Context, cmd ipmi.ChassisControl) error {
	req := &ipmi.ChassisControlRequest{Control: cmd}
	code, err := s.Execute(ctx, ipmi.OperationChassisControlReq, req, nil)
	return ValidateResponse(code, err)
}

// GetChassisStatus retrieves the current power and fault state of the
// chassis.
func (s *Session) GetChassisStatus(ctx context.Context) (*ipmi.GetChassisStatusResponse, error) {
	rsp := &ipmi.GetChassisStatusResponse{}
	code, err := s.Execute(ctx, ipmi.OperationGetChassisStatusReq, nil, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return nil, err
	}
	return rsp, nil
}

// GetDeviceID retrieves the BMC's own device identification record.
func (s *Session) GetDeviceID(ctx context.Context) (*ipmi.GetDeviceIDResponse, error) {
	rsp := &ipmi.GetDeviceIDResponse{}
	code, err := s.Execute(ctx, ipmi.OperationGetDeviceIDReq, nil, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return nil, err
	}
	return rsp, nil
}

// SetSessionPrivilegeLevel raises or lowers this session's privilege
// within the bound the BMC granted at activation.
func (s *Session) SetSessionPrivilegeLevel(ctx context.Context, level ipmi.PrivilegeLevel) (ipmi.PrivilegeLevel, error) {
	req := &ipmi.SetSessionPrivilegeLevelRequest{RequestedPrivilegeLevel: level}
	rsp := &ipmi.SetSessionPrivilegeLevelResponse{}
	code, err := s.Execute(ctx, ipmi.OperationSetSessionPrivilegeLevelReq, req, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return 0, err
	}
	return rsp.NewPrivilegeLevel, nil
}
