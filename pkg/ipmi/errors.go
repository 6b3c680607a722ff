package ipmi

import "fmt"

// ParseError is returned for malformed response bodies, unexpected
// lengths, invalid enum discriminators, and invalid string encodings.
type ParseError struct {
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ipmi: parse error decoding %s: %v", e.Context, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps err as a ParseError occurring while decoding context.
func NewParseError(context string, err error) *ParseError {
	return &ParseError{Context: context, Err: err}
}

// CompletionError carries a non-success IPMI completion code verbatim; it
// aborts further body parsing (spec 4.2).
type CompletionError struct {
	Code CompletionCode
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("ipmi: non-normal completion code: %s", e.Code)
}

// SessionError covers handshake rejection, integrity mismatch,
// replay/sequence-window violations, session timeouts, and insufficient
// privilege.
type SessionError struct {
	Reason string
	Err    error
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ipmi: session error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ipmi: session error: %s", e.Reason)
}

func (e *SessionError) Unwrap() error { return e.Err }

// NewSessionError constructs a SessionError, optionally wrapping a cause.
func NewSessionError(reason string, cause error) *SessionError {
	return &SessionError{Reason: reason, Err: cause}
}

// TransportError covers I/O failure, timeout, message-id mismatch, and
// ioctl failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ipmi: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err as a TransportError occurring during op.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// InvariantError is a programmer-visible misuse, such as sending a
// session-scoped command on a no-session handle. It is never expected to
// occur for correctly written callers.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("ipmi: invariant violated: %s", e.Message)
}

// NewInvariantError constructs an InvariantError with the given message.
func NewInvariantError(message string) *InvariantError {
	return &InvariantError{Message: message}
}
