package rmcp

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/ipmi"
)

// legacySessionHeaderFixedLength is the fixed portion of an IPMI 1.5 session
// header before any auth code: AuthType, sequence, session ID. The
// payload length byte follows the auth code (or the session ID, when
// there is none).
const legacySessionHeaderFixedLength = 9

// LegacySessionHeader frames one IPMI 1.5 message: AuthType selects the
// per-message authentication in use (or none, for the Get Session
// Challenge exchange that precedes it), Sequence and SessionID identify
// the session, and AuthCode is the 16-byte authentication code unless
// AuthType is AuthTypeNone.
type LegacySessionHeader struct {
	AuthType  ipmi.AuthType
	Sequence  uint32
	SessionID uint32
	AuthCode  [16]byte
}

// Marshal frames payload behind the legacy session header. authCode must
// already be computed by the caller (LegacyAuthCode, the password
// itself for StraightPassword, or left zero for AuthTypeNone).
func (h LegacySessionHeader) Marshal(payload []byte) []byte {
	hasAuthCode := h.AuthType != ipmi.AuthTypeNone
	headerLen := legacySessionHeaderFixedLength
	if hasAuthCode {
		headerLen += 16
	}
	out := make([]byte, headerLen+1+len(payload))
	out[0] = uint8(h.AuthType)
	putUint32LE(out[1:5], h.Sequence)
	putUint32LE(out[5:9], h.SessionID)
	offset := 9
	if hasAuthCode {
		copy(out[9:25], h.AuthCode[:])
		offset = 25
	}
	out[offset] = uint8(len(payload))
	copy(out[offset+1:], payload)
	return out
}

// UnmarshalLegacySessionHeader parses a legacy session header and
// returns it alongside the payload bytes that follow.
func UnmarshalLegacySessionHeader(data []byte) (LegacySessionHeader, []byte, error) {
	var h LegacySessionHeader
	if len(data) < legacySessionHeaderFixedLength+1 {
		return h, nil, fmt.Errorf("rmcp: legacy session header too short: %d bytes", len(data))
	}
	h.AuthType = ipmi.AuthType(data[0])
	h.Sequence = uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16 | uint32(data[4])<<24
	h.SessionID = uint32(data[5]) | uint32(data[6])<<8 | uint32(data[7])<<16 | uint32(data[8])<<24

	offset := 9
	if h.AuthType != ipmi.AuthTypeNone {
		if len(data) < 25+1 {
			return h, nil, fmt.Errorf("rmcp: legacy session header too short for auth code: %d bytes", len(data))
		}
		copy(h.AuthCode[:], data[9:25])
		offset = 25
	}
	length := int(data[offset])
	offset++
	if len(data) < offset+length {
		return h, nil, fmt.Errorf("rmcp: legacy session payload truncated: need %d bytes, have %d", length, len(data)-offset)
	}
	return h, data[offset : offset+length], nil
}

func putUint32LE(out []byte, v uint32) {
	out[0] = uint8(v)
	out[1] = uint8(v >> 8)
	out[2] = uint8(v >> 16)
	out[3] = uint8(v >> 24)
}
