package ipmi

import (
	"crypto/hmac"
	"crypto/sha1"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// IntegrityAlgorithm identifies the RMCP+ AuthCode trailer algorithm
// negotiated in Open Session Request/Response (spec 4.6).
type IntegrityAlgorithm uint8

const (
	IntegrityAlgorithmNone         IntegrityAlgorithm = 0x00
	IntegrityAlgorithmHMACSHA1_96  IntegrityAlgorithm = 0x01
)

func (i IntegrityAlgorithm) String() string {
	switch i {
	case IntegrityAlgorithmNone:
		return "none"
	case IntegrityAlgorithmHMACSHA1_96:
		return "HMAC-SHA1-96"
	default:
		return fmt.Sprintf("IntegrityAlgorithm(0x%02x)", uint8(i))
	}
}

// HMACSHA196TrailerLength is the fixed size of the truncated
// HMAC-SHA1-96 AuthCode trailer (96 bits).
const HMACSHA196TrailerLength = 12

// HMACSHA196 computes and verifies the RMCP+ integrity trailer: a
// truncated (96-bit) HMAC-SHA1 over everything in the packet from the
// start of the RMCP+ session header up to (but not including) the
// trailer itself, keyed on K1 (spec 4.6).
type HMACSHA196 struct {
	layers.BaseLayer

	key [20]byte
}

// NewHMACSHA196 constructs an integrity layer bound to the session's K1
// key material. The HMAC-SHA1 key is the full 20-byte K1, even though
// the resulting tag is truncated to 12 bytes.
func NewHMACSHA196(key [20]byte) *HMACSHA196 {
	return &HMACSHA196{key: key}
}

func (h *HMACSHA196) LayerType() gopacket.LayerType { return LayerTypeIntegrityHMACSHA196 }

// Sign returns the 12-byte truncated HMAC-SHA1 tag over signed.
func (h *HMACSHA196) Sign(signed []byte) [HMACSHA196TrailerLength]byte {
	mac := hmac.New(sha1.New, h.key[:])
	mac.Write(signed)
	full := mac.Sum(nil)
	var trailer [HMACSHA196TrailerLength]byte
	copy(trailer[:], full[:HMACSHA196TrailerLength])
	return trailer
}

// Verify reports whether trailer is the correct tag for signed, using a
// constant-time comparison to avoid leaking timing information about
// how many leading bytes matched.
func (h *HMACSHA196) Verify(signed []byte, trailer []byte) bool {
	if len(trailer) != HMACSHA196TrailerLength {
		return false
	}
	want := h.Sign(signed)
	return hmac.Equal(want[:], trailer)
}
