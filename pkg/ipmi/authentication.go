package ipmi

import "fmt"

// AuthenticationAlgorithm identifies the RMCP+ RAKP authentication
// algorithm negotiated in Open Session Request/Response (spec 4.6).
// This library only implements RAKP-HMAC-SHA1, the one required by the
// "suite 17-equivalent" cipher suite it supports.
type AuthenticationAlgorithm uint8

const (
	AuthenticationAlgorithmRAKPNone     AuthenticationAlgorithm = 0x00
	AuthenticationAlgorithmRAKPHMACSHA1 AuthenticationAlgorithm = 0x01
)

func (a AuthenticationAlgorithm) String() string {
	switch a {
	case AuthenticationAlgorithmRAKPNone:
		return "RAKP-none"
	case AuthenticationAlgorithmRAKPHMACSHA1:
		return "RAKP-HMAC-SHA1"
	default:
		return fmt.Sprintf("AuthenticationAlgorithm(0x%02x)", uint8(a))
	}
}
