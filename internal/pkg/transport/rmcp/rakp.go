package rmcp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/ironbmc/bmc/pkg/ipmi"
)

// OpenSessionRequest is the RMCP+ Open Session Request payload (spec
// 13.17), proposing one algorithm from each of the three families and a
// console-chosen session ID.
type OpenSessionRequest struct {
	MessageTag               uint8
	MaxPrivilegeLevel        ipmi.PrivilegeLevel
	RemoteConsoleSessionID   uint32
	AuthenticationAlgorithm  ipmi.AuthenticationAlgorithm
	IntegrityAlgorithm       ipmi.IntegrityAlgorithm
	ConfidentialityAlgorithm ipmi.ConfidentialityAlgorithm
}

// Marshal encodes the request body (not including the RMCP+ session
// header).
func (r OpenSessionRequest) Marshal() []byte {
	out := make([]byte, 32)
	out[0] = r.MessageTag
	out[1] = uint8(r.MaxPrivilegeLevel)
	// out[2:4] reserved
	binary.LittleEndian.PutUint32(out[4:8], r.RemoteConsoleSessionID)

	writePayload := func(off int, payloadType, algorithm uint8) {
		out[off] = payloadType
		out[off+3] = 8 // payload length, fixed for the single-algorithm case
		out[off+4] = algorithm
	}
	writePayload(8, 0x00, uint8(r.AuthenticationAlgorithm))
	writePayload(16, 0x01, uint8(r.IntegrityAlgorithm))
	writePayload(24, 0x02, uint8(r.ConfidentialityAlgorithm))
	return out
}

// OpenSessionResponse is the BMC's reply, confirming (or rejecting) the
// proposed algorithms and allocating the Managed System Session ID.
type OpenSessionResponse struct {
	MessageTag               uint8
	StatusCode               uint8
	MaxPrivilegeLevel        ipmi.PrivilegeLevel
	RemoteConsoleSessionID   uint32
	ManagedSystemSessionID   uint32
	AuthenticationAlgorithm  ipmi.AuthenticationAlgorithm
	IntegrityAlgorithm       ipmi.IntegrityAlgorithm
	ConfidentialityAlgorithm ipmi.ConfidentialityAlgorithm
}

// UnmarshalOpenSessionResponse decodes an Open Session Response body.
func UnmarshalOpenSessionResponse(data []byte) (OpenSessionResponse, error) {
	if len(data) < 12 {
		return OpenSessionResponse{}, fmt.Errorf("rmcp: open session response too short: %d bytes", len(data))
	}
	r := OpenSessionResponse{
		MessageTag:             data[0],
		StatusCode:             data[1],
		MaxPrivilegeLevel:      ipmi.PrivilegeLevel(data[2]),
		RemoteConsoleSessionID: binary.LittleEndian.Uint32(data[4:8]),
		ManagedSystemSessionID: binary.LittleEndian.Uint32(data[8:12]),
	}
	if r.StatusCode != 0 {
		return r, &StatusError{Code: r.StatusCode}
	}
	if len(data) < 12+8+8+8 {
		return OpenSessionResponse{}, fmt.Errorf("rmcp: open session response missing algorithm payloads")
	}
	r.AuthenticationAlgorithm = ipmi.AuthenticationAlgorithm(data[12+4])
	r.IntegrityAlgorithm = ipmi.IntegrityAlgorithm(data[20+4])
	r.ConfidentialityAlgorithm = ipmi.ConfidentialityAlgorithm(data[28+4])
	return r, nil
}

// RAKPMessage1 is RAKP Message 1, carrying the remote console's random
// number and requested identity (spec 13.20).
type RAKPMessage1 struct {
	MessageTag             uint8
	ManagedSystemSessionID uint32
	RemoteConsoleRandom    [16]byte
	MaxPrivilegeLevel      ipmi.PrivilegeLevel
	Username               string
}

// Marshal encodes RAKP Message 1.
func (m RAKPMessage1) Marshal() []byte {
	uname := []byte(m.Username)
	out := make([]byte, 28+len(uname))
	out[0] = m.MessageTag
	// out[1:4] reserved
	binary.LittleEndian.PutUint32(out[4:8], m.ManagedSystemSessionID)
	copy(out[8:24], m.RemoteConsoleRandom[:])
	out[24] = uint8(m.MaxPrivilegeLevel)
	// out[25:27] reserved
	out[27] = uint8(len(uname))
	copy(out[28:], uname)
	return out
}

// RAKPMessage2 is RAKP Message 2, the BMC's random number, GUID and
// authentication code proving knowledge of the shared secret (spec 13.21).
type RAKPMessage2 struct {
	MessageTag             uint8
	StatusCode             uint8
	RemoteConsoleSessionID uint32
	ManagedSystemRandom    [16]byte
	ManagedSystemGUID      [16]byte
	KeyExchangeAuthCode    []byte
}

// UnmarshalRAKPMessage2 decodes a RAKP Message 2 body.
func UnmarshalRAKPMessage2(data []byte) (RAKPMessage2, error) {
	if len(data) < 40 {
		return RAKPMessage2{}, fmt.Errorf("rmcp: RAKP message 2 too short: %d bytes", len(data))
	}
	m := RAKPMessage2{
		MessageTag:             data[0],
		StatusCode:             data[1],
		RemoteConsoleSessionID: binary.LittleEndian.Uint32(data[4:8]),
	}
	if m.StatusCode != 0 {
		return m, &StatusError{Code: m.StatusCode}
	}
	copy(m.ManagedSystemRandom[:], data[8:24])
	copy(m.ManagedSystemGUID[:], data[24:40])
	m.KeyExchangeAuthCode = append([]byte(nil), data[40:]...)
	return m, nil
}

// RAKPMessage3 is RAKP Message 3, the console's proof of knowledge of the
// shared secret, computed over the fields the BMC sent in Message 2 (spec
// 13.28).
type RAKPMessage3 struct {
	MessageTag             uint8
	StatusCode             uint8
	ManagedSystemSessionID uint32
	KeyExchangeAuthCode    []byte
}

// Marshal encodes RAKP Message 3.
func (m RAKPMessage3) Marshal() []byte {
	out := make([]byte, 8+len(m.KeyExchangeAuthCode))
	out[0] = m.MessageTag
	out[1] = m.StatusCode
	binary.LittleEndian.PutUint32(out[4:8], m.ManagedSystemSessionID)
	copy(out[8:], m.KeyExchangeAuthCode)
	return out
}

// RAKPMessage4 is RAKP Message 4, the BMC's final integrity check value
// confirming it derived the same Session Integrity Key (spec 13.29).
type RAKPMessage4 struct {
	MessageTag             uint8
	StatusCode             uint8
	ManagedSystemSessionID uint32
	IntegrityCheckValue    []byte
}

// UnmarshalRAKPMessage4 decodes a RAKP Message 4 body.
func UnmarshalRAKPMessage4(data []byte) (RAKPMessage4, error) {
	if len(data) < 8 {
		return RAKPMessage4{}, fmt.Errorf("rmcp: RAKP message 4 too short: %d bytes", len(data))
	}
	m := RAKPMessage4{
		MessageTag:             data[0],
		StatusCode:             data[1],
		ManagedSystemSessionID: binary.LittleEndian.Uint32(data[4:8]),
	}
	if m.StatusCode != 0 {
		return m, &StatusError{Code: m.StatusCode}
	}
	m.IntegrityCheckValue = append([]byte(nil), data[8:]...)
	return m, nil
}

// StatusError wraps a non-zero RMCP+ status code reported during session
// establishment (spec 13.24 table).
type StatusError struct {
	Code uint8
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rmcp+: non-zero status code 0x%02x from BMC", e.Code)
}

// RAKP2AuthCode computes the HMAC-SHA1 the BMC must present in RAKP
// Message 2, over everything the console can independently verify: its
// own session ID, its own random number, the BMC's random number and
// GUID, the requested role and the username (spec 13.28 table).
func RAKP2AuthCode(password []byte, consoleSessionID uint32, consoleRandom, bmcRandom, bmcGUID [16]byte, role ipmi.PrivilegeLevel, username string) []byte {
	mac := hmac.New(sha1.New, password)
	var sid [4]byte
	binary.LittleEndian.PutUint32(sid[:], consoleSessionID)
	mac.Write(sid[:])
	mac.Write(consoleRandom[:])
	mac.Write(bmcRandom[:])
	mac.Write(bmcGUID[:])
	mac.Write([]byte{uint8(role)})
	mac.Write([]byte{uint8(len(username))})
	mac.Write([]byte(username))
	return mac.Sum(nil)
}

// RAKP3AuthCode computes the HMAC-SHA1 the console presents in RAKP
// Message 3, over the BMC's random number, the BMC-chosen session ID, the
// requested role and the username.
func RAKP3AuthCode(password []byte, bmcRandom [16]byte, bmcSessionID uint32, role ipmi.PrivilegeLevel, username string) []byte {
	mac := hmac.New(sha1.New, password)
	mac.Write(bmcRandom[:])
	var sid [4]byte
	binary.LittleEndian.PutUint32(sid[:], bmcSessionID)
	mac.Write(sid[:])
	mac.Write([]byte{uint8(role)})
	mac.Write([]byte{uint8(len(username))})
	mac.Write([]byte(username))
	return mac.Sum(nil)
}

// SessionIntegrityKey derives SIK from the two random numbers and the
// requested role/username, keyed on the user's password. Two-key logins
// (a separate, BMC-configured key rather than the password) are not
// implemented, as they are specific to PICMG hardware this library does
// not target.
func SessionIntegrityKey(password []byte, consoleRandom, bmcRandom [16]byte, role ipmi.PrivilegeLevel, username string) []byte {
	mac := hmac.New(sha1.New, password)
	mac.Write(consoleRandom[:])
	mac.Write(bmcRandom[:])
	mac.Write([]byte{uint8(role)})
	mac.Write([]byte{uint8(len(username))})
	mac.Write([]byte(username))
	return mac.Sum(nil)
}

// AdditionalKeyMaterial derives Kn = HMAC-SHA1(SIK, constant byte n
// repeated 20 times), the generic RMCP+ scheme for deriving as many
// independent keys as needed (K1 for integrity, K2 for confidentiality)
// from the single Session Integrity Key (spec 13.32).
func AdditionalKeyMaterial(sik []byte, n byte) []byte {
	var constant [20]byte
	for i := range constant {
		constant[i] = n
	}
	mac := hmac.New(sha1.New, sik)
	mac.Write(constant[:])
	return mac.Sum(nil)
}

// RAKP4IntegrityCheckValue computes the value the console expects to see
// in RAKP Message 4, over the console's session ID, the console's random
// number and the BMC's GUID, keyed on SIK and truncated to 96 bits.
func RAKP4IntegrityCheckValue(sik []byte, consoleSessionID uint32, consoleRandom [16]byte, bmcGUID [16]byte) []byte {
	mac := hmac.New(sha1.New, sik)
	var sid [4]byte
	binary.LittleEndian.PutUint32(sid[:], consoleSessionID)
	mac.Write(sid[:])
	mac.Write(consoleRandom[:])
	mac.Write(bmcGUID[:])
	full := mac.Sum(nil)
	return full[:12]
}
