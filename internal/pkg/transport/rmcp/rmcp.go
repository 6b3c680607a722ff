// Package rmcp implements the Remote Management Control Protocol framing
// that IPMI v1.5/v2.0 LAN sessions ride on top of, and the RMCP+ session
// establishment handshake (Open Session Request/Response, RAKP 1-4) that
// negotiates per-session key material for IPMI v2.0.
package rmcp

import (
	"encoding/binary"
	"fmt"
)

// Class identifies the payload carried after the RMCP header (ASF/IPMI/OEM).
type Class uint8

const (
	ClassASF  Class = 0x06
	ClassIPMI Class = 0x07
	ClassOEM  Class = 0x08
)

// Header is the 4-byte RMCP header prefixing every packet (ASF spec 3.2.2.1).
type Header struct {
	Version      uint8
	SequenceNumber uint8
	Class        Class
}

const (
	version1_0      = 0x06
	noRMCPAckSeq    = 0xff
)

// Marshal encodes the RMCP header and appends payload, returning the
// complete on-wire packet.
func (h Header) Marshal(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	out[0] = h.Version
	out[1] = 0x00 // reserved
	out[2] = h.SequenceNumber
	out[3] = uint8(h.Class) | 0x80 // message type bit always set for non-ack classes we send
	copy(out[4:], payload)
	return out
}

// Unmarshal splits data into an RMCP header and its trailing payload.
func Unmarshal(data []byte) (Header, []byte, error) {
	if len(data) < 4 {
		return Header{}, nil, fmt.Errorf("rmcp: packet too short: %d bytes", len(data))
	}
	h := Header{
		Version:        data[0],
		SequenceNumber: data[2],
		Class:          Class(data[3] &^ 0x80),
	}
	return h, data[4:], nil
}

func defaultHeader() Header {
	return Header{Version: version1_0, SequenceNumber: noRMCPAckSeq, Class: ClassIPMI}
}

// SessionHeader is the 12-byte header prefixing every RMCP+ (IPMI v2.0)
// session payload (spec 13.8):
//
//	[0]    Auth Type/Format (0x06 for RMCP+, with payload type byte following)
//	[1]    Payload Type (low 6 bits) | encrypted (bit 7) | authenticated (bit 6)
//	[2:6]  Session ID (little-endian, 0 for sessionless payloads)
//	[6:10] Session Sequence Number (little-endian, 0 for sessionless payloads)
//	[10:12] Payload Length (little-endian, not including this header or trailer)
type SessionHeader struct {
	PayloadType   PayloadType
	Encrypted     bool
	Authenticated bool
	SessionID     uint32
	Sequence      uint32
	PayloadLength uint16
}

// AuthTypeRMCPPlus is the fixed Auth Type/Format byte identifying an RMCP+
// (IPMI v2.0) session packet, as opposed to one of the IPMI v1.5 auth
// types.
const AuthTypeRMCPPlus = 0x06

// Marshal encodes the session header as its 12-byte wire form.
func (s SessionHeader) Marshal() []byte {
	out := make([]byte, 12)
	out[0] = AuthTypeRMCPPlus
	pt := uint8(s.PayloadType)
	if s.Encrypted {
		pt |= 0x80
	}
	if s.Authenticated {
		pt |= 0x40
	}
	out[1] = pt
	binary.LittleEndian.PutUint32(out[2:6], s.SessionID)
	binary.LittleEndian.PutUint32(out[6:10], s.Sequence)
	binary.LittleEndian.PutUint16(out[10:12], s.PayloadLength)
	return out
}

// UnmarshalSessionHeader decodes the 12-byte RMCP+ session header from the
// front of data.
func UnmarshalSessionHeader(data []byte) (SessionHeader, error) {
	if len(data) < 12 {
		return SessionHeader{}, fmt.Errorf("rmcp: session header too short: %d bytes", len(data))
	}
	if data[0] != AuthTypeRMCPPlus {
		return SessionHeader{}, fmt.Errorf("rmcp: unexpected auth type 0x%02x, want RMCP+ (0x06)", data[0])
	}
	return SessionHeader{
		PayloadType:   PayloadType(data[1] & 0x3f),
		Encrypted:     data[1]&0x80 != 0,
		Authenticated: data[1]&0x40 != 0,
		SessionID:     binary.LittleEndian.Uint32(data[2:6]),
		Sequence:      binary.LittleEndian.Uint32(data[6:10]),
		PayloadLength: binary.LittleEndian.Uint16(data[10:12]),
	}, nil
}

// SessionHeaderLength is the fixed size of the RMCP+ session header.
const SessionHeaderLength = 12

// PayloadType identifies the payload carried in an RMCP+ session packet
// (spec 13.27.3).
type PayloadType uint8

const (
	PayloadTypeIPMI             PayloadType = 0x00
	PayloadTypeSOL              PayloadType = 0x01
	PayloadTypeOpenSessionReq   PayloadType = 0x10
	PayloadTypeOpenSessionRsp   PayloadType = 0x11
	PayloadTypeRAKP1            PayloadType = 0x12
	PayloadTypeRAKP2            PayloadType = 0x13
	PayloadTypeRAKP3            PayloadType = 0x14
	PayloadTypeRAKP4            PayloadType = 0x15
)
