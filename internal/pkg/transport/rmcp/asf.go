package rmcp

import "fmt"

// ASF message types relevant to BMC discovery (ASF spec 3.2.4).
const (
	asfMessageTypePresencePing  = 0x80
	asfMessageTypePresencePong  = 0x40
	asfIANAEnterpriseNumber     = 4542 // ASF's own IANA number, not a vendor's
)

// PresencePing builds the ASF Presence Ping payload (ASF spec 3.2.4.1),
// sent to UDP/623 with an RMCP header of class ASF to discover whether a
// BMC is listening at an address, and whether it offers IPMI.
func PresencePing(messageTag uint8) []byte {
	out := make([]byte, 8)
	out[0] = asfIANAEnterpriseNumber >> 24 & 0xff
	out[1] = asfIANAEnterpriseNumber >> 16 & 0xff
	out[2] = asfIANAEnterpriseNumber >> 8 & 0xff
	out[3] = asfIANAEnterpriseNumber & 0xff
	out[4] = asfMessageTypePresencePing
	out[5] = messageTag
	out[6] = 0x00 // reserved
	out[7] = 0x00 // data length, no payload
	return out
}

// PresencePong is the decoded ASF Presence Pong response (ASF spec
// 3.2.4.2), advertising which IPMI versions and entities the BMC supports.
type PresencePong struct {
	MessageTag        uint8
	OEMEnterpriseNumber uint32
	SupportsIPMI      bool
	SupportsASFRMCP   bool
}

// ParsePresencePong decodes an ASF Presence Pong payload.
func ParsePresencePong(data []byte) (PresencePong, error) {
	if len(data) < 16 {
		return PresencePong{}, fmt.Errorf("rmcp: ASF presence pong too short: %d bytes", len(data))
	}
	if data[4] != asfMessageTypePresencePong {
		return PresencePong{}, fmt.Errorf("rmcp: not an ASF presence pong (message type 0x%02x)", data[4])
	}
	p := PresencePong{
		MessageTag:          data[5],
		OEMEnterpriseNumber: uint32(data[8])<<24 | uint32(data[9])<<16 | uint32(data[10])<<8 | uint32(data[11]),
	}
	supportedEntities := data[12]
	p.SupportsIPMI = supportedEntities&0x80 != 0
	p.SupportsASFRMCP = supportedEntities&0x01 != 0
	return p, nil
}
