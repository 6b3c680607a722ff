package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/iana"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Message is the envelope every IPMI request and response travels in,
// regardless of transport: two addressed, checksummed halves wrapping
// a network function/command pair and (for responses) a completion
// code. It is the layer beneath session framing in a v1.5 session, and
// beneath the "IPMI" RMCP+ payload type in a v2.0 session.
//
// Byte layout (request shown; a response inserts one completion-code
// byte after the command):
//
//	0:   responder slave address / software ID
//	1:   NetFn (6 bits, even for requests) | responder LUN (2 bits)
//	2:   checksum over bytes 0-1
//	3:   requester slave address / software ID
//	4:   sequence number (6 bits) | requester LUN (2 bits)
//	5:   command
//	6:   [response only] completion code
//	6/7: body code (Group NetFn) or 3-byte enterprise number (OEM NetFn)
//	...: command-specific data
//	last: checksum over everything from byte 3 onward
//
// A single struct covers both directions because only one field
// (CompletionCode) differs between them: ResponderAddress/ResponderLUN
// name the addressee of a request but the sender of a response, and
// RequesterAddress/RequesterLUN name the sender of a request but the
// addressee of a response. Either side may originate a message — the
// BMC sends requests too — so "Requester"/"Responder" describes roles
// in the exchange, not fixed ends of the wire.
type Message struct {
	layers.BaseLayer

	// Operation carries the network function and command identifying
	// what this message is.
	Operation

	// ResponderAddress is the slave address or software ID of whichever
	// side is expected to act on this message: the addressee of a
	// request, or the sender of a response. 0x20 whenever that side is
	// the BMC (slave address 0x10, software-ID bit clear).
	ResponderAddress Address

	// ResponderLUN is almost always 0 in practice (plain BMC commands).
	ResponderLUN LUN

	// HeaderChecksum covers ResponderAddress and the NetFn/LUN byte. A
	// mismatch here means the BMC will silently drop the packet, so
	// DecodeFromBytes treats it as fatal rather than something callers
	// could choose to ignore.
	HeaderChecksum uint8

	// RequesterAddress is the slave address or software ID of whichever
	// side originated this message: the sender of a request, or the
	// addressee of a response.
	RequesterAddress Address

	// RequesterLUN mirrors ResponderLUN for the originating side.
	RequesterLUN LUN

	// Sequence lets a requester match a response to the request that
	// produced it; it is echoed back unchanged. Six bits on the wire.
	Sequence uint8

	// CompletionCode is meaningful only for responses (always zero for
	// a request). It lives here, rather than in the next layer, because
	// a non-zero value changes how much of the remaining bytes can
	// safely be interpreted — see NextLayerType.
	CompletionCode

	// TrailerChecksum covers every byte from RequesterAddress to the end
	// of the command-specific data. Like HeaderChecksum, a mismatch
	// means the BMC drops the packet.
	TrailerChecksum uint8
}

func (*Message) LayerType() gopacket.LayerType {
	return LayerTypeMessage
}

func (m *Message) CanDecode() gopacket.LayerClass {
	return m.LayerType()
}

// NextLayerType defers to Operation's table to pick a response body
// decoder, unless CompletionCode already says there's nothing sensible
// to decode. A non-zero completion code isn't a malformed packet — the
// spec allows (and many BMCs exercise) truncating everything past the
// completion code and any addressing-extension bytes once a command
// fails, so whatever follows has no reliable structure. Rather than
// guess, this layer hands the remainder off as an opaque payload.
func (m *Message) NextLayerType() gopacket.LayerType {
	if m.CompletionCode != CompletionCodeNormal {
		return gopacket.LayerTypePayload
	}
	return m.Operation.NextLayerType()
}

func (m *Message) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	const minLength = 7 // responder addr/netfn/checksum + requester addr/seq/cmd + trailer checksum
	if len(data) < minLength {
		df.SetTruncated()
		return fmt.Errorf("ipmi: message shorter than %d bytes: got %d", minLength, len(data))
	}

	if err := m.decodeHeader(data); err != nil {
		return err
	}
	if err := m.verifyTrailerChecksum(data); err != nil {
		return err
	}

	if m.Function.IsRequest() {
		m.CompletionCode = CompletionCodeNormal
		return m.decodeBody(data, 6, df)
	}
	if len(data) < minLength+1 {
		df.SetTruncated()
		return fmt.Errorf("ipmi: response shorter than %d bytes: got %d", minLength+1, len(data))
	}
	m.CompletionCode = CompletionCode(data[6])
	return m.decodeBody(data, 7, df)
}

// decodeHeader reads the fixed-position fields and validates
// HeaderChecksum, which only ever covers the first two bytes.
func (m *Message) decodeHeader(data []byte) error {
	m.ResponderAddress = Address(data[0])
	m.Function = NetworkFunction(data[1] >> 2)
	m.ResponderLUN = LUN(data[1] & 0x3)
	m.HeaderChecksum = data[2]
	if want := twosComplementChecksum(data[:2]); m.HeaderChecksum != want {
		return fmt.Errorf("ipmi: message header checksum mismatch: got 0x%02x, want 0x%02x", m.HeaderChecksum, want)
	}

	m.RequesterAddress = Address(data[3])
	m.Sequence = data[4] >> 2
	m.RequesterLUN = LUN(data[4] & 0x3)
	m.Command = CommandNumber(data[5])
	return nil
}

func (m *Message) verifyTrailerChecksum(data []byte) error {
	m.TrailerChecksum = data[len(data)-1]
	if want := twosComplementChecksum(data[3 : len(data)-1]); m.TrailerChecksum != want {
		return fmt.Errorf("ipmi: message trailer checksum mismatch: got 0x%02x, want 0x%02x", m.TrailerChecksum, want)
	}
	return nil
}

// decodeBody handles the NetFn-dependent bytes between the fixed
// header (which ends at bodyStart) and the trailer checksum, then
// splits what remains into Contents and Payload.
func (m *Message) decodeBody(data []byte, bodyStart int, df gopacket.DecodeFeedback) error {
	extra, err := m.decodeAddressingExtension(data[bodyStart:len(data)-1], df)
	if err != nil {
		return err
	}
	m.BaseLayer.Contents = data[:bodyStart+extra]
	m.BaseLayer.Payload = data[bodyStart+extra : len(data)-1]
	return nil
}

// decodeAddressingExtension reads the bytes that Group and OEM network
// functions insert immediately after the command byte (or completion
// code): a single body code for Group, a 3-byte IANA enterprise number
// for OEM. It reports how many bytes of data it consumed so the caller
// can find where the real command data begins.
func (m *Message) decodeAddressingExtension(data []byte, df gopacket.DecodeFeedback) (int, error) {
	m.Body = 0
	m.Enterprise = 0
	switch m.Function {
	case NetworkFunctionGroupReq, NetworkFunctionGroupRsp:
		if len(data) < 1 {
			// Seen in practice when the BMC rejects the command outright
			// (insufficient privilege, or an unsupported command on some
			// vendors' firmware) and truncates before the body code.
			df.SetTruncated()
			return 0, fmt.Errorf("ipmi: message too short for group body code")
		}
		m.Body = BodyCode(data[0])
		return 1, nil
	case NetworkFunctionOEMReq, NetworkFunctionOEMRsp:
		if len(data) < 3 {
			df.SetTruncated()
			return 0, fmt.Errorf("ipmi: message too short for OEM enterprise number")
		}
		m.Enterprise = iana.Enterprise(uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16)
		return 3, nil
	default:
		return 0, nil
	}
}

func (m *Message) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	header, err := b.PrependBytes(m.headerLength())
	if err != nil {
		return err
	}

	header[0] = uint8(m.ResponderAddress)
	header[1] = uint8(m.Function)<<2 | uint8(m.ResponderLUN)
	if opts.ComputeChecksums {
		m.HeaderChecksum = twosComplementChecksum(header[0:2])
	}
	header[2] = m.HeaderChecksum

	header[3] = uint8(m.RequesterAddress)
	header[4] = m.Sequence<<2 | uint8(m.RequesterLUN)
	header[5] = uint8(m.Command)

	offset := 6
	if !m.Function.IsRequest() {
		header[offset] = uint8(m.CompletionCode)
		offset++
	}
	switch m.Function {
	case NetworkFunctionGroupReq, NetworkFunctionGroupRsp:
		header[offset] = uint8(m.Body)
	case NetworkFunctionOEMReq, NetworkFunctionOEMRsp:
		enterprise := uint32(m.Enterprise)
		header[offset] = uint8(enterprise)
		header[offset+1] = uint8(enterprise >> 8)
		header[offset+2] = uint8(enterprise >> 16)
	}

	if opts.ComputeChecksums {
		m.TrailerChecksum = twosComplementChecksum(b.Bytes()[3:])
	}
	trailer, err := b.AppendBytes(1)
	if err != nil {
		return err
	}
	trailer[0] = m.TrailerChecksum
	return nil
}

// headerLength returns how many bytes precede the command-specific
// payload: the 6 fixed bytes common to every message, the completion
// code for a response, plus whichever
// addressing extension the current NetFn requires.
func (m *Message) headerLength() int {
	length := 6
	if !m.Function.IsRequest() {
		length++
	}
	switch m.Function {
	case NetworkFunctionGroupReq, NetworkFunctionGroupRsp:
		length++
	case NetworkFunctionOEMReq, NetworkFunctionOEMRsp:
		length += 3
	}
	return length
}

// twosComplementChecksum computes the IPMI two's-complement checksum:
// the value that, added to the sum of data, yields zero modulo 256.
func twosComplementChecksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b // wraps on overflow, which is the point
	}
	return -sum
}
