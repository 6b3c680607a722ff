package ipmi

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// GetChannelCipherSuitesRequest asks for the cipher suite records
// supported by a channel's RMCP+ payload type, one chunk at a time via
// ListIndex (spec 4.2, 4.6).
type GetChannelCipherSuitesRequest struct {
	layers.BaseLayer

	Channel     ChannelNumber
	PayloadType uint8
	ListIndex   uint8 // bits 0-5; bit 7 selects "list supported algorithms"
}

func (g *GetChannelCipherSuitesRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(3)
	if err != nil {
		return err
	}
	bytes[0] = uint8(g.Channel)
	bytes[1] = g.PayloadType
	bytes[2] = g.ListIndex
	return nil
}

// GetChannelCipherSuitesResponse carries a raw chunk of cipher suite
// records; concatenating successive ListIndex responses yields the full
// self-terminated list described by the spec. Parsing the 0xc0/0x00/0x01
// triplets into CipherSuites is the caller's job once all chunks are
// collected, since a single response can end mid-record.
type GetChannelCipherSuitesResponse struct {
	layers.BaseLayer

	Data []byte
}

func (g *GetChannelCipherSuitesResponse) LayerType() gopacket.LayerType {
	return LayerTypeGetChannelCipherSuitesRsp
}

func (g *GetChannelCipherSuitesResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetChannelCipherSuitesResponse) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (g *GetChannelCipherSuitesResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	g.Data = append([]byte(nil), data...)
	g.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (g *GetChannelCipherSuitesResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(len(g.Data))
	if err != nil {
		return err
	}
	copy(bytes, g.Data)
	return nil
}

// CipherSuite names one of the standard (Authentication, Integrity,
// Confidentiality) algorithm triples advertised by Get Channel Cipher
// Suites and selected in RMCP+ Open Session Request.
type CipherSuite struct {
	ID                    uint8
	AuthenticationAlgorithm uint8
	IntegrityAlgorithm      uint8
	ConfidentialityAlgorithm uint8
}

// ParseCipherSuiteRecords decodes the concatenated chunks returned by
// repeated Get Channel Cipher Suites calls into individual suite
// records. Each record is a 0xc0 start-of-record byte, the cipher suite
// ID, then three algorithm-selector bytes whose low 6 bits identify the
// algorithm within its class.
func ParseCipherSuiteRecords(data []byte) ([]CipherSuite, error) {
	var suites []CipherSuite
	for i := 0; i < len(data); {
		if data[i] != 0xc0 {
			return nil, NewParseError("ParseCipherSuiteRecords", errCipherSuiteRecordMarker)
		}
		if i+5 > len(data) {
			return nil, NewParseError("ParseCipherSuiteRecords", errCipherSuiteRecordTruncated)
		}
		suites = append(suites, CipherSuite{
			ID:                       data[i+1],
			AuthenticationAlgorithm:  data[i+2] & 0x3f,
			IntegrityAlgorithm:       data[i+3] & 0x3f,
			ConfidentialityAlgorithm: data[i+4] & 0x3f,
		})
		i += 5
	}
	return suites, nil
}

var (
	errCipherSuiteRecordMarker    = fmt.Errorf("expected 0xc0 start-of-record marker")
	errCipherSuiteRecordTruncated = fmt.Errorf("truncated cipher suite record")
)
