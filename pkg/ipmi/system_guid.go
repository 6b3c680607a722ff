package ipmi

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// GetSystemGUIDResponse carries the 16-byte system GUID, sent as a byte
// array rather than a formatted string (spec 4.2).
type GetSystemGUIDResponse struct {
	layers.BaseLayer

	GUID [16]byte
}

func (g *GetSystemGUIDResponse) LayerType() gopacket.LayerType { return LayerTypeGetSystemGUIDRsp }

func (g *GetSystemGUIDResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetSystemGUIDResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetSystemGUIDResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 16 {
		df.SetTruncated()
		return NewParseError("GetSystemGUIDResponse", fmt.Errorf("need 16 bytes, got %d", len(data)))
	}
	copy(g.GUID[:], data[:16])
	g.BaseLayer = layers.BaseLayer{Contents: data[:16], Payload: data[16:]}
	return nil
}

func (g *GetSystemGUIDResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(16)
	if err != nil {
		return err
	}
	copy(bytes, g.GUID[:])
	return nil
}

// String formats the GUID in the canonical dashed hex form.
func (g *GetSystemGUIDResponse) String() string {
	b := g.GUID
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
