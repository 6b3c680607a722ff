package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// GetDeviceIDResponse is the body of a Get Device ID response (spec 4.2),
// identifying the BMC's firmware and the IPMI version it implements.
type GetDeviceIDResponse struct {
	layers.BaseLayer

	DeviceID                uint8
	DeviceRevision           uint8 // low nibble; high bit is "provides SDRs" flag
	ProvidesDeviceSDRs       bool
	FirmwareMajorRevision    uint8 // low 7 bits
	DeviceAvailable          bool  // inverse of bit 7 of major revision byte
	FirmwareMinorRevision    uint8 // BCD
	IPMIVersion              uint8 // BCD, e.g. 0x02 == "2.0"
	AdditionalDeviceSupport  uint8 // bitmask: sensor, SDR repo, SEL, FRU, etc.
	ManufacturerID           uint32 // 24-bit
	ProductID                uint16
}

func (g *GetDeviceIDResponse) LayerType() gopacket.LayerType { return LayerTypeGetDeviceIDRsp }

func (g *GetDeviceIDResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetDeviceIDResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetDeviceIDResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 11 {
		df.SetTruncated()
		return NewParseError("GetDeviceIDResponse", fmt.Errorf("need 11 bytes, got %d", len(data)))
	}
	g.DeviceID = data[0]
	g.DeviceRevision = layerexts.GetBits(data[1], 0, 4)
	g.ProvidesDeviceSDRs = layerexts.GetBits(data[1], 7, 1) == 1
	g.FirmwareMajorRevision = layerexts.GetBits(data[2], 0, 7)
	g.DeviceAvailable = layerexts.GetBits(data[2], 7, 1) == 0
	g.FirmwareMinorRevision = data[3]
	g.IPMIVersion = data[4]
	g.AdditionalDeviceSupport = data[5]
	manufacturerID, err := layerexts.Uint24LE(data, 6)
	if err != nil {
		return NewParseError("GetDeviceIDResponse.ManufacturerID", err)
	}
	g.ManufacturerID = manufacturerID
	productID, err := layerexts.Uint16LE(data, 9)
	if err != nil {
		return NewParseError("GetDeviceIDResponse.ProductID", err)
	}
	g.ProductID = productID
	g.BaseLayer = layers.BaseLayer{Contents: data[:11], Payload: data[11:]}
	return nil
}

func (g *GetDeviceIDResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(11)
	if err != nil {
		return err
	}
	bytes[0] = g.DeviceID
	var revByte byte
	layerexts.SetBits(&revByte, 0, 4, g.DeviceRevision)
	if g.ProvidesDeviceSDRs {
		layerexts.SetBits(&revByte, 7, 1, 1)
	}
	bytes[1] = revByte
	var majByte byte
	layerexts.SetBits(&majByte, 0, 7, g.FirmwareMajorRevision)
	if !g.DeviceAvailable {
		layerexts.SetBits(&majByte, 7, 1, 1)
	}
	bytes[2] = majByte
	bytes[3] = g.FirmwareMinorRevision
	bytes[4] = g.IPMIVersion
	bytes[5] = g.AdditionalDeviceSupport
	layerexts.PutUint24LE(bytes, 6, g.ManufacturerID)
	layerexts.PutUint16LE(bytes, 9, g.ProductID)
	return nil
}
