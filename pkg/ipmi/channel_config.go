package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ChannelAccessMode selects how a channel's access mode byte is
// interpreted for Get/Set Channel Access (spec 4.2).
type ChannelAccessMode uint8

const (
	ChannelAccessModeDisabled     ChannelAccessMode = 0x00
	ChannelAccessModePreboot      ChannelAccessMode = 0x01
	ChannelAccessModeAlwaysAvailable ChannelAccessMode = 0x02
	ChannelAccessModeShared       ChannelAccessMode = 0x03
)

// GetChannelAccessRequest selects a channel and whether to read the
// non-volatile or the currently-active access settings.
type GetChannelAccessRequest struct {
	layers.BaseLayer

	Channel    ChannelNumber
	ReadVolatile bool
}

func (g *GetChannelAccessRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(2)
	if err != nil {
		return err
	}
	layerexts.SetBits(&bytes[0], 0, 4, uint8(g.Channel))
	if g.ReadVolatile {
		layerexts.SetBits(&bytes[1], 6, 2, 1)
	} else {
		layerexts.SetBits(&bytes[1], 6, 2, 0)
	}
	return nil
}

// GetChannelAccessResponse describes the access mode and privilege
// limits in effect for a channel.
type GetChannelAccessResponse struct {
	layers.BaseLayer

	AccessMode            ChannelAccessMode
	AlertingDisabled       bool
	PerMessageAuthDisabled bool
	UserAuthDisabled       bool
	ChannelPrivilegeLimit  PrivilegeLevel
}

func (g *GetChannelAccessResponse) LayerType() gopacket.LayerType { return LayerTypeGetChannelAccessRsp }

func (g *GetChannelAccessResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetChannelAccessResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetChannelAccessResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 2 {
		df.SetTruncated()
		return NewParseError("GetChannelAccessResponse", fmt.Errorf("need 2 bytes, got %d", len(data)))
	}
	g.AccessMode = ChannelAccessMode(layerexts.GetBits(data[0], 0, 3))
	g.UserAuthDisabled = layerexts.GetBits(data[0], 4, 1) == 1
	g.PerMessageAuthDisabled = layerexts.GetBits(data[0], 5, 1) == 1
	g.AlertingDisabled = layerexts.GetBits(data[0], 6, 1) == 1
	g.ChannelPrivilegeLimit = PrivilegeLevel(layerexts.GetBits(data[1], 0, 4))
	g.BaseLayer = layers.BaseLayer{Contents: data[:2], Payload: data[2:]}
	return nil
}

func (g *GetChannelAccessResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(2)
	if err != nil {
		return err
	}
	layerexts.SetBits(&bytes[0], 0, 3, uint8(g.AccessMode))
	if g.UserAuthDisabled {
		layerexts.SetBits(&bytes[0], 4, 1, 1)
	}
	if g.PerMessageAuthDisabled {
		layerexts.SetBits(&bytes[0], 5, 1, 1)
	}
	if g.AlertingDisabled {
		layerexts.SetBits(&bytes[0], 6, 1, 1)
	}
	layerexts.SetBits(&bytes[1], 0, 4, uint8(g.ChannelPrivilegeLimit))
	return nil
}

// ChannelMedium identifies the physical/logical transport of a channel
// (LAN, system interface, serial, etc).
type ChannelMedium uint8

const (
	ChannelMediumIPMB           ChannelMedium = 0x01
	ChannelMediumSerial         ChannelMedium = 0x04
	ChannelMediumLAN            ChannelMedium = 0x06
	ChannelMediumSystemInterface ChannelMedium = 0x0c
)

// GetChannelInfoResponse describes a channel's medium, protocol, and
// session support, used to confirm a channel actually carries LAN/RMCP+
// sessions before attempting to establish one.
type GetChannelInfoResponse struct {
	layers.BaseLayer

	Channel              ChannelNumber
	Medium               ChannelMedium
	Protocol             uint8
	ActiveSessionCount    uint8
	SessionSupport        uint8 // 2-bit: 0 session-less, 1 single, 2 multi, 3 session-based
	VendorID              uint32
}

func (g *GetChannelInfoResponse) LayerType() gopacket.LayerType { return LayerTypeGetChannelInfoRsp }

func (g *GetChannelInfoResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetChannelInfoResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetChannelInfoResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 9 {
		df.SetTruncated()
		return NewParseError("GetChannelInfoResponse", fmt.Errorf("need 9 bytes, got %d", len(data)))
	}
	g.Channel = ChannelNumber(layerexts.GetBits(data[0], 0, 4))
	g.Medium = ChannelMedium(layerexts.GetBits(data[1], 0, 7))
	g.Protocol = layerexts.GetBits(data[2], 0, 5)
	g.SessionSupport = layerexts.GetBits(data[3], 6, 2)
	g.ActiveSessionCount = layerexts.GetBits(data[3], 0, 6)
	vendorID, err := layerexts.Uint24LE(data, 4)
	if err != nil {
		return NewParseError("GetChannelInfoResponse.VendorID", err)
	}
	g.VendorID = vendorID
	g.BaseLayer = layers.BaseLayer{Contents: data[:9], Payload: data[9:]}
	return nil
}

func (g *GetChannelInfoResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(9)
	if err != nil {
		return err
	}
	layerexts.SetBits(&bytes[0], 0, 4, uint8(g.Channel))
	layerexts.SetBits(&bytes[1], 0, 7, uint8(g.Medium))
	layerexts.SetBits(&bytes[2], 0, 5, g.Protocol)
	layerexts.SetBits(&bytes[3], 6, 2, g.SessionSupport)
	layerexts.SetBits(&bytes[3], 0, 6, g.ActiveSessionCount)
	layerexts.PutUint24LE(bytes, 4, g.VendorID)
	return nil
}
