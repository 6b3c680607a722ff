package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// GetChannelAuthenticationCapabilitiesRequest selects the channel and the
// minimum privilege level the remote console intends to request.
type GetChannelAuthenticationCapabilitiesRequest struct {
	layers.BaseLayer

	ExtendedData     bool // request bit 7 set: ask for IPMI v2.0 extended data
	Channel           Channel
	MaxPrivilegeLevel PrivilegeLevel
}

func (g *GetChannelAuthenticationCapabilitiesRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(2)
	if err != nil {
		return err
	}
	var chByte byte
	layerexts.SetBits(&chByte, 0, 4, uint8(g.Channel))
	if g.ExtendedData {
		layerexts.SetBits(&chByte, 7, 1, 1)
	}
	bytes[0] = chByte
	bytes[1] = uint8(g.MaxPrivilegeLevel)
	return nil
}

// GetChannelAuthenticationCapabilitiesResponse describes which
// authentication types and session flavours (1.5 vs 2.0) a channel
// supports, used by the remote console to pick a session establishment
// path before any session exists.
type GetChannelAuthenticationCapabilitiesResponse struct {
	layers.BaseLayer

	Channel ChannelNumber

	AuthTypeNone     bool
	AuthTypeMD2      bool
	AuthTypeMD5      bool
	AuthTypeStraightPassword bool
	AuthTypeOEM      bool

	IPMIv20ExtendedCapabilitiesAvailable bool
	PerMessageAuthenticationDisabled     bool
	UserLevelAuthenticationDisabled      bool
	AnonymousLoginEnabled                bool
	NonNullUsernamesEnabled              bool
	NullUsernamesEnabled                 bool

	OEMID          uint32
	OEMAuxiliary   uint8
}

func (g *GetChannelAuthenticationCapabilitiesResponse) LayerType() gopacket.LayerType {
	return LayerTypeGetChannelAuthenticationCapabilitiesRsp
}

func (g *GetChannelAuthenticationCapabilitiesResponse) CanDecode() gopacket.LayerClass {
	return g.LayerType()
}

func (g *GetChannelAuthenticationCapabilitiesResponse) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (g *GetChannelAuthenticationCapabilitiesResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 8 {
		df.SetTruncated()
		return NewParseError("GetChannelAuthenticationCapabilitiesResponse", fmt.Errorf("need 8 bytes, got %d", len(data)))
	}
	g.Channel = ChannelNumber(layerexts.GetBits(data[0], 0, 4))

	types := data[1]
	g.AuthTypeNone = layerexts.GetBits(types, 0, 1) == 1
	g.AuthTypeMD2 = layerexts.GetBits(types, 1, 1) == 1
	g.AuthTypeMD5 = layerexts.GetBits(types, 2, 1) == 1
	g.AuthTypeStraightPassword = layerexts.GetBits(types, 4, 1) == 1
	g.AuthTypeOEM = layerexts.GetBits(types, 5, 1) == 1
	g.IPMIv20ExtendedCapabilitiesAvailable = layerexts.GetBits(types, 7, 1) == 1

	status := data[2]
	g.AnonymousLoginEnabled = layerexts.GetBits(status, 0, 1) == 1
	g.NullUsernamesEnabled = layerexts.GetBits(status, 1, 1) == 1
	g.NonNullUsernamesEnabled = layerexts.GetBits(status, 2, 1) == 1
	g.UserLevelAuthenticationDisabled = layerexts.GetBits(status, 4, 1) == 1
	g.PerMessageAuthenticationDisabled = layerexts.GetBits(status, 5, 1) == 1

	oemID, err := layerexts.Uint24LE(data, 4)
	if err != nil {
		return NewParseError("GetChannelAuthenticationCapabilitiesResponse.OEMID", err)
	}
	g.OEMID = oemID
	g.OEMAuxiliary = data[7]

	g.BaseLayer = layers.BaseLayer{Contents: data[:8], Payload: data[8:]}
	return nil
}

func (g *GetChannelAuthenticationCapabilitiesResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(8)
	if err != nil {
		return err
	}
	layerexts.SetBits(&bytes[0], 0, 4, uint8(g.Channel))

	var types byte
	if g.AuthTypeNone {
		layerexts.SetBits(&types, 0, 1, 1)
	}
	if g.AuthTypeMD2 {
		layerexts.SetBits(&types, 1, 1, 1)
	}
	if g.AuthTypeMD5 {
		layerexts.SetBits(&types, 2, 1, 1)
	}
	if g.AuthTypeStraightPassword {
		layerexts.SetBits(&types, 4, 1, 1)
	}
	if g.AuthTypeOEM {
		layerexts.SetBits(&types, 5, 1, 1)
	}
	if g.IPMIv20ExtendedCapabilitiesAvailable {
		layerexts.SetBits(&types, 7, 1, 1)
	}
	bytes[1] = types

	var status byte
	if g.AnonymousLoginEnabled {
		layerexts.SetBits(&status, 0, 1, 1)
	}
	if g.NullUsernamesEnabled {
		layerexts.SetBits(&status, 1, 1, 1)
	}
	if g.NonNullUsernamesEnabled {
		layerexts.SetBits(&status, 2, 1, 1)
	}
	if g.UserLevelAuthenticationDisabled {
		layerexts.SetBits(&status, 4, 1, 1)
	}
	if g.PerMessageAuthenticationDisabled {
		layerexts.SetBits(&status, 5, 1, 1)
	}
	bytes[2] = status

	layerexts.PutUint24LE(bytes, 4, g.OEMID)
	bytes[7] = g.OEMAuxiliary
	return nil
}
