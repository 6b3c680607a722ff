package ipmi

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// LANConfigParameter selects which LAN Configuration Parameter a Get/Set
// LAN Configuration Parameters command addresses (spec 4.2).
type LANConfigParameter uint8

const (
	LANConfigParamSetInProgress   LANConfigParameter = 0
	LANConfigParamAuthTypeSupport LANConfigParameter = 1
	LANConfigParamIPAddress       LANConfigParameter = 3
	LANConfigParamIPAddressSource LANConfigParameter = 4
	LANConfigParamMACAddress      LANConfigParameter = 5
	LANConfigParamSubnetMask      LANConfigParameter = 6
	LANConfigParamDefaultGateway  LANConfigParameter = 12
)

// GetLANConfigurationParametersRequest selects a channel, parameter, and
// set/block selector (the latter two used only by parameters with
// multiple sets, such as the cipher suite privilege table).
type GetLANConfigurationParametersRequest struct {
	layers.BaseLayer

	Channel      ChannelNumber
	GetParameterRevisionOnly bool
	Parameter    LANConfigParameter
	SetSelector  uint8
	BlockSelector uint8
}

func (g *GetLANConfigurationParametersRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(4)
	if err != nil {
		return err
	}
	bytes[0] = uint8(g.Channel)
	if g.GetParameterRevisionOnly {
		bytes[0] |= 0x80
	}
	bytes[1] = uint8(g.Parameter)
	bytes[2] = g.SetSelector
	bytes[3] = g.BlockSelector
	return nil
}

// GetLANConfigurationParametersResponse carries the parameter revision
// and the raw parameter-specific data; callers interpret ParameterData
// according to which LANConfigParameter they requested.
type GetLANConfigurationParametersResponse struct {
	layers.BaseLayer

	ParameterRevision uint8
	ParameterData     []byte
}

func (g *GetLANConfigurationParametersResponse) LayerType() gopacket.LayerType {
	return LayerTypeGetLANConfigurationParametersRsp
}

func (g *GetLANConfigurationParametersResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetLANConfigurationParametersResponse) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (g *GetLANConfigurationParametersResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 1 {
		df.SetTruncated()
		return NewParseError("GetLANConfigurationParametersResponse", fmt.Errorf("need at least 1 byte, got %d", len(data)))
	}
	g.ParameterRevision = data[0]
	g.ParameterData = append([]byte(nil), data[1:]...)
	g.BaseLayer = layers.BaseLayer{Contents: data, Payload: nil}
	return nil
}

func (g *GetLANConfigurationParametersResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(1 + len(g.ParameterData))
	if err != nil {
		return err
	}
	bytes[0] = g.ParameterRevision
	copy(bytes[1:], g.ParameterData)
	return nil
}

// ParseIPv4 interprets a 4-byte LAN configuration parameter payload (IP
// Address, Subnet Mask, Default Gateway) as a net.IP.
func ParseIPv4(data []byte) (net.IP, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("layerexts: need 4 bytes for an IPv4 address, got %d", len(data))
	}
	return net.IPv4(data[0], data[1], data[2], data[3]), nil
}

// ParseMAC interprets a 6-byte LAN configuration parameter payload (MAC
// Address) as a net.HardwareAddr.
func ParseMAC(data []byte) (net.HardwareAddr, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("layerexts: need 6 bytes for a MAC address, got %d", len(data))
	}
	return net.HardwareAddr(append([]byte(nil), data[:6]...)), nil
}
