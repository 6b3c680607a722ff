package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ChassisControl is the single data byte of a Chassis Control request,
// selecting power state or reset action (spec 4.2).
type ChassisControl uint8

const (
	ChassisControlPowerDown     ChassisControl = 0x00
	ChassisControlPowerUp       ChassisControl = 0x01
	ChassisControlPowerCycle    ChassisControl = 0x02
	ChassisControlHardReset     ChassisControl = 0x03
	ChassisControlDiagnosticInt ChassisControl = 0x04
	ChassisControlSoftShutdown  ChassisControl = 0x05
)

func (c ChassisControl) String() string {
	switch c {
	case ChassisControlPowerDown:
		return "power down"
	case ChassisControlPowerUp:
		return "power up"
	case ChassisControlPowerCycle:
		return "power cycle"
	case ChassisControlHardReset:
		return "hard reset"
	case ChassisControlDiagnosticInt:
		return "pulse diagnostic interrupt"
	case ChassisControlSoftShutdown:
		return "initiate soft shutdown"
	default:
		return fmt.Sprintf("ChassisControl(0x%02x)", uint8(c))
	}
}

// ChassisControlRequest is the single-byte body of a Chassis Control
// request.
type ChassisControlRequest struct {
	layers.BaseLayer

	Control ChassisControl
}

func (c *ChassisControlRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(1)
	if err != nil {
		return err
	}
	bytes[0] = uint8(c.Control)
	return nil
}

// GetChassisStatusResponse is the body of a Get Chassis Status response,
// reporting current power state and the last power-on cause.
type GetChassisStatusResponse struct {
	layers.BaseLayer

	PowerIsOn             bool
	PowerOverload         bool
	PowerInterlock        bool
	PowerFault            bool
	PowerControlFault     bool
	PowerRestorePolicy    uint8 // 2-bit
	LastPowerOnByIPMI     bool
	LastPowerDownByFault  bool
	LastPowerDownByInterlock bool
	LastPowerDownByOverload  bool
	LastPowerDownByAC        bool
	ChassisIntrusionActive   bool
	FrontPanelLockoutActive  bool
	DriveFault               bool
	CoolingFanFault          bool
}

func (g *GetChassisStatusResponse) LayerType() gopacket.LayerType {
	return LayerTypeGetChassisStatusRsp
}

func (g *GetChassisStatusResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetChassisStatusResponse) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (g *GetChassisStatusResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 3 {
		df.SetTruncated()
		return NewParseError("GetChassisStatusResponse", fmt.Errorf("need 3 bytes, got %d", len(data)))
	}
	cur := data[0]
	g.PowerIsOn = layerexts.GetBits(cur, 0, 1) == 1
	g.PowerOverload = layerexts.GetBits(cur, 1, 1) == 1
	g.PowerInterlock = layerexts.GetBits(cur, 2, 1) == 1
	g.PowerFault = layerexts.GetBits(cur, 3, 1) == 1
	g.PowerControlFault = layerexts.GetBits(cur, 4, 1) == 1
	g.PowerRestorePolicy = layerexts.GetBits(cur, 5, 2)

	last := data[1]
	g.LastPowerOnByIPMI = layerexts.GetBits(last, 1, 1) == 1
	g.LastPowerDownByFault = layerexts.GetBits(last, 2, 1) == 1
	g.LastPowerDownByInterlock = layerexts.GetBits(last, 3, 1) == 1
	g.LastPowerDownByOverload = layerexts.GetBits(last, 4, 1) == 1
	g.LastPowerDownByAC = layerexts.GetBits(last, 5, 1) == 1

	misc := data[2]
	g.ChassisIntrusionActive = layerexts.GetBits(misc, 0, 1) == 1
	g.FrontPanelLockoutActive = layerexts.GetBits(misc, 1, 1) == 1
	g.DriveFault = layerexts.GetBits(misc, 2, 1) == 1
	g.CoolingFanFault = layerexts.GetBits(misc, 3, 1) == 1

	g.BaseLayer = layers.BaseLayer{Contents: data[:3], Payload: data[3:]}
	return nil
}

func (g *GetChassisStatusResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(3)
	if err != nil {
		return err
	}
	var cur byte
	if g.PowerIsOn {
		layerexts.SetBits(&cur, 0, 1, 1)
	}
	if g.PowerOverload {
		layerexts.SetBits(&cur, 1, 1, 1)
	}
	if g.PowerInterlock {
		layerexts.SetBits(&cur, 2, 1, 1)
	}
	if g.PowerFault {
		layerexts.SetBits(&cur, 3, 1, 1)
	}
	if g.PowerControlFault {
		layerexts.SetBits(&cur, 4, 1, 1)
	}
	layerexts.SetBits(&cur, 5, 2, g.PowerRestorePolicy)
	bytes[0] = cur

	var last byte
	if g.LastPowerOnByIPMI {
		layerexts.SetBits(&last, 1, 1, 1)
	}
	if g.LastPowerDownByFault {
		layerexts.SetBits(&last, 2, 1, 1)
	}
	if g.LastPowerDownByInterlock {
		layerexts.SetBits(&last, 3, 1, 1)
	}
	if g.LastPowerDownByOverload {
		layerexts.SetBits(&last, 4, 1, 1)
	}
	if g.LastPowerDownByAC {
		layerexts.SetBits(&last, 5, 1, 1)
	}
	bytes[1] = last

	var misc byte
	if g.ChassisIntrusionActive {
		layerexts.SetBits(&misc, 0, 1, 1)
	}
	if g.FrontPanelLockoutActive {
		layerexts.SetBits(&misc, 1, 1, 1)
	}
	if g.DriveFault {
		layerexts.SetBits(&misc, 2, 1, 1)
	}
	if g.CoolingFanFault {
		layerexts.SetBits(&misc, 3, 1, 1)
	}
	bytes[2] = misc
	return nil
}
