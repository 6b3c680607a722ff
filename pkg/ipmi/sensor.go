package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// SensorKey identifies a sensor uniquely within a BMC: the owning
// device's address/LUN/channel plus its sensor number, matching the
// addressing fields carried in Full/Compact/Event-Only Sensor Records
// (spec 4.4).
type SensorKey struct {
	OwnerID      Address
	OwnerLUN     LUN
	OwnerChannel ChannelNumber
	SensorNumber uint8
}

func (k SensorKey) String() string {
	return fmt.Sprintf("%v/%v/%d", k.OwnerID, k.OwnerChannel, k.SensorNumber)
}

// GetSensorReadingRequest selects a sensor number to read; the LUN and
// owning device are carried in the enclosing Message's addressing
// fields (or Send Message bridging wrapper) rather than in this body.
type GetSensorReadingRequest struct {
	layers.BaseLayer

	SensorNumber uint8
}

func (g *GetSensorReadingRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(1)
	if err != nil {
		return err
	}
	bytes[0] = g.SensorNumber
	return nil
}

// GetSensorReadingResponse carries the raw reading byte plus the
// discrete/threshold event-status bits needed to interpret it; Convert
// on an associated SensorConversion turns Reading into an
// engineering-unit value for analog sensors.
type GetSensorReadingResponse struct {
	layers.BaseLayer

	Reading uint8

	ReadingUnavailable bool
	ScanningDisabled   bool
	EventMessagesDisabled bool

	// ThresholdStates and DiscreteStates overlap the same two bytes; which
	// is meaningful depends on the sensor's EventReadingType (spec 4.4).
	ThresholdStates ThresholdStateMask
	DiscreteStates  uint16
}

// ThresholdStateMask reports which of a threshold sensor's six
// comparators (lower non-critical/critical/non-recoverable, upper
// non-critical/critical/non-recoverable) currently read as asserted.
type ThresholdStateMask uint8

const (
	ThresholdLowerNonCritical    ThresholdStateMask = 1 << 0
	ThresholdLowerCritical       ThresholdStateMask = 1 << 1
	ThresholdLowerNonRecoverable ThresholdStateMask = 1 << 2
	ThresholdUpperNonCritical    ThresholdStateMask = 1 << 3
	ThresholdUpperCritical       ThresholdStateMask = 1 << 4
	ThresholdUpperNonRecoverable ThresholdStateMask = 1 << 5
)

// IsDiscreteEventReadingType reports whether an EventReadingType codes for a
// sensor-specific or generic discrete event, as opposed to the 0x01
// "threshold" reading type (spec 4.4).
func IsDiscreteEventReadingType(eventReadingType uint8) bool {
	return eventReadingType != 0x01
}

func (g *GetSensorReadingResponse) LayerType() gopacket.LayerType { return LayerTypeGetSensorReadingRsp }

func (g *GetSensorReadingResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetSensorReadingResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetSensorReadingResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 2 {
		df.SetTruncated()
		return NewParseError("GetSensorReadingResponse", fmt.Errorf("need at least 2 bytes, got %d", len(data)))
	}
	g.Reading = data[0]
	g.ReadingUnavailable = layerexts.GetBits(data[1], 5, 1) == 1
	g.ScanningDisabled = layerexts.GetBits(data[1], 6, 1) == 0
	g.EventMessagesDisabled = layerexts.GetBits(data[1], 7, 1) == 0

	consumed := 2
	if len(data) >= 3 {
		g.ThresholdStates = ThresholdStateMask(data[2])
		g.DiscreteStates = uint16(data[2])
		consumed = 3
	}
	if len(data) >= 4 {
		g.DiscreteStates |= uint16(data[3]) << 8
		consumed = 4
	}

	g.BaseLayer = layers.BaseLayer{Contents: data[:consumed], Payload: data[consumed:]}
	return nil
}

func (g *GetSensorReadingResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(4)
	if err != nil {
		return err
	}
	bytes[0] = g.Reading
	var status byte
	if g.ReadingUnavailable {
		layerexts.SetBits(&status, 5, 1, 1)
	}
	if !g.ScanningDisabled {
		layerexts.SetBits(&status, 6, 1, 1)
	}
	if !g.EventMessagesDisabled {
		layerexts.SetBits(&status, 7, 1, 1)
	}
	bytes[1] = status
	bytes[2] = uint8(g.DiscreteStates)
	bytes[3] = uint8(g.DiscreteStates >> 8)
	return nil
}
