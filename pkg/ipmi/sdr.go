package ipmi

import (
	"fmt"
	"time"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// SDRRecordType is the record-type byte in an SDR's common header,
// dispatching the record body that follows to one of the record layouts
// (spec 4.3).
type SDRRecordType uint8

const (
	SDRRecordTypeFullSensor                     SDRRecordType = 0x01
	SDRRecordTypeCompactSensor                   SDRRecordType = 0x02
	SDRRecordTypeEventOnly                       SDRRecordType = 0x03
	SDRRecordTypeEntityAssociation                SDRRecordType = 0x08
	SDRRecordTypeFRUDeviceLocator                 SDRRecordType = 0x11
	SDRRecordTypeManagementControllerDeviceLocator SDRRecordType = 0x12
)

func (t SDRRecordType) String() string {
	switch t {
	case SDRRecordTypeFullSensor:
		return "full sensor"
	case SDRRecordTypeCompactSensor:
		return "compact sensor"
	case SDRRecordTypeEventOnly:
		return "event-only"
	case SDRRecordTypeEntityAssociation:
		return "entity association"
	case SDRRecordTypeFRUDeviceLocator:
		return "FRU device locator"
	case SDRRecordTypeManagementControllerDeviceLocator:
		return "management controller device locator"
	default:
		return fmt.Sprintf("SDRRecordType(0x%02x)", uint8(t))
	}
}

// SDRHeader is the 5-byte common header prefixing every SDR.
type SDRHeader struct {
	RecordID     uint16
	SDRVersion   uint8
	RecordType   SDRRecordType
	RecordLength uint8
}

func decodeSDRHeader(data []byte) (SDRHeader, error) {
	var h SDRHeader
	if len(data) < 5 {
		return h, fmt.Errorf("need 5 bytes for SDR common header, got %d", len(data))
	}
	recordID, err := layerexts.Uint16LE(data, 0)
	if err != nil {
		return h, err
	}
	h.RecordID = recordID
	h.SDRVersion = data[2]
	h.RecordType = SDRRecordType(data[3])
	h.RecordLength = data[4]
	return h, nil
}

func (h SDRHeader) encodeInto(out []byte) {
	layerexts.PutUint16LE(out, 0, h.RecordID)
	out[2] = h.SDRVersion
	out[3] = uint8(h.RecordType)
	out[4] = h.RecordLength
}

// SensorUnits describes the base and modifier units of a sensor's
// reading, plus the percentage flag, as packed in one header byte of
// Full/Compact Sensor Records.
type SensorUnits struct {
	IsPercentage    bool
	ModifierUnit    uint8 // 2-bit: none, /, base-unit, base-unit^2
	RateUnit        uint8 // 3-bit: none, per-us, per-ms, per-s, per-minute, etc.
	AnalogDataFormat AnalogDataFormat // 2-bit: how the raw reading byte encodes a negative value
	SensorUnitsType uint8 // indexes a fixed unit-name table (degrees C, RPM, Volts, ...)
}

// AnalogDataFormat selects how a Full Sensor Record's raw reading byte
// represents a negative value (spec 4.3's Sensor Units 1 byte, bits
// 7-6). Most sub-zero analog sensors — temperature chief among them —
// use two's complement; a record that reports AnalogDataFormatNotAnalog
// has no numeric reading at all and must be interpreted through its
// discrete states instead.
type AnalogDataFormat uint8

const (
	AnalogDataFormatUnsigned       AnalogDataFormat = 0x00
	AnalogDataFormatOnesComplement AnalogDataFormat = 0x01
	AnalogDataFormatTwosComplement AnalogDataFormat = 0x02
	AnalogDataFormatNotAnalog      AnalogDataFormat = 0x03
)

func (f AnalogDataFormat) String() string {
	switch f {
	case AnalogDataFormatUnsigned:
		return "unsigned"
	case AnalogDataFormatOnesComplement:
		return "1's complement"
	case AnalogDataFormatTwosComplement:
		return "2's complement"
	default:
		return "not analog"
	}
}

// FullSensorRecord is SDR record type 0x01: analog and threshold sensors
// with full conversion coefficients (spec 4.3).
type FullSensorRecord struct {
	layers.BaseLayer

	Header SDRHeader

	OwnerID          Address
	OwnerLUN         LUN
	OwnerChannel     ChannelNumber
	SensorNumber     uint8

	EntityID         uint8
	EntityInstance   uint8
	EntityIsLogical  bool

	SensorType       uint8
	EventReadingType uint8

	Units            SensorUnits
	Linearization    Linearization
	Conversion       SensorConversion

	NominalReading   uint8
	NormalMax        uint8
	NormalMin        uint8
	SensorMax        uint8
	SensorMin        uint8

	IDStringFormat layerexts.StringFormat
	IDString       string
}

func (f *FullSensorRecord) LayerType() gopacket.LayerType { return LayerTypeGetSDRRsp }

func (f *FullSensorRecord) CanDecode() gopacket.LayerClass { return f.LayerType() }

func (f *FullSensorRecord) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (f *FullSensorRecord) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := decodeSDRHeader(data)
	if err != nil {
		df.SetTruncated()
		return NewParseError("FullSensorRecord.Header", err)
	}
	f.Header = header
	body := data[5:]
	if len(body) < 37 {
		df.SetTruncated()
		return NewParseError("FullSensorRecord", fmt.Errorf("need at least 37 body bytes, got %d", len(body)))
	}

	f.OwnerID = Address(body[0])
	f.OwnerChannel = ChannelNumber(layerexts.GetBits(body[1], 4, 4))
	f.OwnerLUN = LUN(layerexts.GetBits(body[1], 0, 2))
	f.SensorNumber = body[2]

	f.EntityID = body[3]
	f.EntityIsLogical = layerexts.GetBits(body[4], 7, 1) == 1
	f.EntityInstance = layerexts.GetBits(body[4], 0, 7)

	f.SensorType = body[6]
	f.EventReadingType = body[7]

	f.Units.IsPercentage = layerexts.GetBits(body[9], 0, 1) == 1
	f.Units.ModifierUnit = layerexts.GetBits(body[9], 1, 2)
	f.Units.RateUnit = layerexts.GetBits(body[9], 3, 3)
	f.Units.AnalogDataFormat = AnalogDataFormat(layerexts.GetBits(body[9], 6, 2))
	f.Units.SensorUnitsType = body[10]

	f.Linearization = Linearization(layerexts.GetBits(body[11], 0, 7))

	mLow := uint32(body[12])
	mHigh := uint32(layerexts.GetBits(body[13], 6, 2))
	m := mLow | mHigh<<8
	f.Conversion.M = layerexts.SignExtend(m, 10)
	f.Conversion.Tolerance = int32(layerexts.GetBits(body[13], 0, 6))

	bLow := uint32(body[14])
	bHigh := uint32(layerexts.GetBits(body[15], 6, 2))
	bVal := bLow | bHigh<<8
	f.Conversion.B = layerexts.SignExtend(bVal, 10)
	f.Conversion.Accuracy = int32(layerexts.GetBits(body[15], 0, 6))

	f.Conversion.AccuracyExp = int32(layerexts.GetBits(body[16], 6, 2))

	bExp := layerexts.GetBits(body[17], 4, 4)
	rExp := layerexts.GetBits(body[17], 0, 4)
	f.Conversion.BExp = int32(layerexts.SignExtend(uint32(bExp), 4))
	f.Conversion.RExp = int32(layerexts.SignExtend(uint32(rExp), 4))
	f.Conversion.Linearization = f.Linearization
	f.Conversion.AnalogDataFormat = f.Units.AnalogDataFormat

	f.NominalReading = body[31]
	f.NormalMax = body[32]
	f.NormalMin = body[33]
	f.SensorMax = body[34]
	f.SensorMin = body[35]

	idString, consumed, err := layerexts.DecodeTypeLengthString(body[36:])
	if err != nil {
		return NewParseError("FullSensorRecord.IDString", err)
	}
	f.IDStringFormat = layerexts.StringFormat(layerexts.GetBits(body[36], 6, 2))
	f.IDString = idString

	total := 5 + 36 + consumed
	f.BaseLayer = layers.BaseLayer{Contents: data[:total], Payload: data[total:]}
	return nil
}

func (f *FullSensorRecord) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	idBytes, err := layerexts.EncodeTypeLengthString(f.IDStringFormat, f.IDString)
	if err != nil {
		return err
	}
	total := 5 + 36 + len(idBytes)
	bytes, err := b.PrependBytes(total)
	if err != nil {
		return err
	}
	f.Header.encodeInto(bytes)
	body := bytes[5:]

	body[0] = uint8(f.OwnerID)
	layerexts.SetBits(&body[1], 4, 4, uint8(f.OwnerChannel))
	layerexts.SetBits(&body[1], 0, 2, uint8(f.OwnerLUN))
	body[2] = f.SensorNumber

	body[3] = f.EntityID
	if f.EntityIsLogical {
		layerexts.SetBits(&body[4], 7, 1, 1)
	}
	layerexts.SetBits(&body[4], 0, 7, f.EntityInstance)

	body[6] = f.SensorType
	body[7] = f.EventReadingType

	if f.Units.IsPercentage {
		layerexts.SetBits(&body[9], 0, 1, 1)
	}
	layerexts.SetBits(&body[9], 1, 2, f.Units.ModifierUnit)
	layerexts.SetBits(&body[9], 3, 3, f.Units.RateUnit)
	layerexts.SetBits(&body[9], 6, 2, uint8(f.Units.AnalogDataFormat))
	body[10] = f.Units.SensorUnitsType

	layerexts.SetBits(&body[11], 0, 7, uint8(f.Linearization))

	m := uint32(int32(f.Conversion.M)) & 0x3ff
	body[12] = uint8(m)
	layerexts.SetBits(&body[13], 6, 2, uint8(m>>8))
	layerexts.SetBits(&body[13], 0, 6, uint8(f.Conversion.Tolerance))

	bv := uint32(int32(f.Conversion.B)) & 0x3ff
	body[14] = uint8(bv)
	layerexts.SetBits(&body[15], 6, 2, uint8(bv>>8))
	layerexts.SetBits(&body[15], 0, 6, uint8(f.Conversion.Accuracy))

	layerexts.SetBits(&body[16], 6, 2, uint8(f.Conversion.AccuracyExp))

	layerexts.SetBits(&body[17], 4, 4, uint8(f.Conversion.BExp)&0xf)
	layerexts.SetBits(&body[17], 0, 4, uint8(f.Conversion.RExp)&0xf)

	body[31] = f.NominalReading
	body[32] = f.NormalMax
	body[33] = f.NormalMin
	body[34] = f.SensorMax
	body[35] = f.SensorMin

	copy(body[36:], idBytes)
	return nil
}

// CompactSensorRecord is SDR record type 0x02: sensors with no
// analog/linear conversion, reported only via discrete event states.
type CompactSensorRecord struct {
	layers.BaseLayer

	Header SDRHeader

	OwnerID      Address
	OwnerLUN     LUN
	OwnerChannel ChannelNumber
	SensorNumber uint8

	EntityID       uint8
	EntityInstance uint8
	EntityIsLogical bool

	SensorType       uint8
	EventReadingType uint8

	IDStringFormat layerexts.StringFormat
	IDString       string
}

func (c *CompactSensorRecord) LayerType() gopacket.LayerType { return LayerTypeGetSDRRsp }

func (c *CompactSensorRecord) CanDecode() gopacket.LayerClass { return c.LayerType() }

func (c *CompactSensorRecord) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (c *CompactSensorRecord) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := decodeSDRHeader(data)
	if err != nil {
		df.SetTruncated()
		return NewParseError("CompactSensorRecord.Header", err)
	}
	c.Header = header
	body := data[5:]
	if len(body) < 27 {
		df.SetTruncated()
		return NewParseError("CompactSensorRecord", fmt.Errorf("need at least 27 body bytes, got %d", len(body)))
	}

	c.OwnerID = Address(body[0])
	c.OwnerChannel = ChannelNumber(layerexts.GetBits(body[1], 4, 4))
	c.OwnerLUN = LUN(layerexts.GetBits(body[1], 0, 2))
	c.SensorNumber = body[2]

	c.EntityID = body[3]
	c.EntityIsLogical = layerexts.GetBits(body[4], 7, 1) == 1
	c.EntityInstance = layerexts.GetBits(body[4], 0, 7)

	c.SensorType = body[6]
	c.EventReadingType = body[7]

	idString, consumed, err := layerexts.DecodeTypeLengthString(body[26:])
	if err != nil {
		return NewParseError("CompactSensorRecord.IDString", err)
	}
	c.IDStringFormat = layerexts.StringFormat(layerexts.GetBits(body[26], 6, 2))
	c.IDString = idString

	total := 5 + 26 + consumed
	c.BaseLayer = layers.BaseLayer{Contents: data[:total], Payload: data[total:]}
	return nil
}

func (c *CompactSensorRecord) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	idBytes, err := layerexts.EncodeTypeLengthString(c.IDStringFormat, c.IDString)
	if err != nil {
		return err
	}
	total := 5 + 26 + len(idBytes)
	bytes, err := b.PrependBytes(total)
	if err != nil {
		return err
	}
	c.Header.encodeInto(bytes)
	body := bytes[5:]

	body[0] = uint8(c.OwnerID)
	layerexts.SetBits(&body[1], 4, 4, uint8(c.OwnerChannel))
	layerexts.SetBits(&body[1], 0, 2, uint8(c.OwnerLUN))
	body[2] = c.SensorNumber

	body[3] = c.EntityID
	if c.EntityIsLogical {
		layerexts.SetBits(&body[4], 7, 1, 1)
	}
	layerexts.SetBits(&body[4], 0, 7, c.EntityInstance)

	body[6] = c.SensorType
	body[7] = c.EventReadingType

	copy(body[26:], idBytes)
	return nil
}

// EventOnlyRecord is SDR record type 0x03: a sensor that only reports
// discrete events, with no reading to poll at all.
type EventOnlyRecord struct {
	layers.BaseLayer

	Header SDRHeader

	OwnerID      Address
	OwnerLUN     LUN
	OwnerChannel ChannelNumber
	SensorNumber uint8

	EntityID       uint8
	EntityInstance uint8

	SensorType       uint8
	EventReadingType uint8

	IDStringFormat layerexts.StringFormat
	IDString       string
}

func (e *EventOnlyRecord) LayerType() gopacket.LayerType { return LayerTypeGetSDRRsp }

func (e *EventOnlyRecord) CanDecode() gopacket.LayerClass { return e.LayerType() }

func (e *EventOnlyRecord) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (e *EventOnlyRecord) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := decodeSDRHeader(data)
	if err != nil {
		df.SetTruncated()
		return NewParseError("EventOnlyRecord.Header", err)
	}
	e.Header = header
	body := data[5:]
	if len(body) < 10 {
		df.SetTruncated()
		return NewParseError("EventOnlyRecord", fmt.Errorf("need at least 10 body bytes, got %d", len(body)))
	}

	e.OwnerID = Address(body[0])
	e.OwnerChannel = ChannelNumber(layerexts.GetBits(body[1], 4, 4))
	e.OwnerLUN = LUN(layerexts.GetBits(body[1], 0, 2))
	e.SensorNumber = body[2]
	e.EntityID = body[3]
	e.EntityInstance = layerexts.GetBits(body[4], 0, 7)
	e.SensorType = body[6]
	e.EventReadingType = body[7]

	idString, consumed, err := layerexts.DecodeTypeLengthString(body[9:])
	if err != nil {
		return NewParseError("EventOnlyRecord.IDString", err)
	}
	e.IDStringFormat = layerexts.StringFormat(layerexts.GetBits(body[9], 6, 2))
	e.IDString = idString

	total := 5 + 9 + consumed
	e.BaseLayer = layers.BaseLayer{Contents: data[:total], Payload: data[total:]}
	return nil
}

func (e *EventOnlyRecord) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	idBytes, err := layerexts.EncodeTypeLengthString(e.IDStringFormat, e.IDString)
	if err != nil {
		return err
	}
	total := 5 + 9 + len(idBytes)
	bytes, err := b.PrependBytes(total)
	if err != nil {
		return err
	}
	e.Header.encodeInto(bytes)
	body := bytes[5:]
	body[0] = uint8(e.OwnerID)
	layerexts.SetBits(&body[1], 4, 4, uint8(e.OwnerChannel))
	layerexts.SetBits(&body[1], 0, 2, uint8(e.OwnerLUN))
	body[2] = e.SensorNumber
	body[3] = e.EntityID
	layerexts.SetBits(&body[4], 0, 7, e.EntityInstance)
	body[6] = e.SensorType
	body[7] = e.EventReadingType
	copy(body[9:], idBytes)
	return nil
}

// EntityAssociationRecord is SDR record type 0x08, describing a
// parent/child entity tree. Its record contains up to four child entity
// (ID, instance) pairs; this library parses the structural fields and
// leaves interpretation of the range/list flag to the caller, as the
// spec's Non-goal excludes building a full entity graph.
type EntityAssociationRecord struct {
	layers.BaseLayer

	Header SDRHeader

	ContainerEntityID       uint8
	ContainerEntityInstance uint8
	IsRange                 bool
	IsLinked                bool
	ChildEntities           [4][2]uint8 // (ID, instance) pairs
}

func (e *EntityAssociationRecord) LayerType() gopacket.LayerType { return LayerTypeGetSDRRsp }

func (e *EntityAssociationRecord) CanDecode() gopacket.LayerClass { return e.LayerType() }

func (e *EntityAssociationRecord) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (e *EntityAssociationRecord) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := decodeSDRHeader(data)
	if err != nil {
		df.SetTruncated()
		return NewParseError("EntityAssociationRecord.Header", err)
	}
	e.Header = header
	body := data[5:]
	if len(body) < 11 {
		df.SetTruncated()
		return NewParseError("EntityAssociationRecord", fmt.Errorf("need at least 11 body bytes, got %d", len(body)))
	}
	e.ContainerEntityID = body[0]
	e.ContainerEntityInstance = body[1]
	e.IsRange = layerexts.GetBits(body[2], 7, 1) == 1
	e.IsLinked = layerexts.GetBits(body[2], 5, 1) == 1
	for i := 0; i < 4; i++ {
		e.ChildEntities[i][0] = body[3+i*2]
		e.ChildEntities[i][1] = body[4+i*2]
	}
	total := 5 + 11
	e.BaseLayer = layers.BaseLayer{Contents: data[:total], Payload: data[total:]}
	return nil
}

func (e *EntityAssociationRecord) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(5 + 11)
	if err != nil {
		return err
	}
	e.Header.encodeInto(bytes)
	body := bytes[5:]
	body[0] = e.ContainerEntityID
	body[1] = e.ContainerEntityInstance
	if e.IsRange {
		layerexts.SetBits(&body[2], 7, 1, 1)
	}
	if e.IsLinked {
		layerexts.SetBits(&body[2], 5, 1, 1)
	}
	for i := 0; i < 4; i++ {
		body[3+i*2] = e.ChildEntities[i][0]
		body[4+i*2] = e.ChildEntities[i][1]
	}
	return nil
}

// FRUDeviceLocatorRecord is SDR record type 0x11, pointing at a FRU
// inventory device reachable either directly on a bus or through the
// BMC's logical FRU device access commands.
type FRUDeviceLocatorRecord struct {
	layers.BaseLayer

	Header SDRHeader

	DeviceAccessAddress Address
	FRUDeviceID         uint8
	IsLogicalFRUDevice  bool
	ChannelNumber       ChannelNumber
	DeviceType          uint8
	DeviceTypeModifier  uint8
	EntityID            uint8
	EntityInstance      uint8

	IDStringFormat layerexts.StringFormat
	IDString       string
}

func (f *FRUDeviceLocatorRecord) LayerType() gopacket.LayerType { return LayerTypeGetSDRRsp }

func (f *FRUDeviceLocatorRecord) CanDecode() gopacket.LayerClass { return f.LayerType() }

func (f *FRUDeviceLocatorRecord) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (f *FRUDeviceLocatorRecord) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := decodeSDRHeader(data)
	if err != nil {
		df.SetTruncated()
		return NewParseError("FRUDeviceLocatorRecord.Header", err)
	}
	f.Header = header
	body := data[5:]
	if len(body) < 10 {
		df.SetTruncated()
		return NewParseError("FRUDeviceLocatorRecord", fmt.Errorf("need at least 10 body bytes, got %d", len(body)))
	}
	f.DeviceAccessAddress = Address(layerexts.GetBits(body[0], 1, 7))
	f.FRUDeviceID = body[1]
	f.IsLogicalFRUDevice = layerexts.GetBits(body[2], 7, 1) == 1
	f.ChannelNumber = ChannelNumber(layerexts.GetBits(body[3], 4, 4))
	f.DeviceType = body[5]
	f.DeviceTypeModifier = body[6]
	f.EntityID = body[7]
	f.EntityInstance = body[8]

	idString, consumed, err := layerexts.DecodeTypeLengthString(body[9:])
	if err != nil {
		return NewParseError("FRUDeviceLocatorRecord.IDString", err)
	}
	f.IDStringFormat = layerexts.StringFormat(layerexts.GetBits(body[9], 6, 2))
	f.IDString = idString

	total := 5 + 9 + consumed
	f.BaseLayer = layers.BaseLayer{Contents: data[:total], Payload: data[total:]}
	return nil
}

func (f *FRUDeviceLocatorRecord) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	idBytes, err := layerexts.EncodeTypeLengthString(f.IDStringFormat, f.IDString)
	if err != nil {
		return err
	}
	total := 5 + 9 + len(idBytes)
	bytes, err := b.PrependBytes(total)
	if err != nil {
		return err
	}
	f.Header.encodeInto(bytes)
	body := bytes[5:]
	layerexts.SetBits(&body[0], 1, 7, uint8(f.DeviceAccessAddress))
	body[1] = f.FRUDeviceID
	if f.IsLogicalFRUDevice {
		layerexts.SetBits(&body[2], 7, 1, 1)
	}
	layerexts.SetBits(&body[3], 4, 4, uint8(f.ChannelNumber))
	body[5] = f.DeviceType
	body[6] = f.DeviceTypeModifier
	body[7] = f.EntityID
	body[8] = f.EntityInstance
	copy(body[9:], idBytes)
	return nil
}

// ManagementControllerDeviceLocatorRecord is SDR record type 0x12,
// describing a satellite management controller reachable over IPMB
// (spec's bridging component uses this to discover bridge targets).
type ManagementControllerDeviceLocatorRecord struct {
	layers.BaseLayer

	Header SDRHeader

	DeviceSlaveAddress Address
	ChannelNumber      ChannelNumber
	ProvidesSDRs       bool
	EntityID           uint8
	EntityInstance     uint8

	IDStringFormat layerexts.StringFormat
	IDString       string
}

func (m *ManagementControllerDeviceLocatorRecord) LayerType() gopacket.LayerType { return LayerTypeGetSDRRsp }

func (m *ManagementControllerDeviceLocatorRecord) CanDecode() gopacket.LayerClass { return m.LayerType() }

func (m *ManagementControllerDeviceLocatorRecord) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (m *ManagementControllerDeviceLocatorRecord) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := decodeSDRHeader(data)
	if err != nil {
		df.SetTruncated()
		return NewParseError("ManagementControllerDeviceLocatorRecord.Header", err)
	}
	m.Header = header
	body := data[5:]
	if len(body) < 8 {
		df.SetTruncated()
		return NewParseError("ManagementControllerDeviceLocatorRecord", fmt.Errorf("need at least 8 body bytes, got %d", len(body)))
	}
	m.DeviceSlaveAddress = Address(layerexts.GetBits(body[0], 1, 7))
	m.ChannelNumber = ChannelNumber(layerexts.GetBits(body[1], 0, 4))
	m.ProvidesSDRs = layerexts.GetBits(body[2], 7, 1) == 1
	m.EntityID = body[5]
	m.EntityInstance = body[6]

	idString, consumed, err := layerexts.DecodeTypeLengthString(body[7:])
	if err != nil {
		return NewParseError("ManagementControllerDeviceLocatorRecord.IDString", err)
	}
	m.IDStringFormat = layerexts.StringFormat(layerexts.GetBits(body[7], 6, 2))
	m.IDString = idString

	total := 5 + 7 + consumed
	m.BaseLayer = layers.BaseLayer{Contents: data[:total], Payload: data[total:]}
	return nil
}

func (m *ManagementControllerDeviceLocatorRecord) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	idBytes, err := layerexts.EncodeTypeLengthString(m.IDStringFormat, m.IDString)
	if err != nil {
		return err
	}
	total := 5 + 7 + len(idBytes)
	bytes, err := b.PrependBytes(total)
	if err != nil {
		return err
	}
	m.Header.encodeInto(bytes)
	body := bytes[5:]
	layerexts.SetBits(&body[0], 1, 7, uint8(m.DeviceSlaveAddress))
	layerexts.SetBits(&body[1], 0, 4, uint8(m.ChannelNumber))
	if m.ProvidesSDRs {
		layerexts.SetBits(&body[2], 7, 1, 1)
	}
	body[5] = m.EntityID
	body[6] = m.EntityInstance
	copy(body[7:], idBytes)
	return nil
}

// ParseSDRRecord dispatches a raw SDR (common header plus body) to the
// matching record type, returning the decoded layer. Unrecognised
// record types are returned as an error rather than silently dropped,
// since a caller iterating a repository needs to know it skipped one.
func ParseSDRRecord(data []byte) (layerexts.SerializableDecodingLayer, error) {
	header, err := decodeSDRHeader(data)
	if err != nil {
		return nil, NewParseError("ParseSDRRecord", err)
	}

	var layer layerexts.SerializableDecodingLayer
	switch header.RecordType {
	case SDRRecordTypeFullSensor:
		layer = &FullSensorRecord{}
	case SDRRecordTypeCompactSensor:
		layer = &CompactSensorRecord{}
	case SDRRecordTypeEventOnly:
		layer = &EventOnlyRecord{}
	case SDRRecordTypeEntityAssociation:
		layer = &EntityAssociationRecord{}
	case SDRRecordTypeFRUDeviceLocator:
		layer = &FRUDeviceLocatorRecord{}
	case SDRRecordTypeManagementControllerDeviceLocator:
		layer = &ManagementControllerDeviceLocatorRecord{}
	default:
		return nil, NewParseError("ParseSDRRecord", fmt.Errorf("unrecognised SDR record type 0x%02x", uint8(header.RecordType)))
	}

	df := gopacket.NilDecodeFeedback
	if err := layer.DecodeFromBytes(data, df); err != nil {
		return nil, err
	}
	return layer, nil
}

// GetSDRRepositoryInfoResponse reports the SDR repository's format
// version, entry count, free space, and the timestamps of its most
// recent addition/erasure/change (spec 4.3).
type GetSDRRepositoryInfoResponse struct {
	layers.BaseLayer

	Version        uint8
	RecordCount    uint16
	FreeSpaceBytes uint16
	MostRecentAddition time.Time
	MostRecentErase    time.Time
	SupportsReserve    bool
	SupportsPartialAdd bool
	SupportsDelete     bool
	Overflowed         bool
}

func (g *GetSDRRepositoryInfoResponse) LayerType() gopacket.LayerType {
	return LayerTypeGetSDRRepositoryInfoRsp
}

func (g *GetSDRRepositoryInfoResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetSDRRepositoryInfoResponse) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (g *GetSDRRepositoryInfoResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 14 {
		df.SetTruncated()
		return NewParseError("GetSDRRepositoryInfoResponse", fmt.Errorf("need 14 bytes, got %d", len(data)))
	}
	g.Version = data[0]
	count, err := layerexts.Uint16LE(data, 1)
	if err != nil {
		return NewParseError("GetSDRRepositoryInfoResponse.RecordCount", err)
	}
	g.RecordCount = count
	freeSpace, err := layerexts.Uint16LE(data, 3)
	if err != nil {
		return NewParseError("GetSDRRepositoryInfoResponse.FreeSpaceBytes", err)
	}
	g.FreeSpaceBytes = freeSpace
	g.MostRecentAddition = decodeSELTimestamp(data[5:9])
	g.MostRecentErase = decodeSELTimestamp(data[9:13])

	ops := data[13]
	g.SupportsReserve = layerexts.GetBits(ops, 1, 1) == 1
	g.SupportsPartialAdd = layerexts.GetBits(ops, 2, 1) == 1
	g.SupportsDelete = layerexts.GetBits(ops, 3, 1) == 1
	g.Overflowed = layerexts.GetBits(ops, 7, 1) == 1

	g.BaseLayer = layers.BaseLayer{Contents: data[:14], Payload: data[14:]}
	return nil
}

func (g *GetSDRRepositoryInfoResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(14)
	if err != nil {
		return err
	}
	bytes[0] = g.Version
	layerexts.PutUint16LE(bytes, 1, g.RecordCount)
	layerexts.PutUint16LE(bytes, 3, g.FreeSpaceBytes)
	encodeSELTimestamp(bytes[5:9], g.MostRecentAddition)
	encodeSELTimestamp(bytes[9:13], g.MostRecentErase)
	var ops byte
	if g.SupportsReserve {
		layerexts.SetBits(&ops, 1, 1, 1)
	}
	if g.SupportsPartialAdd {
		layerexts.SetBits(&ops, 2, 1, 1)
	}
	if g.SupportsDelete {
		layerexts.SetBits(&ops, 3, 1, 1)
	}
	if g.Overflowed {
		layerexts.SetBits(&ops, 7, 1, 1)
	}
	bytes[13] = ops
	return nil
}

// ReserveSDRRepositoryResponse carries the reservation ID required for
// partial SDR reads and repository modification.
type ReserveSDRRepositoryResponse struct {
	layers.BaseLayer

	ReservationID uint16
}

func (r *ReserveSDRRepositoryResponse) LayerType() gopacket.LayerType {
	return LayerTypeReserveSDRRepositoryRsp
}

func (r *ReserveSDRRepositoryResponse) CanDecode() gopacket.LayerClass { return r.LayerType() }

func (r *ReserveSDRRepositoryResponse) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

func (r *ReserveSDRRepositoryResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 2 {
		df.SetTruncated()
		return NewParseError("ReserveSDRRepositoryResponse", fmt.Errorf("need 2 bytes, got %d", len(data)))
	}
	id, err := layerexts.Uint16LE(data, 0)
	if err != nil {
		return NewParseError("ReserveSDRRepositoryResponse", err)
	}
	r.ReservationID = id
	r.BaseLayer = layers.BaseLayer{Contents: data[:2], Payload: data[2:]}
	return nil
}

func (r *ReserveSDRRepositoryResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(2)
	if err != nil {
		return err
	}
	layerexts.PutUint16LE(bytes, 0, r.ReservationID)
	return nil
}

// GetSDRRequest reads one record, or a byte range of one record when
// RequestedBytes is non-zero, by record ID (spec 4.3). RecordID 0x0000
// requests the first record in the repository.
type GetSDRRequest struct {
	layers.BaseLayer

	ReservationID    uint16
	RecordID         uint16
	OffsetIntoRecord uint8
	RequestedBytes   uint8
}

func (g *GetSDRRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(6)
	if err != nil {
		return err
	}
	layerexts.PutUint16LE(bytes, 0, g.ReservationID)
	layerexts.PutUint16LE(bytes, 2, g.RecordID)
	bytes[4] = g.OffsetIntoRecord
	bytes[5] = g.RequestedBytes
	return nil
}

// GetSDRResponsePrefix is the 2-byte "next record ID" that the BMC
// prepends to every Get SDR response ahead of the record data itself
// (identical in spirit to Get SEL Entry's prefix).
type GetSDRResponsePrefix struct {
	NextRecordID uint16
}

// SplitGetSDRResponse separates the "next record ID" prefix from the
// record bytes that follow it in a raw Get SDR response body.
func SplitGetSDRResponse(data []byte) (GetSDRResponsePrefix, []byte, error) {
	if len(data) < 2 {
		return GetSDRResponsePrefix{}, nil, NewParseError("SplitGetSDRResponse", fmt.Errorf("need at least 2 bytes, got %d", len(data)))
	}
	nextID, err := layerexts.Uint16LE(data, 0)
	if err != nil {
		return GetSDRResponsePrefix{}, nil, NewParseError("SplitGetSDRResponse", err)
	}
	return GetSDRResponsePrefix{NextRecordID: nextID}, data[2:], nil
}

// GetDeviceSDRInfoResponse reports how many sensors the addressed
// device itself owns, as opposed to the full repository (spec 4.2,
// "Get Device SDR Info").
type GetDeviceSDRInfoResponse struct {
	layers.BaseLayer

	SensorCount      uint8
	IsDynamicPopulation bool
	LUNsWithSensors     [4]bool
}

func (g *GetDeviceSDRInfoResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 2 {
		df.SetTruncated()
		return NewParseError("GetDeviceSDRInfoResponse", fmt.Errorf("need 2 bytes, got %d", len(data)))
	}
	g.SensorCount = data[0]
	g.IsDynamicPopulation = layerexts.GetBits(data[1], 7, 1) == 1
	for i := 0; i < 4; i++ {
		g.LUNsWithSensors[i] = layerexts.GetBits(data[1], i, 1) == 1
	}
	g.BaseLayer = layers.BaseLayer{Contents: data[:2], Payload: data[2:]}
	return nil
}

func (g *GetDeviceSDRInfoResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(2)
	if err != nil {
		return err
	}
	bytes[0] = g.SensorCount
	if g.IsDynamicPopulation {
		layerexts.SetBits(&bytes[1], 7, 1, 1)
	}
	for i := 0; i < 4; i++ {
		if g.LUNsWithSensors[i] {
			layerexts.SetBits(&bytes[1], i, 1, 1)
		}
	}
	return nil
}
