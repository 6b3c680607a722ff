package ipmi

import (
	"testing"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
)

func TestParseSDRRecordDispatchesFullSensor(t *testing.T) {
	want := &FullSensorRecord{
		Header:         SDRHeader{RecordID: 1, SDRVersion: 0x51, RecordType: SDRRecordTypeFullSensor},
		OwnerID:        Address(0x20),
		SensorNumber:   5,
		SensorType:     0x01,
		Linearization:  LinearizationLinear,
		Units:          SensorUnits{AnalogDataFormat: AnalogDataFormatTwosComplement, SensorUnitsType: 1},
		IDStringFormat: layerexts.StringFormatASCII,
		IDString:       "CPU Temp",
	}

	buf := gopacket.NewSerializeBuffer()
	if err := want.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	record, err := ParseSDRRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSDRRecord: %v", err)
	}
	got, ok := record.(*FullSensorRecord)
	if !ok {
		t.Fatalf("ParseSDRRecord returned %T, want *FullSensorRecord", record)
	}
	if got.SensorNumber != want.SensorNumber || got.IDString != want.IDString {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Units.AnalogDataFormat != AnalogDataFormatTwosComplement {
		t.Errorf("got Units.AnalogDataFormat = %v, want %v", got.Units.AnalogDataFormat, AnalogDataFormatTwosComplement)
	}
	if got.Conversion.AnalogDataFormat != AnalogDataFormatTwosComplement {
		t.Errorf("got Conversion.AnalogDataFormat = %v, want %v", got.Conversion.AnalogDataFormat, AnalogDataFormatTwosComplement)
	}
}

func TestParseSDRRecordDispatchesFRUDeviceLocator(t *testing.T) {
	want := &FRUDeviceLocatorRecord{
		Header:         SDRHeader{RecordID: 2, RecordType: SDRRecordTypeFRUDeviceLocator},
		IDStringFormat: layerexts.StringFormatASCII,
		IDString:       "PSU1",
	}
	buf := gopacket.NewSerializeBuffer()
	if err := want.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	record, err := ParseSDRRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSDRRecord: %v", err)
	}
	if _, ok := record.(*FRUDeviceLocatorRecord); !ok {
		t.Fatalf("ParseSDRRecord returned %T, want *FRUDeviceLocatorRecord", record)
	}
}

func TestParseSDRRecordDispatchesCompactSensor(t *testing.T) {
	want := &CompactSensorRecord{
		Header:         SDRHeader{RecordID: 3, RecordType: SDRRecordTypeCompactSensor},
		OwnerID:        Address(0x20),
		SensorNumber:   9,
		SensorType:     0x07,
		IDStringFormat: layerexts.StringFormatASCII,
		IDString:       "Intrusion",
	}
	buf := gopacket.NewSerializeBuffer()
	if err := want.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	record, err := ParseSDRRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSDRRecord: %v", err)
	}
	got, ok := record.(*CompactSensorRecord)
	if !ok {
		t.Fatalf("ParseSDRRecord returned %T, want *CompactSensorRecord", record)
	}
	if got.SensorNumber != want.SensorNumber || got.IDString != want.IDString {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseSDRRecordDispatchesEventOnly(t *testing.T) {
	want := &EventOnlyRecord{
		Header:         SDRHeader{RecordID: 4, RecordType: SDRRecordTypeEventOnly},
		OwnerID:        Address(0x20),
		SensorNumber:   2,
		SensorType:     0x0f,
		IDStringFormat: layerexts.StringFormatASCII,
		IDString:       "Watchdog",
	}
	buf := gopacket.NewSerializeBuffer()
	if err := want.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	record, err := ParseSDRRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSDRRecord: %v", err)
	}
	got, ok := record.(*EventOnlyRecord)
	if !ok {
		t.Fatalf("ParseSDRRecord returned %T, want *EventOnlyRecord", record)
	}
	if got.SensorNumber != want.SensorNumber || got.IDString != want.IDString {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseSDRRecordDispatchesEntityAssociation(t *testing.T) {
	want := &EntityAssociationRecord{
		Header:                  SDRHeader{RecordID: 5, RecordType: SDRRecordTypeEntityAssociation},
		ContainerEntityID:       7,
		ContainerEntityInstance: 1,
		IsRange:                 true,
		ChildEntities:           [4][2]uint8{{7, 2}, {7, 3}, {0, 0}, {0, 0}},
	}
	buf := gopacket.NewSerializeBuffer()
	if err := want.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	record, err := ParseSDRRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSDRRecord: %v", err)
	}
	got, ok := record.(*EntityAssociationRecord)
	if !ok {
		t.Fatalf("ParseSDRRecord returned %T, want *EntityAssociationRecord", record)
	}
	if got.ContainerEntityID != want.ContainerEntityID || !got.IsRange || got.ChildEntities != want.ChildEntities {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseSDRRecordDispatchesManagementControllerDeviceLocator(t *testing.T) {
	want := &ManagementControllerDeviceLocatorRecord{
		Header:         SDRHeader{RecordID: 6, RecordType: SDRRecordTypeManagementControllerDeviceLocator},
		DeviceSlaveAddress: Address(0x20),
		EntityID:       0x23,
		IDStringFormat: layerexts.StringFormatASCII,
		IDString:       "BMC",
	}
	buf := gopacket.NewSerializeBuffer()
	if err := want.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	record, err := ParseSDRRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSDRRecord: %v", err)
	}
	got, ok := record.(*ManagementControllerDeviceLocatorRecord)
	if !ok {
		t.Fatalf("ParseSDRRecord returned %T, want *ManagementControllerDeviceLocatorRecord", record)
	}
	if got.IDString != want.IDString || got.EntityID != want.EntityID {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseSDRRecordRejectsUnknownType(t *testing.T) {
	data := []byte{0x01, 0x00, 0x51, 0xff, 0x00}
	if _, err := ParseSDRRecord(data); err == nil {
		t.Error("expected error parsing an unrecognised SDR record type")
	}
}

func TestSplitGetSDRResponse(t *testing.T) {
	data := []byte{0x02, 0x00, 0xaa, 0xbb, 0xcc}
	prefix, rest, err := SplitGetSDRResponse(data)
	if err != nil {
		t.Fatalf("SplitGetSDRResponse: %v", err)
	}
	if prefix.NextRecordID != 2 {
		t.Errorf("got next record ID %d, want 2", prefix.NextRecordID)
	}
	if len(rest) != 3 || rest[0] != 0xaa {
		t.Errorf("got rest %x", rest)
	}
}
