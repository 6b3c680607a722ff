package ipmi

import (
	"testing"

	"github.com/google/gopacket"
)

func TestGetDeviceIDResponseRoundTrip(t *testing.T) {
	want := &GetDeviceIDResponse{
		DeviceID:                1,
		DeviceRevision:          1,
		ProvidesDeviceSDRs:      true,
		FirmwareMajorRevision:   2,
		DeviceAvailable:         true,
		FirmwareMinorRevision:   0x15, // BCD 15
		IPMIVersion:             0x02,
		AdditionalDeviceSupport: 0xbf,
		ManufacturerID:          674,
		ProductID:               0x1234,
	}

	buf := gopacket.NewSerializeBuffer()
	if err := want.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	got := &GetDeviceIDResponse{}
	if err := got.DecodeFromBytes(buf.Bytes(), gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("DecodeFromBytes: %v", err)
	}

	switch {
	case got.DeviceID != want.DeviceID,
		got.DeviceRevision != want.DeviceRevision,
		got.ProvidesDeviceSDRs != want.ProvidesDeviceSDRs,
		got.FirmwareMajorRevision != want.FirmwareMajorRevision,
		got.DeviceAvailable != want.DeviceAvailable,
		got.FirmwareMinorRevision != want.FirmwareMinorRevision,
		got.IPMIVersion != want.IPMIVersion,
		got.AdditionalDeviceSupport != want.AdditionalDeviceSupport,
		got.ManufacturerID != want.ManufacturerID,
		got.ProductID != want.ProductID:
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestGetDeviceIDResponseTooShort(t *testing.T) {
	d := &GetDeviceIDResponse{}
	if err := d.DecodeFromBytes([]byte{1, 2, 3}, gopacket.NilDecodeFeedback); err == nil {
		t.Error("expected error decoding truncated Get Device ID response")
	}
}
