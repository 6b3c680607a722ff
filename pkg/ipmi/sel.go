package ipmi

import (
	"fmt"
	"time"

	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// SELOverflowBehavior reports what happens to new events once the SEL is
// full, carried as one bit of Get SEL Info's operation support byte.
type SELOverflowBehavior uint8

// GetSELInfoResponse reports the SEL's format version, occupancy, and
// the timestamps of its most recent addition and erasure (spec 4.2).
type GetSELInfoResponse struct {
	layers.BaseLayer

	Version         uint8 // BCD-ish: low nibble is minor, high nibble is major
	Entries         uint16
	FreeSpaceBytes  uint16
	LastAddition    time.Time
	LastErase       time.Time
	Overflowed      bool
	SupportsGetAllocInfo bool
	SupportsReserve      bool
	SupportsPartialAdd   bool
	SupportsDelete       bool
}

func (g *GetSELInfoResponse) LayerType() gopacket.LayerType { return LayerTypeGetSELInfoRsp }

func (g *GetSELInfoResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetSELInfoResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetSELInfoResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 14 {
		df.SetTruncated()
		return NewParseError("GetSELInfoResponse", fmt.Errorf("need 14 bytes, got %d", len(data)))
	}
	g.Version = data[0]
	entries, err := layerexts.Uint16LE(data, 1)
	if err != nil {
		return NewParseError("GetSELInfoResponse.Entries", err)
	}
	g.Entries = entries
	freeSpace, err := layerexts.Uint16LE(data, 3)
	if err != nil {
		return NewParseError("GetSELInfoResponse.FreeSpaceBytes", err)
	}
	g.FreeSpaceBytes = freeSpace
	g.LastAddition = decodeSELTimestamp(data[5:9])
	g.LastErase = decodeSELTimestamp(data[9:13])

	ops := data[13]
	g.SupportsGetAllocInfo = layerexts.GetBits(ops, 0, 1) == 1
	g.SupportsReserve = layerexts.GetBits(ops, 1, 1) == 1
	g.SupportsPartialAdd = layerexts.GetBits(ops, 2, 1) == 1
	g.SupportsDelete = layerexts.GetBits(ops, 3, 1) == 1
	g.Overflowed = layerexts.GetBits(ops, 7, 1) == 1

	g.BaseLayer = layers.BaseLayer{Contents: data[:14], Payload: data[14:]}
	return nil
}

func (g *GetSELInfoResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(14)
	if err != nil {
		return err
	}
	bytes[0] = g.Version
	layerexts.PutUint16LE(bytes, 1, g.Entries)
	layerexts.PutUint16LE(bytes, 3, g.FreeSpaceBytes)
	encodeSELTimestamp(bytes[5:9], g.LastAddition)
	encodeSELTimestamp(bytes[9:13], g.LastErase)

	var ops byte
	if g.SupportsGetAllocInfo {
		layerexts.SetBits(&ops, 0, 1, 1)
	}
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

// decodeSELTimestamp reads the IPMI SEL timestamp: seconds since
// 00:00:00 1/1/1970 GMT, little-endian. 0x00000000 and 0xFFFFFFFF are
// both "unspecified" and decode to the zero time.Time.
func decodeSELTimestamp(data []byte) time.Time {
	secs := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	if secs == 0 || secs == 0xFFFFFFFF {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0).UTC()
}

func encodeSELTimestamp(out []byte, t time.Time) {
	if t.IsZero() {
		out[0], out[1], out[2], out[3] = 0, 0, 0, 0
		return
	}
	secs := uint32(t.Unix())
	out[0] = uint8(secs)
	out[1] = uint8(secs >> 8)
	out[2] = uint8(secs >> 16)
	out[3] = uint8(secs >> 24)
}

// GetSELAllocInfoResponse reports free/used entry counts in
// implementations whose SEL is allocated as fixed-size slots rather
// than a byte-addressed circular buffer.
type GetSELAllocInfoResponse struct {
	layers.BaseLayer

	PossibleAllocationUnits uint16
	AllocationUnitSizeBytes uint16
	FreeAllocationUnits     uint16
	LargestFreeBlock        uint16
	MaximumRecordSizeUnits  uint8
}

func (g *GetSELAllocInfoResponse) LayerType() gopacket.LayerType { return LayerTypeGetSELAllocInfoRsp }

func (g *GetSELAllocInfoResponse) CanDecode() gopacket.LayerClass { return g.LayerType() }

func (g *GetSELAllocInfoResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (g *GetSELAllocInfoResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 9 {
		df.SetTruncated()
		return NewParseError("GetSELAllocInfoResponse", fmt.Errorf("need 9 bytes, got %d", len(data)))
	}
	var err error
	if g.PossibleAllocationUnits, err = layerexts.Uint16LE(data, 0); err != nil {
		return NewParseError("GetSELAllocInfoResponse", err)
	}
	if g.AllocationUnitSizeBytes, err = layerexts.Uint16LE(data, 2); err != nil {
		return NewParseError("GetSELAllocInfoResponse", err)
	}
	if g.FreeAllocationUnits, err = layerexts.Uint16LE(data, 4); err != nil {
		return NewParseError("GetSELAllocInfoResponse", err)
	}
	if g.LargestFreeBlock, err = layerexts.Uint16LE(data, 6); err != nil {
		return NewParseError("GetSELAllocInfoResponse", err)
	}
	g.MaximumRecordSizeUnits = data[8]
	g.BaseLayer = layers.BaseLayer{Contents: data[:9], Payload: data[9:]}
	return nil
}

func (g *GetSELAllocInfoResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(9)
	if err != nil {
		return err
	}
	layerexts.PutUint16LE(bytes, 0, g.PossibleAllocationUnits)
	layerexts.PutUint16LE(bytes, 2, g.AllocationUnitSizeBytes)
	layerexts.PutUint16LE(bytes, 4, g.FreeAllocationUnits)
	layerexts.PutUint16LE(bytes, 6, g.LargestFreeBlock)
	bytes[8] = g.MaximumRecordSizeUnits
	return nil
}

// ReserveSELResponse carries the reservation ID a subsequent Get SEL
// Entry (for partial reads) or Clear SEL must present; the BMC silently
// invalidates it whenever the log changes underneath the reservation.
type ReserveSELResponse struct {
	layers.BaseLayer

	ReservationID uint16
}

func (r *ReserveSELResponse) LayerType() gopacket.LayerType { return LayerTypeReserveSELRsp }

func (r *ReserveSELResponse) CanDecode() gopacket.LayerClass { return r.LayerType() }

func (r *ReserveSELResponse) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (r *ReserveSELResponse) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 2 {
		df.SetTruncated()
		return NewParseError("ReserveSELResponse", fmt.Errorf("need 2 bytes, got %d", len(data)))
	}
	id, err := layerexts.Uint16LE(data, 0)
	if err != nil {
		return NewParseError("ReserveSELResponse", err)
	}
	r.ReservationID = id
	r.BaseLayer = layers.BaseLayer{Contents: data[:2], Payload: data[2:]}
	return nil
}

func (r *ReserveSELResponse) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(2)
	if err != nil {
		return err
	}
	layerexts.PutUint16LE(bytes, 0, r.ReservationID)
	return nil
}

// GetSELEntryRequest reads one record, or a byte range of one record
// when RequestedBytes is non-zero, from the given record ID onward
// (0xFFFF means "the last/newest entry").
type GetSELEntryRequest struct {
	layers.BaseLayer

	ReservationID  uint16
	RecordID       uint16
	OffsetIntoRecord uint8
	RequestedBytes   uint8 // 0xFF reads the whole remaining record
}

const SELRecordIDLast uint16 = 0xFFFF

func (g *GetSELEntryRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
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

// SELEventType classifies an SEL record as a standard system-event
// record, an OEM timestamped record, or an OEM non-timestamped record,
// per the three-way split in spec 4.4.
type SELEventType uint8

const (
	SELEventTypeSystemEvent         SELEventType = 0x02
	SELEventTypeOEMTimestamped      SELEventType = 0xc0 // 0xC0-0xDF
	SELEventTypeOEMNonTimestamped   SELEventType = 0xe0 // 0xE0-0xFF
)

// ClassifyRecordType returns the SELEventType bucket a raw SEL record
// type byte falls into.
func ClassifyRecordType(recordType uint8) SELEventType {
	switch {
	case recordType == 0x02:
		return SELEventTypeSystemEvent
	case recordType >= 0xc0 && recordType <= 0xdf:
		return SELEventTypeOEMTimestamped
	default:
		return SELEventTypeOEMNonTimestamped
	}
}

// SELEntry is one 16-byte SEL record, decoded according to its record
// type (spec 4.4). For OEM records, Data holds the type-specific bytes
// verbatim since their layout is vendor-defined.
type SELEntry struct {
	layers.BaseLayer

	RecordID   uint16
	RecordType uint8

	// Populated only for SELEventTypeSystemEvent records.
	Timestamp        time.Time
	GeneratorID      uint16
	EvMRevision      uint8
	SensorType       uint8
	SensorNumber     uint8
	EventDirection   bool // true = deassertion
	EventType        uint8
	EventData        [3]byte

	// Populated only for OEM records (both timestamped and not).
	Data [13]byte
}

func (s *SELEntry) LayerType() gopacket.LayerType { return LayerTypeGetSELEntryRsp }

func (s *SELEntry) CanDecode() gopacket.LayerClass { return s.LayerType() }

func (s *SELEntry) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (s *SELEntry) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	// The first two bytes here are the "next record ID" prefix that Get SEL
	// Entry prepends ahead of the 16-byte record itself.
	if len(data) < 18 {
		df.SetTruncated()
		return NewParseError("SELEntry", fmt.Errorf("need 18 bytes, got %d", len(data)))
	}
	record := data[2:18]

	recordID, err := layerexts.Uint16LE(record, 0)
	if err != nil {
		return NewParseError("SELEntry.RecordID", err)
	}
	s.RecordID = recordID
	s.RecordType = record[2]

	switch ClassifyRecordType(s.RecordType) {
	case SELEventTypeSystemEvent:
		s.Timestamp = decodeSELTimestamp(record[3:7])
		generatorID, err := layerexts.Uint16LE(record, 7)
		if err != nil {
			return NewParseError("SELEntry.GeneratorID", err)
		}
		s.GeneratorID = generatorID
		s.EvMRevision = record[9]
		s.SensorType = record[10]
		s.SensorNumber = record[11]
		s.EventDirection = layerexts.GetBits(record[12], 7, 1) == 1
		s.EventType = layerexts.GetBits(record[12], 0, 7)
		copy(s.EventData[:], record[13:16])
	default:
		copy(s.Data[:], record[3:16])
	}

	s.BaseLayer = layers.BaseLayer{Contents: data[:18], Payload: data[18:]}
	return nil
}

func (s *SELEntry) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(16)
	if err != nil {
		return err
	}
	layerexts.PutUint16LE(bytes, 0, s.RecordID)
	bytes[2] = s.RecordType
	switch ClassifyRecordType(s.RecordType) {
	case SELEventTypeSystemEvent:
		encodeSELTimestamp(bytes[3:7], s.Timestamp)
		layerexts.PutUint16LE(bytes, 7, s.GeneratorID)
		bytes[9] = s.EvMRevision
		bytes[10] = s.SensorType
		bytes[11] = s.SensorNumber
		var evByte byte
		layerexts.SetBits(&evByte, 0, 7, s.EventType)
		if s.EventDirection {
			layerexts.SetBits(&evByte, 7, 1, 1)
		}
		bytes[12] = evByte
		copy(bytes[13:16], s.EventData[:])
	default:
		copy(bytes[3:16], s.Data[:])
	}
	return nil
}

// ClearSELRequest carries the reservation and the three-byte "CLR"
// erase-initiation code; InitiateErase distinguishes "initiate erase" from
// "poll erase progress" calls using the same command.
type ClearSELRequest struct {
	layers.BaseLayer

	ReservationID uint16
	InitiateErase bool
}

var clrCode = [3]byte{'C', 'L', 'R'}

func (c *ClearSELRequest) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(6)
	if err != nil {
		return err
	}
	layerexts.PutUint16LE(bytes, 0, c.ReservationID)
	copy(bytes[2:5], clrCode[:])
	if c.InitiateErase {
		bytes[5] = 0xAA
	} else {
		bytes[5] = 0x00
	}
	return nil
}

// ClearSELErasureProgress is the single response byte for Clear SEL.
type ClearSELErasureProgress uint8

const (
	ClearSELErasureCompleted  ClearSELErasureProgress = 0x01
	ClearSELErasureInProgress ClearSELErasureProgress = 0x00
)
