package bmc

import (
	"context"
	"fmt"

	"github.com/ironbmc/bmc/pkg/ipmi"
	"github.com/ironbmc/bmc/pkg/layerexts"

	"github.com/google/gopacket"
)

// GetSDRRepositoryInfo reports the SDR repository's occupancy and
// capabilities.
func (s *Session) GetSDRRepositoryInfo(ctx context.Context) (*ipmi.GetSDRRepositoryInfoResponse, error) {
	rsp := &ipmi.GetSDRRepositoryInfoResponse{}
	code, err := s.Execute(ctx, ipmi.OperationGetSDRRepositoryInfoReq, nil, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (s *Session) reserveSDRRepository(ctx context.Context) (uint16, error) {
	rsp := &ipmi.ReserveSDRRepositoryResponse{}
	code, err := s.Execute(ctx, ipmi.OperationReserveSDRRepositoryReq, nil, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return 0, err
	}
	return rsp.ReservationID, nil
}

// rawSDRResponse decodes only the two-byte next-record-ID prefix of a Get
// SDR response, leaving the record bytes undecoded for ParseSDRRecord.
type rawSDRResponse struct {
	data []byte
}

func (r *rawSDRResponse) DecodeFromBytes(data []byte, _ gopacket.DecodeFeedback) error {
	r.data = append([]byte(nil), data...)
	return nil
}

// GetSDR reads one full SDR record by ID, dispatching it to its concrete
// record type, and returns the record alongside the next record ID to
// continue iteration with. A stale reservation (the BMC reports
// CompletionCodeReservationCanceled because the repository changed
// mid-read) is retried with a fresh reservation; three consecutive
// cancellations on the same record are reported as fatal.
func (s *Session) GetSDR(ctx context.Context, recordID uint16) (layerexts.SerializableDecodingLayer, uint16, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		reservationID, err := s.reserveSDRRepository(ctx)
		if err != nil {
			return nil, 0, err
		}

		req := &ipmi.GetSDRRequest{
			ReservationID:  reservationID,
			RecordID:       recordID,
			RequestedBytes: 0xff,
		}
		raw := &rawSDRResponse{}
		code, err := s.Execute(ctx, ipmi.OperationGetSDRReq, req, raw)
		if code == ipmi.CompletionCodeReservationCanceled {
			lastErr = fmt.Errorf("bmc: SDR reservation canceled while reading record %d", recordID)
			continue
		}
		if err := ValidateResponse(code, err); err != nil {
			return nil, 0, err
		}

		prefix, recordBytes, err := ipmi.SplitGetSDRResponse(raw.data)
		if err != nil {
			return nil, 0, err
		}
		record, err := ipmi.ParseSDRRecord(recordBytes)
		if err != nil {
			return nil, 0, err
		}
		return record, prefix.NextRecordID, nil
	}
	return nil, 0, fmt.Errorf("bmc: SDR reservation canceled three times in a row reading record %d: %w", recordID, lastErr)
}

// SDRRecords iterates the entire SDR repository from the first record,
// calling fn with each decoded record (one of the *Record types in
// pkg/ipmi, e.g. *ipmi.FullSensorRecord). Iteration stops at the first
// error fn returns, or when the repository is exhausted.
func (s *Session) SDRRecords(ctx context.Context, fn func(layerexts.SerializableDecodingLayer) error) error {
	recordID := uint16(0)
	for {
		record, nextID, err := s.GetSDR(ctx, recordID)
		if err != nil {
			return err
		}
		if err := fn(record); err != nil {
			return err
		}
		if nextID == 0xffff || nextID == recordID {
			return nil
		}
		recordID = nextID
	}
}

// GetSensorReading reads a sensor owned by the BMC itself (use
// GetSensorReadingBridged for sensors reachable only over IPMB).
func (s *Session) GetSensorReading(ctx context.Context, sensorNumber uint8) (*ipmi.GetSensorReadingResponse, error) {
	req := &ipmi.GetSensorReadingRequest{SensorNumber: sensorNumber}
	rsp := &ipmi.GetSensorReadingResponse{}
	code, err := s.Execute(ctx, ipmi.OperationGetSensorReadingReq, req, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return nil, err
	}
	return rsp, nil
}
