package bmc

import (
	"context"
	"fmt"

	"github.com/ironbmc/bmc/pkg/ipmi"
)

// GetSELInfo reports the System Event Log's occupancy and capabilities.
func (s *Session) GetSELInfo(ctx context.Context) (*ipmi.GetSELInfoResponse, error) {
	rsp := &ipmi.GetSELInfoResponse{}
	code, err := s.Execute(ctx, ipmi.OperationGetSELInfoReq, nil, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return nil, err
	}
	return rsp, nil
}

// reserveSEL obtains a reservation ID for a GetSELEntry/ClearSEL sequence.
// Any non-normal completion code, including one from a BMC without
// reservation support, is returned as an error; there is no fallback to
// reading without a reservation.
func (s *Session) reserveSEL(ctx context.Context) (uint16, error) {
	rsp := &ipmi.ReserveSELResponse{}
	code, err := s.Execute(ctx, ipmi.OperationReserveSELReq, nil, rsp)
	if err := ValidateResponse(code, err); err != nil {
		return 0, err
	}
	return rsp.ReservationID, nil
}

// GetSELEntry reads one SEL record by ID, returning the next record ID
// to continue iteration with (ipmi.SELRecordIDLast once there is none).
// A stale reservation (the BMC reports CompletionCodeReservationCanceled
// because the log changed mid-iteration) is retried with a fresh
// reservation; three consecutive cancellations on the same record are
// reported as fatal.
func (s *Session) GetSELEntry(ctx context.Context, recordID uint16) (*ipmi.SELEntry, uint16, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		reservationID, err := s.reserveSEL(ctx)
		if err != nil {
			return nil, 0, err
		}

		req := &ipmi.GetSELEntryRequest{
			ReservationID:  reservationID,
			RecordID:       recordID,
			RequestedBytes: 0xff,
		}
		rsp := &ipmi.SELEntry{}
		code, err := s.Execute(ctx, ipmi.OperationGetSELEntryReq, req, rsp)
		if code == ipmi.CompletionCodeReservationCanceled {
			lastErr = fmt.Errorf("bmc: SEL reservation canceled while reading record %d", recordID)
			continue
		}
		if err := ValidateResponse(code, err); err != nil {
			return nil, 0, err
		}
		return rsp, rsp.RecordID, nil
	}
	return nil, 0, fmt.Errorf("bmc: SEL reservation canceled three times in a row reading record %d: %w", recordID, lastErr)
}

// SELEntries iterates the entire SEL from the oldest record, calling fn
// with each decoded entry. Iteration stops at the first error fn
// returns, or when the log is exhausted.
func (s *Session) SELEntries(ctx context.Context, fn func(*ipmi.SELEntry) error) error {
	recordID := uint16(0)
	for {
		entry, nextID, err := s.GetSELEntry(ctx, recordID)
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
		if nextID == ipmi.SELRecordIDLast || nextID == recordID {
			return nil
		}
		recordID = nextID
	}
}

// ClearSEL erases the entire System Event Log. It reserves and initiates
// the erase, and returns as soon as the BMC accepts the request; it does
// not poll for erase completion.
func (s *Session) ClearSEL(ctx context.Context) error {
	reservationID, err := s.reserveSEL(ctx)
	if err != nil {
		return err
	}
	req := &ipmi.ClearSELRequest{ReservationID: reservationID, InitiateErase: true}
	code, err := s.Execute(ctx, ipmi.OperationClearSELReq, req, nil)
	return ValidateResponse(code, err)
}
