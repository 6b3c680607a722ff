package bmc

import (
	"context"
	"testing"

	"github.com/ironbmc/bmc/pkg/ipmi"

	"github.com/google/gopacket"
)

// fakeReservationExchanger answers Reserve SEL normally and Get SEL Entry
// with a configurable number of ReservationCanceled completions before
// finally succeeding, so GetSELEntry's retry/fatal logic can be exercised
// without a real BMC.
type fakeReservationExchanger struct {
	cancellationsBeforeSuccess int
	getEntryCalls              int
	seq                        uint8
}

func (f *fakeReservationExchanger) exchange(ctx context.Context, requestMessage []byte) ([]byte, error) {
	msg, err := unmarshalMessage(requestMessage, nil)
	if err != nil {
		return nil, err
	}
	f.seq = msg.Sequence

	switch msg.Command {
	case ipmi.OperationReserveSELReq.Command:
		return marshalResponseMessage(msg.Sequence, ipmi.OperationReserveSELRsp, ipmi.CompletionCodeNormal,
			&ipmi.ReserveSELResponse{ReservationID: 1})
	case ipmi.OperationGetSELEntryReq.Command:
		f.getEntryCalls++
		if f.getEntryCalls <= f.cancellationsBeforeSuccess {
			return marshalResponseMessage(msg.Sequence, ipmi.OperationGetSELEntryRsp, ipmi.CompletionCodeReservationCanceled, nil)
		}
		return marshalResponseMessage(msg.Sequence, ipmi.OperationGetSELEntryRsp, ipmi.CompletionCodeNormal,
			selEntryBody(5, &ipmi.SELEntry{RecordID: 5, RecordType: 0x02}))
	default:
		panic("unexpected command")
	}
}

func (f *fakeReservationExchanger) close(ctx context.Context) error { return nil }

// selEntryBody prepends the "next record ID" prefix Get SEL Entry's real
// response carries ahead of the 16-byte record, matching what
// SELEntry.DecodeFromBytes expects.
func selEntryBody(nextRecordID uint16, entry *ipmi.SELEntry) gopacket.SerializableLayer {
	buf := gopacket.NewSerializeBuffer()
	if err := entry.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		panic(err)
	}
	prefixed := make([]byte, 2+len(buf.Bytes()))
	prefixed[0] = uint8(nextRecordID)
	prefixed[1] = uint8(nextRecordID >> 8)
	copy(prefixed[2:], buf.Bytes())
	return rawBytesLayer(prefixed)
}

func TestGetSELEntryRetriesOnReservationCanceled(t *testing.T) {
	ex := &fakeReservationExchanger{cancellationsBeforeSuccess: 2}
	sess := &Session{ex: ex}

	entry, nextID, err := sess.GetSELEntry(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetSELEntry: %v", err)
	}
	if entry.RecordID != 5 || nextID != 5 {
		t.Errorf("got entry %+v, next %d", entry, nextID)
	}
	if ex.getEntryCalls != 3 {
		t.Errorf("got %d Get SEL Entry attempts, want 3", ex.getEntryCalls)
	}
}

func TestGetSELEntryFatalAfterThreeCancellations(t *testing.T) {
	ex := &fakeReservationExchanger{cancellationsBeforeSuccess: 3}
	sess := &Session{ex: ex}

	if _, _, err := sess.GetSELEntry(context.Background(), 0); err == nil {
		t.Error("expected error after three consecutive reservation cancellations")
	}
	if ex.getEntryCalls != 3 {
		t.Errorf("got %d Get SEL Entry attempts, want 3 (no fourth retry)", ex.getEntryCalls)
	}
}
