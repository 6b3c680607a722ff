package bmc

import (
	"context"
	"testing"
	"time"

	"github.com/ironbmc/bmc/internal/pkg/transport/rmcp"
	"github.com/ironbmc/bmc/pkg/ipmi"
)

// fakeRAKPTransport plays the BMC side of RMCP+ session establishment: it
// answers Open Session Request and RAKP Messages 1/3 using the same
// formulas a real BMC would, so V2Sessionless.NewSession's verification
// logic (RAKP2 auth code check, RAKP4 ICV check, resulting exchanger key
// material) can be exercised without a real network round trip.
type fakeRAKPTransport struct {
	username    string
	password    []byte
	bmcSessID   uint32
	bmcRandom   [16]byte
	bmcGUID     [16]byte
	serverDenyOpenSession bool

	consoleSessionID uint32
	consoleRandom    [16]byte
	role             ipmi.PrivilegeLevel

	next []byte
}

func (f *fakeRAKPTransport) Send(data []byte) error {
	header, err := rmcp.UnmarshalSessionHeader(data)
	if err != nil {
		return err
	}
	payload := data[12:]
	if int(header.PayloadLength) <= len(payload) {
		payload = payload[:header.PayloadLength]
	}

	switch header.PayloadType {
	case rmcp.PayloadTypeOpenSessionReq:
		f.consoleSessionID = leUint32(payload[4:8])
		rsp := make([]byte, 12+8+8+8)
		rsp[0] = payload[0] // message tag
		if f.serverDenyOpenSession {
			rsp[1] = 0x01 // non-zero status: insufficient resources
		}
		rsp[2] = payload[1]
		putLEUint32(rsp[4:8], f.consoleSessionID)
		putLEUint32(rsp[8:12], f.bmcSessID)
		rsp[12+4] = payload[8+4]   // echo authentication algorithm
		rsp[20+4] = payload[16+4]  // echo integrity algorithm
		rsp[28+4] = payload[24+4]  // echo confidentiality algorithm
		f.next = f.wrap(rmcp.PayloadTypeOpenSessionRsp, rsp)

	case rmcp.PayloadTypeRAKP1:
		copy(f.consoleRandom[:], payload[8:24])
		f.role = ipmi.PrivilegeLevel(payload[24])
		unameLen := int(payload[27])
		f.username = string(payload[28 : 28+unameLen])

		authCode := rmcp.RAKP2AuthCode(f.password, f.consoleSessionID, f.consoleRandom, f.bmcRandom, f.bmcGUID, f.role, f.username)
		rsp := make([]byte, 40+len(authCode))
		rsp[0] = payload[0]
		putLEUint32(rsp[4:8], f.consoleSessionID)
		copy(rsp[8:24], f.bmcRandom[:])
		copy(rsp[24:40], f.bmcGUID[:])
		copy(rsp[40:], authCode)
		f.next = f.wrap(rmcp.PayloadTypeRAKP2, rsp)

	case rmcp.PayloadTypeRAKP3:
		sik := rmcp.SessionIntegrityKey(f.password, f.consoleRandom, f.bmcRandom, f.role, f.username)
		icv := rmcp.RAKP4IntegrityCheckValue(sik, f.consoleSessionID, f.consoleRandom, f.bmcGUID)
		rsp := make([]byte, 8+len(icv))
		rsp[0] = payload[0]
		putLEUint32(rsp[4:8], f.consoleSessionID)
		copy(rsp[8:], icv)
		f.next = f.wrap(rmcp.PayloadTypeRAKP4, rsp)

	default:
		panic("fakeRAKPTransport: unexpected payload type")
	}
	return nil
}

func (f *fakeRAKPTransport) wrap(pt rmcp.PayloadType, payload []byte) []byte {
	h := rmcp.SessionHeader{PayloadType: pt, PayloadLength: uint16(len(payload))}
	return append(h.Marshal(), payload...)
}

func (f *fakeRAKPTransport) Recv() ([]byte, error) { return f.next, nil }
func (f *fakeRAKPTransport) RemoteAddr() string     { return "fake" }
func (f *fakeRAKPTransport) Close() error           { return nil }

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLEUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func TestV2SessionlessNewSession(t *testing.T) {
	ft := &fakeRAKPTransport{
		password:  []byte("hunter2"),
		bmcSessID: 0xabcd1234,
		bmcRandom: [16]byte{1, 2, 3, 4},
		bmcGUID:   [16]byte{5, 6, 7, 8},
	}
	v := newV2Sessionless(ft, time.Second)

	sess, err := v.NewSession(context.Background(), &SessionOpts{
		Username:          "admin",
		Password:          ft.password,
		MaxPrivilegeLevel: ipmi.PrivilegeLevelAdministrator,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ex, ok := sess.ex.(*v2Exchanger)
	if !ok {
		t.Fatalf("session exchanger is %T, want *v2Exchanger", sess.ex)
	}
	if ex.sessionID != ft.bmcSessID {
		t.Errorf("got session ID %#x, want %#x", ex.sessionID, ft.bmcSessID)
	}
	if ft.username != "admin" {
		t.Errorf("BMC saw username %q, want %q", ft.username, "admin")
	}
	if ft.role != ipmi.PrivilegeLevelAdministrator {
		t.Errorf("BMC saw role %v, want Administrator", ft.role)
	}
}

func TestV2SessionlessNewSessionRejectsBadPassword(t *testing.T) {
	ft := &fakeRAKPTransport{
		password:  []byte("hunter2"),
		bmcSessID: 0xabcd1234,
		bmcRandom: [16]byte{1, 2, 3, 4},
		bmcGUID:   [16]byte{5, 6, 7, 8},
	}
	v := newV2Sessionless(ft, time.Second)

	_, err := v.NewSession(context.Background(), &SessionOpts{
		Username:          "admin",
		Password:          []byte("wrong password"),
		MaxPrivilegeLevel: ipmi.PrivilegeLevelAdministrator,
	})
	if err == nil {
		t.Fatal("expected error establishing a session with the wrong password")
	}
}

func TestV2SessionlessNewSessionPropagatesOpenSessionStatusError(t *testing.T) {
	ft := &fakeRAKPTransport{
		password:              []byte("hunter2"),
		bmcSessID:              0xabcd1234,
		serverDenyOpenSession: true,
	}
	v := newV2Sessionless(ft, time.Second)

	_, err := v.NewSession(context.Background(), &SessionOpts{
		Username:          "admin",
		Password:          ft.password,
		MaxPrivilegeLevel: ipmi.PrivilegeLevelAdministrator,
	})
	if err == nil {
		t.Fatal("expected error when the BMC denies the Open Session Request")
	}
}
