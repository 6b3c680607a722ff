//go:build linux

package file

import (
	"fmt"
	"os"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// candidatePaths mirrors the search order OpenIPMI userspace tools use:
// the modern udev name first, then the older static device-node layouts.
func candidatePaths(devNum int) []string {
	return []string{
		fmt.Sprintf("/dev/ipmi%d", devNum),
		fmt.Sprintf("/dev/ipmi/%d", devNum),
		fmt.Sprintf("/dev/ipmidev/%d", devNum),
	}
}

type device struct {
	path string
	f    *os.File
	msgid int64
}

func openDevice(path string) (*device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("file: opening %v: %w", path, err)
	}
	var recvEvents int32 = 1
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), ipmictlSetGetsEventsCmd, uintptr(unsafe.Pointer(&recvEvents))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("file: enabling event receiver on %v: %w", path, errno)
	}
	return &device{path: path, f: f}, nil
}

// OpenNumbered opens the first of the conventional device paths for the
// given controller number (normally 0).
func OpenNumbered(devNum int) (*device, error) {
	var lastErr error
	for _, p := range candidatePaths(devNum) {
		d, err := openDevice(p)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("file: no IPMI device found for controller %d: %w", devNum, lastErr)
}

func (d *device) send(netfn, cmd uint8, data []byte) error {
	addr := ipmiSystemInterfaceAddr{
		AddrType: ipmiSystemInterfaceAddrType,
		Channel:  ipmiBMCChannel,
	}
	msgid := atomic.AddInt64(&d.msgid, 1)

	var dataPtr uintptr
	if len(data) > 0 {
		dataPtr = uintptr(unsafe.Pointer(&data[0]))
	}
	req := ipmiReq{
		Addr:    uintptr(unsafe.Pointer(&addr)),
		AddrLen: uint32(unsafe.Sizeof(addr)),
		Msgid:   msgid,
		Msg: ipmiMsg{
			Netfn:   netfn,
			Cmd:     cmd,
			DataLen: uint16(len(data)),
			Data:    dataPtr,
		},
	}
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.f.Fd(), ipmictlSendCommand, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return fmt.Errorf("file: sending IPMI request: %w", errno)
	}
	d.msgid = msgid
	return nil
}

func (d *device) recv() ([]byte, error) {
	fd := int(d.f.Fd())
	var respAddr ipmiAddr
	respData := make([]byte, ipmiMaxMsgLen)
	recv := ipmiRecv{
		Addr:    uintptr(unsafe.Pointer(&respAddr)),
		AddrLen: uint32(unsafe.Sizeof(respAddr)),
		Msg: ipmiMsg{
			DataLen: uint16(len(respData)),
			Data:    uintptr(unsafe.Pointer(&respData[0])),
		},
	}

	for {
		var fdSet unix.FdSet
		fdSet.Bits[fd/64] |= 1 << (uint(fd) % 64)
		if _, err := unix.Select(fd+1, &fdSet, nil, nil, nil); err != nil {
			return nil, fmt.Errorf("file: waiting for IPMI response: %w", err)
		}
		if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.f.Fd(), ipmictlReceiveMsgTrunc, uintptr(unsafe.Pointer(&recv))); errno != 0 {
			return nil, fmt.Errorf("file: reading IPMI response: %w", errno)
		}
		if recv.Msgid == d.msgid {
			break
		}
	}

	n := int(recv.Msg.DataLen)
	if n > len(respData) {
		n = len(respData)
	}
	return respData[:n], nil
}

func (d *device) close() error {
	return d.f.Close()
}
