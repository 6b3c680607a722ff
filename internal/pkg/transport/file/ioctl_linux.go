//go:build linux

package file

// IPMI ioctl vocabulary and wire structures, mirroring the Linux kernel's
// <linux/ipmi.h> uapi (struct ipmi_req/ipmi_recv/ipmi_msg/ipmi_addr). Field
// order matters: these are passed to the kernel by raw pointer, so the Go
// layout must match the C layout byte for byte.
const (
	ipmictlSendCommand      = 0x8028690d
	ipmictlReceiveMsgTrunc  = 0xc030690b
	ipmictlSetGetsEventsCmd = 0x80046910

	ipmiSystemInterfaceAddrType = 0x0c
	ipmiBMCChannel              = 0x0f

	ipmiMaxAddrSize = 32
	ipmiMaxMsgLen   = 272
)

type ipmiMsg struct {
	Netfn   uint8
	Cmd     uint8
	DataLen uint16
	Data    uintptr
}

type ipmiReq struct {
	Addr    uintptr
	AddrLen uint32
	Msgid   int64
	Msg     ipmiMsg
}

type ipmiRecv struct {
	RecvType int32
	Addr     uintptr
	AddrLen  uint32
	Msgid    int64
	Msg      ipmiMsg
}

type ipmiAddr struct {
	AddrType int32
	Channel  int16
	Data     [ipmiMaxAddrSize]byte
}

type ipmiSystemInterfaceAddr struct {
	AddrType int32
	Channel  int16
	Lun      uint8
}
