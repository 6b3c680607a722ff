package ipmi

import "fmt"

// NetworkFunction is the 6-bit function code carried in the top 6 bits of
// the Message's NetFn/LUN byte (spec 3, 4.2). Even values are requests,
// odd values are the matching response (request NetFn + 1).
type NetworkFunction uint8

const (
	NetworkFunctionChassisReq   NetworkFunction = 0x00
	NetworkFunctionChassisRsp   NetworkFunction = 0x01
	NetworkFunctionBridgeReq    NetworkFunction = 0x02
	NetworkFunctionBridgeRsp    NetworkFunction = 0x03
	NetworkFunctionSensorReq    NetworkFunction = 0x04
	NetworkFunctionSensorRsp    NetworkFunction = 0x05
	NetworkFunctionAppReq       NetworkFunction = 0x06
	NetworkFunctionAppRsp       NetworkFunction = 0x07
	NetworkFunctionFirmwareReq  NetworkFunction = 0x08
	NetworkFunctionFirmwareRsp  NetworkFunction = 0x09
	NetworkFunctionStorageReq   NetworkFunction = 0x0a
	NetworkFunctionStorageRsp   NetworkFunction = 0x0b
	NetworkFunctionTransportReq NetworkFunction = 0x0c
	NetworkFunctionTransportRsp NetworkFunction = 0x0d
	NetworkFunctionGroupReq     NetworkFunction = 0x2c
	NetworkFunctionGroupRsp     NetworkFunction = 0x2d
	NetworkFunctionOEMReq       NetworkFunction = 0x2e
	NetworkFunctionOEMRsp       NetworkFunction = 0x2f
)

var netFnNames = map[NetworkFunction]string{
	NetworkFunctionChassisReq:   "Chassis",
	NetworkFunctionChassisRsp:   "Chassis",
	NetworkFunctionBridgeReq:    "Bridge",
	NetworkFunctionBridgeRsp:    "Bridge",
	NetworkFunctionSensorReq:    "Sensor/Event",
	NetworkFunctionSensorRsp:    "Sensor/Event",
	NetworkFunctionAppReq:       "App",
	NetworkFunctionAppRsp:       "App",
	NetworkFunctionFirmwareReq:  "Firmware",
	NetworkFunctionFirmwareRsp:  "Firmware",
	NetworkFunctionStorageReq:   "Storage",
	NetworkFunctionStorageRsp:   "Storage",
	NetworkFunctionTransportReq: "Transport",
	NetworkFunctionTransportRsp: "Transport",
	NetworkFunctionGroupReq:     "Group",
	NetworkFunctionGroupRsp:     "Group",
	NetworkFunctionOEMReq:       "OEM",
	NetworkFunctionOEMRsp:       "OEM",
}

// IsRequest reports whether n is an even (request-side) function code.
func (n NetworkFunction) IsRequest() bool {
	return n&0x01 == 0
}

// Response returns the response NetFn (n+1) for a request NetFn, or n
// itself if n is already a response code.
func (n NetworkFunction) Response() NetworkFunction {
	if n.IsRequest() {
		return n | 0x01
	}
	return n
}

func (n NetworkFunction) String() string {
	if name, ok := netFnNames[n]; ok {
		return name
	}
	return fmt.Sprintf("NetFn(0x%02x)", uint8(n))
}

// BodyCode is the defining-body byte present immediately after the
// command byte for Group NetFn (0x2c/0x2d) messages.
type BodyCode uint8

// CommandNumber is the 1-byte command code within a NetFn's namespace.
type CommandNumber uint8

// LUN is the 2-bit Logical Unit Number sub-address within a slave device.
type LUN uint8

const (
	LUNBMC LUN = 0
)

// Address is a 7-bit slave address or software ID plus a type bit, as
// carried in the Message's ResponderAddress/RequesterAddress fields. The
// least significant bit is 0 for a slave address, 1 for a software ID;
// the remaining 7 bits hold the value.
type Address uint8

// LocalAddressDefault is the BMC's local slave address (0x20, i.e. slave
// address 16) unless the driver reports otherwise (spec 3).
const LocalAddressDefault Address = 0x20

// IsSoftwareID reports whether a is a software ID rather than a slave
// address.
func (a Address) IsSoftwareID() bool {
	return a&0x01 == 0x01
}

func (a Address) String() string {
	if a.IsSoftwareID() {
		return fmt.Sprintf("SWID(0x%02x)", uint8(a)>>1)
	}
	return fmt.Sprintf("0x%02x", uint8(a))
}

// Channel is a 4-bit channel selector that may additionally carry the two
// reserved meanings 0x0e ("current channel") and 0x0f ("system
// interface"). ChannelNumber is the narrower type used once a concrete
// numeric channel is known.
type Channel uint8

// ChannelNumber is a concrete numeric channel in 0..15, excluding the
// "current"/"system interface" sentinels once resolved.
type ChannelNumber uint8

const (
	// ChannelCurrent requests "the channel this request arrived on".
	ChannelCurrent Channel = 0x0e
	// ChannelSystemInterface addresses the system interface (KCS/SMS/etc).
	ChannelSystemInterface Channel = 0x0f
)

// IsSentinel reports whether c is one of the two reserved meanings rather
// than a concrete channel number.
func (c Channel) IsSentinel() bool {
	return c == ChannelCurrent || c == ChannelSystemInterface
}

// Number returns the concrete ChannelNumber for c, or false if c is a
// sentinel value with no fixed numeric channel.
func (c Channel) Number() (ChannelNumber, bool) {
	if c.IsSentinel() {
		return 0, false
	}
	return ChannelNumber(c), true
}

func (c Channel) String() string {
	switch c {
	case ChannelCurrent:
		return "current"
	case ChannelSystemInterface:
		return "system-interface"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// PrivilegeLevel is the requested/granted IPMI session privilege level.
type PrivilegeLevel uint8

const (
	PrivilegeLevelCallback      PrivilegeLevel = 0x01
	PrivilegeLevelUser          PrivilegeLevel = 0x02
	PrivilegeLevelOperator      PrivilegeLevel = 0x03
	PrivilegeLevelAdministrator PrivilegeLevel = 0x04
	PrivilegeLevelOEM           PrivilegeLevel = 0x05
)

func (p PrivilegeLevel) String() string {
	switch p {
	case PrivilegeLevelCallback:
		return "Callback"
	case PrivilegeLevelUser:
		return "User"
	case PrivilegeLevelOperator:
		return "Operator"
	case PrivilegeLevelAdministrator:
		return "Administrator"
	case PrivilegeLevelOEM:
		return "OEM"
	default:
		return fmt.Sprintf("PrivilegeLevel(%d)", uint8(p))
	}
}
