package ipmi

import (
	"fmt"

	"github.com/ironbmc/bmc/pkg/iana"

	"github.com/google/gopacket"
)

// Operation uniquely identifies a command that the BMC can perform. This is
// not terminology defined in the specification; it exists to let us
// identify the payload type of a particular IPMI message, which contains
// this value (spec 3 IpmiCommand, 4.2 command catalogue).
type Operation struct {

	// Function is the network function code of the message. The command
	// field indicates the specific functionality desired within this
	// function class.
	Function NetworkFunction

	// Body is the defining body code. It is only relevant if the function
	// is Group, and is ignored otherwise.
	Body BodyCode

	// Enterprise is the enterprise number when the function is OEM.
	// It is ignored otherwise.
	Enterprise iana.Enterprise

	// Command is the BMC function being requested, or the response.
	Command CommandNumber
}

var (
	OperationGetDeviceIDReq = Operation{Function: NetworkFunctionAppReq, Command: 0x01}
	OperationGetDeviceIDRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x01}

	OperationGetChassisStatusReq = Operation{Function: NetworkFunctionChassisReq, Command: 0x01}
	OperationGetChassisStatusRsp = Operation{Function: NetworkFunctionChassisRsp, Command: 0x01}
	OperationChassisControlReq   = Operation{Function: NetworkFunctionChassisReq, Command: 0x02}
	OperationChassisControlRsp   = Operation{Function: NetworkFunctionChassisRsp, Command: 0x02}

	OperationGetSystemGUIDReq = Operation{Function: NetworkFunctionAppReq, Command: 0x37}
	OperationGetSystemGUIDRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x37}

	OperationGetChannelAuthenticationCapabilitiesReq = Operation{Function: NetworkFunctionAppReq, Command: 0x38}
	OperationGetChannelAuthenticationCapabilitiesRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x38}

	OperationGetSessionChallengeReq = Operation{Function: NetworkFunctionAppReq, Command: 0x39}
	OperationGetSessionChallengeRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x39}

	OperationActivateSessionReq = Operation{Function: NetworkFunctionAppReq, Command: 0x3a}
	OperationActivateSessionRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x3a}

	OperationSetSessionPrivilegeLevelReq = Operation{Function: NetworkFunctionAppReq, Command: 0x3b}
	OperationSetSessionPrivilegeLevelRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x3b}

	OperationCloseSessionReq = Operation{Function: NetworkFunctionAppReq, Command: 0x3c}
	OperationCloseSessionRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x3c}

	OperationGetSessionInfoReq = Operation{Function: NetworkFunctionAppReq, Command: 0x3d}
	OperationGetSessionInfoRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x3d}

	OperationGetChannelAccessReq = Operation{Function: NetworkFunctionAppReq, Command: 0x41}
	OperationGetChannelAccessRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x41}
	OperationSetChannelAccessReq = Operation{Function: NetworkFunctionAppReq, Command: 0x40}
	OperationSetChannelAccessRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x40}
	OperationGetChannelInfoReq   = Operation{Function: NetworkFunctionAppReq, Command: 0x42}
	OperationGetChannelInfoRsp   = Operation{Function: NetworkFunctionAppRsp, Command: 0x42}

	OperationGetChannelCipherSuitesReq = Operation{Function: NetworkFunctionAppReq, Command: 0x54}
	OperationGetChannelCipherSuitesRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x54}

	OperationSetLANConfigurationParametersReq = Operation{Function: NetworkFunctionTransportReq, Command: 0x01}
	OperationSetLANConfigurationParametersRsp = Operation{Function: NetworkFunctionTransportRsp, Command: 0x01}
	OperationGetLANConfigurationParametersReq = Operation{Function: NetworkFunctionTransportReq, Command: 0x02}
	OperationGetLANConfigurationParametersRsp = Operation{Function: NetworkFunctionTransportRsp, Command: 0x02}

	OperationGetSELInfoReq        = Operation{Function: NetworkFunctionStorageReq, Command: 0x40}
	OperationGetSELInfoRsp        = Operation{Function: NetworkFunctionStorageRsp, Command: 0x40}
	OperationGetSELAllocInfoReq   = Operation{Function: NetworkFunctionStorageReq, Command: 0x41}
	OperationGetSELAllocInfoRsp   = Operation{Function: NetworkFunctionStorageRsp, Command: 0x41}
	OperationReserveSELReq        = Operation{Function: NetworkFunctionStorageReq, Command: 0x42}
	OperationReserveSELRsp        = Operation{Function: NetworkFunctionStorageRsp, Command: 0x42}
	OperationGetSELEntryReq       = Operation{Function: NetworkFunctionStorageReq, Command: 0x43}
	OperationGetSELEntryRsp       = Operation{Function: NetworkFunctionStorageRsp, Command: 0x43}
	OperationClearSELReq          = Operation{Function: NetworkFunctionStorageReq, Command: 0x47}
	OperationClearSELRsp          = Operation{Function: NetworkFunctionStorageRsp, Command: 0x47}

	OperationGetSDRRepositoryInfoReq = Operation{Function: NetworkFunctionStorageReq, Command: 0x20}
	OperationGetSDRRepositoryInfoRsp = Operation{Function: NetworkFunctionStorageRsp, Command: 0x20}
	OperationGetSDRAllocInfoReq      = Operation{Function: NetworkFunctionStorageReq, Command: 0x21}
	OperationGetSDRAllocInfoRsp      = Operation{Function: NetworkFunctionStorageRsp, Command: 0x21}
	OperationReserveSDRRepositoryReq = Operation{Function: NetworkFunctionStorageReq, Command: 0x22}
	OperationReserveSDRRepositoryRsp = Operation{Function: NetworkFunctionStorageRsp, Command: 0x22}
	OperationGetSDRReq               = Operation{Function: NetworkFunctionStorageReq, Command: 0x23}
	OperationGetSDRRsp               = Operation{Function: NetworkFunctionStorageRsp, Command: 0x23}

	OperationGetDeviceSDRInfoReq = Operation{Function: NetworkFunctionSensorReq, Command: 0x20}
	OperationGetDeviceSDRInfoRsp = Operation{Function: NetworkFunctionSensorRsp, Command: 0x20}
	OperationGetDeviceSDRReq     = Operation{Function: NetworkFunctionSensorReq, Command: 0x21}
	OperationGetDeviceSDRRsp     = Operation{Function: NetworkFunctionSensorRsp, Command: 0x21}

	OperationGetSensorReadingReq = Operation{Function: NetworkFunctionSensorReq, Command: 0x2d}
	OperationGetSensorReadingRsp = Operation{Function: NetworkFunctionSensorRsp, Command: 0x2d}

	OperationSendMessageReq = Operation{Function: NetworkFunctionAppReq, Command: 0x34}
	OperationSendMessageRsp = Operation{Function: NetworkFunctionAppRsp, Command: 0x34}

	// operationLayerTypes tells us which layer comes next given a network
	// function and command. It should never be modified during runtime, as
	// there is no way to guarantee exclusive access.
	operationLayerTypes = map[Operation]gopacket.LayerType{
		OperationGetDeviceIDRsp:                           LayerTypeGetDeviceIDRsp,
		OperationGetChassisStatusRsp:                      LayerTypeGetChassisStatusRsp,
		OperationGetSystemGUIDRsp:                         LayerTypeGetSystemGUIDRsp,
		OperationGetChannelAuthenticationCapabilitiesRsp:  LayerTypeGetChannelAuthenticationCapabilitiesRsp,
		OperationGetSessionChallengeRsp:                   LayerTypeGetSessionChallengeRsp,
		OperationActivateSessionRsp:                       LayerTypeActivateSessionRsp,
		OperationGetChannelCipherSuitesRsp:                LayerTypeGetChannelCipherSuitesRsp,
		OperationGetLANConfigurationParametersRsp:         LayerTypeGetLANConfigurationParametersRsp,
		OperationGetSELInfoRsp:                            LayerTypeGetSELInfoRsp,
		OperationGetSELAllocInfoRsp:                       LayerTypeGetSELAllocInfoRsp,
		OperationReserveSELRsp:                            LayerTypeReserveSELRsp,
		OperationGetSELEntryRsp:                           LayerTypeGetSELEntryRsp,
		OperationGetSDRRepositoryInfoRsp:                  LayerTypeGetSDRRepositoryInfoRsp,
		OperationGetSDRAllocInfoRsp:                       LayerTypeGetSDRAllocInfoRsp,
		OperationReserveSDRRepositoryRsp:                  LayerTypeReserveSDRRepositoryRsp,
		OperationGetSDRRsp:                                LayerTypeGetSDRRsp,
		OperationGetSensorReadingRsp:                      LayerTypeGetSensorReadingRsp,
		OperationGetSessionInfoRsp:                        LayerTypeGetSessionInfoRsp,
		OperationGetChannelAccessRsp:                      LayerTypeGetChannelAccessRsp,
		OperationGetChannelInfoRsp:                        LayerTypeGetChannelInfoRsp,
		OperationSendMessageRsp:                           LayerTypeSendMessageRsp,
	}
)

func (o Operation) String() string {
	return fmt.Sprintf("%v, %v", o.Function, o.NextLayerType())
}

func (o Operation) NextLayerType() gopacket.LayerType {
	if layer, ok := operationLayerTypes[o]; ok {
		return layer
	}
	return gopacket.LayerTypePayload
}
