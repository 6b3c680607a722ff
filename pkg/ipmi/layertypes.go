package ipmi

import "github.com/google/gopacket"

// LayerType registry: one gopacket.LayerType per response body shape,
// matching the teacher's pattern of dispatching Operation -> LayerType in
// operation.go's operationLayerTypes map.
var (
	LayerTypeMessage gopacket.LayerType

	LayerTypeGetDeviceIDRsp                          gopacket.LayerType
	LayerTypeGetChassisStatusRsp                     gopacket.LayerType
	LayerTypeGetSystemGUIDRsp                        gopacket.LayerType
	LayerTypeGetChannelAuthenticationCapabilitiesRsp gopacket.LayerType
	LayerTypeGetSessionChallengeRsp                  gopacket.LayerType
	LayerTypeActivateSessionRsp                      gopacket.LayerType
	LayerTypeGetChannelCipherSuitesRsp                gopacket.LayerType
	LayerTypeGetLANConfigurationParametersRsp        gopacket.LayerType
	LayerTypeGetSELInfoRsp                           gopacket.LayerType
	LayerTypeGetSELAllocInfoRsp                      gopacket.LayerType
	LayerTypeReserveSELRsp                           gopacket.LayerType
	LayerTypeGetSELEntryRsp                          gopacket.LayerType
	LayerTypeGetSDRRepositoryInfoRsp                 gopacket.LayerType
	LayerTypeGetSDRAllocInfoRsp                       gopacket.LayerType
	LayerTypeReserveSDRRepositoryRsp                  gopacket.LayerType
	LayerTypeGetSDRRsp                               gopacket.LayerType
	LayerTypeGetSensorReadingRsp                      gopacket.LayerType
	LayerTypeGetSessionInfoRsp                        gopacket.LayerType
	LayerTypeGetChannelAccessRsp                      gopacket.LayerType
	LayerTypeGetChannelInfoRsp                        gopacket.LayerType
	LayerTypeSendMessageRsp                          gopacket.LayerType

	LayerTypeConfidentialityAESCBC128 gopacket.LayerType
	LayerTypeIntegrityHMACSHA196      gopacket.LayerType
)

func init() {
	LayerTypeMessage = gopacket.RegisterLayerType(1000,
		gopacket.LayerTypeMetadata{Name: "IPMIMessage"})

	LayerTypeGetDeviceIDRsp = gopacket.RegisterLayerType(1001,
		gopacket.LayerTypeMetadata{Name: "GetDeviceIDResponse"})
	LayerTypeGetChassisStatusRsp = gopacket.RegisterLayerType(1002,
		gopacket.LayerTypeMetadata{Name: "GetChassisStatusResponse"})
	LayerTypeGetSystemGUIDRsp = gopacket.RegisterLayerType(1003,
		gopacket.LayerTypeMetadata{Name: "GetSystemGUIDResponse"})
	LayerTypeGetChannelAuthenticationCapabilitiesRsp = gopacket.RegisterLayerType(1004,
		gopacket.LayerTypeMetadata{Name: "GetChannelAuthenticationCapabilitiesResponse"})
	LayerTypeGetSessionChallengeRsp = gopacket.RegisterLayerType(1005,
		gopacket.LayerTypeMetadata{Name: "GetSessionChallengeResponse"})
	LayerTypeActivateSessionRsp = gopacket.RegisterLayerType(1006,
		gopacket.LayerTypeMetadata{Name: "ActivateSessionResponse"})
	LayerTypeGetChannelCipherSuitesRsp = gopacket.RegisterLayerType(1007,
		gopacket.LayerTypeMetadata{Name: "GetChannelCipherSuitesResponse"})
	LayerTypeGetLANConfigurationParametersRsp = gopacket.RegisterLayerType(1008,
		gopacket.LayerTypeMetadata{Name: "GetLANConfigurationParametersResponse"})
	LayerTypeGetSELInfoRsp = gopacket.RegisterLayerType(1009,
		gopacket.LayerTypeMetadata{Name: "GetSELInfoResponse"})
	LayerTypeGetSELAllocInfoRsp = gopacket.RegisterLayerType(1010,
		gopacket.LayerTypeMetadata{Name: "GetSELAllocInfoResponse"})
	LayerTypeReserveSELRsp = gopacket.RegisterLayerType(1011,
		gopacket.LayerTypeMetadata{Name: "ReserveSELResponse"})
	LayerTypeGetSELEntryRsp = gopacket.RegisterLayerType(1012,
		gopacket.LayerTypeMetadata{Name: "GetSELEntryResponse"})
	LayerTypeGetSDRRepositoryInfoRsp = gopacket.RegisterLayerType(1013,
		gopacket.LayerTypeMetadata{Name: "GetSDRRepositoryInfoResponse"})
	LayerTypeGetSDRAllocInfoRsp = gopacket.RegisterLayerType(1014,
		gopacket.LayerTypeMetadata{Name: "GetSDRAllocInfoResponse"})
	LayerTypeReserveSDRRepositoryRsp = gopacket.RegisterLayerType(1015,
		gopacket.LayerTypeMetadata{Name: "ReserveSDRRepositoryResponse"})
	LayerTypeGetSDRRsp = gopacket.RegisterLayerType(1016,
		gopacket.LayerTypeMetadata{Name: "GetSDRResponse"})
	LayerTypeGetSensorReadingRsp = gopacket.RegisterLayerType(1017,
		gopacket.LayerTypeMetadata{Name: "GetSensorReadingResponse"})
	LayerTypeGetSessionInfoRsp = gopacket.RegisterLayerType(1018,
		gopacket.LayerTypeMetadata{Name: "GetSessionInfoResponse"})
	LayerTypeGetChannelAccessRsp = gopacket.RegisterLayerType(1019,
		gopacket.LayerTypeMetadata{Name: "GetChannelAccessResponse"})
	LayerTypeGetChannelInfoRsp = gopacket.RegisterLayerType(1020,
		gopacket.LayerTypeMetadata{Name: "GetChannelInfoResponse"})
	LayerTypeSendMessageRsp = gopacket.RegisterLayerType(1021,
		gopacket.LayerTypeMetadata{Name: "SendMessageResponse"})

	LayerTypeConfidentialityAESCBC128 = gopacket.RegisterLayerType(1022,
		gopacket.LayerTypeMetadata{Name: "AESCBC128Confidentiality"})
	LayerTypeIntegrityHMACSHA196 = gopacket.RegisterLayerType(1023,
		gopacket.LayerTypeMetadata{Name: "HMACSHA196Integrity"})
}
