package ipmi

import "fmt"

// CompletionCode is the single-byte outcome prefix of every IPMI response
// (spec 3, 7). 0x00 is success; 0xc0-0xff are generic/standard errors;
// everything else is command-specific or OEM.
type CompletionCode uint8

const (
	CompletionCodeNormal                         CompletionCode = 0x00
	CompletionCodeNodeBusy                       CompletionCode = 0xc0
	CompletionCodeInvalidCommand                 CompletionCode = 0xc1
	CompletionCodeInvalidCommandForLUN           CompletionCode = 0xc2
	CompletionCodeTimeout                        CompletionCode = 0xc3
	CompletionCodeOutOfSpace                     CompletionCode = 0xc4
	CompletionCodeReservationCanceled            CompletionCode = 0xc5
	CompletionCodeRequestDataTruncated           CompletionCode = 0xc6
	CompletionCodeRequestDataLengthInvalid       CompletionCode = 0xc7
	CompletionCodeRequestDataFieldLengthExceeded CompletionCode = 0xc8
	CompletionCodeParameterOutOfRange            CompletionCode = 0xc9
	CompletionCodeCannotReturnRequestedBytes     CompletionCode = 0xca
	CompletionCodeRequestedDataNotPresent        CompletionCode = 0xcb
	CompletionCodeInvalidDataFieldInRequest      CompletionCode = 0xcc
	CompletionCodeCommandIllegalForSensor        CompletionCode = 0xcd
	CompletionCodeResponseCouldNotBeProvided     CompletionCode = 0xce
	CompletionCodeDuplicatedRequest              CompletionCode = 0xcf
	CompletionCodeSDRRepositoryInUpdateMode      CompletionCode = 0xd0
	CompletionCodeFirmwareUpdateMode             CompletionCode = 0xd1
	CompletionCodeBMCInitializing                CompletionCode = 0xd2
	CompletionCodeDestinationUnavailable         CompletionCode = 0xd3
	CompletionCodeInsufficientPrivilege          CompletionCode = 0xd4
	CompletionCodeNotSupportedInPresentState     CompletionCode = 0xd5
	CompletionCodeParameterIsIllegal             CompletionCode = 0xd6
	CompletionCodeUnspecifiedError               CompletionCode = 0xff
)

var completionCodeNames = map[CompletionCode]string{
	CompletionCodeNormal:                         "command completed normally",
	CompletionCodeNodeBusy:                       "node busy",
	CompletionCodeInvalidCommand:                 "invalid command",
	CompletionCodeInvalidCommandForLUN:           "command invalid for given LUN",
	CompletionCodeTimeout:                        "timeout while processing command",
	CompletionCodeOutOfSpace:                     "out of space",
	CompletionCodeReservationCanceled:            "reservation canceled or invalid reservation ID",
	CompletionCodeRequestDataTruncated:           "request data truncated",
	CompletionCodeRequestDataLengthInvalid:       "request data length invalid",
	CompletionCodeRequestDataFieldLengthExceeded: "request data field length limit exceeded",
	CompletionCodeParameterOutOfRange:            "parameter out of range",
	CompletionCodeCannotReturnRequestedBytes:     "cannot return number of requested data bytes",
	CompletionCodeRequestedDataNotPresent:        "requested sensor, data, or record not present",
	CompletionCodeInvalidDataFieldInRequest:      "invalid data field in request",
	CompletionCodeCommandIllegalForSensor:        "command illegal for specified sensor or record type",
	CompletionCodeResponseCouldNotBeProvided:     "command response could not be provided",
	CompletionCodeDuplicatedRequest:              "cannot execute duplicated request",
	CompletionCodeSDRRepositoryInUpdateMode:      "SDR Repository in update mode",
	CompletionCodeFirmwareUpdateMode:             "device in firmware update mode",
	CompletionCodeBMCInitializing:                "BMC initialization in progress",
	CompletionCodeDestinationUnavailable:         "destination unavailable",
	CompletionCodeInsufficientPrivilege:          "insufficient privilege level",
	CompletionCodeNotSupportedInPresentState:     "command not supported in present state",
	CompletionCodeParameterIsIllegal:             "parameter is illegal because command sub-function disabled",
	CompletionCodeUnspecifiedError:               "unspecified error",
}

// IsSuccess reports whether c is the success code (0x00).
func (c CompletionCode) IsSuccess() bool {
	return c == CompletionCodeNormal
}

func (c CompletionCode) String() string {
	if name, ok := completionCodeNames[c]; ok {
		return name
	}
	if c >= 0xc0 {
		return fmt.Sprintf("reserved/OEM completion code 0x%02x", uint8(c))
	}
	return fmt.Sprintf("command-specific completion code 0x%02x", uint8(c))
}
