// Package iana holds the small subset of IANA Private Enterprise Numbers
// relevant to identifying OEM/Group NetFn messages and OEM SDR fields.
package iana

import "fmt"

// Enterprise is an IANA Private Enterprise Number, as carried in the
// 3-byte little-endian OEM fields of Group/OEM NetFn messages.
type Enterprise uint32

const (
	EnterpriseIBM        Enterprise = 2
	EnterpriseHP         Enterprise = 11
	EnterpriseIntel      Enterprise = 343
	EnterpriseDell       Enterprise = 674
	EnterpriseSupermicro Enterprise = 10876
	EnterpriseLenovo     Enterprise = 19046
	EnterprisePICMG      Enterprise = 12634 // PICMG, used by Group NetFn bodies
)

var names = map[Enterprise]string{
	EnterpriseIBM:        "IBM",
	EnterpriseHP:         "HP",
	EnterpriseIntel:      "Intel",
	EnterpriseDell:       "Dell",
	EnterpriseSupermicro: "Supermicro",
	EnterpriseLenovo:     "Lenovo",
	EnterprisePICMG:      "PICMG",
}

func (e Enterprise) String() string {
	if name, ok := names[e]; ok {
		return name
	}
	return fmt.Sprintf("enterprise(%d)", uint32(e))
}
