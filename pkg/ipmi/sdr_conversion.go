package ipmi

import (
	"fmt"
	"math"
)

// Linearization selects the function L applied after the M/B/exponent
// conversion in the sensor reading formula value = L((M*raw +
// B*10^Bexp) * 10^Rexp) (spec 4.3, 4.4 threshold sensor conversion).
type Linearization uint8

const (
	LinearizationLinear  Linearization = 0x00
	LinearizationLn      Linearization = 0x01
	LinearizationLog10   Linearization = 0x02
	LinearizationLog2    Linearization = 0x03
	LinearizationE       Linearization = 0x04
	LinearizationExp10   Linearization = 0x05
	LinearizationExp2    Linearization = 0x06
	LinearizationReciprocal Linearization = 0x07
	LinearizationSquare  Linearization = 0x08
	LinearizationCube    Linearization = 0x09
	LinearizationSqrt    Linearization = 0x0a
	LinearizationCubeRoot Linearization = 0x0b
	// 0x71 and above are non-linear/OEM; such sensors have no defined
	// numeric conversion and must be read via the raw threshold comparators
	// instead.
)

// SensorConversion holds the Full Sensor Record conversion coefficients
// needed to turn a raw reading byte into an engineering-unit value.
type SensorConversion struct {
	Linearization    Linearization
	AnalogDataFormat AnalogDataFormat // how to interpret a negative raw reading
	M                int32
	Tolerance        int32 // 6-bit, in half raw-units; rarely consumed directly
	B                int32
	Accuracy         int32
	AccuracyExp      int32
	BExp             int32
	RExp             int32
}

// signedRaw interprets raw according to AnalogDataFormat, returning the
// value the M/B/exponent formula should actually be applied to. A
// sub-zero temperature reading, for instance, arrives as a two's
// complement negative byte; reading it as unsigned would turn it into
// a large positive number instead.
func (c SensorConversion) signedRaw(raw uint8) float64 {
	switch c.AnalogDataFormat {
	case AnalogDataFormatOnesComplement:
		if raw&0x80 != 0 {
			return -float64(^raw)
		}
		return float64(raw)
	case AnalogDataFormatTwosComplement:
		return float64(int8(raw))
	default: // AnalogDataFormatUnsigned, and any other value
		return float64(raw)
	}
}

// Convert applies the sensor reading formula to a raw byte, returning
// the engineering-unit value. Analog sensors with a non-linear (OEM)
// linearization return an error, since the specification defines no
// closed-form conversion for them, and sensors whose Analog Data Format
// says they return no numeric reading at all are rejected outright.
func (c SensorConversion) Convert(raw uint8) (float64, error) {
	if c.AnalogDataFormat == AnalogDataFormatNotAnalog {
		return 0, fmt.Errorf("ipmi: sensor does not return an analog (numeric) reading")
	}
	linear := float64(c.M)*c.signedRaw(raw) + float64(c.B)*math.Pow(10, float64(c.BExp))
	linear *= math.Pow(10, float64(c.RExp))
	switch c.Linearization {
	case LinearizationLinear:
		return linear, nil
	case LinearizationLn:
		return math.Log(linear), nil
	case LinearizationLog10:
		return math.Log10(linear), nil
	case LinearizationLog2:
		return math.Log2(linear), nil
	case LinearizationE:
		return math.Exp(linear), nil
	case LinearizationExp10:
		return math.Pow(10, linear), nil
	case LinearizationExp2:
		return math.Pow(2, linear), nil
	case LinearizationReciprocal:
		if linear == 0 {
			return 0, fmt.Errorf("ipmi: reciprocal linearization of zero")
		}
		return 1 / linear, nil
	case LinearizationSquare:
		return linear * linear, nil
	case LinearizationCube:
		return linear * linear * linear, nil
	case LinearizationSqrt:
		return math.Sqrt(linear), nil
	case LinearizationCubeRoot:
		return math.Cbrt(linear), nil
	default:
		return 0, fmt.Errorf("ipmi: sensor uses non-linear/OEM linearization 0x%02x, no defined conversion", uint8(c.Linearization))
	}
}
