package ipmi

import (
	"math"
	"testing"
)

func TestSensorConversionLinear(t *testing.T) {
	c := SensorConversion{Linearization: LinearizationLinear, M: 10, B: 0, BExp: 0, RExp: 0}
	got, err := c.Convert(50)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != 500 {
		t.Errorf("Convert(50) = %v, want 500", got)
	}
}

func TestSensorConversionSignedB(t *testing.T) {
	// A negative B (composite 10-bit field's own sign bit set) must shift
	// the conversion down, not up.
	c := SensorConversion{Linearization: LinearizationLinear, M: 1, B: -10, BExp: 0, RExp: 0}
	got, err := c.Convert(100)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != 90 {
		t.Errorf("Convert(100) with B=-10 = %v, want 90", got)
	}
}

func TestSensorConversionNonLinearRejected(t *testing.T) {
	c := SensorConversion{Linearization: Linearization(0x71), M: 1}
	if _, err := c.Convert(1); err == nil {
		t.Error("expected error converting non-linear/OEM linearization")
	}
}

func TestSensorConversionSqrt(t *testing.T) {
	c := SensorConversion{Linearization: LinearizationSqrt, M: 1, B: 0, RExp: 0}
	got, err := c.Convert(16)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if math.Abs(got-4) > 1e-9 {
		t.Errorf("Convert(16) sqrt = %v, want 4", got)
	}
}

func TestSensorConversionTwosComplementNegative(t *testing.T) {
	// A sub-zero temperature reading: raw byte 0xec is -20 as an 8-bit
	// two's complement value, not 236.
	c := SensorConversion{Linearization: LinearizationLinear, AnalogDataFormat: AnalogDataFormatTwosComplement, M: 1, B: 0, BExp: 0, RExp: 0}
	got, err := c.Convert(0xec)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != -20 {
		t.Errorf("Convert(0xec) two's complement = %v, want -20", got)
	}
}

func TestSensorConversionOnesComplementNegative(t *testing.T) {
	// raw 0x81 (10000001) is -126 in 8-bit one's complement: invert all
	// bits to get the magnitude (01111110 = 126).
	c := SensorConversion{Linearization: LinearizationLinear, AnalogDataFormat: AnalogDataFormatOnesComplement, M: 1, B: 0, BExp: 0, RExp: 0}
	got, err := c.Convert(0x81)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != -126 {
		t.Errorf("Convert(0x81) one's complement = %v, want -126", got)
	}
}

func TestSensorConversionUnsignedUnaffected(t *testing.T) {
	c := SensorConversion{Linearization: LinearizationLinear, AnalogDataFormat: AnalogDataFormatUnsigned, M: 1, B: 0, BExp: 0, RExp: 0}
	got, err := c.Convert(0xec)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != 236 {
		t.Errorf("Convert(0xec) unsigned = %v, want 236", got)
	}
}

func TestSensorConversionNotAnalogRejected(t *testing.T) {
	c := SensorConversion{AnalogDataFormat: AnalogDataFormatNotAnalog, M: 1}
	if _, err := c.Convert(10); err == nil {
		t.Error("expected error converting a sensor with no analog reading")
	}
}
