package quantity

import "fmt"

// TemperatureUnit enumerates temperature scales. Celsius is canonical.
//
// Temperature is the only affine family: converting between scales needs an
// offset as well as a factor, so it does not use the shared scale table.
type TemperatureUnit uint8

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
	Kelvin
)

// Field temperatures outside this interval are rejected at parse time.
const (
	minFieldFahrenheit = -50.0
	maxFieldFahrenheit = 130.0
)

// TemperatureUnits lists every temperature unit in picker order.
var TemperatureUnits = []TemperatureUnit{Celsius, Fahrenheit, Kelvin}

// Temperature is an air or product temperature.
type Temperature = Quantity[TemperatureUnit]

func (u TemperatureUnit) String() string {
	switch u {
	case Celsius:
		return "C"
	case Fahrenheit:
		return "F"
	case Kelvin:
		return "K"
	}
	return fmt.Sprintf("unit(%d)", uint8(u))
}

func (u TemperatureUnit) toBase(v float64) float64 {
	switch u {
	case Fahrenheit:
		return (v - 32) * 5 / 9
	case Kelvin:
		return v - 273.15
	}
	return v
}

func (u TemperatureUnit) fromBase(c float64) float64 {
	switch u {
	case Fahrenheit:
		return c*9/5 + 32
	case Kelvin:
		return c + 273.15
	}
	return c
}

func (u TemperatureUnit) checkRange(v float64) error {
	f := Fahrenheit.fromBase(u.toBase(v))
	if f < minFieldFahrenheit || f > maxFieldFahrenheit {
		return &RangeError{
			Min:  u.fromBase(Fahrenheit.toBase(minFieldFahrenheit)),
			Max:  u.fromBase(Fahrenheit.toBase(maxFieldFahrenheit)),
			Unit: u.String(),
		}
	}
	return nil
}

func (u TemperatureUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *TemperatureUnit) UnmarshalText(b []byte) error {
	switch string(b) {
	case "C", "°C":
		*u = Celsius
	case "F", "°F":
		*u = Fahrenheit
	case "K":
		*u = Kelvin
	default:
		return fmt.Errorf("%w %q", ErrUnknownUnit, string(b))
	}
	return nil
}
