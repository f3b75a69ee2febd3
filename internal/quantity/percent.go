package quantity

// PercentUnit enumerates ratio units. Percent is canonical; values are limited
// to 0–100 % at parse time.
type PercentUnit uint8

const (
	Percent PercentUnit = iota
	Fraction
)

var percentScale = scale[PercentUnit]{
	Percent:  {1, "%"},
	Fraction: {100, "frac"},
}

// PercentUnits lists every ratio unit in picker order.
var PercentUnits = []PercentUnit{Percent, Fraction}

// Percentage is a bounded ratio such as relative humidity or active content.
type Percentage = Quantity[PercentUnit]

func (u PercentUnit) String() string { return percentScale.symbol(u) }
func (u PercentUnit) toBase(v float64) float64 { return percentScale.toBase(u, v) }
func (u PercentUnit) fromBase(v float64) float64 { return percentScale.fromBase(u, v) }
func (u PercentUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *PercentUnit) UnmarshalText(b []byte) error { return percentScale.lookup(string(b), u) }

func (u PercentUnit) checkRange(v float64) error {
	p := u.toBase(v)
	if p < 0 || p > 100 {
		return &RangeError{Min: u.fromBase(0), Max: u.fromBase(100), Unit: u.String()}
	}
	return nil
}
