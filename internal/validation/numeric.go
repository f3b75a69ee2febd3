package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"exposure-platform/internal/quantity"
)

// Sign restricts the sign of a numeric field.
type Sign int

const (
	// NonNegative accepts zero and positive values. Most measured quantities
	// use it.
	NonNegative Sign = iota
	// Positive rejects zero.
	Positive
	// AnySign accepts every value, e.g. temperatures.
	AnySign
)

// Bounds is an inclusive absolute range. A nil end is unbounded.
type Bounds struct {
	Min *float64
	Max *float64
}

// Unbounded places no absolute limit on a field.
var Unbounded = Bounds{}

// Between returns inclusive bounds [min, max].
func Between(min, max float64) Bounds { return Bounds{Min: &min, Max: &max} }

// AtLeast returns bounds with only a lower limit.
func AtLeast(min float64) Bounds { return Bounds{Min: &min} }

// AtMost returns bounds with only an upper limit.
func AtMost(max float64) Bounds { return Bounds{Max: &max} }

// Contains reports whether v lies inside b.
func (b Bounds) Contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

func formatNumber(v float64, suffix string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if suffix != "" {
		s += " " + suffix
	}
	return s
}

// checkNumber applies the sign policy and bounds to v. It returns the message
// to raise, or "" when v is acceptable.
func (c *Checker[F]) checkNumber(field F, v float64, sign Sign, b Bounds, suffix string) string {
	label := c.label(field)
	switch {
	case sign == NonNegative && v < 0:
		return c.message(MsgNegative, label)
	case sign == Positive && v <= 0:
		return c.message(MsgNotPositive, label)
	}
	if b.Contains(v) {
		return ""
	}
	switch {
	case b.Min != nil && b.Max != nil:
		return c.message(MsgBetween, label, formatNumber(*b.Min, suffix), formatNumber(*b.Max, suffix))
	case b.Min != nil:
		return c.message(MsgAtLeast, label, formatNumber(*b.Min, suffix))
	default:
		return c.message(MsgAtMost, label, formatNumber(*b.Max, suffix))
	}
}

// Int validates a whole number. Blank input is a valid nil.
func (c *Checker[F]) Int(field F, raw string, b Bounds) (*int, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		c.pass(field)
		return nil, nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return nil, c.fail(field, ErrParse, raw, c.message(MsgNotInteger, c.label(field)))
	}
	if msg := c.checkNumber(field, float64(v), AnySign, b, ""); msg != "" {
		return nil, c.fail(field, ErrRange, raw, msg)
	}
	c.pass(field)
	return &v, nil
}

// Float validates a plain number. Blank input is a valid nil.
func (c *Checker[F]) Float(field F, raw string, sign Sign, b Bounds) (*float64, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		c.pass(field)
		return nil, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, c.fail(field, ErrParse, raw, c.message(MsgNotNumeric, c.label(field)))
	}
	if msg := c.checkNumber(field, v, sign, b, ""); msg != "" {
		return nil, c.fail(field, ErrRange, raw, msg)
	}
	c.pass(field)
	return &v, nil
}

// QuantityOf validates text entered in unit. Parsing enforces the family's
// physical range; sign and b are then checked, b expressed in the family's
// canonical unit. Blank input is a valid empty quantity.
func QuantityOf[F comparable, U quantity.Unit](c *Checker[F], field F, raw string, unit U, sign Sign, b Bounds) (quantity.Quantity[U], error) {
	q, err := quantity.Parse(raw, unit)
	if err != nil {
		label := c.label(field)
		var re *quantity.RangeError
		if errors.As(err, &re) {
			lo, hi := math.Round(re.Min*10)/10, math.Round(re.Max*10)/10
			msg := c.message(MsgBetween, label, formatNumber(lo, re.Unit), formatNumber(hi, re.Unit))
			return q, c.fail(field, ErrRange, raw, msg)
		}
		return q, c.fail(field, ErrParse, raw, c.message(MsgNotNumeric, label))
	}
	v, ok := q.Value()
	if !ok {
		c.pass(field)
		return q, nil
	}
	if msg := c.checkNumber(field, v, sign, Unbounded, ""); msg != "" {
		return q, c.fail(field, ErrRange, raw, msg)
	}
	base, _ := q.Base()
	canonical := quantity.Canonical[U]()
	if msg := c.checkNumber(field, base, AnySign, b, canonical.String()); msg != "" {
		return q, c.fail(field, ErrRange, raw, msg)
	}
	c.pass(field)
	return q, nil
}
