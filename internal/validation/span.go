package validation

import "exposure-platform/internal/quantity"

// Span ties a min, a current and a max field together: min <= value <= max.
// Name is used as the label of the relationship messages.
type Span[F comparable] struct {
	Name       string
	MinField   F
	ValueField F
	MaxField   F
}

func (s Span[F]) rule(part string) string { return "span:" + s.Name + ":" + part }

// CheckSpan re-checks every relationship of s against the current values and
// sets or clears the relationship messages: "min exceeds max" on MinField,
// "below min" and "above max" on ValueField. An absent value never violates a
// relationship. It reports whether all relationships hold.
//
// Relationship messages are independent of each field's own validation, so a
// span check never clears a field's parse or range error and vice versa.
func CheckSpan[F comparable, U quantity.Unit](c *Checker[F], s Span[F], min, value, max quantity.Quantity[U]) bool {
	ok := true

	if cmp, known := quantity.Compare(min, max); known && cmp > 0 {
		c.settle(s.rule("order"), s.MinField, SeverityError, c.message(MsgMinExceedsMax, s.Name))
		ok = false
	} else {
		c.settle(s.rule("order"), s.MinField, SeverityError)
	}

	if cmp, known := quantity.Compare(value, min); known && cmp < 0 {
		c.settle(s.rule("min"), s.ValueField, SeverityError, c.message(MsgBelowMin, s.Name))
		ok = false
	} else {
		c.settle(s.rule("min"), s.ValueField, SeverityError)
	}

	if cmp, known := quantity.Compare(value, max); known && cmp > 0 {
		c.settle(s.rule("max"), s.ValueField, SeverityError, c.message(MsgAboveMax, s.Name))
		ok = false
	} else {
		c.settle(s.rule("max"), s.ValueField, SeverityError)
	}

	return ok
}
