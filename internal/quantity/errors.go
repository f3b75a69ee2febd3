package quantity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotNumeric is reported for text that is not a finite number.
	ErrNotNumeric = errors.New("not a number")
	// ErrOutOfRange is reported for numbers outside a family's physical range.
	ErrOutOfRange = errors.New("out of range")
	// ErrUnknownUnit is reported for unit symbols a family does not define.
	ErrUnknownUnit = errors.New("unknown unit")
)

// ParseError describes text that could not become a quantity.
type ParseError struct {
	Text string
	Unit string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Text, e.Unit, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsTransient returns false as parse errors depend only on the input text
func (e *ParseError) IsTransient() bool {
	return false
}

// RangeError carries the accepted interval of a range-restricted family.
type RangeError struct {
	Min, Max float64
	Unit     string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("must be between %g and %g %s", e.Min, e.Max, e.Unit)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }
