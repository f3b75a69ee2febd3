// Package quantity provides physical values that remember the unit they were
// entered in. A Quantity never changes unit in place: converting it returns a
// projection in the requested unit while the stored original stays intact.
package quantity

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is implemented by every unit enumeration (LengthUnit, MassUnit, ...).
// toBase and fromBase convert between the unit and its family's canonical unit.
type Unit interface {
	comparable
	fmt.Stringer
	toBase(v float64) float64
	fromBase(v float64) float64
}

// Canonical returns the canonical unit of family U. Every unit enumeration
// declares its canonical unit first, so it is the zero value.
func Canonical[U Unit]() U {
	var u U
	return u
}

// rangeChecked is implemented by families that restrict the values accepted at
// parse time (temperature, percentage). v is expressed in the receiver unit.
type rangeChecked interface {
	checkRange(v float64) error
}

// Quantity is a numeric value tagged with its unit. The zero value of value
// (nil) means "not entered", which is distinct from zero.
type Quantity[U Unit] struct {
	value *float64
	unit  U
}

// New returns a quantity holding v in unit u.
func New[U Unit](v float64, u U) Quantity[U] {
	return Quantity[U]{value: &v, unit: u}
}

// Empty returns a "not entered" quantity carrying unit u.
func Empty[U Unit](u U) Quantity[U] {
	return Quantity[U]{unit: u}
}

// Clone returns a copy that shares no memory with q.
func (q Quantity[U]) Clone() Quantity[U] {
	if q.value == nil {
		return q
	}
	return New(*q.value, q.unit)
}

// Value returns the stored value and whether one was entered.
func (q Quantity[U]) Value() (float64, bool) {
	if q.value == nil {
		return 0, false
	}
	return *q.value, true
}

// IsEmpty reports whether no value was entered.
func (q Quantity[U]) IsEmpty() bool { return q.value == nil }

// Unit returns the unit the value was entered in.
func (q Quantity[U]) Unit() U { return q.unit }

// In projects q into unit target. The receiver is not modified.
func (q Quantity[U]) In(target U) Quantity[U] {
	return Convert(q, target)
}

// Base returns the value in the family's canonical unit.
func (q Quantity[U]) Base() (float64, bool) {
	if q.value == nil {
		return 0, false
	}
	return q.unit.toBase(*q.value), true
}

// Equal reports whether both quantities hold the same value in the same unit.
func (q Quantity[U]) Equal(other Quantity[U]) bool {
	if q.unit != other.unit {
		return false
	}
	if q.value == nil || other.value == nil {
		return q.value == nil && other.value == nil
	}
	return *q.value == *other.value
}

// String renders the value followed by its unit symbol, or "" when empty.
func (q Quantity[U]) String() string {
	if q.value == nil {
		return ""
	}
	return Format(q) + " " + q.unit.String()
}

// Convert projects q into unit target. Empty quantities stay empty and a
// same-unit conversion returns q unchanged.
func Convert[U Unit](q Quantity[U], target U) Quantity[U] {
	if q.unit == target || q.value == nil {
		return Quantity[U]{value: q.value, unit: target}
	}
	return New(target.fromBase(q.unit.toBase(*q.value)), target)
}

// Compare orders two quantities of one family by their canonical value. It
// returns ok=false when either side is empty.
func Compare[U Unit](a, b Quantity[U]) (cmp int, ok bool) {
	av, aok := a.Base()
	bv, bok := b.Base()
	if !aok || !bok {
		return 0, false
	}
	switch {
	case av < bv:
		return -1, true
	case av > bv:
		return 1, true
	}
	return 0, true
}

// Format renders q in its own unit using the shortest text that parses back
// to the same value. Empty quantities format to "".
func Format[U Unit](q Quantity[U]) string {
	if q.value == nil {
		return ""
	}
	return strconv.FormatFloat(*q.value, 'f', -1, 64)
}

// FormatIn renders q projected into unit u.
func FormatIn[U Unit](q Quantity[U], u U) string {
	return Format(Convert(q, u))
}

// Parse reads text entered in unit u. Blank text is valid and yields an empty
// quantity. Families with a physical range reject values outside it here.
func Parse[U Unit](text string, u U) (Quantity[U], error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Empty(u), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Empty(u), &ParseError{Text: text, Unit: u.String(), Err: ErrNotNumeric}
	}
	if rc, ok := any(u).(rangeChecked); ok {
		if err := rc.checkRange(v); err != nil {
			return Empty(u), &ParseError{Text: text, Unit: u.String(), Err: err}
		}
	}
	return New(v, u), nil
}

// ParseUnit resolves a unit symbol such as "ft" or "kg/ha" within family U.
func ParseUnit[U Unit](symbol string) (U, error) {
	var u U
	tu, ok := any(&u).(encoding.TextUnmarshaler)
	if !ok {
		return u, fmt.Errorf("unit type %T cannot be parsed", u)
	}
	if err := tu.UnmarshalText([]byte(strings.TrimSpace(symbol))); err != nil {
		return u, err
	}
	return u, nil
}

type quantityJSON struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// MarshalJSON encodes q as {"value": n|null, "unit": "symbol"}.
func (q Quantity[U]) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Value: q.value, Unit: q.unit.String()})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (q *Quantity[U]) UnmarshalJSON(data []byte) error {
	var raw quantityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u, err := ParseUnit[U](raw.Unit)
	if err != nil {
		return err
	}
	q.unit = u
	q.value = nil
	if raw.Value != nil {
		v := *raw.Value
		q.value = &v
	}
	return nil
}
