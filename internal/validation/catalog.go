package validation

import "fmt"

// MessageKey identifies a validation message independent of its locale text.
type MessageKey string

const (
	MsgRequired      MessageKey = "required"
	MsgNotNumeric    MessageKey = "not_numeric"
	MsgNotInteger    MessageKey = "not_integer"
	MsgNotDate       MessageKey = "not_date"
	MsgNegative      MessageKey = "negative"
	MsgNotPositive   MessageKey = "not_positive"
	MsgBetween       MessageKey = "between"
	MsgAtLeast       MessageKey = "at_least"
	MsgAtMost        MessageKey = "at_most"
	MsgNotAChoice    MessageKey = "not_a_choice"
	MsgMinExceedsMax MessageKey = "min_exceeds_max"
	MsgBelowMin      MessageKey = "below_min"
	MsgAboveMax      MessageKey = "above_max"
)

// Catalog turns a message key and its arguments into display text. The first
// argument is always the field label.
type Catalog interface {
	Message(key MessageKey, args ...any) string
}

// MapCatalog is a Catalog backed by fmt format strings. Keys it does not hold
// fall back to DefaultCatalog.
type MapCatalog map[MessageKey]string

// DefaultCatalog holds the English messages.
var DefaultCatalog = MapCatalog{
	MsgRequired:      "%s is required",
	MsgNotNumeric:    "%s must be a number",
	MsgNotInteger:    "%s must be a whole number",
	MsgNotDate:       "%s must be a date (YYYY-MM-DD)",
	MsgNegative:      "%s must not be negative",
	MsgNotPositive:   "%s must be greater than zero",
	MsgBetween:       "%s must be between %s and %s",
	MsgAtLeast:       "%s must be at least %s",
	MsgAtMost:        "%s must be at most %s",
	MsgNotAChoice:    "%s is not one of the available choices",
	MsgMinExceedsMax: "%s minimum exceeds the maximum",
	MsgBelowMin:      "%s is below the minimum",
	MsgAboveMax:      "%s is above the maximum",
}

func (c MapCatalog) Message(key MessageKey, args ...any) string {
	format, ok := c[key]
	if !ok {
		format, ok = DefaultCatalog[key]
	}
	if !ok {
		return fmt.Sprintf("%s %v", key, args)
	}
	return fmt.Sprintf(format, args...)
}

// KnownMessage reports whether key is one of the built-in message keys.
func KnownMessage(key MessageKey) bool {
	_, ok := DefaultCatalog[key]
	return ok
}
