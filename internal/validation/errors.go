package validation

import "errors"

// Failure kinds carried by FieldError. Match them with errors.Is.
var (
	ErrParse  = errors.New("parse error")
	ErrRange  = errors.New("range error")
	ErrChoice = errors.New("choice error")
)

// FieldError reports why raw input for a field was rejected.
// The message is the same text that was written to the ledger.
type FieldError struct {
	Kind    error
	Field   string
	Value   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// IsTransient returns false as validation errors are permanent
func (e *FieldError) IsTransient() bool {
	return false
}
