// Package validation keeps per-field error and warning messages for an entity
// being edited and provides the field validators that fill them.
package validation

import "strings"

// Severity decides where a message is placed in its field's list.
type Severity int

const (
	// SeverityError messages are surfaced first.
	SeverityError Severity = iota
	// SeverityWarning messages are appended after every error.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// LineSeparator joins the messages returned by ErrorFor and AllErrors.
const LineSeparator = "\n"

// Ledger maps fields to their current messages. A field with no messages is
// not present. Fields are reported in the order they first received a
// message. The zero value is not usable; call NewLedger.
type Ledger[F comparable] struct {
	order   []F
	entries map[F][]string
}

// NewLedger returns an empty ledger.
func NewLedger[F comparable]() *Ledger[F] {
	return &Ledger[F]{entries: make(map[F][]string)}
}

// AddError records message for field. Adding a message the field already
// holds is a no-op. Errors go in front of the existing messages, warnings
// after them.
func (l *Ledger[F]) AddError(field F, message string, severity Severity) {
	msgs, ok := l.entries[field]
	for _, m := range msgs {
		if m == message {
			return
		}
	}
	if !ok {
		l.order = append(l.order, field)
	}
	if severity == SeverityWarning {
		l.entries[field] = append(msgs, message)
		return
	}
	next := make([]string, 0, len(msgs)+1)
	next = append(next, message)
	l.entries[field] = append(next, msgs...)
}

// RemoveError drops message from field. The field disappears once its last
// message is removed. Removing an absent message is a no-op.
func (l *Ledger[F]) RemoveError(field F, message string) {
	msgs, ok := l.entries[field]
	if !ok {
		return
	}
	for i, m := range msgs {
		if m != message {
			continue
		}
		if len(msgs) == 1 {
			l.drop(field)
			return
		}
		next := make([]string, 0, len(msgs)-1)
		next = append(next, msgs[:i]...)
		l.entries[field] = append(next, msgs[i+1:]...)
		return
	}
}

func (l *Ledger[F]) drop(field F) {
	delete(l.entries, field)
	for i, f := range l.order {
		if f == field {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// IsValid reports whether the ledger holds no messages at all.
func (l *Ledger[F]) IsValid() bool { return len(l.entries) == 0 }

// Len returns the number of fields holding messages.
func (l *Ledger[F]) Len() int { return len(l.entries) }

// Has reports whether field currently holds message.
func (l *Ledger[F]) Has(field F, message string) bool {
	for _, m := range l.entries[field] {
		if m == message {
			return true
		}
	}
	return false
}

// Messages returns a copy of the messages of field, errors first.
func (l *Ledger[F]) Messages(field F) []string {
	msgs := l.entries[field]
	if len(msgs) == 0 {
		return nil
	}
	out := make([]string, len(msgs))
	copy(out, msgs)
	return out
}

// Fields returns the fields holding messages in first-insertion order.
func (l *Ledger[F]) Fields() []F {
	out := make([]F, len(l.order))
	copy(out, l.order)
	return out
}

// ErrorFor returns the messages of field joined by LineSeparator, or false
// when the field is clean.
func (l *Ledger[F]) ErrorFor(field F) (string, bool) {
	msgs, ok := l.entries[field]
	if !ok {
		return "", false
	}
	return strings.Join(msgs, LineSeparator), true
}

// AllErrors returns every message of every field, or false when the ledger is
// empty.
func (l *Ledger[F]) AllErrors() (string, bool) {
	if len(l.entries) == 0 {
		return "", false
	}
	var b strings.Builder
	for _, f := range l.order {
		for _, m := range l.entries[f] {
			if b.Len() > 0 {
				b.WriteString(LineSeparator)
			}
			b.WriteString(m)
		}
	}
	return b.String(), true
}
