package validation

import (
	"fmt"
	"slices"
)

// Options is a snapshot of the valid values of an enumerated field. It is
// taken once when an entity is initialized and never follows later changes to
// the lookup source.
type Options[V comparable] struct {
	values []V
}

// NewOptions copies values into a snapshot.
func NewOptions[V comparable](values ...V) Options[V] {
	return Options[V]{values: slices.Clone(values)}
}

// Contains reports whether v is one of the options.
func (o Options[V]) Contains(v V) bool { return slices.Contains(o.values, v) }

// Values returns a copy of the options in their original order.
func (o Options[V]) Values() []V { return slices.Clone(o.values) }

// Len returns the number of options.
func (o Options[V]) Len() int { return len(o.values) }

// Choice validates an enumerated selection. The zero value means "nothing
// selected" and is valid. On error the caller must leave the field unchanged.
func Choice[F comparable, V comparable](c *Checker[F], field F, value V, opts Options[V]) (V, error) {
	var zero V
	if value == zero || opts.Contains(value) {
		c.pass(field)
		return value, nil
	}
	return zero, c.fail(field, ErrChoice, fmt.Sprint(value), c.message(MsgNotAChoice, c.label(field)))
}
