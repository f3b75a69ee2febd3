// Package model implements the copy-on-write edit transaction used by every
// editor: an original record, a working copy and the ledger describing what is
// wrong with the working copy.
package model

import (
	"errors"
	"fmt"
	"slices"

	"exposure-platform/internal/validation"
)

// Record is satisfied by pointer record types that can deep-copy themselves
// and fill themselves with defaults.
type Record[T any] interface {
	Clone() T
	Init()
}

// State describes a transaction relative to its last commit.
type State int

const (
	Clean State = iota
	DirtyValid
	DirtyInvalid
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case DirtyValid:
		return "dirty"
	case DirtyInvalid:
		return "invalid"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrInvalid is matched by every CommitError.
var ErrInvalid = errors.New("entity has validation errors")

// CommitError is returned by Save while any field is invalid.
type CommitError struct {
	Entity string
	Errors string
}

func (e *CommitError) Error() string {
	if e.Errors == "" {
		return fmt.Sprintf("cannot save %s: %v", e.Entity, ErrInvalid)
	}
	return fmt.Sprintf("cannot save %s: %v:\n%s", e.Entity, ErrInvalid, e.Errors)
}

func (e *CommitError) Is(target error) bool { return target == ErrInvalid }

// IsTransient returns false as the entity must be corrected first
func (e *CommitError) IsTransient() bool {
	return false
}

// Model holds the original and working copies of one record. T is a pointer
// record type and F the record's field enumeration.
//
// The working copy never shares memory with the original: it is always a
// clone of it plus edits, and Save stores a clone of the working copy.
type Model[T Record[T], F comparable] struct {
	name     string
	original T
	working  T
	ledger   *validation.Ledger[F]
	dirty    bool

	nextObserver int
	observers    map[int]func()
	order        []int
}

// New wraps an existing record. The model takes ownership of record as the
// original copy.
func New[T Record[T], F comparable](name string, record T) *Model[T, F] {
	return &Model[T, F]{
		name:      name,
		original:  record,
		working:   record.Clone(),
		ledger:    validation.NewLedger[F](),
		observers: make(map[int]func()),
	}
}

// NewDefault creates a model around a fresh, self-initialized record.
func NewDefault[R any, T interface {
	*R
	Record[T]
}, F comparable](name string) *Model[T, F] {
	record := T(new(R))
	record.Init()
	return New[T, F](name, record)
}

// Name returns the display name used in commit errors.
func (m *Model[T, F]) Name() string { return m.name }

// SetName changes the display name, e.g. once the record's key is known.
func (m *Model[T, F]) SetName(name string) { m.name = name }

// Original returns the last committed record. Callers must not modify it.
func (m *Model[T, F]) Original() T { return m.original }

// Working returns the working copy for reading. Mutations go through Edit.
func (m *Model[T, F]) Working() T { return m.working }

// Ledger returns the ledger of the working copy.
func (m *Model[T, F]) Ledger() *validation.Ledger[F] { return m.ledger }

// Edit applies fn to the working copy and marks the model dirty.
func (m *Model[T, F]) Edit(fn func(T)) {
	fn(m.working)
	m.dirty = true
}

// Touch marks the model dirty without changing the working copy, e.g. after
// rejected input that only changed the ledger.
func (m *Model[T, F]) Touch() { m.dirty = true }

// IsValid reports whether the working copy has no validation messages.
func (m *Model[T, F]) IsValid() bool { return m.ledger.IsValid() }

// IsDirty reports whether the working copy was edited since the last commit.
func (m *Model[T, F]) IsDirty() bool { return m.dirty }

// ErrorFor returns the messages of one field.
func (m *Model[T, F]) ErrorFor(field F) (string, bool) { return m.ledger.ErrorFor(field) }

// AllErrors returns the messages of every field.
func (m *Model[T, F]) AllErrors() (string, bool) { return m.ledger.AllErrors() }

// State returns the transaction state.
func (m *Model[T, F]) State() State {
	switch {
	case !m.dirty && m.ledger.IsValid():
		return Clean
	case !m.ledger.IsValid():
		return DirtyInvalid
	}
	return DirtyValid
}

// Save commits the working copy. While any field is invalid it returns a
// *CommitError and leaves the original untouched.
func (m *Model[T, F]) Save() error {
	if !m.ledger.IsValid() {
		all, _ := m.ledger.AllErrors()
		return &CommitError{Entity: m.name, Errors: all}
	}
	m.original = m.working.Clone()
	m.dirty = false
	return nil
}

// Cancel discards every edit: the working copy becomes a fresh clone of the
// original and reset observers are notified in subscription order. Observers
// are expected to re-validate the restored fields.
func (m *Model[T, F]) Cancel() {
	m.working = m.original.Clone()
	m.dirty = false
	for _, id := range slices.Clone(m.order) {
		if fn, ok := m.observers[id]; ok {
			fn()
		}
	}
	m.dirty = false
}

// OnReset registers fn to run after every Cancel. The returned function
// unregisters it.
func (m *Model[T, F]) OnReset(fn func()) (unsubscribe func()) {
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	m.order = append(m.order, id)
	return func() {
		delete(m.observers, id)
		for i, v := range m.order {
			if v == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				return
			}
		}
	}
}
