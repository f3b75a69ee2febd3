package model

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"exposure-platform/internal/validation"
)

type sampleField int

const (
	sampleName sampleField = iota
	sampleTags
)

type sample struct {
	Name string
	Tags []string
	Size *float64
}

func (s *sample) Clone() *sample {
	c := *s
	c.Tags = append([]string(nil), s.Tags...)
	if s.Size != nil {
		v := *s.Size
		c.Size = &v
	}
	return &c
}

func (s *sample) Init() {
	s.Name = "default"
	s.Tags = []string{"a"}
}

func TestNewDefault(t *testing.T) {
	m := NewDefault[sample, *sample, sampleField]("Sample")

	if m.Original().Name != "default" || m.Working().Name != "default" {
		t.Errorf("Original/Working name = %q/%q, want default", m.Original().Name, m.Working().Name)
	}
	if m.Original() == m.Working() {
		t.Error("working copy should not be the original pointer")
	}
	if m.State() != Clean {
		t.Errorf("State() = %v, want clean", m.State())
	}
}

func TestModel_WorkingIsIndependent(t *testing.T) {
	size := 3.0
	rec := &sample{Name: "x", Tags: []string{"t1"}, Size: &size}
	m := New[*sample, sampleField]("Sample", rec)

	m.Edit(func(s *sample) {
		s.Tags[0] = "changed"
		*s.Size = 9
	})

	if rec.Tags[0] != "t1" || *rec.Size != 3 {
		t.Errorf("original = %+v, edits leaked through the working copy", rec)
	}

	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	m.Edit(func(s *sample) { s.Tags[0] = "again" })
	if m.Original().Tags[0] != "changed" {
		t.Errorf("original tag = %q, want changed", m.Original().Tags[0])
	}
}

func TestModel_SaveRejectsInvalid(t *testing.T) {
	m := New[*sample, sampleField]("Worker W1", &sample{Name: "before"})

	m.Edit(func(s *sample) { s.Name = "after" })
	m.Ledger().AddError(sampleName, "Name is required", validation.SeverityError)

	if m.State() != DirtyInvalid {
		t.Errorf("State() = %v, want invalid", m.State())
	}

	err := m.Save()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Save() error = %v, want ErrInvalid", err)
	}
	var ce *CommitError
	if !errors.As(err, &ce) {
		t.Fatalf("Save() error type = %T, want *CommitError", err)
	}
	if ce.Entity != "Worker W1" {
		t.Errorf("CommitError.Entity = %q, want %q", ce.Entity, "Worker W1")
	}
	if !strings.Contains(err.Error(), "Name is required") {
		t.Errorf("Error() = %q, want the ledger text", err.Error())
	}
	if m.Original().Name != "before" {
		t.Errorf("original name = %q, want unchanged", m.Original().Name)
	}
}

func TestModel_CancelRestores(t *testing.T) {
	size := 1.5
	m := New[*sample, sampleField]("Sample", &sample{Name: "keep", Tags: []string{"x", "y"}, Size: &size})
	before := m.Original().Clone()

	resets := 0
	m.OnReset(func() {
		resets++
		m.Ledger().RemoveError(sampleTags, "bad tags")
	})

	m.Edit(func(s *sample) {
		s.Name = ""
		s.Tags = append(s.Tags, "z")
		s.Size = nil
	})
	m.Ledger().AddError(sampleTags, "bad tags", validation.SeverityError)

	m.Cancel()

	if !reflect.DeepEqual(m.Working(), before) {
		t.Errorf("Working() = %+v, want %+v", m.Working(), before)
	}
	if m.Working() == m.Original() {
		t.Error("Cancel should install a clone, not the original")
	}
	if resets != 1 {
		t.Errorf("reset observers called %d times, want 1", resets)
	}
	if m.State() != Clean {
		t.Errorf("State() = %v, want clean", m.State())
	}
}

func TestModel_StateTransitions(t *testing.T) {
	m := NewDefault[sample, *sample, sampleField]("Sample")

	m.Edit(func(s *sample) { s.Name = "n" })
	if m.State() != DirtyValid {
		t.Errorf("State() after edit = %v, want dirty", m.State())
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if m.State() != Clean {
		t.Errorf("State() after save = %v, want clean", m.State())
	}
	m.Cancel()
	if m.State() != Clean || m.Working().Name != "n" {
		t.Errorf("Cancel on a clean model changed it: %v %q", m.State(), m.Working().Name)
	}
}

func TestModel_OnResetUnsubscribe(t *testing.T) {
	m := NewDefault[sample, *sample, sampleField]("Sample")

	var calls []string
	stopA := m.OnReset(func() { calls = append(calls, "a") })
	m.OnReset(func() { calls = append(calls, "b") })

	m.Cancel()
	stopA()
	m.Cancel()

	if want := []string{"a", "b", "b"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}
