// Package editors wraps each study record in an edit transaction with typed
// field setters, display text and display units.
package editors

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"exposure-platform/internal/lookup"
	"exposure-platform/internal/model"
	"exposure-platform/internal/models"
	"exposure-platform/internal/validation"
)

// Editor is the kind-independent view of an open edit transaction. Pointer
// editors are compared by reference, so an Editor can live in a cache.
type Editor interface {
	Kind() models.Kind
	ID() uuid.UUID
	Name() string

	Set(key, text, unit string) error
	SetUnit(key, unit string) error
	Text(key string) (string, error)
	Unit(key string) string
	ErrorForKey(key string) (string, bool)
	AllErrors() (string, bool)

	IsValid() bool
	IsDirty() bool
	State() model.State
	Save() error
	Commit(store func(working models.Document) error) error
	Cancel()
	Stamp(at time.Time)

	WorkingDocument() models.Document
	OriginalDocument() models.Document
	OnFailure(fn func(kind models.Kind, fe *validation.FieldError))
	View() View
}

// View is the serialisable state of an editor.
type View struct {
	Kind   models.Kind `json:"kind"`
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	State  string      `json:"state"`
	Valid  bool        `json:"valid"`
	Dirty  bool        `json:"dirty"`
	Fields []FieldView `json:"fields"`
	// Record is the working copy. It is typed any so that views decode
	// without knowing the record kind.
	Record any `json:"record"`
}

// FieldView describes one field of an editor.
type FieldView struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Unit    string   `json:"unit,omitempty"`
	Units   []string `json:"units,omitempty"`
	Options []string `json:"options,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Factory creates editors of one kind.
type Factory struct {
	// New opens an editor on a fresh default record.
	New func(lookup.Snapshot, validation.Catalog) Editor
	// Decode opens an editor on a stored record.
	Decode func(payload []byte, lookups lookup.Snapshot, catalog validation.Catalog) (Editor, error)
}

// Registry maps every record kind to its factory.
var Registry = map[models.Kind]Factory{
	models.KindWorker: {
		New: func(l lookup.Snapshot, c validation.Catalog) Editor { return NewWorkerEditor(nil, l, c) },
		Decode: func(p []byte, l lookup.Snapshot, c validation.Catalog) (Editor, error) {
			return decode(p, func(r *models.Worker) Editor { return NewWorkerEditor(r, l, c) })
		},
	},
	models.KindApplication: {
		New: func(l lookup.Snapshot, c validation.Catalog) Editor { return NewApplicationEditor(nil, l, c) },
		Decode: func(p []byte, l lookup.Snapshot, c validation.Catalog) (Editor, error) {
			return decode(p, func(r *models.Application) Editor { return NewApplicationEditor(r, l, c) })
		},
	},
	models.KindProduct: {
		New: func(l lookup.Snapshot, c validation.Catalog) Editor { return NewProductEditor(nil, l, c) },
		Decode: func(p []byte, l lookup.Snapshot, c validation.Catalog) (Editor, error) {
			return decode(p, func(r *models.Product) Editor { return NewProductEditor(r, l, c) })
		},
	},
	models.KindMixing: {
		New: func(l lookup.Snapshot, c validation.Catalog) Editor { return NewMixingEditor(nil, l, c) },
		Decode: func(p []byte, l lookup.Snapshot, c validation.Catalog) (Editor, error) {
			return decode(p, func(r *models.Mixing) Editor { return NewMixingEditor(r, l, c) })
		},
	},
}

// Lookup returns the factory of kind.
func Lookup(kind models.Kind) (Factory, error) {
	f, ok := Registry[kind]
	if !ok {
		return Factory{}, fmt.Errorf("no editor for kind %q", kind)
	}
	return f, nil
}

// decode unmarshals a stored record and wraps it. A stored record is
// re-validated right away so the ledger reflects what was persisted.
func decode[R any, T interface {
	*R
	record[T]
}](payload []byte, wrap func(T) Editor) (Editor, error) {
	rec := T(new(R))
	if err := json.Unmarshal(payload, rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	e := wrap(rec)
	e.Cancel()
	return e, nil
}

// newModel wraps record, or a fresh default record when it is nil.
func newModel[R any, T interface {
	*R
	record[T]
}, F comparable](rec T) *model.Model[T, F] {
	if rec == nil {
		m := model.NewDefault[R, T, F]("")
		m.SetName(m.Working().Label())
		return m
	}
	return model.New[T, F](rec.Label(), rec)
}
