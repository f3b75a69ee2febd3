package editors

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"exposure-platform/internal/lookup"
	"exposure-platform/internal/model"
	"exposure-platform/internal/models"
	"exposure-platform/internal/quantity"
	"exposure-platform/internal/validation"
)

// ErrUnknownField is returned for field keys an editor does not define.
var ErrUnknownField = errors.New("unknown field")

// Field types reported in views.
const (
	TypeText     = "text"
	TypeInteger  = "integer"
	TypeDate     = "date"
	TypeChoice   = "choice"
	TypeQuantity = "quantity"
)

// record is satisfied by the pointer record types of internal/models.
type record[T any] interface {
	model.Record[T]
	models.Document
}

// binding connects one field of a record to its setter and display.
type binding[T any, F comparable] struct {
	field F
	key   string
	typ   string
	list  lookup.List
	units []string

	set  func(text, unit string) error
	show func(r T) (text, unit string)
	// display recomputes the text of a quantity field in another unit.
	display func(r T, unit string) (string, error)
}

// base carries everything editors share: the edit transaction, the checker
// writing to its ledger, the last input per field and the field table.
type base[T record[T], F comparable] struct {
	*model.Model[T, F]

	kind    models.Kind
	checker *validation.Checker[F]
	lookups lookup.Snapshot

	inputs map[F]string
	texts  map[F]string
	units  map[F]string

	bindings []binding[T, F]
	byKey    map[string]int
}

func newBase[T record[T], F comparable](kind models.Kind, m *model.Model[T, F], lookups lookup.Snapshot, catalog validation.Catalog) *base[T, F] {
	b := &base[T, F]{
		Model:   m,
		kind:    kind,
		checker: validation.NewChecker(m.Ledger(), catalog),
		lookups: lookups,
		inputs:  make(map[F]string),
		texts:   make(map[F]string),
		units:   make(map[F]string),
		byKey:   make(map[string]int),
	}
	m.OnReset(b.revalidate)
	return b
}

func (b *base[T, F]) bind(bs ...binding[T, F]) {
	for _, bd := range bs {
		b.byKey[bd.key] = len(b.bindings)
		b.bindings = append(b.bindings, bd)
	}
}

// unchanged records text and unit as the latest input of field and reports
// whether they equal the previous input.
func (b *base[T, F]) unchanged(field F, text, unit string) bool {
	key := text + "\x00" + unit
	prev, seen := b.inputs[field]
	b.inputs[field] = key
	b.texts[field] = text
	if unit != "" {
		b.units[field] = unit
	}
	return seen && prev == key
}

// revalidate re-runs every setter from the working copy. It is subscribed to
// the model's reset.
func (b *base[T, F]) revalidate() {
	clear(b.inputs)
	clear(b.texts)
	clear(b.units)
	working := b.Working()
	for _, bd := range b.bindings {
		text, unit := bd.show(working)
		bd.set(text, unit)
	}
}

// validatePending runs the setters of fields that never received input, so
// required fields left blank are caught before a commit.
func (b *base[T, F]) validatePending() {
	working := b.Working()
	for _, bd := range b.bindings {
		if _, seen := b.inputs[bd.field]; seen {
			continue
		}
		text, unit := bd.show(working)
		bd.set(text, unit)
	}
}

func (b *base[T, F]) lookup(key string) (*binding[T, F], error) {
	i, ok := b.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w %q for %s", ErrUnknownField, key, b.kind)
	}
	return &b.bindings[i], nil
}

// Kind returns the record kind edited.
func (b *base[T, F]) Kind() models.Kind { return b.kind }

// ID returns the id of the record edited.
func (b *base[T, F]) ID() uuid.UUID { return b.Working().RecordID() }

// WorkingDocument returns the working copy.
func (b *base[T, F]) WorkingDocument() models.Document { return b.Working() }

// OriginalDocument returns the last committed record.
func (b *base[T, F]) OriginalDocument() models.Document { return b.Original() }

// Stamp sets the update time of the original and the working copy alike, so
// a stamp never shows up as a pending change.
func (b *base[T, F]) Stamp(at time.Time) {
	b.Original().Stamp(at)
	b.Working().Stamp(at)
}

// Save validates untouched fields, names the entity after its current key and
// commits the working copy.
func (b *base[T, F]) Save() error { return b.Commit(nil) }

// Commit is Save with a store step. A valid working copy is handed to store as
// a clone and committed only when store succeeds; a failing store leaves the
// original and the pending edits untouched.
func (b *base[T, F]) Commit(store func(working models.Document) error) error {
	b.validatePending()
	if b.IsValid() && store != nil {
		if err := store(b.Working().Clone()); err != nil {
			return err
		}
	}
	b.SetName(b.Working().Label())
	return b.Model.Save()
}

// Set dispatches raw input to the setter of the field named key. unit may be
// blank to keep the field's current display unit.
func (b *base[T, F]) Set(key, text, unit string) error {
	bd, err := b.lookup(key)
	if err != nil {
		return err
	}
	if unit == "" && bd.display != nil {
		unit = b.Unit(key)
	}
	return bd.set(text, unit)
}

// SetUnit changes the display unit of a quantity field. Only the text is
// recomputed; the stored value keeps the unit it was entered in.
func (b *base[T, F]) SetUnit(key, unit string) error {
	bd, err := b.lookup(key)
	if err != nil {
		return err
	}
	if bd.display == nil {
		return fmt.Errorf("field %q has no unit", key)
	}
	text, err := bd.display(b.Working(), unit)
	if err != nil {
		return err
	}
	b.texts[bd.field] = text
	b.units[bd.field] = unit
	if len(b.Ledger().Messages(bd.field)) > 0 {
		// the shown text no longer matches the rejected input, so the next
		// submission must be validated even when it repeats that text
		delete(b.inputs, bd.field)
		return nil
	}
	b.inputs[bd.field] = text + "\x00" + unit
	return nil
}

// Text returns the last-known text of a field: the latest input, or the
// formatted working value when the field was never edited.
func (b *base[T, F]) Text(key string) (string, error) {
	bd, err := b.lookup(key)
	if err != nil {
		return "", err
	}
	if text, ok := b.texts[bd.field]; ok {
		return text, nil
	}
	text, _ := bd.show(b.Working())
	return text, nil
}

// Unit returns the display unit of a quantity field, or "".
func (b *base[T, F]) Unit(key string) string {
	bd, err := b.lookup(key)
	if err != nil || bd.display == nil {
		return ""
	}
	if u, ok := b.units[bd.field]; ok {
		return u
	}
	_, unit := bd.show(b.Working())
	return unit
}

// ErrorForKey returns the ledger text of the field named key.
func (b *base[T, F]) ErrorForKey(key string) (string, bool) {
	bd, err := b.lookup(key)
	if err != nil {
		return "", false
	}
	return b.ErrorFor(bd.field)
}

// OnFailure installs a hook called for every rejected input.
func (b *base[T, F]) OnFailure(fn func(kind models.Kind, fe *validation.FieldError)) {
	b.checker.OnFailure(func(fe *validation.FieldError) { fn(b.kind, fe) })
}

// View renders the editor for API clients.
func (b *base[T, F]) View() View {
	working := b.Working()
	v := View{
		Kind:   b.kind,
		ID:     working.RecordID().String(),
		Name:   working.Label(),
		State:  b.State().String(),
		Valid:  b.IsValid(),
		Dirty:  b.IsDirty(),
		Record: working,
	}
	for _, bd := range b.bindings {
		text, _ := b.Text(bd.key)
		fv := FieldView{
			Key:    bd.key,
			Label:  fmt.Sprint(bd.field),
			Type:   bd.typ,
			Text:   text,
			Unit:   b.Unit(bd.key),
			Units:  bd.units,
			Errors: b.Ledger().Messages(bd.field),
		}
		if bd.typ == TypeChoice {
			fv.Options = b.lookups.Options(bd.list).Values()
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}

// Field setters shared by every editor. Each records the input, validates it
// and writes the value only when it is valid.

func (b *base[T, F]) setText(field F, text string, required bool, put func(T, string)) error {
	if b.unchanged(field, text, "") {
		return nil
	}
	v, err := b.checker.Text(field, text, required)
	if err != nil {
		b.Touch()
		return err
	}
	b.Edit(func(r T) { put(r, v) })
	return nil
}

func (b *base[T, F]) setInt(field F, text string, bounds validation.Bounds, put func(T, *int)) error {
	if b.unchanged(field, text, "") {
		return nil
	}
	v, err := b.checker.Int(field, text, bounds)
	if err != nil {
		b.Touch()
		return err
	}
	b.Edit(func(r T) { put(r, v) })
	return nil
}

func (b *base[T, F]) setDate(field F, text string, put func(T, *time.Time)) error {
	if b.unchanged(field, text, "") {
		return nil
	}
	v, err := b.checker.Date(field, text)
	if err != nil {
		b.Touch()
		return err
	}
	b.Edit(func(r T) { put(r, v) })
	return nil
}

func (b *base[T, F]) setChoice(field F, value string, list lookup.List, put func(T, string)) error {
	if b.unchanged(field, value, "") {
		return nil
	}
	v, err := validation.Choice(b.checker, field, value, b.lookups.Options(list))
	if err != nil {
		b.Touch()
		return err
	}
	b.Edit(func(r T) { put(r, v) })
	return nil
}

func setQuantity[T record[T], F comparable, U quantity.Unit](b *base[T, F], field F, text string, unit U, sign validation.Sign, bounds validation.Bounds, put func(T, quantity.Quantity[U])) error {
	if b.unchanged(field, text, unit.String()) {
		return nil
	}
	q, err := validation.QuantityOf(b.checker, field, text, unit, sign, bounds)
	if err != nil {
		b.Touch()
		return err
	}
	b.Edit(func(r T) { put(r, q) })
	return nil
}

// Binding constructors.

func textField[T any, F comparable](field F, key string, set func(string) error, get func(T) string) binding[T, F] {
	return binding[T, F]{
		field: field,
		key:   key,
		typ:   TypeText,
		set:   func(text, _ string) error { return set(text) },
		show:  func(r T) (string, string) { return get(r), "" },
	}
}

func intField[T any, F comparable](field F, key string, set func(string) error, get func(T) *int) binding[T, F] {
	return binding[T, F]{
		field: field,
		key:   key,
		typ:   TypeInteger,
		set:   func(text, _ string) error { return set(text) },
		show: func(r T) (string, string) {
			if v := get(r); v != nil {
				return strconv.Itoa(*v), ""
			}
			return "", ""
		},
	}
}

func dateField[T any, F comparable](field F, key string, set func(string) error, get func(T) *time.Time) binding[T, F] {
	return binding[T, F]{
		field: field,
		key:   key,
		typ:   TypeDate,
		set:   func(text, _ string) error { return set(text) },
		show: func(r T) (string, string) {
			if v := get(r); v != nil {
				return v.Format(validation.DateLayouts[0]), ""
			}
			return "", ""
		},
	}
}

func choiceField[T any, F comparable](field F, key string, list lookup.List, set func(string) error, get func(T) string) binding[T, F] {
	return binding[T, F]{
		field: field,
		key:   key,
		typ:   TypeChoice,
		list:  list,
		set:   func(text, _ string) error { return set(text) },
		show:  func(r T) (string, string) { return get(r), "" },
	}
}

func quantityField[T any, F comparable, U quantity.Unit](field F, key string, units []U, set func(string, U) error, get func(T) quantity.Quantity[U]) binding[T, F] {
	symbols := make([]string, len(units))
	for i, u := range units {
		symbols[i] = u.String()
	}
	return binding[T, F]{
		field: field,
		key:   key,
		typ:   TypeQuantity,
		units: symbols,
		set: func(text, symbol string) error {
			u, err := quantity.ParseUnit[U](symbol)
			if err != nil {
				return err
			}
			return set(text, u)
		},
		show: func(r T) (string, string) {
			q := get(r)
			return quantity.Format(q), q.Unit().String()
		},
		display: func(r T, symbol string) (string, error) {
			u, err := quantity.ParseUnit[U](symbol)
			if err != nil {
				return "", err
			}
			return quantity.FormatIn(get(r), u), nil
		},
	}
}
