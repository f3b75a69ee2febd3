package editors

import (
	"fmt"

	"exposure-platform/internal/lookup"
	"exposure-platform/internal/models"
	"exposure-platform/internal/quantity"
	"exposure-platform/internal/validation"
)

// WorkerField enumerates the editable fields of a worker.
type WorkerField int

const (
	WorkerIDField WorkerField = iota
	WorkerNameField
	WorkerAgeField
	WorkerGenderField
	WorkerTaskField
	WorkerHeightField
	WorkerWeightField
	WorkerNotesField
)

var workerLabels = [...]string{
	WorkerIDField:     "Worker ID",
	WorkerNameField:   "Name",
	WorkerAgeField:    "Age",
	WorkerGenderField: "Gender",
	WorkerTaskField:   "Task",
	WorkerHeightField: "Height",
	WorkerWeightField: "Weight",
	WorkerNotesField:  "Notes",
}

func (f WorkerField) String() string {
	if int(f) < len(workerLabels) {
		return workerLabels[f]
	}
	return fmt.Sprintf("WorkerField(%d)", int(f))
}

// Worker age limits in years.
const (
	MinWorkerAge = 10
	MaxWorkerAge = 127
)

// WorkerEditor edits one worker record.
type WorkerEditor struct {
	*base[*models.Worker, WorkerField]
}

// NewWorkerEditor opens an editor on w, or on a new default worker when w is
// nil.
func NewWorkerEditor(w *models.Worker, lookups lookup.Snapshot, catalog validation.Catalog) *WorkerEditor {
	m := newModel[models.Worker, *models.Worker, WorkerField](w)
	e := &WorkerEditor{base: newBase(models.KindWorker, m, lookups, catalog)}
	e.bind(
		textField(WorkerIDField, "worker_id", e.SetWorkerID, func(r *models.Worker) string { return r.WorkerID }),
		textField(WorkerNameField, "name", e.SetFullName, func(r *models.Worker) string { return r.Name }),
		intField(WorkerAgeField, "age", e.SetAge, func(r *models.Worker) *int { return r.Age }),
		choiceField(WorkerGenderField, "gender", lookup.Gender, e.SetGender, func(r *models.Worker) string { return r.Gender }),
		choiceField(WorkerTaskField, "task", lookup.Task, e.SetTask, func(r *models.Worker) string { return r.Task }),
		quantityField(WorkerHeightField, "height", quantity.LengthUnits, e.SetHeight, func(r *models.Worker) quantity.Length { return r.Height }),
		quantityField(WorkerWeightField, "weight", quantity.MassUnits, e.SetWeight, func(r *models.Worker) quantity.Mass { return r.Weight }),
		textField(WorkerNotesField, "notes", e.SetNotes, func(r *models.Worker) string { return r.Notes }),
	)
	return e
}

// SetWorkerID sets the study key of the worker. It is required.
func (e *WorkerEditor) SetWorkerID(text string) error {
	return e.setText(WorkerIDField, text, true, func(r *models.Worker, v string) { r.WorkerID = v })
}

func (e *WorkerEditor) SetFullName(text string) error {
	return e.setText(WorkerNameField, text, false, func(r *models.Worker, v string) { r.Name = v })
}

func (e *WorkerEditor) SetAge(text string) error {
	return e.setInt(WorkerAgeField, text, validation.Between(MinWorkerAge, MaxWorkerAge), func(r *models.Worker, v *int) { r.Age = v })
}

func (e *WorkerEditor) SetGender(value string) error {
	return e.setChoice(WorkerGenderField, value, lookup.Gender, func(r *models.Worker, v string) { r.Gender = v })
}

func (e *WorkerEditor) SetTask(value string) error {
	return e.setChoice(WorkerTaskField, value, lookup.Task, func(r *models.Worker, v string) { r.Task = v })
}

func (e *WorkerEditor) SetHeight(text string, unit quantity.LengthUnit) error {
	return setQuantity(e.base, WorkerHeightField, text, unit, validation.Positive, validation.AtMost(3),
		func(r *models.Worker, q quantity.Length) { r.Height = q })
}

func (e *WorkerEditor) SetWeight(text string, unit quantity.MassUnit) error {
	return setQuantity(e.base, WorkerWeightField, text, unit, validation.Positive, validation.AtMost(400),
		func(r *models.Worker, q quantity.Mass) { r.Weight = q })
}

func (e *WorkerEditor) SetNotes(text string) error {
	return e.setText(WorkerNotesField, text, false, func(r *models.Worker, v string) { r.Notes = v })
}
