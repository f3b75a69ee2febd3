package models

import (
	"time"

	"github.com/google/uuid"

	"exposure-platform/internal/quantity"
)

// Reading is a measured condition recorded as a minimum, a current value and
// a maximum, all in one unit family.
type Reading[U quantity.Unit] struct {
	Min     quantity.Quantity[U] `json:"min"`
	Current quantity.Quantity[U] `json:"current"`
	Max     quantity.Quantity[U] `json:"max"`
}

func emptyReading[U quantity.Unit](u U) Reading[U] {
	return Reading[U]{Min: quantity.Empty(u), Current: quantity.Empty(u), Max: quantity.Empty(u)}
}

func (r Reading[U]) clone() Reading[U] {
	return Reading[U]{Min: r.Min.Clone(), Current: r.Current.Clone(), Max: r.Max.Clone()}
}

// Worker is a person monitored during a study.
type Worker struct {
	ID        uuid.UUID       `json:"id"`
	WorkerID  string          `json:"worker_id"`
	Name      string          `json:"name"`
	Age       *int            `json:"age,omitempty"`
	Gender    string          `json:"gender"`
	Task      string          `json:"task"`
	Height    quantity.Length `json:"height"`
	Weight    quantity.Mass   `json:"weight"`
	Notes     string          `json:"notes"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Init fills a new worker with a fresh id and default units
func (w *Worker) Init() {
	*w = Worker{
		ID:     uuid.New(),
		Height: quantity.Empty(quantity.Foot),
		Weight: quantity.Empty(quantity.Pound),
	}
}

// Clone returns a deep copy
func (w *Worker) Clone() *Worker {
	c := *w
	c.Age = clonePtr(w.Age)
	c.Height = w.Height.Clone()
	c.Weight = w.Weight.Clone()
	return &c
}

func (w *Worker) RecordKind() Kind { return KindWorker }
func (w *Worker) RecordID() uuid.UUID { return w.ID }
func (w *Worker) Stamp(t time.Time) { w.UpdatedAt = t }
func (w *Worker) Label() string { return labelOf(KindWorker, w.WorkerID) }

// Application is one pesticide application event together with the weather
// conditions it was made in.
type Application struct {
	ID              uuid.UUID                         `json:"id"`
	ApplicationDate *time.Time                        `json:"application_date,omitempty"`
	EquipmentType   string                            `json:"equipment_type"`
	AreaTreated     quantity.Area                     `json:"area_treated"`
	ApplicationRate quantity.Rate                     `json:"application_rate"`
	SprayVolume     quantity.Volume                   `json:"spray_volume"`
	NozzlePressure  quantity.Pressure                 `json:"nozzle_pressure"`
	BoomHeight      quantity.Length                   `json:"boom_height"`
	Temperature     Reading[quantity.TemperatureUnit] `json:"temperature"`
	Humidity        Reading[quantity.PercentUnit]     `json:"humidity"`
	WindSpeed       Reading[quantity.VelocityUnit]    `json:"wind_speed"`
	UpdatedAt       time.Time                         `json:"updated_at"`
}

// Init fills a new application with a fresh id and default units
func (a *Application) Init() {
	*a = Application{
		ID:              uuid.New(),
		AreaTreated:     quantity.Empty(quantity.Acre),
		ApplicationRate: quantity.Empty(quantity.PoundsPerAcre),
		SprayVolume:     quantity.Empty(quantity.Gallon),
		NozzlePressure:  quantity.Empty(quantity.PSI),
		BoomHeight:      quantity.Empty(quantity.Inch),
		Temperature:     emptyReading(quantity.Fahrenheit),
		Humidity:        emptyReading(quantity.Percent),
		WindSpeed:       emptyReading(quantity.MilesPerHour),
	}
}

// Clone returns a deep copy
func (a *Application) Clone() *Application {
	c := *a
	c.ApplicationDate = clonePtr(a.ApplicationDate)
	c.AreaTreated = a.AreaTreated.Clone()
	c.ApplicationRate = a.ApplicationRate.Clone()
	c.SprayVolume = a.SprayVolume.Clone()
	c.NozzlePressure = a.NozzlePressure.Clone()
	c.BoomHeight = a.BoomHeight.Clone()
	c.Temperature = a.Temperature.clone()
	c.Humidity = a.Humidity.clone()
	c.WindSpeed = a.WindSpeed.clone()
	return &c
}

func (a *Application) RecordKind() Kind { return KindApplication }
func (a *Application) RecordID() uuid.UUID { return a.ID }
func (a *Application) Stamp(t time.Time) { a.UpdatedAt = t }

func (a *Application) Label() string {
	if a.ApplicationDate == nil {
		return labelOf(KindApplication, "")
	}
	return labelOf(KindApplication, a.ApplicationDate.Format("2006-01-02"))
}

// Product is a formulated product handled by workers.
type Product struct {
	ID                 uuid.UUID           `json:"id"`
	ProductName        string              `json:"product_name"`
	RegistrationNumber string              `json:"registration_number"`
	Formulation        string              `json:"formulation"`
	ActiveIngredient   string              `json:"active_ingredient"`
	ActivePercent      quantity.Percentage `json:"active_percent"`
	Concentration      quantity.Density    `json:"concentration"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// Init fills a new product with a fresh id and default units
func (p *Product) Init() {
	*p = Product{
		ID:            uuid.New(),
		ActivePercent: quantity.Empty(quantity.Percent),
		Concentration: quantity.Empty(quantity.PoundsPerGallon),
	}
}

// Clone returns a deep copy
func (p *Product) Clone() *Product {
	c := *p
	c.ActivePercent = p.ActivePercent.Clone()
	c.Concentration = p.Concentration.Clone()
	return &c
}

func (p *Product) RecordKind() Kind { return KindProduct }
func (p *Product) RecordID() uuid.UUID { return p.ID }
func (p *Product) Stamp(t time.Time) { p.UpdatedAt = t }
func (p *Product) Label() string { return labelOf(KindProduct, p.ProductName) }

// Mixing is one mixing and loading event.
type Mixing struct {
	ID              uuid.UUID       `json:"id"`
	ProductRef      string          `json:"product_ref"`
	Method          string          `json:"method"`
	AmountHandled   quantity.Mass   `json:"amount_handled"`
	VolumeMixed     quantity.Volume `json:"volume_mixed"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Init fills a new mixing event with a fresh id and default units
func (m *Mixing) Init() {
	*m = Mixing{
		ID:            uuid.New(),
		AmountHandled: quantity.Empty(quantity.Pound),
		VolumeMixed:   quantity.Empty(quantity.Gallon),
	}
}

// Clone returns a deep copy
func (m *Mixing) Clone() *Mixing {
	c := *m
	c.AmountHandled = m.AmountHandled.Clone()
	c.VolumeMixed = m.VolumeMixed.Clone()
	c.DurationMinutes = clonePtr(m.DurationMinutes)
	return &c
}

func (m *Mixing) RecordKind() Kind { return KindMixing }
func (m *Mixing) RecordID() uuid.UUID { return m.ID }
func (m *Mixing) Stamp(t time.Time) { m.UpdatedAt = t }
func (m *Mixing) Label() string { return labelOf(KindMixing, m.ProductRef) }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func labelOf(k Kind, key string) string {
	if key == "" {
		return k.Title() + " (new)"
	}
	return k.Title() + " " + key
}
