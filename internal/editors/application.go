package editors

import (
	"fmt"
	"time"

	"exposure-platform/internal/lookup"
	"exposure-platform/internal/models"
	"exposure-platform/internal/quantity"
	"exposure-platform/internal/validation"
)

// ApplicationField enumerates the editable fields of an application event.
type ApplicationField int

const (
	ApplicationDateField ApplicationField = iota
	EquipmentTypeField
	AreaTreatedField
	ApplicationRateField
	SprayVolumeField
	NozzlePressureField
	BoomHeightField
	TemperatureMinField
	TemperatureField
	TemperatureMaxField
	HumidityMinField
	HumidityField
	HumidityMaxField
	WindSpeedMinField
	WindSpeedField
	WindSpeedMaxField
)

var applicationLabels = [...]string{
	ApplicationDateField: "Application date",
	EquipmentTypeField:   "Equipment type",
	AreaTreatedField:     "Area treated",
	ApplicationRateField: "Application rate",
	SprayVolumeField:     "Spray volume",
	NozzlePressureField:  "Nozzle pressure",
	BoomHeightField:      "Boom height",
	TemperatureMinField:  "Temperature min",
	TemperatureField:     "Temperature",
	TemperatureMaxField:  "Temperature max",
	HumidityMinField:     "Humidity min",
	HumidityField:        "Humidity",
	HumidityMaxField:     "Humidity max",
	WindSpeedMinField:    "Wind speed min",
	WindSpeedField:       "Wind speed",
	WindSpeedMaxField:    "Wind speed max",
}

func (f ApplicationField) String() string {
	if int(f) < len(applicationLabels) {
		return applicationLabels[f]
	}
	return fmt.Sprintf("ApplicationField(%d)", int(f))
}

var (
	temperatureSpan = validation.Span[ApplicationField]{
		Name: "Temperature", MinField: TemperatureMinField, ValueField: TemperatureField, MaxField: TemperatureMaxField,
	}
	humiditySpan = validation.Span[ApplicationField]{
		Name: "Humidity", MinField: HumidityMinField, ValueField: HumidityField, MaxField: HumidityMaxField,
	}
	windSpeedSpan = validation.Span[ApplicationField]{
		Name: "Wind speed", MinField: WindSpeedMinField, ValueField: WindSpeedField, MaxField: WindSpeedMaxField,
	}
)

// ApplicationEditor edits one application event.
type ApplicationEditor struct {
	*base[*models.Application, ApplicationField]
}

// NewApplicationEditor opens an editor on a, or on a new default application
// when a is nil.
func NewApplicationEditor(a *models.Application, lookups lookup.Snapshot, catalog validation.Catalog) *ApplicationEditor {
	m := newModel[models.Application, *models.Application, ApplicationField](a)
	e := &ApplicationEditor{base: newBase(models.KindApplication, m, lookups, catalog)}

	temp := func(r *models.Application) models.Reading[quantity.TemperatureUnit] { return r.Temperature }
	hum := func(r *models.Application) models.Reading[quantity.PercentUnit] { return r.Humidity }
	wind := func(r *models.Application) models.Reading[quantity.VelocityUnit] { return r.WindSpeed }

	e.bind(
		dateField(ApplicationDateField, "application_date", e.SetApplicationDate, func(r *models.Application) *time.Time { return r.ApplicationDate }),
		choiceField(EquipmentTypeField, "equipment_type", lookup.EquipmentType, e.SetEquipmentType, func(r *models.Application) string { return r.EquipmentType }),
		quantityField(AreaTreatedField, "area_treated", quantity.AreaUnits, e.SetAreaTreated, func(r *models.Application) quantity.Area { return r.AreaTreated }),
		quantityField(ApplicationRateField, "application_rate", quantity.RateUnits, e.SetApplicationRate, func(r *models.Application) quantity.Rate { return r.ApplicationRate }),
		quantityField(SprayVolumeField, "spray_volume", quantity.VolumeUnits, e.SetSprayVolume, func(r *models.Application) quantity.Volume { return r.SprayVolume }),
		quantityField(NozzlePressureField, "nozzle_pressure", quantity.PressureUnits, e.SetNozzlePressure, func(r *models.Application) quantity.Pressure { return r.NozzlePressure }),
		quantityField(BoomHeightField, "boom_height", quantity.LengthUnits, e.SetBoomHeight, func(r *models.Application) quantity.Length { return r.BoomHeight }),
		quantityField(TemperatureMinField, "temperature_min", quantity.TemperatureUnits, e.SetTemperatureMin, func(r *models.Application) quantity.Temperature { return temp(r).Min }),
		quantityField(TemperatureField, "temperature", quantity.TemperatureUnits, e.SetTemperature, func(r *models.Application) quantity.Temperature { return temp(r).Current }),
		quantityField(TemperatureMaxField, "temperature_max", quantity.TemperatureUnits, e.SetTemperatureMax, func(r *models.Application) quantity.Temperature { return temp(r).Max }),
		quantityField(HumidityMinField, "humidity_min", quantity.PercentUnits, e.SetHumidityMin, func(r *models.Application) quantity.Percentage { return hum(r).Min }),
		quantityField(HumidityField, "humidity", quantity.PercentUnits, e.SetHumidity, func(r *models.Application) quantity.Percentage { return hum(r).Current }),
		quantityField(HumidityMaxField, "humidity_max", quantity.PercentUnits, e.SetHumidityMax, func(r *models.Application) quantity.Percentage { return hum(r).Max }),
		quantityField(WindSpeedMinField, "wind_speed_min", quantity.VelocityUnits, e.SetWindSpeedMin, func(r *models.Application) quantity.Velocity { return wind(r).Min }),
		quantityField(WindSpeedField, "wind_speed", quantity.VelocityUnits, e.SetWindSpeed, func(r *models.Application) quantity.Velocity { return wind(r).Current }),
		quantityField(WindSpeedMaxField, "wind_speed_max", quantity.VelocityUnits, e.SetWindSpeedMax, func(r *models.Application) quantity.Velocity { return wind(r).Max }),
	)
	return e
}

func (e *ApplicationEditor) SetApplicationDate(text string) error {
	return e.setDate(ApplicationDateField, text, func(r *models.Application, v *time.Time) { r.ApplicationDate = v })
}

func (e *ApplicationEditor) SetEquipmentType(value string) error {
	return e.setChoice(EquipmentTypeField, value, lookup.EquipmentType, func(r *models.Application, v string) { r.EquipmentType = v })
}

func (e *ApplicationEditor) SetAreaTreated(text string, unit quantity.AreaUnit) error {
	return setQuantity(e.base, AreaTreatedField, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Application, q quantity.Area) { r.AreaTreated = q })
}

func (e *ApplicationEditor) SetApplicationRate(text string, unit quantity.RateUnit) error {
	return setQuantity(e.base, ApplicationRateField, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Application, q quantity.Rate) { r.ApplicationRate = q })
}

func (e *ApplicationEditor) SetSprayVolume(text string, unit quantity.VolumeUnit) error {
	return setQuantity(e.base, SprayVolumeField, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Application, q quantity.Volume) { r.SprayVolume = q })
}

func (e *ApplicationEditor) SetNozzlePressure(text string, unit quantity.PressureUnit) error {
	return setQuantity(e.base, NozzlePressureField, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Application, q quantity.Pressure) { r.NozzlePressure = q })
}

func (e *ApplicationEditor) SetBoomHeight(text string, unit quantity.LengthUnit) error {
	return setQuantity(e.base, BoomHeightField, text, unit, validation.NonNegative, validation.AtMost(10),
		func(r *models.Application, q quantity.Length) { r.BoomHeight = q })
}

// Temperatures may be negative. The parser already limits them to plausible
// field conditions.

func (e *ApplicationEditor) SetTemperatureMin(text string, unit quantity.TemperatureUnit) error {
	return e.setTemperature(TemperatureMinField, text, unit, func(rd *models.Reading[quantity.TemperatureUnit], q quantity.Temperature) { rd.Min = q })
}

func (e *ApplicationEditor) SetTemperature(text string, unit quantity.TemperatureUnit) error {
	return e.setTemperature(TemperatureField, text, unit, func(rd *models.Reading[quantity.TemperatureUnit], q quantity.Temperature) { rd.Current = q })
}

func (e *ApplicationEditor) SetTemperatureMax(text string, unit quantity.TemperatureUnit) error {
	return e.setTemperature(TemperatureMaxField, text, unit, func(rd *models.Reading[quantity.TemperatureUnit], q quantity.Temperature) { rd.Max = q })
}

func (e *ApplicationEditor) setTemperature(field ApplicationField, text string, unit quantity.TemperatureUnit, put func(*models.Reading[quantity.TemperatureUnit], quantity.Temperature)) error {
	err := setQuantity(e.base, field, text, unit, validation.AnySign, validation.Unbounded,
		func(r *models.Application, q quantity.Temperature) { put(&r.Temperature, q) })
	rd := e.Working().Temperature
	validation.CheckSpan(e.checker, temperatureSpan, rd.Min, rd.Current, rd.Max)
	return err
}

func (e *ApplicationEditor) SetHumidityMin(text string, unit quantity.PercentUnit) error {
	return e.setHumidity(HumidityMinField, text, unit, func(rd *models.Reading[quantity.PercentUnit], q quantity.Percentage) { rd.Min = q })
}

func (e *ApplicationEditor) SetHumidity(text string, unit quantity.PercentUnit) error {
	return e.setHumidity(HumidityField, text, unit, func(rd *models.Reading[quantity.PercentUnit], q quantity.Percentage) { rd.Current = q })
}

func (e *ApplicationEditor) SetHumidityMax(text string, unit quantity.PercentUnit) error {
	return e.setHumidity(HumidityMaxField, text, unit, func(rd *models.Reading[quantity.PercentUnit], q quantity.Percentage) { rd.Max = q })
}

func (e *ApplicationEditor) setHumidity(field ApplicationField, text string, unit quantity.PercentUnit, put func(*models.Reading[quantity.PercentUnit], quantity.Percentage)) error {
	err := setQuantity(e.base, field, text, unit, validation.NonNegative, validation.Between(0, 100),
		func(r *models.Application, q quantity.Percentage) { put(&r.Humidity, q) })
	rd := e.Working().Humidity
	validation.CheckSpan(e.checker, humiditySpan, rd.Min, rd.Current, rd.Max)
	return err
}

func (e *ApplicationEditor) SetWindSpeedMin(text string, unit quantity.VelocityUnit) error {
	return e.setWindSpeed(WindSpeedMinField, text, unit, func(rd *models.Reading[quantity.VelocityUnit], q quantity.Velocity) { rd.Min = q })
}

func (e *ApplicationEditor) SetWindSpeed(text string, unit quantity.VelocityUnit) error {
	return e.setWindSpeed(WindSpeedField, text, unit, func(rd *models.Reading[quantity.VelocityUnit], q quantity.Velocity) { rd.Current = q })
}

func (e *ApplicationEditor) SetWindSpeedMax(text string, unit quantity.VelocityUnit) error {
	return e.setWindSpeed(WindSpeedMaxField, text, unit, func(rd *models.Reading[quantity.VelocityUnit], q quantity.Velocity) { rd.Max = q })
}

func (e *ApplicationEditor) setWindSpeed(field ApplicationField, text string, unit quantity.VelocityUnit, put func(*models.Reading[quantity.VelocityUnit], quantity.Velocity)) error {
	err := setQuantity(e.base, field, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Application, q quantity.Velocity) { put(&r.WindSpeed, q) })
	rd := e.Working().WindSpeed
	validation.CheckSpan(e.checker, windSpeedSpan, rd.Min, rd.Current, rd.Max)
	return err
}
