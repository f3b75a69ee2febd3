package editors

import (
	"fmt"

	"exposure-platform/internal/lookup"
	"exposure-platform/internal/models"
	"exposure-platform/internal/quantity"
	"exposure-platform/internal/validation"
)

type MixingField int

const (
	ProductRefField MixingField = iota
	MixingMethodField
	AmountHandledField
	VolumeMixedField
	DurationField
)

var mixingLabels = [...]string{
	ProductRefField:    "Product",
	MixingMethodField:  "Mixing method",
	AmountHandledField: "Amount handled",
	VolumeMixedField:   "Volume mixed",
	DurationField:      "Duration",
}

func (f MixingField) String() string {
	if int(f) < len(mixingLabels) {
		return mixingLabels[f]
	}
	return fmt.Sprintf("MixingField(%d)", int(f))
}

type MixingEditor struct {
	*base[*models.Mixing, MixingField]
}

func NewMixingEditor(mx *models.Mixing, lookups lookup.Snapshot, catalog validation.Catalog) *MixingEditor {
	m := newModel[models.Mixing, *models.Mixing, MixingField](mx)
	e := &MixingEditor{base: newBase(models.KindMixing, m, lookups, catalog)}
	e.bind(
		textField(ProductRefField, "product_ref", e.SetProductRef, func(r *models.Mixing) string { return r.ProductRef }),
		choiceField(MixingMethodField, "method", lookup.MixingMethod, e.SetMethod, func(r *models.Mixing) string { return r.Method }),
		quantityField(AmountHandledField, "amount_handled", quantity.MassUnits, e.SetAmountHandled, func(r *models.Mixing) quantity.Mass { return r.AmountHandled }),
		quantityField(VolumeMixedField, "volume_mixed", quantity.VolumeUnits, e.SetVolumeMixed, func(r *models.Mixing) quantity.Volume { return r.VolumeMixed }),
		intField(DurationField, "duration_minutes", e.SetDuration, func(r *models.Mixing) *int { return r.DurationMinutes }),
	)
	return e
}

func (e *MixingEditor) SetProductRef(text string) error {
	return e.setText(ProductRefField, text, true, func(r *models.Mixing, v string) { r.ProductRef = v })
}

func (e *MixingEditor) SetMethod(value string) error {
	return e.setChoice(MixingMethodField, value, lookup.MixingMethod, func(r *models.Mixing, v string) { r.Method = v })
}

func (e *MixingEditor) SetAmountHandled(text string, unit quantity.MassUnit) error {
	return setQuantity(e.base, AmountHandledField, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Mixing, q quantity.Mass) { r.AmountHandled = q })
}

func (e *MixingEditor) SetVolumeMixed(text string, unit quantity.VolumeUnit) error {
	return setQuantity(e.base, VolumeMixedField, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Mixing, q quantity.Volume) { r.VolumeMixed = q })
}

// SetDuration sets the duration of the event in whole minutes.
func (e *MixingEditor) SetDuration(text string) error {
	return e.setInt(DurationField, text, validation.AtLeast(0), func(r *models.Mixing, v *int) { r.DurationMinutes = v })
}
