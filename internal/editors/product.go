package editors

import (
	"fmt"

	"exposure-platform/internal/lookup"
	"exposure-platform/internal/models"
	"exposure-platform/internal/quantity"
	"exposure-platform/internal/validation"
)

type ProductField int

const (
	ProductNameField ProductField = iota
	RegistrationNumberField
	FormulationField
	ActiveIngredientField
	ActivePercentField
	ConcentrationField
)

var productLabels = [...]string{
	ProductNameField:        "Product name",
	RegistrationNumberField: "Registration number",
	FormulationField:        "Formulation",
	ActiveIngredientField:   "Active ingredient",
	ActivePercentField:      "Active ingredient content",
	ConcentrationField:      "Concentration",
}

func (f ProductField) String() string {
	if int(f) < len(productLabels) {
		return productLabels[f]
	}
	return fmt.Sprintf("ProductField(%d)", int(f))
}

type ProductEditor struct {
	*base[*models.Product, ProductField]
}

func NewProductEditor(p *models.Product, lookups lookup.Snapshot, catalog validation.Catalog) *ProductEditor {
	m := newModel[models.Product, *models.Product, ProductField](p)
	e := &ProductEditor{base: newBase(models.KindProduct, m, lookups, catalog)}
	e.bind(
		textField(ProductNameField, "product_name", e.SetProductName, func(r *models.Product) string { return r.ProductName }),
		textField(RegistrationNumberField, "registration_number", e.SetRegistrationNumber, func(r *models.Product) string { return r.RegistrationNumber }),
		choiceField(FormulationField, "formulation", lookup.Formulation, e.SetFormulation, func(r *models.Product) string { return r.Formulation }),
		textField(ActiveIngredientField, "active_ingredient", e.SetActiveIngredient, func(r *models.Product) string { return r.ActiveIngredient }),
		quantityField(ActivePercentField, "active_percent", quantity.PercentUnits, e.SetActivePercent, func(r *models.Product) quantity.Percentage { return r.ActivePercent }),
		quantityField(ConcentrationField, "concentration", quantity.DensityUnits, e.SetConcentration, func(r *models.Product) quantity.Density { return r.Concentration }),
	)
	return e
}

// SetProductName sets the name the product is referenced by. It is required.
func (e *ProductEditor) SetProductName(text string) error {
	return e.setText(ProductNameField, text, true, func(r *models.Product, v string) { r.ProductName = v })
}

func (e *ProductEditor) SetRegistrationNumber(text string) error {
	return e.setText(RegistrationNumberField, text, false, func(r *models.Product, v string) { r.RegistrationNumber = v })
}

func (e *ProductEditor) SetFormulation(value string) error {
	return e.setChoice(FormulationField, value, lookup.Formulation, func(r *models.Product, v string) { r.Formulation = v })
}

func (e *ProductEditor) SetActiveIngredient(text string) error {
	return e.setText(ActiveIngredientField, text, false, func(r *models.Product, v string) { r.ActiveIngredient = v })
}

func (e *ProductEditor) SetActivePercent(text string, unit quantity.PercentUnit) error {
	return setQuantity(e.base, ActivePercentField, text, unit, validation.NonNegative, validation.Between(0, 100),
		func(r *models.Product, q quantity.Percentage) { r.ActivePercent = q })
}

func (e *ProductEditor) SetConcentration(text string, unit quantity.DensityUnit) error {
	return setQuantity(e.base, ConcentrationField, text, unit, validation.NonNegative, validation.Unbounded,
		func(r *models.Product, q quantity.Density) { r.Concentration = q })
}
