package validation

import (
	"testing"

	"exposure-platform/internal/quantity"
)

var humiditySpan = Span[testField]{
	Name:       "Humidity",
	MinField:   fieldHumidityMin,
	ValueField: fieldHumidity,
	MaxField:   fieldHumidityMax,
}

// humidityForm mimics an editor: each setter validates its own field, writes
// the value when it is individually valid and then re-checks the span.
type humidityForm struct {
	c             *Checker[testField]
	min, cur, max quantity.Percentage
}

func newHumidityForm() *humidityForm {
	e := quantity.Empty(quantity.Percent)
	return &humidityForm{c: newTestChecker(), min: e, cur: e, max: e}
}

func (h *humidityForm) set(field testField, raw string) {
	q, err := QuantityOf(h.c, field, raw, quantity.Percent, NonNegative, Between(0, 100))
	if err == nil {
		switch field {
		case fieldHumidityMin:
			h.min = q
		case fieldHumidity:
			h.cur = q
		case fieldHumidityMax:
			h.max = q
		}
	}
	CheckSpan(h.c, humiditySpan, h.min, h.cur, h.max)
}

func TestCheckSpan_MinExceedsMax(t *testing.T) {
	h := newHumidityForm()
	l := h.c.Ledger()

	h.set(fieldHumidityMax, "50")
	h.set(fieldHumidityMin, "80")

	got, ok := l.ErrorFor(fieldHumidityMin)
	if !ok || got != "Humidity minimum exceeds the maximum" {
		t.Fatalf("ErrorFor(min) = %q, %v", got, ok)
	}
	if _, ok := l.ErrorFor(fieldHumidityMax); ok {
		t.Error("max field should stay clean")
	}

	// an out-of-range min of its own must survive the span clearing
	h.set(fieldHumidityMin, "120")
	h.set(fieldHumidityMax, "90")

	msgs := l.Messages(fieldHumidityMin)
	if len(msgs) != 1 || msgs[0] != "Humidity min must be between 0 % and 100 %" {
		t.Errorf("Messages(min) = %v, want only the field range error", msgs)
	}
}

func TestCheckSpan_ClearedByOtherField(t *testing.T) {
	h := newHumidityForm()
	l := h.c.Ledger()

	h.set(fieldHumidityMax, "50")
	h.set(fieldHumidityMin, "80")
	h.set(fieldHumidityMax, "90")

	if !l.IsValid() {
		all, _ := l.AllErrors()
		t.Errorf("ledger = %q, want empty", all)
	}
	if v, _ := h.min.Value(); v != 80 {
		t.Errorf("min = %v, want 80 (relationship failures do not block the write)", v)
	}
}

func TestCheckSpan_CurrentOutsideBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max string
		current  string
		wantMsgs []string
	}{
		{name: "inside", min: "20", max: "60", current: "40"},
		{name: "on the bounds", min: "40", max: "40", current: "40"},
		{name: "below min", min: "20", max: "60", current: "10", wantMsgs: []string{"Humidity is below the minimum"}},
		{name: "above max", min: "20", max: "60", current: "70", wantMsgs: []string{"Humidity is above the maximum"}},
		{name: "absent min passes", min: "", max: "60", current: "10"},
		{name: "absent max passes", min: "20", max: "", current: "99"},
		{name: "absent current passes", min: "20", max: "60", current: ""},
		{
			name: "outside inverted bounds", min: "60", max: "20", current: "70",
			wantMsgs: []string{"Humidity is above the maximum"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHumidityForm()
			h.set(fieldHumidityMin, tt.min)
			h.set(fieldHumidityMax, tt.max)
			h.set(fieldHumidity, tt.current)

			got := h.c.Ledger().Messages(fieldHumidity)
			if len(got) != len(tt.wantMsgs) {
				t.Fatalf("Messages(current) = %v, want %v", got, tt.wantMsgs)
			}
			for i := range got {
				if got[i] != tt.wantMsgs[i] {
					t.Errorf("Messages(current)[%d] = %q, want %q", i, got[i], tt.wantMsgs[i])
				}
			}
		})
	}
}

func TestCheckSpan_MixedUnits(t *testing.T) {
	c := newTestChecker()
	span := Span[testField]{Name: "Temperature", MinField: fieldHumidityMin, ValueField: fieldTemp, MaxField: fieldHumidityMax}

	min := quantity.New(10.0, quantity.Celsius)
	max := quantity.New(40.0, quantity.Fahrenheit)
	if CheckSpan(c, span, min, quantity.Empty(quantity.Celsius), max) {
		t.Error("10 C min above 40 F max should fail")
	}
	max = quantity.New(55.0, quantity.Celsius)
	if !CheckSpan(c, span, min, quantity.New(300.0, quantity.Kelvin), max) {
		t.Errorf("300 K inside 10 C .. 55 C should pass, ledger %v", c.Ledger().Fields())
	}
}
