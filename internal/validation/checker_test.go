package validation

import (
	"errors"
	"testing"

	"exposure-platform/internal/quantity"
)

type testField int

const (
	fieldName testField = iota
	fieldAge
	fieldRatio
	fieldDate
	fieldHeight
	fieldTemp
	fieldGender
	fieldHumidityMin
	fieldHumidity
	fieldHumidityMax
)

func (f testField) String() string {
	return [...]string{"Name", "Age", "Ratio", "Date", "Height", "Temperature", "Gender",
		"Humidity min", "Humidity", "Humidity max"}[f]
}

func newTestChecker() *Checker[testField] {
	return NewChecker(NewLedger[testField](), nil)
}

func TestChecker_Text(t *testing.T) {
	c := newTestChecker()

	if _, err := c.Text(fieldName, "  ", true); !errors.Is(err, ErrRange) {
		t.Fatalf("Text(blank, required) error = %v, want ErrRange", err)
	}
	if got, _ := c.Ledger().ErrorFor(fieldName); got != "Name is required" {
		t.Errorf("ErrorFor() = %q, want %q", got, "Name is required")
	}

	if v, err := c.Text(fieldName, "W1", true); err != nil || v != "W1" {
		t.Fatalf("Text(W1) = %q, %v", v, err)
	}
	if !c.Ledger().IsValid() {
		t.Error("ledger should be clean after a valid value")
	}

	if _, err := c.Text(fieldName, "", false); err != nil {
		t.Errorf("Text(blank, optional) error = %v, want nil", err)
	}
}

func TestChecker_Int(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  error
		wantValue *int
	}{
		{name: "blank is valid and empty", raw: ""},
		{name: "inside bounds", raw: "35", wantValue: intPtr(35)},
		{name: "lower bound inclusive", raw: "10", wantValue: intPtr(10)},
		{name: "below bounds", raw: "9", wantKind: ErrRange},
		{name: "above bounds", raw: "128", wantKind: ErrRange},
		{name: "not a whole number", raw: "12.5", wantKind: ErrParse},
		{name: "text", raw: "old", wantKind: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChecker()
			got, err := c.Int(fieldAge, tt.raw, Between(10, 127))
			if tt.wantKind != nil {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("Int(%q) error = %v, want %v", tt.raw, err, tt.wantKind)
				}
				if c.Ledger().IsValid() {
					t.Error("ledger should hold the failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Int(%q) error = %v", tt.raw, err)
			}
			if (got == nil) != (tt.wantValue == nil) || (got != nil && *got != *tt.wantValue) {
				t.Errorf("Int(%q) = %v, want %v", tt.raw, got, tt.wantValue)
			}
		})
	}
}

func TestChecker_RevalidationReplacesOwnMessage(t *testing.T) {
	c := newTestChecker()

	c.Int(fieldAge, "abc", Between(10, 127))
	c.Int(fieldAge, "200", Between(10, 127))
	msgs := c.Ledger().Messages(fieldAge)
	if len(msgs) != 1 || msgs[0] != "Age must be between 10 and 127" {
		t.Errorf("Messages() = %v, want only the range message", msgs)
	}

	c.Int(fieldAge, "40", Between(10, 127))
	if !c.Ledger().IsValid() {
		t.Errorf("ledger = %v, want empty", c.Ledger().Fields())
	}
}

func TestChecker_Float(t *testing.T) {
	c := newTestChecker()

	if _, err := c.Float(fieldRatio, "-1", NonNegative, Unbounded); !errors.Is(err, ErrRange) {
		t.Errorf("Float(-1, NonNegative) error = %v, want ErrRange", err)
	}
	if v, err := c.Float(fieldRatio, "0", NonNegative, Unbounded); err != nil || *v != 0 {
		t.Errorf("Float(0, NonNegative) = %v, %v", v, err)
	}
	if _, err := c.Float(fieldRatio, "0", Positive, Unbounded); !errors.Is(err, ErrRange) {
		t.Errorf("Float(0, Positive) error = %v, want ErrRange", err)
	}
	if _, err := c.Float(fieldRatio, "-3", AnySign, AtMost(5)); err != nil {
		t.Errorf("Float(-3, AnySign) error = %v", err)
	}
	if _, err := c.Float(fieldRatio, "Inf", AnySign, Unbounded); !errors.Is(err, ErrParse) {
		t.Errorf("Float(Inf) error = %v, want ErrParse", err)
	}
}

func TestChecker_Date(t *testing.T) {
	c := newTestChecker()

	d, err := c.Date(fieldDate, "2024-05-06")
	if err != nil || d == nil || d.Month() != 5 || d.Day() != 6 {
		t.Fatalf("Date(ISO) = %v, %v", d, err)
	}
	d, err = c.Date(fieldDate, "05/06/2024")
	if err != nil || d.Month() != 5 || d.Day() != 6 {
		t.Fatalf("Date(US) = %v, %v", d, err)
	}
	if _, err := c.Date(fieldDate, "6th of May"); !errors.Is(err, ErrParse) {
		t.Errorf("Date(text) error = %v, want ErrParse", err)
	}
	if d, err := c.Date(fieldDate, " "); err != nil || d != nil {
		t.Errorf("Date(blank) = %v, %v, want nil, nil", d, err)
	}
	if !c.Ledger().IsValid() {
		t.Error("blank date should clear the previous parse error")
	}
}

func TestQuantityOf(t *testing.T) {
	tests := []struct {
		name     string
		run      func(c *Checker[testField]) error
		wantKind error
	}{
		{
			name: "blank quantity is valid",
			run: func(c *Checker[testField]) error {
				q, err := QuantityOf(c, fieldHeight, "", quantity.Foot, NonNegative, Unbounded)
				if !q.IsEmpty() {
					t.Error("blank input should produce an empty quantity")
				}
				return err
			},
		},
		{
			name: "non-numeric",
			run: func(c *Checker[testField]) error {
				_, err := QuantityOf(c, fieldHeight, "tall", quantity.Foot, NonNegative, Unbounded)
				return err
			},
			wantKind: ErrParse,
		},
		{
			name: "negative height",
			run: func(c *Checker[testField]) error {
				_, err := QuantityOf(c, fieldHeight, "-2", quantity.Foot, NonNegative, Unbounded)
				return err
			},
			wantKind: ErrRange,
		},
		{
			name: "bounds apply in canonical unit",
			run: func(c *Checker[testField]) error {
				_, err := QuantityOf(c, fieldHeight, "10", quantity.Foot, NonNegative, AtMost(3))
				return err
			},
			wantKind: ErrRange,
		},
		{
			name: "bounds pass after conversion",
			run: func(c *Checker[testField]) error {
				_, err := QuantityOf(c, fieldHeight, "9", quantity.Foot, NonNegative, AtMost(3))
				return err
			},
		},
		{
			name: "temperature parse range is a range error",
			run: func(c *Checker[testField]) error {
				_, err := QuantityOf(c, fieldTemp, "140", quantity.Fahrenheit, AnySign, Unbounded)
				return err
			},
			wantKind: ErrRange,
		},
		{
			name: "negative temperature accepted",
			run: func(c *Checker[testField]) error {
				_, err := QuantityOf(c, fieldTemp, "-10", quantity.Celsius, AnySign, Unbounded)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChecker()
			err := tt.run(c)
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("error = %v, want nil", err)
				}
				if !c.Ledger().IsValid() {
					t.Error("ledger should be clean")
				}
				return
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("error = %v, want %v", err, tt.wantKind)
			}
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Message == "" {
				t.Fatalf("error = %#v, want *FieldError with a message", err)
			}
			if c.Ledger().IsValid() {
				t.Error("ledger should hold the failure message")
			}
		})
	}
}

func TestChoice(t *testing.T) {
	c := newTestChecker()
	opts := NewOptions("female", "male", "unspecified")

	if v, err := Choice(c, fieldGender, "male", opts); err != nil || v != "male" {
		t.Fatalf("Choice(male) = %q, %v", v, err)
	}
	v, err := Choice(c, fieldGender, "robot", opts)
	if !errors.Is(err, ErrChoice) {
		t.Fatalf("Choice(robot) error = %v, want ErrChoice", err)
	}
	if v != "" {
		t.Errorf("Choice(robot) value = %q, want zero value", v)
	}
	if c.Ledger().IsValid() {
		t.Error("ledger should hold the choice error")
	}
	if _, err := Choice(c, fieldGender, "", opts); err != nil {
		t.Errorf("Choice(nothing selected) error = %v", err)
	}
	if !c.Ledger().IsValid() {
		t.Error("clearing the selection should clear the choice error")
	}
}

func TestChecker_OnFailure(t *testing.T) {
	c := newTestChecker()
	var got []*FieldError
	c.OnFailure(func(fe *FieldError) { got = append(got, fe) })

	c.Int(fieldAge, "x", Unbounded)
	c.Int(fieldAge, "3", Unbounded)

	if len(got) != 1 {
		t.Fatalf("OnFailure called %d times, want 1", len(got))
	}
	if got[0].Field != "Age" || got[0].Value != "x" {
		t.Errorf("FieldError = %+v, want Field=Age Value=x", got[0])
	}
}

func TestMapCatalog_Fallback(t *testing.T) {
	cat := MapCatalog{MsgRequired: "%s fehlt"}
	if got := cat.Message(MsgRequired, "Name"); got != "Name fehlt" {
		t.Errorf("Message(required) = %q", got)
	}
	if got := cat.Message(MsgNegative, "Age"); got != "Age must not be negative" {
		t.Errorf("Message(negative) = %q, want the default text", got)
	}

	c := NewChecker(NewLedger[testField](), cat)
	c.Text(fieldName, "", true)
	if got, _ := c.Ledger().ErrorFor(fieldName); got != "Name fehlt" {
		t.Errorf("ErrorFor() = %q, want the catalog text", got)
	}
}

func intPtr(v int) *int { return &v }
