package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayouts are the accepted input forms for date fields, tried in order.
var DateLayouts = []string{"2006-01-02", "01/02/2006"}

// ruleKey scopes the messages one rule has raised on one field, so that
// re-running a rule only touches its own messages.
type ruleKey[F comparable] struct {
	rule  string
	field F
}

// Checker runs field validators against a ledger. Every validator records the
// messages it raised; running it again removes the ones that no longer apply
// and leaves messages raised by other rules alone.
type Checker[F comparable] struct {
	ledger    *Ledger[F]
	catalog   Catalog
	raised    map[ruleKey[F]][]string
	onFailure func(*FieldError)
}

// NewChecker binds a checker to ledger. A nil catalog selects DefaultCatalog.
func NewChecker[F comparable](ledger *Ledger[F], catalog Catalog) *Checker[F] {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	return &Checker[F]{
		ledger:  ledger,
		catalog: catalog,
		raised:  make(map[ruleKey[F]][]string),
	}
}

// Ledger returns the ledger this checker writes to.
func (c *Checker[F]) Ledger() *Ledger[F] { return c.ledger }

// OnFailure installs a hook called for every rejected input.
func (c *Checker[F]) OnFailure(fn func(*FieldError)) { c.onFailure = fn }

func (c *Checker[F]) label(field F) string { return fmt.Sprint(field) }

func (c *Checker[F]) message(key MessageKey, args ...any) string {
	return c.catalog.Message(key, args...)
}

// settle replaces the messages rule holds on field with msgs.
func (c *Checker[F]) settle(rule string, field F, severity Severity, msgs ...string) {
	key := ruleKey[F]{rule: rule, field: field}
	for _, old := range c.raised[key] {
		if !slices.Contains(msgs, old) {
			c.ledger.RemoveError(field, old)
		}
	}
	for _, m := range msgs {
		c.ledger.AddError(field, m, severity)
	}
	if len(msgs) == 0 {
		delete(c.raised, key)
		return
	}
	c.raised[key] = slices.Clone(msgs)
}

// pass clears the field's own rule.
func (c *Checker[F]) pass(field F) {
	c.settle(fieldRule, field, SeverityError)
}

// fail records a field-level error and returns it as a FieldError.
func (c *Checker[F]) fail(field F, kind error, raw, msg string) error {
	c.settle(fieldRule, field, SeverityError, msg)
	fe := &FieldError{Kind: kind, Field: c.label(field), Value: raw, Message: msg}
	if c.onFailure != nil {
		c.onFailure(fe)
	}
	return fe
}

const fieldRule = "field"

// Text validates free text. Required fields reject blank input; all other
// text is accepted as entered.
func (c *Checker[F]) Text(field F, raw string, required bool) (string, error) {
	if required && strings.TrimSpace(raw) == "" {
		return raw, c.fail(field, ErrRange, raw, c.message(MsgRequired, c.label(field)))
	}
	c.pass(field)
	return raw, nil
}

// Date validates a calendar date. Blank input is a valid "not entered".
func (c *Checker[F]) Date(field F, raw string) (*time.Time, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		c.pass(field)
		return nil, nil
	}
	for _, layout := range DateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			c.pass(field)
			return &d, nil
		}
	}
	return nil, c.fail(field, ErrParse, raw, c.message(MsgNotDate, c.label(field)))
}
