package quantity

import (
	"fmt"
	"math"
)

// factor describes one member of a multiplicative family: value*ratio gives the
// canonical unit.
type factor struct {
	ratio  float64
	symbol string
}

// scale is the conversion table shared by every purely multiplicative family.
type scale[U comparable] map[U]factor

func (s scale[U]) toBase(u U, v float64) float64 {
	f, ok := s[u]
	if !ok {
		return math.NaN()
	}
	return v * f.ratio
}

func (s scale[U]) fromBase(u U, v float64) float64 {
	f, ok := s[u]
	if !ok {
		return math.NaN()
	}
	return v / f.ratio
}

func (s scale[U]) symbol(u U) string {
	if f, ok := s[u]; ok {
		return f.symbol
	}
	return fmt.Sprintf("unit(%d)", any(u))
}

func (s scale[U]) lookup(symbol string, dst *U) error {
	for u, f := range s {
		if f.symbol == symbol {
			*dst = u
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownUnit, symbol)
}
