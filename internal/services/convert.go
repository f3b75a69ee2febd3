package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"exposure-platform/internal/quantity"
	"exposure-platform/pkg/metrics"
)

// Conversion is the result of converting one value between two units
type Conversion struct {
	Family string  `json:"family"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Value  float64 `json:"value"`
	Result float64 `json:"result"`
	Text   string  `json:"text"`
}

type family struct {
	units   []string
	convert func(v float64, from, to string) (float64, error)
}

func familyOf[U quantity.Unit](units []U) family {
	symbols := make([]string, len(units))
	for i, u := range units {
		symbols[i] = u.String()
	}
	return family{
		units: symbols,
		convert: func(v float64, from, to string) (float64, error) {
			fu, err := quantity.ParseUnit[U](from)
			if err != nil {
				return 0, err
			}
			tu, err := quantity.ParseUnit[U](to)
			if err != nil {
				return 0, err
			}
			out, _ := quantity.Convert(quantity.New(v, fu), tu).Value()
			return out, nil
		},
	}
}

var families = map[string]family{
	"area":        familyOf(quantity.AreaUnits),
	"density":     familyOf(quantity.DensityUnits),
	"length":      familyOf(quantity.LengthUnits),
	"mass":        familyOf(quantity.MassUnits),
	"percent":     familyOf(quantity.PercentUnits),
	"pressure":    familyOf(quantity.PressureUnits),
	"rate":        familyOf(quantity.RateUnits),
	"temperature": familyOf(quantity.TemperatureUnits),
	"velocity":    familyOf(quantity.VelocityUnits),
	"volume":      familyOf(quantity.VolumeUnits),
}

// Families lists the unit symbols of every quantity family
func Families() map[string][]string {
	out := make(map[string][]string, len(families))
	for name, f := range families {
		out[name] = slices.Clone(f.units)
	}
	return out
}

// ConvertService converts values between the units of one quantity family
type ConvertService struct {
	metrics *metrics.Collector
}

// NewConvertService creates a new conversion service
func NewConvertService(metricsCollector *metrics.Collector) *ConvertService {
	return &ConvertService{metrics: metricsCollector}
}

// Convert projects value from one unit of family into another
func (s *ConvertService) Convert(familyName string, value float64, from, to string) (*Conversion, error) {
	name := strings.ToLower(strings.TrimSpace(familyName))
	f, ok := families[name]
	if !ok {
		return nil, fmt.Errorf("unknown quantity family %q", familyName)
	}
	result, err := f.convert(value, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", name, err)
	}
	s.metrics.RecordConversion(name)

	return &Conversion{
		Family: name,
		From:   from,
		To:     to,
		Value:  value,
		Result: result,
		Text:   strconv.FormatFloat(result, 'f', -1, 64) + " " + to,
	}, nil
}
