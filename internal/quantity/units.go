package quantity

// LengthUnit enumerates length units. Meter is canonical.
type LengthUnit uint8

const (
	Meter LengthUnit = iota
	Millimeter
	Centimeter
	Kilometer
	Inch
	Foot
	Yard
	Mile
)

var lengthScale = scale[LengthUnit]{
	Meter:      {1, "m"},
	Millimeter: {0.001, "mm"},
	Centimeter: {0.01, "cm"},
	Kilometer:  {1000, "km"},
	Inch:       {0.0254, "in"},
	Foot:       {0.3048, "ft"},
	Yard:       {0.9144, "yd"},
	Mile:       {1609.344, "mi"},
}

// LengthUnits lists every length unit in picker order.
var LengthUnits = []LengthUnit{Millimeter, Centimeter, Meter, Kilometer, Inch, Foot, Yard, Mile}

func (u LengthUnit) String() string { return lengthScale.symbol(u) }
func (u LengthUnit) toBase(v float64) float64 { return lengthScale.toBase(u, v) }
func (u LengthUnit) fromBase(v float64) float64 { return lengthScale.fromBase(u, v) }
func (u LengthUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *LengthUnit) UnmarshalText(b []byte) error { return lengthScale.lookup(string(b), u) }

// MassUnit enumerates mass units. Kilogram is canonical.
type MassUnit uint8

const (
	Kilogram MassUnit = iota
	Milligram
	Gram
	Tonne
	Ounce
	Pound
)

var massScale = scale[MassUnit]{
	Kilogram:  {1, "kg"},
	Milligram: {1e-6, "mg"},
	Gram:      {0.001, "g"},
	Tonne:     {1000, "t"},
	Ounce:     {0.028349523125, "oz"},
	Pound:     {0.45359237, "lb"},
}

// MassUnits lists every mass unit in picker order.
var MassUnits = []MassUnit{Milligram, Gram, Kilogram, Tonne, Ounce, Pound}

func (u MassUnit) String() string { return massScale.symbol(u) }
func (u MassUnit) toBase(v float64) float64 { return massScale.toBase(u, v) }
func (u MassUnit) fromBase(v float64) float64 { return massScale.fromBase(u, v) }
func (u MassUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *MassUnit) UnmarshalText(b []byte) error { return massScale.lookup(string(b), u) }

// VolumeUnit enumerates volume units. Liter is canonical.
type VolumeUnit uint8

const (
	Liter VolumeUnit = iota
	Milliliter
	CubicMeter
	FluidOunce
	Quart
	Gallon
)

var volumeScale = scale[VolumeUnit]{
	Liter:      {1, "L"},
	Milliliter: {0.001, "mL"},
	CubicMeter: {1000, "m3"},
	FluidOunce: {0.0295735295625, "floz"},
	Quart:      {0.946352946, "qt"},
	Gallon:     {3.785411784, "gal"},
}

// VolumeUnits lists every volume unit in picker order.
var VolumeUnits = []VolumeUnit{Milliliter, Liter, CubicMeter, FluidOunce, Quart, Gallon}

func (u VolumeUnit) String() string { return volumeScale.symbol(u) }
func (u VolumeUnit) toBase(v float64) float64 { return volumeScale.toBase(u, v) }
func (u VolumeUnit) fromBase(v float64) float64 { return volumeScale.fromBase(u, v) }
func (u VolumeUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *VolumeUnit) UnmarshalText(b []byte) error { return volumeScale.lookup(string(b), u) }

// VelocityUnit enumerates speed units. Meters per second is canonical.
type VelocityUnit uint8

const (
	MetersPerSecond VelocityUnit = iota
	KilometersPerHour
	MilesPerHour
	FeetPerSecond
	Knot
)

var velocityScale = scale[VelocityUnit]{
	MetersPerSecond:   {1, "m/s"},
	KilometersPerHour: {1 / 3.6, "km/h"},
	MilesPerHour:      {0.44704, "mph"},
	FeetPerSecond:     {0.3048, "ft/s"},
	Knot:              {1852.0 / 3600.0, "kn"},
}

// VelocityUnits lists every speed unit in picker order.
var VelocityUnits = []VelocityUnit{MetersPerSecond, KilometersPerHour, MilesPerHour, FeetPerSecond, Knot}

func (u VelocityUnit) String() string { return velocityScale.symbol(u) }
func (u VelocityUnit) toBase(v float64) float64 { return velocityScale.toBase(u, v) }
func (u VelocityUnit) fromBase(v float64) float64 { return velocityScale.fromBase(u, v) }
func (u VelocityUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *VelocityUnit) UnmarshalText(b []byte) error { return velocityScale.lookup(string(b), u) }

// PressureUnit enumerates pressure units. Kilopascal is canonical.
type PressureUnit uint8

const (
	Kilopascal PressureUnit = iota
	Pascal
	Bar
	PSI
	Atmosphere
)

var pressureScale = scale[PressureUnit]{
	Kilopascal: {1, "kPa"},
	Pascal:     {0.001, "Pa"},
	Bar:        {100, "bar"},
	PSI:        {6.894757293168, "psi"},
	Atmosphere: {101.325, "atm"},
}

// PressureUnits lists every pressure unit in picker order.
var PressureUnits = []PressureUnit{Pascal, Kilopascal, Bar, PSI, Atmosphere}

func (u PressureUnit) String() string { return pressureScale.symbol(u) }
func (u PressureUnit) toBase(v float64) float64 { return pressureScale.toBase(u, v) }
func (u PressureUnit) fromBase(v float64) float64 { return pressureScale.fromBase(u, v) }
func (u PressureUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *PressureUnit) UnmarshalText(b []byte) error { return pressureScale.lookup(string(b), u) }

// AreaUnit enumerates surface units. Square meter is canonical.
type AreaUnit uint8

const (
	SquareMeter AreaUnit = iota
	Hectare
	SquareKilometer
	SquareFoot
	Acre
)

var areaScale = scale[AreaUnit]{
	SquareMeter:     {1, "m2"},
	Hectare:         {10000, "ha"},
	SquareKilometer: {1e6, "km2"},
	SquareFoot:      {0.09290304, "ft2"},
	Acre:            {4046.8564224, "acre"},
}

// AreaUnits lists every area unit in picker order.
var AreaUnits = []AreaUnit{SquareMeter, Hectare, SquareKilometer, SquareFoot, Acre}

func (u AreaUnit) String() string { return areaScale.symbol(u) }
func (u AreaUnit) toBase(v float64) float64 { return areaScale.toBase(u, v) }
func (u AreaUnit) fromBase(v float64) float64 { return areaScale.fromBase(u, v) }
func (u AreaUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *AreaUnit) UnmarshalText(b []byte) error { return areaScale.lookup(string(b), u) }

// DensityUnit enumerates mass-per-volume units. Grams per liter is canonical.
type DensityUnit uint8

const (
	GramsPerLiter DensityUnit = iota
	MilligramsPerLiter
	KilogramsPerLiter
	PoundsPerGallon
)

var densityScale = scale[DensityUnit]{
	GramsPerLiter:      {1, "g/L"},
	MilligramsPerLiter: {0.001, "mg/L"},
	KilogramsPerLiter:  {1000, "kg/L"},
	PoundsPerGallon:    {453.59237 / 3.785411784, "lb/gal"},
}

// DensityUnits lists every mass-per-volume unit in picker order.
var DensityUnits = []DensityUnit{MilligramsPerLiter, GramsPerLiter, KilogramsPerLiter, PoundsPerGallon}

func (u DensityUnit) String() string { return densityScale.symbol(u) }
func (u DensityUnit) toBase(v float64) float64 { return densityScale.toBase(u, v) }
func (u DensityUnit) fromBase(v float64) float64 { return densityScale.fromBase(u, v) }
func (u DensityUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *DensityUnit) UnmarshalText(b []byte) error { return densityScale.lookup(string(b), u) }

// RateUnit enumerates mass-per-area application rates. Kilograms per hectare
// is canonical.
type RateUnit uint8

const (
	KilogramsPerHectare RateUnit = iota
	GramsPerSquareMeter
	PoundsPerAcre
)

var rateScale = scale[RateUnit]{
	KilogramsPerHectare: {1, "kg/ha"},
	GramsPerSquareMeter: {10, "g/m2"},
	PoundsPerAcre:       {0.45359237 / 0.40468564224, "lb/acre"},
}

// RateUnits lists every application-rate unit in picker order.
var RateUnits = []RateUnit{KilogramsPerHectare, GramsPerSquareMeter, PoundsPerAcre}

func (u RateUnit) String() string { return rateScale.symbol(u) }
func (u RateUnit) toBase(v float64) float64 { return rateScale.toBase(u, v) }
func (u RateUnit) fromBase(v float64) float64 { return rateScale.fromBase(u, v) }
func (u RateUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *RateUnit) UnmarshalText(b []byte) error { return rateScale.lookup(string(b), u) }

// Named quantities used by the study records.
type (
	Length   = Quantity[LengthUnit]
	Mass     = Quantity[MassUnit]
	Volume   = Quantity[VolumeUnit]
	Velocity = Quantity[VelocityUnit]
	Pressure = Quantity[PressureUnit]
	Area     = Quantity[AreaUnit]
	Density  = Quantity[DensityUnit]
	Rate     = Quantity[RateUnit]
)
