// Package units provides unit-tagged values for the angles, energies and
// densities that appear in instrument response tables.
//
// A Quantity carries its Unit with it. Conversions and arithmetic check that
// both sides share a Dimension and fail with ErrIncompatible otherwise; there
// is no implicit coercion.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Dimension int

const (
	DimNone Dimension = iota
	DimAngle
	DimEnergy
	DimDensity // per solid angle
)

func (d Dimension) String() string {
	switch d {
	case DimAngle:
		return "angle"
	case DimEnergy:
		return "energy"
	case DimDensity:
		return "solid angle density"
	default:
		return "dimensionless"
	}
}

type Unit string

const (
	None    Unit = ""
	Deg     Unit = "deg"
	Rad     Unit = "rad"
	Arcmin  Unit = "arcmin"
	TeV     Unit = "TeV"
	GeV     Unit = "GeV"
	MeV     Unit = "MeV"
	KeV     Unit = "keV"
	PerDeg2 Unit = "deg-2"
	PerSr   Unit = "sr-1"
)

type unitInfo struct {
	dim   Dimension
	scale float64 // multiply to get the canonical unit of dim
}

// Canonical units: deg, TeV, deg-2.
var registry = map[Unit]unitInfo{
	None:    {DimNone, 1},
	Deg:     {DimAngle, 1},
	Rad:     {DimAngle, 180 / math.Pi},
	Arcmin:  {DimAngle, 1.0 / 60},
	TeV:     {DimEnergy, 1},
	GeV:     {DimEnergy, 1e-3},
	MeV:     {DimEnergy, 1e-6},
	KeV:     {DimEnergy, 1e-9},
	PerDeg2: {DimDensity, 1},
	PerSr:   {DimDensity, (math.Pi / 180) * (math.Pi / 180)},
}

// spellings found in calibration files
var aliases = map[string]Unit{
	"degree":   Deg,
	"degrees":  Deg,
	"deg^-2":   PerDeg2,
	"1/deg2":   PerDeg2,
	"1 / deg2": PerDeg2,
	"deg**-2":  PerDeg2,
	"sr^-1":    PerSr,
	"1/sr":     PerSr,
	"1 / sr":   PerSr,
	"sr**-1":   PerSr,
	"radian":   Rad,
	"tev":      TeV,
	"gev":      GeV,
	"mev":      MeV,
	"kev":      KeV,
}

var (
	ErrIncompatible = errors.New("units: incompatible dimensions")
	ErrUnknownUnit  = errors.New("units: unknown unit")
	ErrParse        = errors.New("units: cannot parse quantity")
)

// ConversionError reports a conversion between units of different dimensions.
type ConversionError struct {
	From, To Unit
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("units: cannot convert %q (%s) to %q (%s)",
		e.From, e.From.Dimension(), e.To, e.To.Dimension())
}

func (e *ConversionError) Unwrap() error {
	return ErrIncompatible
}

// ParseUnit resolves a unit string as written in a table header or on the
// command line.
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if _, ok := registry[Unit(s)]; ok {
		return Unit(s), nil
	}
	if u, ok := aliases[s]; ok {
		return u, nil
	}
	if u, ok := aliases[strings.ToLower(s)]; ok {
		return u, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

func (u Unit) Valid() bool {
	_, ok := registry[u]
	return ok
}

func (u Unit) Dimension() Dimension {
	return registry[u].dim
}

// Factor returns the multiplier converting values in u to values in to.
func (u Unit) Factor(to Unit) (float64, error) {
	from, ok := registry[u]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, u)
	}
	dst, ok := registry[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	if from.dim != dst.dim {
		return 0, &ConversionError{From: u, To: to}
	}
	return from.scale / dst.scale, nil
}

// Quantity is a scalar value tagged with its unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// New returns a Quantity. It panics if u is not a known unit; use Parse for
// untrusted input.
func New(v float64, u Unit) Quantity {
	if !u.Valid() {
		panic(fmt.Sprintf("units: unknown unit %q", u))
	}
	return Quantity{Value: v, Unit: u}
}

// Parse reads strings such as "1 TeV", "0.5deg" or "4.5 deg".
func Parse(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, fmt.Errorf("%w: empty string", ErrParse)
	}
	split := len(s)
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			continue
		}
		if (r == 'e' || r == 'E') && i > 0 && i+1 < len(s) && strings.ContainsRune("0123456789+-", rune(s[i+1])) {
			continue
		}
		split = i
		break
	}
	v, err := strconv.ParseFloat(s[:split], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	u, err := ParseUnit(s[split:])
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	return Quantity{Value: v, Unit: u}, nil
}

func (q Quantity) Dimension() Dimension {
	return q.Unit.Dimension()
}

// To converts q to unit u.
func (q Quantity) To(u Unit) (Quantity, error) {
	f, err := q.Unit.Factor(u)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value * f, Unit: u}, nil
}

// In returns the numeric value of q expressed in u.
func (q Quantity) In(u Unit) (float64, error) {
	c, err := q.To(u)
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

// Add returns q+o in the unit of q.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	v, err := o.In(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value + v, Unit: q.Unit}, nil
}

// Sub returns q-o in the unit of q.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	v, err := o.In(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value - v, Unit: q.Unit}, nil
}

func (q Quantity) Scale(f float64) Quantity {
	return Quantity{Value: q.Value * f, Unit: q.Unit}
}

// Compare returns -1, 0 or +1 as q is less than, equal to or greater than o.
func (q Quantity) Compare(o Quantity) (int, error) {
	v, err := o.In(q.Unit)
	if err != nil {
		return 0, err
	}
	switch {
	case q.Value < v:
		return -1, nil
	case q.Value > v:
		return 1, nil
	default:
		return 0, nil
	}
}

func (q Quantity) String() string {
	v := strconv.FormatFloat(q.Value, 'g', -1, 64)
	if q.Unit == None {
		return v
	}
	return v + " " + string(q.Unit)
}

// Array is a sequence of values sharing one unit.
type Array struct {
	Values []float64
	Unit   Unit
}

func NewArray(values []float64, u Unit) Array {
	if !u.Valid() {
		panic(fmt.Sprintf("units: unknown unit %q", u))
	}
	return Array{Values: values, Unit: u}
}

func (a Array) Len() int {
	return len(a.Values)
}

// In returns a converted copy of the values.
func (a Array) In(u Unit) ([]float64, error) {
	f, err := a.Unit.Factor(u)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(a.Values))
	for i, v := range a.Values {
		out[i] = v * f
	}
	return out, nil
}

func (a Array) At(i int) Quantity {
	return Quantity{Value: a.Values[i], Unit: a.Unit}
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(s string) Quantity {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}
