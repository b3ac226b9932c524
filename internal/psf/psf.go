package psf

import (
	"fmt"
	"math"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/units"
)

// Kind names a PSF representation the way calibration files tag it
// (HDUCLAS4).
type Kind string

const (
	KindKing       Kind = "psf_king"
	KindMultiGauss Kind = "psf_3gauss"
	KindTable      Kind = "psf_table"
)

// Kinds lists the representations in a stable order.
func Kinds() []Kind {
	return []Kind{KindKing, KindMultiGauss, KindTable}
}

// ParseKind accepts a Kind or one of its short names.
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindKing), "king":
		return KindKing, nil
	case string(KindMultiGauss), "3gauss", "multigauss", "gauss":
		return KindMultiGauss, nil
	case string(KindTable), "table", "table3d", "psf3d":
		return KindTable, nil
	}
	return "", fmt.Errorf("psf: unknown kind %q", s)
}

// PSF is the query surface shared by all representations.
type PSF interface {
	Kind() Kind
	EnergyAxis() *axis.MapAxis
	OffsetAxis() *axis.MapAxis

	// Evaluate returns the density in deg^-2 at radius rad (deg) for true
	// energy (TeV) and offset (deg).
	Evaluate(rad, energy, offset float64) float64

	// Containment returns the fraction of events within rad.
	Containment(rad, energy, offset float64) float64

	// ContainmentRadius returns the radius enclosing fraction.
	ContainmentRadius(fraction, energy, offset float64) float64

	// ToEnergyDependentTable samples the PSF at every energy bin center for
	// a fixed offset. A nil rad uses DefaultRad.
	ToEnergyDependentTable(offset float64, rad []float64) (*EnergyDependentTable, error)

	Info() string
	InfoWith(opts InfoOptions) string
}

var (
	_ PSF = (*King)(nil)
	_ PSF = (*MultiGauss)(nil)
	_ PSF = (*Table3D)(nil)
)

// DefaultRad is the radius grid used when none is given: 0 to 1.5 deg in
// steps of 0.005 deg.
func DefaultRad() []float64 {
	rad := make([]float64, 300)
	for i := range rad {
		rad[i] = 0.005 * float64(i)
	}
	return rad
}

// Coords converts unit-tagged query coordinates to TeV and deg.
func Coords(energy, offset units.Quantity) (e, o float64, err error) {
	if e, err = energy.In(units.TeV); err != nil {
		return 0, 0, fmt.Errorf("energy: %w", err)
	}
	if o, err = offset.In(units.Deg); err != nil {
		return 0, 0, fmt.Errorf("offset: %w", err)
	}
	return e, o, nil
}

// Covers reports whether energy and offset lie within the outer edges of
// the energy and offset axes of p.
func Covers(p PSF, energy, offset float64) bool {
	elo, ehi := p.EnergyAxis().Bounds()
	olo, ohi := p.OffsetAxis().Bounds()
	return energy >= elo && energy <= ehi && offset >= olo && offset <= ohi
}

// EvaluateOutside is Evaluate with an explicit policy for energies and
// offsets beyond the axes: grid.Clamp keeps the nearest bin like Evaluate,
// grid.FillZero reports no density.
func EvaluateOutside(p PSF, mode grid.Outside, rad, energy, offset float64) float64 {
	if mode == grid.FillZero && !Covers(p, energy, offset) {
		return 0
	}
	return p.Evaluate(rad, energy, offset)
}

// ContainmentRadii evaluates ContainmentRadius for several fractions.
func ContainmentRadii(p PSF, fractions []float64, energy, offset float64) []float64 {
	out := make([]float64, len(fractions))
	for i, f := range fractions {
		out[i] = p.ContainmentRadius(f, energy, offset)
	}
	return out
}

// energyOffsetAxes normalizes the grid axes to TeV and deg. The returned
// copies clamp, so parameter lookups never fail.
func energyOffsetAxes(energy, offset *axis.MapAxis) (*axis.MapAxis, *axis.MapAxis, error) {
	if energy == nil || offset == nil {
		return nil, nil, fmt.Errorf("%w: missing energy or offset axis", axis.ErrOutOfRange)
	}
	e, err := energy.To(units.TeV)
	if err != nil {
		return nil, nil, err
	}
	o, err := offset.To(units.Deg)
	if err != nil {
		return nil, nil, err
	}
	return e.Rename("energy_true").WithClamp(true), o.Rename("offset").WithClamp(true), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
