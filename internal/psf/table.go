package psf

import (
	"fmt"
	"math"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/radial"
	"github.com/san-kum/psfkit/internal/units"
	"gonum.org/v1/gonum/floats"
)

// EnergyDependentTable is a radial PSF tabulated per true energy bin at a
// fixed offset. Densities are stored at explicit radius nodes.
type EnergyDependentTable struct {
	energy *axis.MapAxis
	rad    *axis.MapAxis
	data   *grid.Table
}

// NewEnergyDependentTable builds a table from row-major (energy, rad)
// densities in deg^-2. rad holds the radius nodes in deg.
func NewEnergyDependentTable(energy *axis.MapAxis, rad []float64, data []float64) (*EnergyDependentTable, error) {
	e, err := energy.To(units.TeV)
	if err != nil {
		return nil, fmt.Errorf("psf: energy table: %w", err)
	}
	r, err := axis.FromNodes("rad", rad, units.Deg, axis.Lin)
	if err != nil {
		return nil, fmt.Errorf("psf: energy table: %w", err)
	}
	if rad[0] < 0 {
		return nil, fmt.Errorf("psf: energy table: %w: negative radius %g", axis.ErrOutOfRange, rad[0])
	}
	t, err := grid.New(axis.MapAxes{e.Rename("energy_true").WithClamp(true), r}, data, units.PerDeg2)
	if err != nil {
		return nil, fmt.Errorf("psf: energy table: %w", err)
	}
	return &EnergyDependentTable{energy: t.Axis(0), rad: r, data: t}, nil
}

// sampleEnergyTable evaluates density(energy) at every energy bin center of
// axis e and the given radii.
func sampleEnergyTable(e *axis.MapAxis, offset float64, rad []float64, density func(energy float64) func(float64) float64) (*EnergyDependentTable, error) {
	if rad == nil {
		rad = DefaultRad()
	}
	if len(rad) == 0 {
		return nil, fmt.Errorf("psf: %w: empty radius grid", axis.ErrOutOfRange)
	}
	if !finite(offset) {
		return nil, fmt.Errorf("psf: %w: offset %g", axis.ErrOutOfRange, offset)
	}
	centers := e.Center()
	data := make([]float64, 0, len(centers)*len(rad))
	for _, en := range centers {
		f := density(en)
		for _, r := range rad {
			data = append(data, f(r))
		}
	}
	return NewEnergyDependentTable(e, rad, data)
}

func (t *EnergyDependentTable) EnergyAxis() *axis.MapAxis { return t.energy }

// Rad returns the radius nodes in deg.
func (t *EnergyDependentTable) Rad() []float64 { return t.rad.Nodes() }

// Data returns a copy of the row-major (energy, rad) densities.
func (t *EnergyDependentTable) Data() []float64 { return t.data.Data() }

// AtEnergy interpolates the table in log energy and returns the radial
// profile at that energy. Energies beyond the table use the end bins.
func (t *EnergyDependentTable) AtEnergy(energy float64) *radial.Profile {
	d, _ := t.data.Profile([]float64{energy}, grid.Clamp)
	p, err := radial.New(t.rad.Nodes(), d)
	if err != nil {
		panic(fmt.Sprintf("psf: inconsistent energy table: %v", err))
	}
	return p
}

// AtEnergyQuantity is AtEnergy for a unit-tagged energy.
func (t *EnergyDependentTable) AtEnergyQuantity(energy units.Quantity) (*radial.Profile, error) {
	e, err := energy.In(units.TeV)
	if err != nil {
		return nil, fmt.Errorf("psf: %w", err)
	}
	return t.AtEnergy(e), nil
}

func (t *EnergyDependentTable) Evaluate(rad, energy float64) float64 {
	return t.AtEnergy(energy).Evaluate(rad)
}

func (t *EnergyDependentTable) Containment(rad, energy float64) float64 {
	return t.AtEnergy(energy).Containment(rad)
}

func (t *EnergyDependentTable) ContainmentRadius(fraction, energy float64) float64 {
	return t.AtEnergy(energy).ContainmentRadius(fraction)
}

func (t *EnergyDependentTable) ContainmentRadii(fractions []float64, energy float64) []float64 {
	return t.AtEnergy(energy).ContainmentRadii(fractions)
}

// InEnergyBand averages the profile over [lo, hi] TeV weighted by a power-law
// spectrum E^-index, sampled at n log-spaced energies, and normalizes it.
func (t *EnergyDependentTable) InEnergyBand(lo, hi, index float64, n int) (*radial.Profile, error) {
	if !(lo > 0 && hi > lo) || n < 2 {
		return nil, fmt.Errorf("psf: %w: energy band [%g, %g] with %d samples", axis.ErrOutOfRange, lo, hi, n)
	}
	energies := make([]float64, n)
	floats.LogSpan(energies, lo, hi)
	nodes := t.rad.Nodes()
	sum := make([]float64, len(nodes))
	wsum := 0.0
	for _, e := range energies {
		// log spacing makes dE proportional to E
		w := math.Pow(e, 1-index)
		d, _ := t.data.Profile([]float64{e}, grid.Clamp)
		floats.AddScaled(sum, w, d)
		wsum += w
	}
	floats.Scale(1/wsum, sum)
	p, err := radial.New(nodes, sum)
	if err != nil {
		return nil, err
	}
	return p.Normalize(), nil
}

func (t *EnergyDependentTable) Info() string {
	s := "Summary energy dependent table PSF info\n"
	s += "---------------------------------------\n"
	s += statsLine("Energy", t.energy.Center(), units.TeV)
	s += statsLine("Rad", t.rad.Nodes(), units.Deg)
	for _, f := range DefaultInfoOptions().Fractions {
		for _, e := range DefaultInfoOptions().Energies {
			s += fmt.Sprintf("%2.0f%% containment radius at E = %4.1f TeV: %.8f deg\n",
				100*f, e, t.ContainmentRadius(f, e))
		}
	}
	return s
}
