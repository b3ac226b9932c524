package psf

import (
	"fmt"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/radial"
	"github.com/san-kum/psfkit/internal/units"
)

// Table3D is a PSF_TABLE model: density in deg^-2 per (energy, offset, rad)
// bin, stored at the radius bin centers.
type Table3D struct {
	energy *axis.MapAxis
	offset *axis.MapAxis
	rad    *axis.MapAxis
	data   *grid.Table
}

// NewTable3D builds a table from row-major (energy, offset, rad) densities.
func NewTable3D(energy, offset, rad *axis.MapAxis, data []float64) (*Table3D, error) {
	e, o, err := energyOffsetAxes(energy, offset)
	if err != nil {
		return nil, fmt.Errorf("psf: table: %w", err)
	}
	if rad == nil {
		return nil, fmt.Errorf("psf: table: %w: missing rad axis", axis.ErrOutOfRange)
	}
	r, err := rad.To(units.Deg)
	if err != nil {
		return nil, fmt.Errorf("psf: table: %w", err)
	}
	if lo, _ := r.Bounds(); lo < 0 {
		return nil, fmt.Errorf("psf: table: %w: negative radius %g", axis.ErrOutOfRange, lo)
	}
	t, err := grid.New(axis.MapAxes{e, o, r.Rename("rad")}, data, units.PerDeg2)
	if err != nil {
		return nil, fmt.Errorf("psf: table: %w", err)
	}
	return &Table3D{energy: e, offset: o, rad: t.Axis(2), data: t}, nil
}

func (t *Table3D) Kind() Kind { return KindTable }

func (t *Table3D) EnergyAxis() *axis.MapAxis { return t.energy }

func (t *Table3D) OffsetAxis() *axis.MapAxis { return t.offset }

func (t *Table3D) RadAxis() *axis.MapAxis { return t.rad }

// Data returns a copy of the row-major (energy, offset, rad) densities.
func (t *Table3D) Data() []float64 { return t.data.Data() }

// Profile interpolates the table in (log energy, offset) and returns the
// radial profile. The profile runs from the first to the last rad edge with
// the end bin densities held flat out to the edges.
func (t *Table3D) Profile(energy, offset float64) *radial.Profile {
	d, _ := t.data.Profile([]float64{energy, offset}, grid.Clamp)
	edges := t.rad.Edges()
	centers := t.rad.Center()
	rad := make([]float64, 0, len(centers)+2)
	den := make([]float64, 0, len(centers)+2)
	if edges[0] < centers[0] {
		rad = append(rad, edges[0])
		den = append(den, d[0])
	}
	rad = append(rad, centers...)
	den = append(den, d...)
	if last := edges[len(edges)-1]; last > centers[len(centers)-1] {
		rad = append(rad, last)
		den = append(den, d[len(d)-1])
	}
	p, err := radial.New(rad, den)
	if err != nil {
		panic(fmt.Sprintf("psf: inconsistent table: %v", err))
	}
	return p
}

func (t *Table3D) Evaluate(rad, energy, offset float64) float64 {
	return t.Profile(energy, offset).Evaluate(rad)
}

func (t *Table3D) Containment(rad, energy, offset float64) float64 {
	return t.Profile(energy, offset).Containment(rad)
}

func (t *Table3D) ContainmentRadius(fraction, energy, offset float64) float64 {
	return t.Profile(energy, offset).ContainmentRadius(fraction)
}

func (t *Table3D) ToEnergyDependentTable(offset float64, rad []float64) (*EnergyDependentTable, error) {
	return sampleEnergyTable(t.energy, offset, rad, func(energy float64) func(float64) float64 {
		return t.Profile(energy, offset).Evaluate
	})
}

func (t *Table3D) Info() string { return t.InfoWith(DefaultInfoOptions()) }

func (t *Table3D) InfoWith(opts InfoOptions) string {
	s := infoHeader(t.energy, t.offset)
	s += statsLine("Rad", t.rad.Center(), units.Deg)
	return s + containmentLines(t, opts)
}
