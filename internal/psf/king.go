package psf

import (
	"fmt"
	"math"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/units"
)

// KingParams are the King profile shape parameters. Sigma is in deg.
type KingParams struct {
	Gamma float64
	Sigma float64
}

// Covered reports whether the parameters describe a normalizable profile.
// Uncovered parameters evaluate to zero density.
func (p KingParams) Covered() bool {
	return p.Sigma > 0 && p.Gamma > 1 && finite(p.Sigma) && finite(p.Gamma)
}

// Quantities returns the parameters tagged with their units.
func (p KingParams) Quantities() map[string]units.Quantity {
	return map[string]units.Quantity{
		"gamma": units.New(p.Gamma, units.None),
		"sigma": units.New(p.Sigma, units.Deg),
	}
}

// Density is the King profile
//
//	1/(2 pi sigma^2) (1 - 1/gamma) (1 + r^2/(2 gamma sigma^2))^-gamma
func (p KingParams) Density(r float64) float64 {
	if !p.Covered() || r < 0 {
		return 0
	}
	s2 := p.Sigma * p.Sigma
	return (1 - 1/p.Gamma) / (2 * math.Pi * s2) * math.Pow(1+r*r/(2*p.Gamma*s2), -p.Gamma)
}

// Cumulative is the closed-form integral of Density over the disk of
// radius r: 1 - (1 + r^2/(2 gamma sigma^2))^(1-gamma).
func (p KingParams) Cumulative(r float64) float64 {
	if !p.Covered() || !(r > 0) {
		return 0
	}
	u := r * r / (2 * p.Gamma * p.Sigma * p.Sigma)
	return -math.Expm1((1 - p.Gamma) * math.Log1p(u))
}

// Radius inverts Cumulative. The full fraction is only reached at infinity.
func (p KingParams) Radius(fraction float64) float64 {
	if !p.Covered() || !(fraction > 0) {
		return 0
	}
	if fraction >= 1 {
		return math.Inf(1)
	}
	u := math.Expm1(math.Log1p(-fraction) / (1 - p.Gamma))
	return p.Sigma * math.Sqrt(2*p.Gamma*u)
}

// King is a PSF_2D_KING model: gamma and sigma tabulated per (energy,
// offset) bin.
type King struct {
	energy *axis.MapAxis
	offset *axis.MapAxis
	gamma  *grid.Table
	sigma  *grid.Table
}

// NewKing builds a King model. gamma and sigma are row-major over
// (energy, offset); sigma is in deg.
func NewKing(energy, offset *axis.MapAxis, gamma, sigma []float64) (*King, error) {
	e, o, err := energyOffsetAxes(energy, offset)
	if err != nil {
		return nil, fmt.Errorf("psf: king: %w", err)
	}
	axes := axis.MapAxes{e, o}
	g, err := grid.New(axes, gamma, units.None)
	if err != nil {
		return nil, fmt.Errorf("psf: king gamma: %w", err)
	}
	s, err := grid.New(axes, sigma, units.Deg)
	if err != nil {
		return nil, fmt.Errorf("psf: king sigma: %w", err)
	}
	return &King{energy: e, offset: o, gamma: g, sigma: s}, nil
}

func (k *King) Kind() Kind { return KindKing }

func (k *King) EnergyAxis() *axis.MapAxis { return k.energy }

func (k *King) OffsetAxis() *axis.MapAxis { return k.offset }

// Gamma returns a copy of the tabulated gamma values.
func (k *King) Gamma() []float64 { return k.gamma.Data() }

// Sigma returns a copy of the tabulated sigma values in deg.
func (k *King) Sigma() []float64 { return k.sigma.Data() }

// EvaluateParameters interpolates gamma and sigma bilinearly, in log energy
// and linear offset. Coordinates beyond the grid take the end bin values.
func (k *King) EvaluateParameters(energy, offset float64) KingParams {
	c := []float64{energy, offset}
	g, _ := k.gamma.Interpolate(c, grid.Clamp)
	s, _ := k.sigma.Interpolate(c, grid.Clamp)
	return KingParams{Gamma: g, Sigma: s}
}

func (k *King) Evaluate(rad, energy, offset float64) float64 {
	return k.EvaluateParameters(energy, offset).Density(rad)
}

func (k *King) Containment(rad, energy, offset float64) float64 {
	return k.EvaluateParameters(energy, offset).Cumulative(rad)
}

func (k *King) ContainmentRadius(fraction, energy, offset float64) float64 {
	return k.EvaluateParameters(energy, offset).Radius(fraction)
}

func (k *King) ToEnergyDependentTable(offset float64, rad []float64) (*EnergyDependentTable, error) {
	return sampleEnergyTable(k.energy, offset, rad, func(energy float64) func(float64) float64 {
		return k.EvaluateParameters(energy, offset).Density
	})
}

// ToPSF3D tabulates the King density of every bin at the centers of
// radEdges (deg).
func (k *King) ToPSF3D(radEdges []float64) (*Table3D, error) {
	rad, err := axis.FromEdges("rad", radEdges, units.Deg, axis.Lin)
	if err != nil {
		return nil, fmt.Errorf("psf: to psf3d: %w", err)
	}
	centers := rad.Center()
	ne, no := k.energy.Nbin(), k.offset.Nbin()
	data := make([]float64, 0, ne*no*len(centers))
	for i := 0; i < ne; i++ {
		for j := 0; j < no; j++ {
			g, _ := k.gamma.At(i, j)
			s, _ := k.sigma.At(i, j)
			p := KingParams{Gamma: g, Sigma: s}
			for _, r := range centers {
				data = append(data, p.Density(r))
			}
		}
	}
	return NewTable3D(k.energy, k.offset, rad, data)
}

func (k *King) Info() string { return k.InfoWith(DefaultInfoOptions()) }

func (k *King) InfoWith(opts InfoOptions) string {
	s := infoHeader(k.energy, k.offset)
	s += statsLine("Gamma", k.gamma.Data(), units.None)
	s += statsLine("Sigma", k.sigma.Data(), units.Deg)
	return s + containmentLines(k, opts)
}
