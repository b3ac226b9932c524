// Package radial holds one-dimensional PSF profiles, density as a function
// of angular radius, and their containment curves.
//
// Radii are in deg and densities in deg^-2 throughout.
package radial

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"gonum.org/v1/gonum/floats"
)

// Profile is a tabulated radial PSF. Between nodes the density is linear;
// outside [rad[0], rad[n-1]] it is zero.
type Profile struct {
	rad     []float64
	density []float64
}

// New validates and copies the nodes. rad must be non-negative and strictly
// increasing.
func New(rad, density []float64) (*Profile, error) {
	if len(rad) != len(density) {
		return nil, &grid.ShapeMismatchError{Want: []int{len(rad)}, Got: []int{len(density)}}
	}
	for i, r := range rad {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return nil, fmt.Errorf("%w: radius %d is %g", axis.ErrOutOfRange, i, r)
		}
		if i > 0 && !(r > rad[i-1]) {
			return nil, fmt.Errorf("%w: radii not strictly increasing at %d", axis.ErrOutOfRange, i)
		}
	}
	return &Profile{
		rad:     append([]float64(nil), rad...),
		density: append([]float64(nil), density...),
	}, nil
}

// FromFunc samples f at the given radii.
func FromFunc(rad []float64, f func(r float64) float64) (*Profile, error) {
	d := make([]float64, len(rad))
	for i, r := range rad {
		d[i] = f(r)
	}
	return New(rad, d)
}

func (p *Profile) Len() int { return len(p.rad) }

func (p *Profile) Radii() []float64 { return append([]float64(nil), p.rad...) }

func (p *Profile) Density() []float64 { return append([]float64(nil), p.density...) }

// Evaluate returns the density at r.
func (p *Profile) Evaluate(r float64) float64 {
	n := len(p.rad)
	if n == 0 || math.IsNaN(r) || r < p.rad[0] || r > p.rad[n-1] {
		return 0
	}
	k := sort.SearchFloat64s(p.rad, r)
	if p.rad[k] == r {
		return p.density[k]
	}
	r0, r1 := p.rad[k-1], p.rad[k]
	w := (r - r0) / (r1 - r0)
	return p.density[k-1]*(1-w) + p.density[k]*w
}

// Curve integrates 2*pi*r*density with the trapezoid rule. When the
// profile starts after r=0 a zero density node is added there, as Evaluate
// reports, so the curve always starts at zero. The integrand vanishes at
// r=0 either way: the first segment ramps linearly up to the first node.
func (p *Profile) Curve() *Curve {
	rad, den := p.rad, p.density
	if len(rad) > 0 && rad[0] > 0 {
		rad = append([]float64{0}, rad...)
		den = append([]float64{0}, den...)
	}
	seg := make([]float64, len(rad))
	for k := 1; k < len(rad); k++ {
		g0 := 2 * math.Pi * rad[k-1] * den[k-1]
		g1 := 2 * math.Pi * rad[k] * den[k]
		seg[k] = 0.5 * (g0 + g1) * (rad[k] - rad[k-1])
	}
	cum := make([]float64, len(rad))
	floats.CumSum(cum, seg)
	return &Curve{rad: append([]float64(nil), rad...), cum: cum}
}

// Integral is the total probability inside the last node.
func (p *Profile) Integral() float64 {
	return p.Curve().Total()
}

// Containment returns the fraction of events within r, clipped to [0, 1].
func (p *Profile) Containment(r float64) float64 {
	return clip(p.Curve().At(r))
}

// ContainmentRadius returns the radius containing fraction. Fractions at or
// below zero give 0; fractions the table never reaches give its last radius.
// An all-zero profile gives 0.
func (p *Profile) ContainmentRadius(fraction float64) float64 {
	return p.Curve().Invert(fraction)
}

// ContainmentRadii is ContainmentRadius for several fractions.
func (p *Profile) ContainmentRadii(fractions []float64) []float64 {
	c := p.Curve()
	out := make([]float64, len(fractions))
	for i, f := range fractions {
		out[i] = c.Invert(f)
	}
	return out
}

// Normalize returns a copy scaled to unit integral. A profile with zero
// integral is returned unscaled.
func (p *Profile) Normalize() *Profile {
	d := append([]float64(nil), p.density...)
	if total := p.Integral(); total > 0 {
		floats.Scale(1/total, d)
	}
	return &Profile{rad: append([]float64(nil), p.rad...), density: d}
}

func clip(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
