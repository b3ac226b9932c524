package radial

import (
	"math"
	"sort"
)

// Curve is a ContainmentCurve: cumulative fraction at increasing radii.
type Curve struct {
	rad []float64
	cum []float64
}

func (c *Curve) Radii() []float64 { return append([]float64(nil), c.rad...) }

func (c *Curve) Values() []float64 { return append([]float64(nil), c.cum...) }

// Total is the cumulative value at the last radius.
func (c *Curve) Total() float64 {
	if len(c.cum) == 0 {
		return 0
	}
	return c.cum[len(c.cum)-1]
}

// At interpolates the curve linearly. It is zero before the first radius and
// constant after the last.
func (c *Curve) At(r float64) float64 {
	n := len(c.rad)
	if n == 0 || math.IsNaN(r) || r <= c.rad[0] {
		return 0
	}
	if r >= c.rad[n-1] {
		return c.cum[n-1]
	}
	k := sort.SearchFloat64s(c.rad, r)
	r0, r1 := c.rad[k-1], c.rad[k]
	w := (r - r0) / (r1 - r0)
	return c.cum[k-1]*(1-w) + c.cum[k]*w
}

// Invert returns the smallest radius at which the curve reaches f. A curve
// that never rises, such as one over a coverage gap, inverts to 0.
func (c *Curve) Invert(f float64) float64 {
	n := len(c.rad)
	if n == 0 || !(f > 0) || !(c.cum[n-1] > 0) {
		return 0
	}
	if f >= c.cum[n-1] {
		return c.rad[n-1]
	}
	k := sort.SearchFloat64s(c.cum, f)
	if k == 0 {
		return c.rad[0]
	}
	f0, f1 := c.cum[k-1], c.cum[k]
	if f1 == f0 {
		return c.rad[k]
	}
	return c.rad[k-1] + (f-f0)/(f1-f0)*(c.rad[k]-c.rad[k-1])
}
