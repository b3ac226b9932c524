package psf

import (
	"math"
	"sort"
)

// Component is one normalized 2D Gaussian of a Mixture. Sigma is in deg.
type Component struct {
	Weight float64
	Sigma  float64
}

// Mixture is a radially symmetric sum of 2D Gaussians whose weights sum to
// one. The zero value is the empty mixture and has zero density.
type Mixture struct {
	components []Component
}

// NewMixture normalizes amplitude/sigma pairs into a Mixture. Amplitudes are
// peak heights, so a component contributes 2 pi sigma^2 amplitude to the
// integral. Components with non-positive sigma or weight are dropped.
func NewMixture(amplitudes, sigmas []float64) Mixture {
	n := min(len(amplitudes), len(sigmas))
	comps := make([]Component, 0, n)
	total := 0.0
	for i := 0; i < n; i++ {
		s, a := sigmas[i], amplitudes[i]
		if !(s > 0) || !finite(s) || !finite(a) {
			continue
		}
		w := 2 * math.Pi * s * s * a
		if !(w > 0) {
			continue
		}
		comps = append(comps, Component{Weight: w, Sigma: s})
		total += w
	}
	if total <= 0 || !finite(total) {
		return Mixture{}
	}
	for i := range comps {
		comps[i].Weight /= total
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].Sigma < comps[j].Sigma })
	return Mixture{components: comps}
}

// Components returns a copy of the normalized components ordered by sigma.
func (m Mixture) Components() []Component {
	return append([]Component(nil), m.components...)
}

func (m Mixture) Empty() bool { return len(m.components) == 0 }

func (m Mixture) Density(r float64) float64 {
	if r < 0 {
		return 0
	}
	v := 0.0
	for _, c := range m.components {
		s2 := c.Sigma * c.Sigma
		v += c.Weight / (2 * math.Pi * s2) * math.Exp(-0.5*r*r/s2)
	}
	return v
}

// Cumulative is the fraction of the mixture within radius r.
func (m Mixture) Cumulative(r float64) float64 {
	if !(r > 0) {
		return 0
	}
	v := 0.0
	for _, c := range m.components {
		v -= c.Weight * math.Expm1(-0.5*r*r/(c.Sigma*c.Sigma))
	}
	return math.Min(v, 1)
}

// Radius inverts Cumulative. The root is bracketed by the containment radii
// of the narrowest and widest component and refined by bisection.
func (m Mixture) Radius(fraction float64) float64 {
	if m.Empty() || !(fraction > 0) {
		return 0
	}
	if fraction >= 1 {
		return math.Inf(1)
	}
	k := math.Sqrt(-2 * math.Log1p(-fraction))
	lo := m.components[0].Sigma * k
	hi := m.components[len(m.components)-1].Sigma * k
	if len(m.components) == 1 {
		return lo
	}
	for i := 0; i < 100 && hi-lo > 1e-12*hi; i++ {
		mid := 0.5 * (lo + hi)
		if m.Cumulative(mid) < fraction {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}
