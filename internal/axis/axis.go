// Package axis implements named, unit-bearing sampling axes such as true
// energy, field-of-view offset and radial angle.
package axis

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/psfkit/internal/units"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

type Interp string

const (
	Lin Interp = "lin"
	Log Interp = "log"
)

type NodeType string

const (
	NodeEdges  NodeType = "edges"
	NodeCenter NodeType = "center"
)

// MapAxis is an immutable, strictly increasing sampling axis. Nodes are
// either bin edges or bin centers; the other representation is derived in the
// axis' interpolation scale.
type MapAxis struct {
	name     string
	unit     units.Unit
	interp   Interp
	nodeType NodeType
	nodes    []float64
	clamp    bool
}

// FromEdges builds an axis with len(edges)-1 bins.
func FromEdges(name string, edges []float64, unit units.Unit, interp Interp) (*MapAxis, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: axis %q needs at least 2 edges, got %d", ErrOutOfRange, name, len(edges))
	}
	return newAxis(name, edges, unit, interp, NodeEdges)
}

// FromNodes builds an axis whose bin centers are the given nodes.
func FromNodes(name string, nodes []float64, unit units.Unit, interp Interp) (*MapAxis, error) {
	if len(nodes) < 1 {
		return nil, fmt.Errorf("%w: axis %q needs at least 1 node", ErrOutOfRange, name)
	}
	return newAxis(name, nodes, unit, interp, NodeCenter)
}

// FromBounds builds nbin equal-width bins (in the interpolation scale)
// between lo and hi.
func FromBounds(name string, lo, hi float64, nbin int, unit units.Unit, interp Interp) (*MapAxis, error) {
	if nbin < 1 {
		return nil, fmt.Errorf("%w: axis %q needs nbin >= 1, got %d", ErrOutOfRange, name, nbin)
	}
	edges := make([]float64, nbin+1)
	if interp == Log {
		if !(lo > 0 && hi > 0) {
			return nil, fmt.Errorf("%w: log axis %q needs positive bounds, got [%g, %g]", ErrOutOfRange, name, lo, hi)
		}
		floats.LogSpan(edges, lo, hi)
	} else {
		floats.Span(edges, lo, hi)
	}
	return FromEdges(name, edges, unit, interp)
}

// FromEnergyBounds is FromBounds with a log scale.
func FromEnergyBounds(name string, lo, hi float64, nbin int, unit units.Unit) (*MapAxis, error) {
	return FromBounds(name, lo, hi, nbin, unit, Log)
}

func newAxis(name string, nodes []float64, unit units.Unit, interp Interp, nt NodeType) (*MapAxis, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: axis %q has unknown unit %q", ErrOutOfRange, name, unit)
	}
	if interp == "" {
		interp = Lin
	}
	if interp != Lin && interp != Log {
		return nil, fmt.Errorf("%w: axis %q has unknown interp %q", ErrOutOfRange, name, interp)
	}
	for i, v := range nodes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: axis %q node %d is not finite", ErrOutOfRange, name, i)
		}
		if interp == Log && v <= 0 {
			return nil, fmt.Errorf("%w: log axis %q node %d is not positive (%g)", ErrOutOfRange, name, i, v)
		}
		if i > 0 && !(v > nodes[i-1]) {
			return nil, fmt.Errorf("%w: axis %q nodes not strictly increasing at %d", ErrOutOfRange, name, i)
		}
	}
	return &MapAxis{
		name:     name,
		unit:     unit,
		interp:   interp,
		nodeType: nt,
		nodes:    append([]float64(nil), nodes...),
	}, nil
}

func (a *MapAxis) Name() string { return a.name }

func (a *MapAxis) Unit() units.Unit { return a.unit }

func (a *MapAxis) Interp() Interp { return a.interp }

func (a *MapAxis) NodeType() NodeType { return a.nodeType }

func (a *MapAxis) Clamped() bool { return a.clamp }

func (a *MapAxis) Nodes() []float64 { return append([]float64(nil), a.nodes...) }

func (a *MapAxis) String() string {
	return fmt.Sprintf("%s[%d %s, %s]", a.name, a.Nbin(), a.unit, a.interp)
}

func (a *MapAxis) scale(v float64) float64 {
	if a.interp == Log {
		return math.Log(v)
	}
	return v
}

func (a *MapAxis) inverse(s float64) float64 {
	if a.interp == Log {
		return math.Exp(s)
	}
	return s
}

func (a *MapAxis) Nbin() int {
	if a.nodeType == NodeEdges {
		return len(a.nodes) - 1
	}
	return len(a.nodes)
}

// Edges returns the Nbin()+1 bin boundaries.
func (a *MapAxis) Edges() []float64 {
	if a.nodeType == NodeEdges {
		return a.Nodes()
	}
	n := len(a.nodes)
	edges := make([]float64, n+1)
	if n == 1 {
		edges[0], edges[1] = a.nodes[0], a.nodes[0]
		return edges
	}
	for i := 1; i < n; i++ {
		edges[i] = a.inverse(0.5 * (a.scale(a.nodes[i-1]) + a.scale(a.nodes[i])))
	}
	s0, s1 := a.scale(a.nodes[0]), a.scale(a.nodes[1])
	edges[0] = a.inverse(s0 - 0.5*(s1-s0))
	sn, sm := a.scale(a.nodes[n-1]), a.scale(a.nodes[n-2])
	edges[n] = a.inverse(sn + 0.5*(sn-sm))
	return edges
}

// Center returns the Nbin() bin centers: arithmetic midpoints on a linear
// axis, geometric means on a log axis.
func (a *MapAxis) Center() []float64 {
	if a.nodeType == NodeCenter {
		return a.Nodes()
	}
	c := make([]float64, len(a.nodes)-1)
	for i := range c {
		c[i] = a.inverse(0.5 * (a.scale(a.nodes[i]) + a.scale(a.nodes[i+1])))
	}
	return c
}

func (a *MapAxis) BinWidth() []float64 {
	e := a.Edges()
	w := make([]float64, len(e)-1)
	for i := range w {
		w[i] = e[i+1] - e[i]
	}
	return w
}

// Bounds returns the first and last edge.
func (a *MapAxis) Bounds() (lo, hi float64) {
	e := a.Edges()
	return e[0], e[len(e)-1]
}

// WithClamp returns a copy of the axis whose BinIndex clamps out-of-range
// values to the first or last bin instead of failing.
func (a *MapAxis) WithClamp(clamp bool) *MapAxis {
	c := *a
	c.nodes = a.Nodes()
	c.clamp = clamp
	return &c
}

// To returns a copy of the axis expressed in another unit.
func (a *MapAxis) To(u units.Unit) (*MapAxis, error) {
	f, err := a.unit.Factor(u)
	if err != nil {
		return nil, fmt.Errorf("axis %q: %w", a.name, err)
	}
	c := *a
	c.unit = u
	c.nodes = make([]float64, len(a.nodes))
	for i, v := range a.nodes {
		c.nodes[i] = v * f
	}
	return &c, nil
}

// Rename returns a copy of the axis with a different name.
func (a *MapAxis) Rename(name string) *MapAxis {
	c := *a
	c.nodes = a.Nodes()
	c.name = name
	return &c
}

// BinIndex returns the bin i with edges[i] <= v < edges[i+1]. The last edge
// belongs to the last bin. Values outside the edges fail with an
// *OutOfRangeError unless the axis is clamped.
func (a *MapAxis) BinIndex(v float64) (int, error) {
	edges := a.Edges()
	n := len(edges) - 1
	lo, hi := edges[0], edges[n]
	if math.IsNaN(v) {
		return 0, &OutOfRangeError{Axis: a.name, Value: v, Lo: lo, Hi: hi}
	}
	if v < lo || v > hi {
		if !a.clamp {
			return 0, &OutOfRangeError{Axis: a.name, Value: v, Lo: lo, Hi: hi}
		}
		if v < lo {
			return 0, nil
		}
		return n - 1, nil
	}
	i := sort.Search(len(edges), func(k int) bool { return edges[k] > v }) - 1
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i, nil
}

// Nearest returns the bin containing v, with values beyond either end
// mapped to the end bins. It never fails.
func (a *MapAxis) Nearest(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	i, _ := a.WithClamp(true).BinIndex(v)
	return i
}

// Locate returns the piecewise-linear weights of v between adjacent bin
// centers: v sits at fraction w between center i and center i+1 in the axis
// scale. inside is false when v lies beyond the first or last center, in
// which case i and w are clamped to the nearest end.
func (a *MapAxis) Locate(v float64) (i int, w float64, inside bool) {
	c := a.Center()
	n := len(c)
	if n == 1 {
		return 0, 0, true
	}
	if math.IsNaN(v) || (a.interp == Log && v <= 0) {
		return 0, 0, false
	}
	s := a.scale(v)
	first, last := a.scale(c[0]), a.scale(c[n-1])
	switch {
	case s < first:
		return 0, 0, false
	case s > last:
		return n - 2, 1, false
	}
	i = sort.Search(n, func(k int) bool { return a.scale(c[k]) > s }) - 1
	if i >= n-1 {
		i = n - 2
	}
	if i < 0 {
		i = 0
	}
	s0, s1 := a.scale(c[i]), a.scale(c[i+1])
	return i, (s - s0) / (s1 - s0), true
}

// Upsample splits every bin into factor equal bins in the axis scale.
func (a *MapAxis) Upsample(factor int) (*MapAxis, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: upsample factor %d", ErrOutOfRange, factor)
	}
	e := a.Edges()
	out := make([]float64, 0, (len(e)-1)*factor+1)
	for i := 0; i < len(e)-1; i++ {
		s0, s1 := a.scale(e[i]), a.scale(e[i+1])
		for k := 0; k < factor; k++ {
			out = append(out, a.inverse(s0+(s1-s0)*float64(k)/float64(factor)))
		}
	}
	out = append(out, e[len(e)-1])
	return newAxis(a.name, out, a.unit, a.interp, NodeEdges)
}

// Equal reports whether both axes describe the same bins within rtol.
func (a *MapAxis) Equal(o *MapAxis, rtol float64) bool {
	if a.name != o.name || a.unit != o.unit || a.interp != o.interp || a.Nbin() != o.Nbin() {
		return false
	}
	ea, eb := a.Edges(), o.Edges()
	for i := range ea {
		if !scalar.EqualWithinAbsOrRel(ea[i], eb[i], rtol, rtol) {
			return false
		}
	}
	return true
}
