package axis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/psfkit/internal/units"
)

func mustEdges(t *testing.T, name string, edges []float64, u units.Unit, interp Interp) *MapAxis {
	t.Helper()
	a, err := FromEdges(name, edges, u, interp)
	if err != nil {
		t.Fatalf("FromEdges(%s) failed: %v", name, err)
	}
	return a
}

func TestBinIndexAtEdges(t *testing.T) {
	axes := []*MapAxis{
		mustEdges(t, "offset", []float64{0, 0.5, 1, 2, 2.5}, units.Deg, Lin),
		mustEdges(t, "energy_true", []float64{0.1, 0.3, 1, 3, 10}, units.TeV, Log),
	}

	for _, a := range axes {
		edges := a.Edges()
		for i := 0; i < a.Nbin(); i++ {
			got, err := a.BinIndex(edges[i])
			if err != nil {
				t.Fatalf("%s: BinIndex(%g) failed: %v", a.Name(), edges[i], err)
			}
			if got != i {
				t.Errorf("%s: BinIndex(edges[%d]=%g) = %d, want %d", a.Name(), i, edges[i], got, i)
			}
		}
		last := edges[len(edges)-1]
		if got, err := a.BinIndex(last); err != nil || got != a.Nbin()-1 {
			t.Errorf("%s: BinIndex(last edge) = %d, %v; want %d", a.Name(), got, err, a.Nbin()-1)
		}
	}
}

func TestBinIndexOutOfRange(t *testing.T) {
	a := mustEdges(t, "offset", []float64{0, 1, 2}, units.Deg, Lin)

	for _, v := range []float64{-0.1, 2.01, math.NaN()} {
		_, err := a.BinIndex(v)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("BinIndex(%g) error = %v, want ErrOutOfRange", v, err)
		}
		var oor *OutOfRangeError
		if !errors.As(err, &oor) || oor.Axis != "offset" {
			t.Errorf("BinIndex(%g) error = %#v, want *OutOfRangeError for offset", v, err)
		}
	}

	c := a.WithClamp(true)
	if i, err := c.BinIndex(-5); err != nil || i != 0 {
		t.Errorf("clamped BinIndex(-5) = %d, %v", i, err)
	}
	if i, err := c.BinIndex(50); err != nil || i != 1 {
		t.Errorf("clamped BinIndex(50) = %d, %v", i, err)
	}
	if a.Clamped() {
		t.Error("WithClamp modified the receiver")
	}
}

func TestMalformedAxis(t *testing.T) {
	tests := []struct {
		name   string
		edges  []float64
		interp Interp
	}{
		{"too short", []float64{1}, Lin},
		{"decreasing", []float64{0, 2, 1}, Lin},
		{"repeated", []float64{0, 1, 1}, Lin},
		{"log with zero", []float64{0, 1, 10}, Log},
		{"nan", []float64{0, math.NaN()}, Lin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEdges("x", tt.edges, units.Deg, tt.interp)
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

func TestCenters(t *testing.T) {
	lin := mustEdges(t, "offset", []float64{0, 1, 3}, units.Deg, Lin)
	c := lin.Center()
	if c[0] != 0.5 || c[1] != 2 {
		t.Errorf("linear centers = %v, want [0.5 2]", c)
	}

	log := mustEdges(t, "energy_true", []float64{0.1, 10, 1000}, units.TeV, Log)
	c = log.Center()
	if math.Abs(c[0]-1) > 1e-12 || math.Abs(c[1]-100) > 1e-10 {
		t.Errorf("log centers = %v, want [1 100]", c)
	}
}

func TestFromNodesEdges(t *testing.T) {
	a, err := FromNodes("rad", []float64{0.5, 1.5, 2.5}, units.Deg, Lin)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 2, 3}
	got := a.Edges()
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Edges() = %v, want %v", got, want)
		}
	}
	if a.Nbin() != 3 {
		t.Errorf("Nbin() = %d, want 3", a.Nbin())
	}
}

func TestFromBounds(t *testing.T) {
	a, err := FromEnergyBounds("energy_true", 0.1, 100, 3, units.TeV)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.1, 1, 10, 100}
	for i, e := range a.Edges() {
		if math.Abs(e-want[i]) > 1e-9*want[i] {
			t.Errorf("edge %d = %g, want %g", i, e, want[i])
		}
	}

	rad, err := FromBounds("rad", 0, 1, 100, units.Deg, Lin)
	if err != nil {
		t.Fatal(err)
	}
	if rad.Nbin() != 100 {
		t.Errorf("Nbin() = %d, want 100", rad.Nbin())
	}
	if w := rad.BinWidth()[42]; math.Abs(w-0.01) > 1e-12 {
		t.Errorf("BinWidth = %g, want 0.01", w)
	}
}

func TestLocate(t *testing.T) {
	a := mustEdges(t, "energy_true", []float64{0.1, 1, 10, 100}, units.TeV, Log)
	c := a.Center()

	tests := []struct {
		v      float64
		i      int
		w      float64
		inside bool
	}{
		{1, 0, 0.5, true},
		{c[1], 1, 0, true},
		{10, 1, 0.5, true},
		{0.2, 0, 0, false},
		{90, 1, 1, false},
	}

	for _, tt := range tests {
		i, w, inside := a.Locate(tt.v)
		if i != tt.i || math.Abs(w-tt.w) > 1e-12 || inside != tt.inside {
			t.Errorf("Locate(%g) = (%d, %g, %v), want (%d, %g, %v)", tt.v, i, w, inside, tt.i, tt.w, tt.inside)
		}
	}
}

func TestNearest(t *testing.T) {
	a := mustEdges(t, "offset", []float64{0, 1, 2, 3}, units.Deg, Lin)
	tests := []struct {
		v    float64
		want int
	}{
		{-1, 0}, {0.2, 0}, {1, 1}, {2.9, 2}, {7, 2},
	}
	for _, tt := range tests {
		if got := a.Nearest(tt.v); got != tt.want {
			t.Errorf("Nearest(%g) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestToAndEqual(t *testing.T) {
	tev := mustEdges(t, "energy_true", []float64{0.1, 1, 10}, units.TeV, Log)
	gev, err := tev.To(units.GeV)
	if err != nil {
		t.Fatal(err)
	}
	if e := gev.Edges(); math.Abs(e[1]-1000) > 1e-9 {
		t.Errorf("converted edges = %v", e)
	}
	back, err := gev.To(units.TeV)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(tev, 1e-12) {
		t.Error("round-tripped axis not equal")
	}
	if _, err := tev.To(units.Deg); !errors.Is(err, units.ErrIncompatible) {
		t.Errorf("To(deg) error = %v, want ErrIncompatible", err)
	}
}

func TestUpsample(t *testing.T) {
	a := mustEdges(t, "rad", []float64{0, 0.5, 1}, units.Deg, Lin)
	up, err := a.Upsample(5)
	if err != nil {
		t.Fatal(err)
	}
	if up.Nbin() != 10 {
		t.Fatalf("Nbin() = %d, want 10", up.Nbin())
	}
	if e := up.Edges(); math.Abs(e[3]-0.3) > 1e-12 || e[10] != 1 {
		t.Errorf("upsampled edges = %v", e)
	}
}

func TestMapAxes(t *testing.T) {
	m := MapAxes{
		mustEdges(t, "energy_true", []float64{0.1, 1, 10}, units.TeV, Log),
		mustEdges(t, "offset", []float64{0, 1, 2, 3}, units.Deg, Lin),
	}
	if m.Index("offset") != 1 || m.Index("rad") != -1 {
		t.Errorf("Index lookup wrong: %v", m.Names())
	}
	if s := m.Shape(); s[0] != 2 || s[1] != 3 {
		t.Errorf("Shape() = %v", s)
	}
	if m.Size() != 6 {
		t.Errorf("Size() = %d, want 6", m.Size())
	}
}
