package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/radial"
	"github.com/san-kum/psfkit/internal/units"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("expected pixel (3, 5) to be set")
	}
	if c.IsSet(2, 5) || c.IsSet(-1, 0) || c.IsSet(100, 0) {
		t.Error("unexpected pixels set")
	}
	c.Clear()
	if c.IsSet(3, 5) {
		t.Error("Clear left pixel set")
	}
	if lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n"); len(lines) != 2 {
		t.Errorf("expected 2 rows, got %d", len(lines))
	}
}

func TestRings(t *testing.T) {
	c := Rings([]float64{0.5, math.Inf(1), 3}, 1, 20, 10)
	cx, cy := 20, 20
	if !c.IsSet(cx, cy) {
		t.Error("expected center marker")
	}
	if !c.IsSet(cx+10, cy) {
		t.Error("expected ring at 0.5 deg through (30, 20)")
	}
	if c.IsSet(cx+19, cy) {
		t.Error("radius beyond the extent should not be drawn")
	}
}

func profile(t *testing.T) *radial.Profile {
	t.Helper()
	p, err := radial.FromFunc([]float64{0, 0.1, 0.2, 0.3, 0.4}, func(r float64) float64 { return math.Exp(-r * r / 0.02) })
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProfilePlots(t *testing.T) {
	p := profile(t)
	out := ProfilePlot(p, PlotOptions{Width: 30, Height: 5}, "1 TeV")
	if !strings.Contains(out, "1 TeV") {
		t.Errorf("missing caption:\n%s", out)
	}
	out = ContainmentPlot(p, PlotOptions{Width: 30, Height: 5}, "1 TeV")
	if !strings.Contains(out, "fraction") {
		t.Errorf("missing axis note:\n%s", out)
	}

	empty, _ := radial.New(nil, nil)
	if ProfilePlot(empty, DefaultPlotOptions(), "") != "" {
		t.Error("expected empty plot for an empty profile")
	}
}

func TestRadiusPlot(t *testing.T) {
	e, _ := axis.FromEdges("energy_true", []float64{0.1, 1, 10}, units.TeV, axis.Log)
	o, _ := axis.FromEdges("offset", []float64{0, 1}, units.Deg, axis.Lin)
	k, err := psf.NewKing(e, o, []float64{1.7, 2.1}, []float64{0.04, 0.02})
	if err != nil {
		t.Fatal(err)
	}
	out := RadiusPlot(k, []float64{0.68, 0.95}, 0, PlotOptions{Width: 20, Height: 6})
	if !strings.Contains(out, "containment radius") {
		t.Errorf("missing caption:\n%s", out)
	}
	if out := RadiusPlot(k, []float64{0.68}, 0, PlotOptions{Height: 4}); !strings.Contains(out, "0.1..10 TeV") {
		t.Errorf("default sampling should span the energy axis:\n%s", out)
	}
	if RadiusPlot(k, nil, 0, DefaultPlotOptions()) != "" {
		t.Error("expected empty plot without fractions")
	}
}

func TestSparkline(t *testing.T) {
	s := SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	if w := lipgloss.Width(s); w != 8 {
		t.Errorf("sparkline width = %d, want 8", w)
	}
	if w := lipgloss.Width(SparklineChart(nil, 5)); w != 5 {
		t.Errorf("empty sparkline width = %d, want 5", w)
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" {
		t.Error("expected ocean theme")
	}
	if GetTheme("nope").Name != "cyberpunk" {
		t.Error("expected fallback to cyberpunk")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}
