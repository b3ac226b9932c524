package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/radial"
)

type PlotOptions struct {
	Width  int
	Height int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 60, Height: 15}
}

func (o PlotOptions) options(caption string) []asciigraph.Option {
	opts := []asciigraph.Option{asciigraph.Caption(caption)}
	if o.Width > 0 {
		opts = append(opts, asciigraph.Width(o.Width))
	}
	if o.Height > 0 {
		opts = append(opts, asciigraph.Height(o.Height))
	}
	return opts
}

// resample evaluates f at n equally spaced radii in [0, rmax].
func resample(n int, rmax float64, f func(float64) float64) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = f(rmax * float64(i) / float64(n-1))
	}
	return out
}

func extent(p *radial.Profile) float64 {
	rad := p.Radii()
	if len(rad) == 0 {
		return 0
	}
	return rad[len(rad)-1]
}

// ProfilePlot charts the density of p from 0 to its last radius.
func ProfilePlot(p *radial.Profile, o PlotOptions, caption string) string {
	if p.Len() == 0 {
		return ""
	}
	n := o.Width
	if n <= 0 {
		n = p.Len()
	}
	series := resample(n, extent(p), p.Evaluate)
	return asciigraph.Plot(series, append(o.options(fmt.Sprintf("%s  [deg-2 vs 0..%.2f deg]", caption, extent(p))), asciigraph.Precision(2))...)
}

// ContainmentPlot charts the containment fraction of p.
func ContainmentPlot(p *radial.Profile, o PlotOptions, caption string) string {
	if p.Len() == 0 {
		return ""
	}
	n := o.Width
	if n <= 0 {
		n = p.Len()
	}
	series := resample(n, extent(p), p.Containment)
	return asciigraph.Plot(series, append(o.options(fmt.Sprintf("%s  [fraction vs 0..%.2f deg]", caption, extent(p))), asciigraph.Precision(3))...)
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Yellow, asciigraph.Magenta, asciigraph.Green, asciigraph.Red,
}

// RadiusPlot charts the containment radius for each fraction against
// energy. The energy axis is refined with Upsample until its edges give at
// least Width samples.
func RadiusPlot(m psf.PSF, fractions []float64, offset float64, o PlotOptions) string {
	if len(fractions) == 0 {
		return ""
	}
	ea := m.EnergyAxis()
	lo, hi := ea.Bounds()
	factor := 2
	if nbin := ea.Nbin(); o.Width > 1 && nbin > 0 {
		factor = (o.Width - 1 + nbin - 1) / nbin
	}
	if up, err := ea.Upsample(max(factor, 1)); err == nil {
		ea = up
	}
	energies := ea.Edges()

	data := make([][]float64, len(fractions))
	colors := make([]asciigraph.AnsiColor, len(fractions))
	for k, f := range fractions {
		data[k] = make([]float64, len(energies))
		colors[k] = seriesColors[k%len(seriesColors)]
		for i, e := range energies {
			r := m.ContainmentRadius(f, e, offset)
			if math.IsInf(r, 0) || math.IsNaN(r) {
				r = 0
			}
			data[k][i] = r
		}
	}
	caption := fmt.Sprintf("containment radius [deg] vs energy %.3g..%.3g TeV, offset %.2f deg, fractions %v", lo, hi, offset, fractions)
	opts := append(o.options(caption), asciigraph.Precision(3), asciigraph.SeriesColors(colors...))
	return asciigraph.PlotMany(data, opts...)
}
