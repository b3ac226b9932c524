// Package peek renders a quick-look PNG of a PSF: containment radius
// against energy next to the radial profile at one energy.
package peek

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/psfkit/internal/psf"
)

type Options struct {
	Fractions []float64
	Offsets   []float64
	Energy    float64 // TeV, for the profile panel
	Rad       []float64
	Points    int // energy samples per curve
	Width     vg.Length
	Height    vg.Length
}

func DefaultOptions() Options {
	return Options{
		Fractions: []float64{0.68, 0.95},
		Offsets:   []float64{0},
		Energy:    1,
		Rad:       psf.DefaultRad(),
		Points:    50,
		Width:     12 * vg.Inch,
		Height:    5 * vg.Inch,
	}
}

// Save writes the quick-look image to path.
func Save(path string, p psf.PSF, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, p, opts); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Render draws both panels side by side and encodes them as PNG.
func Render(w io.Writer, p psf.PSF, opts Options) error {
	radius, err := radiusPlot(p, opts)
	if err != nil {
		return fmt.Errorf("peek: containment panel: %w", err)
	}
	profile, err := profilePlot(p, opts)
	if err != nil {
		return fmt.Errorf("peek: profile panel: %w", err)
	}

	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Millimeter * 4, PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2}
	plots := [][]*plot.Plot{{radius, profile}}
	canvases := plot.Align(plots, tiles, dc)
	radius.Draw(canvases[0][0])
	profile.Draw(canvases[0][1])

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("peek: encode png: %w", err)
	}
	return nil
}

func radiusPlot(p psf.PSF, opts Options) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s containment radius", p.Kind())
	pl.X.Label.Text = "True energy (TeV)"
	pl.Y.Label.Text = "Containment radius (deg)"

	lo, hi := p.EnergyAxis().Bounds()
	n := opts.Points
	if n < 2 {
		n = 2
	}
	energies := make([]float64, n)
	floats.LogSpan(energies, lo, hi)

	drawn := 0
	for j, o := range opts.Offsets {
		for k, f := range opts.Fractions {
			pts := make(plotter.XYs, 0, n)
			for _, e := range energies {
				r := p.ContainmentRadius(f, e, o)
				if math.IsNaN(r) || math.IsInf(r, 0) {
					continue
				}
				pts = append(pts, plotter.XY{X: e, Y: r})
			}
			if len(pts) == 0 {
				continue
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, err
			}
			line.Color = plotutil.Color(j)
			line.Dashes = plotutil.Dashes(k)
			line.Width = vg.Points(1.5)
			pl.Add(line)
			pl.Legend.Add(fmt.Sprintf("%.0f%% at %.1f deg", 100*f, o), line)
			drawn++
		}
	}
	// a log axis cannot normalize an empty range
	if drawn > 0 {
		pl.X.Scale = plot.LogScale{}
		pl.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	pl.Legend.Top = true
	return pl, nil
}

func profilePlot(p psf.PSF, opts Options) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Radial profile at %.3g TeV", opts.Energy)
	pl.X.Label.Text = "Offset from source (deg)"
	pl.Y.Label.Text = "Density (deg^-2)"

	rad := opts.Rad
	if len(rad) == 0 {
		rad = psf.DefaultRad()
	}
	for j, o := range opts.Offsets {
		pts := make(plotter.XYs, len(rad))
		for i, r := range rad {
			pts[i] = plotter.XY{X: r, Y: p.Evaluate(r, opts.Energy, o)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(j)
		line.Width = vg.Points(1.5)
		pl.Add(line)
		pl.Legend.Add(fmt.Sprintf("offset %.1f deg", o), line)
	}
	pl.Legend.Top = true
	return pl, nil
}
