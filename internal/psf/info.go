package psf

import (
	"fmt"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/units"
	"gonum.org/v1/gonum/floats"
)

// InfoOptions selects the containment radii listed by Info.
type InfoOptions struct {
	Fractions []float64 // in (0, 1)
	Energies  []float64 // TeV
	Offsets   []float64 // deg
}

func DefaultInfoOptions() InfoOptions {
	return InfoOptions{
		Fractions: []float64{0.68, 0.95},
		Energies:  []float64{1, 10},
		Offsets:   []float64{0},
	}
}

func statsLine(label string, x []float64, u units.Unit) string {
	if len(x) == 0 {
		return fmt.Sprintf("%-15s: size = %5d\n", label, 0)
	}
	suffix := ""
	if u != units.None {
		suffix = " " + string(u)
	}
	return fmt.Sprintf("%-15s: size = %5d, min = %6.3f%s, max = %6.3f%s\n",
		label, len(x), floats.Min(x), suffix, floats.Max(x), suffix)
}

func infoHeader(energy, offset *axis.MapAxis) string {
	e := energy.Edges()
	s := "Summary PSF info\n"
	s += "----------------\n"
	s += statsLine("Theta", offset.Center(), units.Deg)
	s += statsLine("Energy hi", e[1:], units.TeV)
	s += statsLine("Energy lo", e[:len(e)-1], units.TeV)
	return s
}

func containmentLines(p PSF, opts InfoOptions) string {
	s := ""
	for _, f := range opts.Fractions {
		for _, e := range opts.Energies {
			for _, o := range opts.Offsets {
				s += fmt.Sprintf("%2.0f%% containment radius at theta = %s and E = %4.1f TeV: %.8f deg\n",
					100*f, units.New(o, units.Deg), e, p.ContainmentRadius(f, e, o))
			}
		}
	}
	return s
}
