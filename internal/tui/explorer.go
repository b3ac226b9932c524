// Package tui is an interactive explorer stepping through the energy and
// offset bins of a PSF.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/radial"
	"github.com/san-kum/psfkit/internal/viz"
)

type view int

const (
	viewProfile view = iota
	viewContainment
	viewRings
	numViews
)

func (v view) String() string {
	switch v {
	case viewContainment:
		return "containment"
	case viewRings:
		return "rings"
	default:
		return "profile"
	}
}

type model struct {
	psf       psf.PSF
	name      string
	energies  []float64
	offsets   []float64
	fractions []float64
	rad       []float64

	ei, oi int
	view   view
	theme  int

	width  int
	height int
}

// NewExplorer builds the explorer for p. name labels the header; rad is the
// radius grid of the plotted profiles.
func NewExplorer(p psf.PSF, name string, fractions, rad []float64) model {
	if len(rad) == 0 {
		rad = psf.DefaultRad()
	}
	if len(fractions) == 0 {
		fractions = psf.DefaultInfoOptions().Fractions
	}
	return model{
		psf:       p,
		name:      name,
		energies:  p.EnergyAxis().Center(),
		offsets:   p.OffsetAxis().Center(),
		fractions: fractions,
		rad:       rad,
		width:     80,
		height:    24,
	}
}

// Run starts the explorer on the alternate screen.
func Run(p psf.PSF, name string, fractions, rad []float64, theme string) error {
	viz.ApplyTheme(viz.GetTheme(theme))
	m := NewExplorer(p, name, fractions, rad)
	for i, t := range viz.Themes {
		if t.Name == viz.CurrentTheme.Name {
			m.theme = i
		}
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "l":
		if m.ei < len(m.energies)-1 {
			m.ei++
		}
	case "left", "h":
		if m.ei > 0 {
			m.ei--
		}
	case "down", "j":
		if m.oi < len(m.offsets)-1 {
			m.oi++
		}
	case "up", "k":
		if m.oi > 0 {
			m.oi--
		}
	case "tab", "v":
		m.view = (m.view + 1) % numViews
	case "t":
		m.theme = (m.theme + 1) % len(viz.Themes)
		viz.ApplyTheme(viz.Themes[m.theme])
	case "home", "g":
		m.ei, m.oi = 0, 0
	}
	return m, nil
}

func (m model) energy() float64 { return m.energies[m.ei] }
func (m model) offset() float64 { return m.offsets[m.oi] }

func (m model) profile() *radial.Profile {
	e, o := m.energy(), m.offset()
	p, err := radial.FromFunc(m.rad, func(r float64) float64 { return m.psf.Evaluate(r, e, o) })
	if err != nil {
		return &radial.Profile{}
	}
	return p
}

// parameters describes the model at the current bin.
func (m model) parameters() []string {
	e, o := m.energy(), m.offset()
	switch p := m.psf.(type) {
	case *psf.King:
		kp := p.EvaluateParameters(e, o)
		if !kp.Covered() {
			return []string{viz.Warning.Render("no coverage in this bin")}
		}
		return []string{
			viz.KV("gamma", 8, "%.4f", kp.Gamma),
			viz.KV("sigma", 8, "%.4f deg", kp.Sigma),
		}
	case *psf.MultiGauss:
		mix := p.At(e, o)
		if mix.Empty() {
			return []string{viz.Warning.Render("no coverage in this bin")}
		}
		var lines []string
		for i, c := range mix.Components() {
			lines = append(lines, viz.KV(fmt.Sprintf("gauss %d", i+1), 8, "w = %.3f  sigma = %.4f deg", c.Weight, c.Sigma))
		}
		lo, hi := p.Thresholds()
		return append(lines, viz.KV("safe E", 8, "%.3g - %.3g TeV", lo, hi))
	case *psf.Table3D:
		lo, hi := p.RadAxis().Bounds()
		return []string{viz.KV("rad", 8, "%d bins, %.3f - %.3f deg", p.RadAxis().Nbin(), lo, hi)}
	}
	return nil
}

// radiusTrend is the first containment radius over the energy bins at the
// current offset. Unbounded radii count as zero.
func (m model) radiusTrend() []float64 {
	out := make([]float64, len(m.energies))
	for i, e := range m.energies {
		r := m.psf.ContainmentRadius(m.fractions[0], e, m.offset())
		if !math.IsInf(r, 0) {
			out[i] = r
		}
	}
	return out
}

func (m model) View() string {
	var b strings.Builder
	e, o := m.energy(), m.offset()

	b.WriteString("\n")
	b.WriteString("  " + viz.Title.Render(string(m.psf.Kind())) + "  " + viz.Subtle.Render(m.name) + "\n")
	b.WriteString("  " + viz.Separator(40) + "\n\n")

	b.WriteString("  " + viz.KV("energy", 8, "%8.3f TeV", e) + viz.Selected.Render(fmt.Sprintf("  [%d/%d]", m.ei+1, len(m.energies))) + "\n")
	b.WriteString("  " + viz.KV("offset", 8, "%8.3f deg", o) + viz.Selected.Render(fmt.Sprintf("  [%d/%d]", m.oi+1, len(m.offsets))) + "\n")
	b.WriteString(viz.BoxWithTitle("bin", strings.Join(m.parameters(), "\n"), 48) + "\n")

	radii := psf.ContainmentRadii(m.psf, m.fractions, e, o)
	for i, f := range m.fractions {
		b.WriteString("  " + viz.KV(fmt.Sprintf("R%.0f%%", 100*f), 8, "%.5f deg", radii[i]) + "\n")
	}
	if len(m.fractions) > 0 {
		b.WriteString("  " + viz.Subtle.Render(fmt.Sprintf("R%.0f%% vs E  ", 100*m.fractions[0])) + viz.SparklineChart(m.radiusTrend(), len(m.energies)) + "\n")
	}
	b.WriteString("\n")

	pw := m.width - 16
	if pw < 30 {
		pw = 30
	}
	ph := m.height - 16 - len(m.fractions)
	if ph < 5 {
		ph = 5
	}

	p := m.profile()
	caption := fmt.Sprintf("%.3g TeV, %.2f deg", e, o)
	switch m.view {
	case viewContainment:
		b.WriteString(viz.ContainmentPlot(p, viz.PlotOptions{Width: pw, Height: ph}, caption) + "\n")
	case viewRings:
		extent := m.rad[len(m.rad)-1]
		b.WriteString(viz.Rings(radii, extent, pw/2, ph).String())
		b.WriteString(viz.Subtle.Render(fmt.Sprintf("  rings %v, half width %.2f deg", m.fractions, extent)) + "\n")
	default:
		b.WriteString(viz.ProfilePlot(p, viz.PlotOptions{Width: pw, Height: ph}, caption) + "\n")
	}

	b.WriteString("\n" + viz.KeyHint.Render(fmt.Sprintf("  ←→ energy  ↑↓ offset  tab view (%s)  t theme  q quit", m.view)) + "\n")
	return b.String()
}
