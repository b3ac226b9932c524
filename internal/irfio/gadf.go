package irfio

import (
	"fmt"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/fits"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/monitoring"
	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/units"
)

// GADF tables keep parameter cells in C order (theta, energy) and RPSF in
// (rad, theta, energy); TDIM lists the same axes fastest first. The models
// store (energy, offset[, rad]) row-major.

func column(t *fits.Table, name string) (*fits.Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, &ColumnError{HDU: t.Name, Column: name, Wrapped: ErrMissingColumn}
	}
	return c, nil
}

// values returns a column converted to unit to. A column without TUNIT is
// taken to be in def.
func values(t *fits.Table, name string, to, def units.Unit) ([]float64, error) {
	c, err := column(t, name)
	if err != nil {
		return nil, err
	}
	from := def
	if c.Unit != "" {
		if from, err = units.ParseUnit(c.Unit); err != nil {
			return nil, &ColumnError{HDU: t.Name, Column: name, Wrapped: err}
		}
	} else if def != units.None {
		monitoring.Logf("irfio: HDU %q column %s has no unit, assuming %s", t.Name, name, def)
	}
	arr, err := units.NewArray(c.Data, from).In(to)
	if err != nil {
		return nil, &ColumnError{HDU: t.Name, Column: name, Wrapped: err}
	}
	return arr, nil
}

func edgeAxis(t *fits.Table, prefix, name string, u units.Unit, interp axis.Interp) (*axis.MapAxis, error) {
	lo, err := values(t, prefix+"_LO", u, u)
	if err != nil {
		return nil, err
	}
	hi, err := values(t, prefix+"_HI", u, u)
	if err != nil {
		return nil, err
	}
	if len(lo) == 0 || len(lo) != len(hi) {
		return nil, &ColumnError{HDU: t.Name, Column: prefix + "_HI", Wrapped: &grid.ShapeMismatchError{
			Want: []int{len(lo)},
			Got:  []int{len(hi)},
		}}
	}
	edges := append(append([]float64(nil), lo...), hi[len(hi)-1])
	a, err := axis.FromEdges(name, edges, u, interp)
	if err != nil {
		return nil, fmt.Errorf("irfio: HDU %q %s axis: %w", t.Name, prefix, err)
	}
	return a, nil
}

func addEdges(t *fits.Table, prefix string, a *axis.MapAxis) {
	e := a.Edges()
	n := len(e) - 1
	t.Add(prefix+"_LO", string(a.Unit()), e[:n])
	t.Add(prefix+"_HI", string(a.Unit()), e[1:])
}

func stamp(t *fits.Table, class string) {
	t.Header.Set("HDUDOC", "https://github.com/open-gamma-ray-astro/gamma-astro-data-formats", "")
	t.Header.Set("HDUVERS", "0.2", "")
	t.Header.Set("HDUCLASS", "GADF", "")
	t.Header.Set("HDUCLAS1", "RESPONSE", "")
	t.Header.Set("HDUCLAS2", "PSF", "")
	t.Header.Set("HDUCLAS3", "FULL-ENCLOSURE", "")
	t.Header.Set("HDUCLAS4", class, "")
}

// cellShape checks a parameter column against the grid, using TDIM when the
// file provides one.
func cellShape(t *fits.Table, name string, data []float64, dim []int) error {
	c, _ := t.Column(name)
	n := 1
	for _, k := range dim {
		n *= k
	}
	if len(data) != n {
		return &ColumnError{HDU: t.Name, Column: name, Wrapped: &grid.ShapeMismatchError{Want: dim, Got: []int{len(data)}}}
	}
	if c != nil && len(c.Dim) > 1 {
		for i := range dim {
			if i >= len(c.Dim) || c.Dim[i] != dim[i] || len(c.Dim) != len(dim) {
				return &ColumnError{HDU: t.Name, Column: name, Wrapped: &grid.ShapeMismatchError{Want: dim, Got: c.Dim}}
			}
		}
	}
	return nil
}

// fromGADF2 reorders (theta, energy) C-order cells into (energy, offset).
func fromGADF2(v []float64, ne, no int) []float64 {
	out := make([]float64, ne*no)
	for j := 0; j < no; j++ {
		for i := 0; i < ne; i++ {
			out[i*no+j] = v[j*ne+i]
		}
	}
	return out
}

func toGADF2(v []float64, ne, no int) []float64 {
	out := make([]float64, ne*no)
	for i := 0; i < ne; i++ {
		for j := 0; j < no; j++ {
			out[j*ne+i] = v[i*no+j]
		}
	}
	return out
}

// fromGADF3 reorders (rad, theta, energy) cells into (energy, offset, rad).
func fromGADF3(v []float64, ne, no, nr int) []float64 {
	out := make([]float64, ne*no*nr)
	for r := 0; r < nr; r++ {
		for j := 0; j < no; j++ {
			for i := 0; i < ne; i++ {
				out[(i*no+j)*nr+r] = v[(r*no+j)*ne+i]
			}
		}
	}
	return out
}

func toGADF3(v []float64, ne, no, nr int) []float64 {
	out := make([]float64, ne*no*nr)
	for i := 0; i < ne; i++ {
		for j := 0; j < no; j++ {
			for r := 0; r < nr; r++ {
				out[(r*no+j)*ne+i] = v[(i*no+j)*nr+r]
			}
		}
	}
	return out
}

func grids(t *fits.Table) (energy, offset *axis.MapAxis, err error) {
	if energy, err = edgeAxis(t, "ENERG", "energy_true", units.TeV, axis.Log); err != nil {
		return nil, nil, err
	}
	if offset, err = edgeAxis(t, "THETA", "offset", units.Deg, axis.Lin); err != nil {
		return nil, nil, err
	}
	return energy, offset, nil
}

func params(t *fits.Table, name string, u units.Unit, ne, no int) ([]float64, error) {
	v, err := values(t, name, u, u)
	if err != nil {
		return nil, err
	}
	if err := cellShape(t, name, v, []int{ne, no}); err != nil {
		return nil, err
	}
	return fromGADF2(v, ne, no), nil
}

func encodeKing(p psf.PSF) (*fits.Table, error) {
	k, ok := p.(*psf.King)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a King model", ErrUnknownKind, p)
	}
	ne, no := k.EnergyAxis().Nbin(), k.OffsetAxis().Nbin()
	t := fits.NewTable("PSF_2D_KING")
	addEdges(t, "ENERG", k.EnergyAxis())
	addEdges(t, "THETA", k.OffsetAxis())
	t.Add("GAMMA", "", toGADF2(k.Gamma(), ne, no), ne, no)
	t.Add("SIGMA", string(units.Deg), toGADF2(k.Sigma(), ne, no), ne, no)
	stamp(t, "PSF_KING")
	return t, nil
}

func decodeKing(t *fits.Table) (psf.PSF, error) {
	energy, offset, err := grids(t)
	if err != nil {
		return nil, err
	}
	ne, no := energy.Nbin(), offset.Nbin()
	gamma, err := params(t, "GAMMA", units.None, ne, no)
	if err != nil {
		return nil, err
	}
	sigma, err := params(t, "SIGMA", units.Deg, ne, no)
	if err != nil {
		return nil, err
	}
	return psf.NewKing(energy, offset, gamma, sigma)
}

var gaussColumns = []struct {
	name string
	unit units.Unit
	set  func(*psf.GaussParams, float64)
	get  func(psf.GaussParams) float64
}{
	{"SCALE", units.None, func(p *psf.GaussParams, v float64) { p.Scale = v }, func(p psf.GaussParams) float64 { return p.Scale }},
	{"SIGMA_1", units.Deg, func(p *psf.GaussParams, v float64) { p.Sigma1 = v }, func(p psf.GaussParams) float64 { return p.Sigma1 }},
	{"SIGMA_2", units.Deg, func(p *psf.GaussParams, v float64) { p.Sigma2 = v }, func(p psf.GaussParams) float64 { return p.Sigma2 }},
	{"SIGMA_3", units.Deg, func(p *psf.GaussParams, v float64) { p.Sigma3 = v }, func(p psf.GaussParams) float64 { return p.Sigma3 }},
	{"AMPL_2", units.None, func(p *psf.GaussParams, v float64) { p.Ampl2 = v }, func(p psf.GaussParams) float64 { return p.Ampl2 }},
	{"AMPL_3", units.None, func(p *psf.GaussParams, v float64) { p.Ampl3 = v }, func(p psf.GaussParams) float64 { return p.Ampl3 }},
}

func encodeMultiGauss(p psf.PSF) (*fits.Table, error) {
	m, ok := p.(*psf.MultiGauss)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a multi-Gauss model", ErrUnknownKind, p)
	}
	ne, no := m.EnergyAxis().Nbin(), m.OffsetAxis().Nbin()
	all := m.Params()
	t := fits.NewTable("POINT SPREAD FUNCTION")
	addEdges(t, "ENERG", m.EnergyAxis())
	addEdges(t, "THETA", m.OffsetAxis())
	for _, gc := range gaussColumns {
		v := make([]float64, len(all))
		for i, pp := range all {
			v[i] = gc.get(pp)
		}
		t.Add(gc.name, string(gc.unit), toGADF2(v, ne, no), ne, no)
	}
	lo, hi := m.Thresholds()
	t.Header.Set("LO_THRES", lo, "TeV")
	t.Header.Set("HI_THRES", hi, "TeV")
	stamp(t, "PSF_3GAUSS")
	return t, nil
}

func decodeMultiGauss(t *fits.Table) (psf.PSF, error) {
	energy, offset, err := grids(t)
	if err != nil {
		return nil, err
	}
	ne, no := energy.Nbin(), offset.Nbin()
	all := make([]psf.GaussParams, ne*no)
	for _, gc := range gaussColumns {
		v, err := params(t, gc.name, gc.unit, ne, no)
		if err != nil {
			return nil, err
		}
		for i := range all {
			gc.set(&all[i], v[i])
		}
	}
	m, err := psf.NewMultiGauss(energy, offset, all)
	if err != nil {
		return nil, err
	}
	lo, okLo := t.Header.Float("LO_THRES")
	hi, okHi := t.Header.Float("HI_THRES")
	if !okLo {
		lo = psf.DefaultThreshLo
		monitoring.Logf("irfio: HDU %q has no LO_THRES, using %g TeV", t.Name, lo)
	}
	if !okHi {
		hi = psf.DefaultThreshHi
		monitoring.Logf("irfio: HDU %q has no HI_THRES, using %g TeV", t.Name, hi)
	}
	return m.WithThresholds(lo, hi), nil
}

func encodeTable3D(p psf.PSF) (*fits.Table, error) {
	tab, ok := p.(*psf.Table3D)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a PSF table", ErrUnknownKind, p)
	}
	ne, no, nr := tab.EnergyAxis().Nbin(), tab.OffsetAxis().Nbin(), tab.RadAxis().Nbin()
	t := fits.NewTable("PSF_2D_TABLE")
	addEdges(t, "ENERG", tab.EnergyAxis())
	addEdges(t, "THETA", tab.OffsetAxis())
	addEdges(t, "RAD", tab.RadAxis())
	rpsf, err := units.NewArray(tab.Data(), units.PerDeg2).In(units.PerSr)
	if err != nil {
		return nil, err
	}
	t.Add("RPSF", string(units.PerSr), toGADF3(rpsf, ne, no, nr), ne, no, nr)
	stamp(t, "PSF_TABLE")
	return t, nil
}

func decodeTable3D(t *fits.Table) (psf.PSF, error) {
	energy, offset, err := grids(t)
	if err != nil {
		return nil, err
	}
	rad, err := edgeAxis(t, "RAD", "rad", units.Deg, axis.Lin)
	if err != nil {
		return nil, err
	}
	ne, no, nr := energy.Nbin(), offset.Nbin(), rad.Nbin()
	v, err := values(t, "RPSF", units.PerDeg2, units.PerSr)
	if err != nil {
		return nil, err
	}
	if err := cellShape(t, "RPSF", v, []int{ne, no, nr}); err != nil {
		return nil, err
	}
	return psf.NewTable3D(energy, offset, rad, fromGADF3(v, ne, no, nr))
}
