package irfio

import (
	"fmt"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/units"
)

// Document is the YAML form of a PSF model. Parameter grids are nested
// (energy, offset[, rad]) lists.
type Document struct {
	Kind   psf.Kind    `yaml:"kind"`
	Energy AxisDoc     `yaml:"energy_true"`
	Offset AxisDoc     `yaml:"offset"`
	Rad    *AxisDoc    `yaml:"rad,omitempty"`
	Gamma  [][]float64 `yaml:"gamma,omitempty"`
	Sigma  [][]float64 `yaml:"sigma,omitempty"`

	Gauss      [][]psf.GaussParams `yaml:"gauss,omitempty"`
	Thresholds *ThresholdDoc       `yaml:"thresholds,omitempty"`

	Density [][][]float64 `yaml:"density,omitempty"`
	Unit    units.Unit    `yaml:"density_unit,omitempty"`
}

type AxisDoc struct {
	Edges  []float64   `yaml:"edges"`
	Unit   units.Unit  `yaml:"unit"`
	Interp axis.Interp `yaml:"interp,omitempty"`
}

type ThresholdDoc struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

func axisDoc(a *axis.MapAxis) AxisDoc {
	return AxisDoc{Edges: a.Edges(), Unit: a.Unit(), Interp: a.Interp()}
}

func (d AxisDoc) build(name string, def axis.Interp) (*axis.MapAxis, error) {
	interp := d.Interp
	if interp == "" {
		interp = def
	}
	u, err := units.ParseUnit(string(d.Unit))
	if err != nil {
		return nil, fmt.Errorf("irfio: %s axis: %w", name, err)
	}
	a, err := axis.FromEdges(name, d.Edges, u, interp)
	if err != nil {
		return nil, fmt.Errorf("irfio: %s axis: %w", name, err)
	}
	return a, nil
}

func (d *Document) grids() (energy, offset *axis.MapAxis, err error) {
	if energy, err = d.Energy.build("energy_true", axis.Log); err != nil {
		return nil, nil, err
	}
	if offset, err = d.Offset.build("offset", axis.Lin); err != nil {
		return nil, nil, err
	}
	return energy, offset, nil
}

func nest2(v []float64, ne, no int) [][]float64 {
	out := make([][]float64, ne)
	for i := range out {
		out[i] = append([]float64(nil), v[i*no:(i+1)*no]...)
	}
	return out
}

func flatten2(name string, v [][]float64, ne, no int) ([]float64, error) {
	if len(v) != ne {
		return nil, fmt.Errorf("irfio: %s: %w", name, &grid.ShapeMismatchError{Want: []int{ne, no}, Got: []int{len(v)}})
	}
	out := make([]float64, 0, ne*no)
	for _, row := range v {
		if len(row) != no {
			return nil, fmt.Errorf("irfio: %s: %w", name, &grid.ShapeMismatchError{Want: []int{ne, no}, Got: []int{ne, len(row)}})
		}
		out = append(out, row...)
	}
	return out, nil
}

func kingDocument(p psf.PSF) (*Document, error) {
	k, ok := p.(*psf.King)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a King model", ErrUnknownKind, p)
	}
	ne, no := k.EnergyAxis().Nbin(), k.OffsetAxis().Nbin()
	return &Document{
		Kind:   psf.KindKing,
		Energy: axisDoc(k.EnergyAxis()),
		Offset: axisDoc(k.OffsetAxis()),
		Gamma:  nest2(k.Gamma(), ne, no),
		Sigma:  nest2(k.Sigma(), ne, no),
	}, nil
}

func loadKing(d *Document) (psf.PSF, error) {
	energy, offset, err := d.grids()
	if err != nil {
		return nil, err
	}
	ne, no := energy.Nbin(), offset.Nbin()
	gamma, err := flatten2("gamma", d.Gamma, ne, no)
	if err != nil {
		return nil, err
	}
	sigma, err := flatten2("sigma", d.Sigma, ne, no)
	if err != nil {
		return nil, err
	}
	return psf.NewKing(energy, offset, gamma, sigma)
}

func multiGaussDocument(p psf.PSF) (*Document, error) {
	m, ok := p.(*psf.MultiGauss)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a multi-Gauss model", ErrUnknownKind, p)
	}
	no := m.OffsetAxis().Nbin()
	all := m.Params()
	gauss := make([][]psf.GaussParams, m.EnergyAxis().Nbin())
	for i := range gauss {
		gauss[i] = all[i*no : (i+1)*no]
	}
	lo, hi := m.Thresholds()
	return &Document{
		Kind:       psf.KindMultiGauss,
		Energy:     axisDoc(m.EnergyAxis()),
		Offset:     axisDoc(m.OffsetAxis()),
		Gauss:      gauss,
		Thresholds: &ThresholdDoc{Lo: lo, Hi: hi},
	}, nil
}

func loadMultiGauss(d *Document) (psf.PSF, error) {
	energy, offset, err := d.grids()
	if err != nil {
		return nil, err
	}
	ne, no := energy.Nbin(), offset.Nbin()
	if len(d.Gauss) != ne {
		return nil, fmt.Errorf("irfio: gauss: %w", &grid.ShapeMismatchError{Want: []int{ne, no}, Got: []int{len(d.Gauss)}})
	}
	all := make([]psf.GaussParams, 0, ne*no)
	for _, row := range d.Gauss {
		if len(row) != no {
			return nil, fmt.Errorf("irfio: gauss: %w", &grid.ShapeMismatchError{Want: []int{ne, no}, Got: []int{ne, len(row)}})
		}
		all = append(all, row...)
	}
	m, err := psf.NewMultiGauss(energy, offset, all)
	if err != nil {
		return nil, err
	}
	if d.Thresholds != nil {
		m = m.WithThresholds(d.Thresholds.Lo, d.Thresholds.Hi)
	}
	return m, nil
}

func table3DDocument(p psf.PSF) (*Document, error) {
	t, ok := p.(*psf.Table3D)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a PSF table", ErrUnknownKind, p)
	}
	ne, no, nr := t.EnergyAxis().Nbin(), t.OffsetAxis().Nbin(), t.RadAxis().Nbin()
	data := t.Data()
	density := make([][][]float64, ne)
	for i := range density {
		density[i] = nest2(data[i*no*nr:(i+1)*no*nr], no, nr)
	}
	rad := axisDoc(t.RadAxis())
	return &Document{
		Kind:    psf.KindTable,
		Energy:  axisDoc(t.EnergyAxis()),
		Offset:  axisDoc(t.OffsetAxis()),
		Rad:     &rad,
		Density: density,
		Unit:    units.PerDeg2,
	}, nil
}

func loadTable3D(d *Document) (psf.PSF, error) {
	energy, offset, err := d.grids()
	if err != nil {
		return nil, err
	}
	if d.Rad == nil {
		return nil, fmt.Errorf("irfio: psf table document: %w: rad", ErrMissingColumn)
	}
	rad, err := d.Rad.build("rad", axis.Lin)
	if err != nil {
		return nil, err
	}
	ne, no, nr := energy.Nbin(), offset.Nbin(), rad.Nbin()
	if len(d.Density) != ne {
		return nil, fmt.Errorf("irfio: density: %w", &grid.ShapeMismatchError{Want: []int{ne, no, nr}, Got: []int{len(d.Density)}})
	}
	data := make([]float64, 0, ne*no*nr)
	for _, plane := range d.Density {
		v, err := flatten2("density", plane, no, nr)
		if err != nil {
			return nil, err
		}
		data = append(data, v...)
	}
	u := units.PerDeg2
	if d.Unit != "" {
		if u, err = units.ParseUnit(string(d.Unit)); err != nil {
			return nil, fmt.Errorf("irfio: density: %w", err)
		}
	}
	data, err = units.Array{Values: data, Unit: u}.In(units.PerDeg2)
	if err != nil {
		return nil, fmt.Errorf("irfio: density: %w", err)
	}
	return psf.NewTable3D(energy, offset, rad, data)
}
