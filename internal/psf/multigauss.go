package psf

import (
	"fmt"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/units"
)

// GaussParams are the PSF_3GAUSS columns of one (energy, offset) bin. The
// component amplitudes are Scale, Scale*Ampl2 and Scale*Ampl3; sigmas are
// in deg. A zero sigma disables its component.
type GaussParams struct {
	Scale  float64 `yaml:"scale" json:"scale"`
	Sigma1 float64 `yaml:"sigma_1" json:"sigma_1"`
	Sigma2 float64 `yaml:"sigma_2" json:"sigma_2"`
	Sigma3 float64 `yaml:"sigma_3" json:"sigma_3"`
	Ampl2  float64 `yaml:"ampl_2" json:"ampl_2"`
	Ampl3  float64 `yaml:"ampl_3" json:"ampl_3"`
}

func (p GaussParams) Mixture() Mixture {
	return NewMixture(
		[]float64{p.Scale, p.Scale * p.Ampl2, p.Scale * p.Ampl3},
		[]float64{p.Sigma1, p.Sigma2, p.Sigma3},
	)
}

// Default safe energy thresholds in TeV, used when a file carries none.
const (
	DefaultThreshLo float64 = 0.1
	DefaultThreshHi float64 = 100
)

// MultiGauss is a PSF_3GAUSS model. Lookups use the parameters of the
// (energy, offset) bin containing the query, clamped to the grid.
type MultiGauss struct {
	energy   *axis.MapAxis
	offset   *axis.MapAxis
	params   []GaussParams
	threshLo float64
	threshHi float64
}

// NewMultiGauss builds a model from row-major (energy, offset) parameters.
func NewMultiGauss(energy, offset *axis.MapAxis, params []GaussParams) (*MultiGauss, error) {
	e, o, err := energyOffsetAxes(energy, offset)
	if err != nil {
		return nil, fmt.Errorf("psf: 3gauss: %w", err)
	}
	if want := e.Nbin() * o.Nbin(); len(params) != want {
		return nil, fmt.Errorf("psf: 3gauss: %w", &grid.ShapeMismatchError{
			Want: []int{e.Nbin(), o.Nbin()},
			Got:  []int{len(params)},
		})
	}
	return &MultiGauss{
		energy:   e,
		offset:   o,
		params:   append([]GaussParams(nil), params...),
		threshLo: DefaultThreshLo,
		threshHi: DefaultThreshHi,
	}, nil
}

// WithThresholds returns a copy carrying safe energy thresholds in TeV.
func (m *MultiGauss) WithThresholds(lo, hi float64) *MultiGauss {
	c := *m
	c.threshLo, c.threshHi = lo, hi
	return &c
}

func (m *MultiGauss) Thresholds() (lo, hi float64) { return m.threshLo, m.threshHi }

func (m *MultiGauss) Kind() Kind { return KindMultiGauss }

func (m *MultiGauss) EnergyAxis() *axis.MapAxis { return m.energy }

func (m *MultiGauss) OffsetAxis() *axis.MapAxis { return m.offset }

// Params returns a copy of the row-major parameter grid.
func (m *MultiGauss) Params() []GaussParams {
	return append([]GaussParams(nil), m.params...)
}

// Param returns the parameters of bin (i, j).
func (m *MultiGauss) Param(i, j int) GaussParams {
	return m.params[i*m.offset.Nbin()+j]
}

// At returns the normalized mixture for the bin containing (energy, offset).
func (m *MultiGauss) At(energy, offset float64) Mixture {
	return m.Param(m.energy.Nearest(energy), m.offset.Nearest(offset)).Mixture()
}

func (m *MultiGauss) Evaluate(rad, energy, offset float64) float64 {
	return m.At(energy, offset).Density(rad)
}

func (m *MultiGauss) Containment(rad, energy, offset float64) float64 {
	return m.At(energy, offset).Cumulative(rad)
}

func (m *MultiGauss) ContainmentRadius(fraction, energy, offset float64) float64 {
	return m.At(energy, offset).Radius(fraction)
}

func (m *MultiGauss) ToEnergyDependentTable(offset float64, rad []float64) (*EnergyDependentTable, error) {
	return sampleEnergyTable(m.energy, offset, rad, func(energy float64) func(float64) float64 {
		return m.At(energy, offset).Density
	})
}

// ToPSF3D tabulates the mixture density of every bin at the centers of
// radEdges (deg).
func (m *MultiGauss) ToPSF3D(radEdges []float64) (*Table3D, error) {
	rad, err := axis.FromEdges("rad", radEdges, units.Deg, axis.Lin)
	if err != nil {
		return nil, fmt.Errorf("psf: to psf3d: %w", err)
	}
	centers := rad.Center()
	ne, no, nr := m.energy.Nbin(), m.offset.Nbin(), rad.Nbin()
	data := make([]float64, 0, ne*no*nr)
	for i := 0; i < ne; i++ {
		for j := 0; j < no; j++ {
			mix := m.Param(i, j).Mixture()
			for _, r := range centers {
				data = append(data, mix.Density(r))
			}
		}
	}
	return NewTable3D(m.energy, m.offset, rad, data)
}

func (m *MultiGauss) Info() string { return m.InfoWith(DefaultInfoOptions()) }

func (m *MultiGauss) InfoWith(opts InfoOptions) string {
	s := infoHeader(m.energy, m.offset)
	s += fmt.Sprintf("Safe energy threshold lo: %6.3f TeV\n", m.threshLo)
	s += fmt.Sprintf("Safe energy threshold hi: %6.3f TeV\n", m.threshHi)
	return s + containmentLines(m, opts)
}
