package psf_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/units"
)

func table3DFixture(data []float64) (*psf.Table3D, error) {
	energy := mustAxis(axis.FromEdges("energy_true", []float64{1, 10, 100}, units.TeV, axis.Log))
	offset := mustAxis(axis.FromEdges("offset", []float64{0, 2}, units.Deg, axis.Lin))
	rad := mustAxis(axis.FromEdges("rad", []float64{0, 0.1, 0.2, 0.3}, units.Deg, axis.Lin))
	return psf.NewTable3D(energy, offset, rad, data)
}

var _ = Describe("Table3D", func() {
	var t3 *psf.Table3D

	BeforeEach(func() {
		var err error
		t3, err = table3DFixture([]float64{3, 2, 1, 6, 4, 2})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects data that does not fit the axes", func() {
		_, err := table3DFixture([]float64{3, 2, 1, 6, 4})
		Expect(errors.Is(err, grid.ErrShapeMismatch)).To(BeTrue())
		var sm *grid.ShapeMismatchError
		Expect(errors.As(err, &sm)).To(BeTrue())
		Expect(sm.Want).To(Equal([]int{2, 1, 3}))
	})

	DescribeTable("Evaluate",
		func(rad, energy, offset, want float64) {
			Expect(t3.Evaluate(rad, energy, offset)).To(BeNumerically("~", want, 1e-9))
		},
		Entry("between centers", 0.1, 3.1622776601683795, 1.0, 2.5),
		Entry("flat to the first edge", 0.02, 3.1622776601683795, 1.0, 3.0),
		Entry("flat to the last edge", 0.29, 3.1622776601683795, 1.0, 1.0),
		Entry("beyond the last edge", 0.31, 3.1622776601683795, 1.0, 0.0),
		Entry("log energy midpoint", 0.05, 10.0, 1.0, 4.5),
		Entry("energy clamped", 0.15, 1000.0, 5.0, 4.0),
	)

	It("integrates its profile into containment", func() {
		r := t3.ContainmentRadius(0.2, 3, 1)
		Expect(t3.Containment(r, 3, 1)).To(BeNumerically("~", 0.2, 1e-9))
		// the table is not normalized: 0.3 deg holds about 42%
		Expect(t3.Containment(10, 3, 1)).To(BeNumerically("~", 0.424115008234622, 1e-9))
		Expect(t3.ContainmentRadius(0.9, 3, 1)).To(BeNumerically("~", 0.3, 1e-12))
		Expect(t3.ContainmentRadius(0, 3, 1)).To(BeZero())
	})

	It("evaluates coverage gaps to zero", func() {
		gap, err := table3DFixture([]float64{0, 0, 0, 6, 4, 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(gap.Evaluate(0.05, 1, 1)).To(BeZero())
		Expect(gap.Containment(0.2, 1, 1)).To(BeZero())
		Expect(gap.ContainmentRadius(0.68, 1, 1)).To(BeZero())
	})

	It("converts to an energy dependent table", func() {
		table, err := t3.ToEnergyDependentTable(1, []float64{0, 0.1, 0.2})
		Expect(err).NotTo(HaveOccurred())
		d := table.Data()
		Expect(d).To(HaveLen(6))
		for i, want := range []float64{3, 2.5, 1.5, 6, 5, 3} {
			Expect(d[i]).To(BeNumerically("~", want, 1e-9))
		}
	})

	It("summarizes the radius axis", func() {
		Expect(t3.Info()).To(ContainSubstring("Rad            : size =     3, min =  0.050 deg, max =  0.250 deg\n"))
	})
})

var _ = Describe("EnergyDependentTable", func() {
	var table *psf.EnergyDependentTable

	BeforeEach(func() {
		var err error
		table, err = kingFixture().ToEnergyDependentTable(0, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("uses the default radius grid", func() {
		rad := table.Rad()
		Expect(rad).To(HaveLen(300))
		Expect(rad[0]).To(BeZero())
		Expect(rad[299]).To(BeNumerically("~", 1.495, 1e-12))
	})

	It("accepts unit-tagged energies", func() {
		p, err := table.AtEnergyQuantity(units.New(1000, units.GeV))
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Density()).To(Equal(table.AtEnergy(1).Density()))

		_, err = table.AtEnergyQuantity(units.New(1, units.Deg))
		Expect(errors.Is(err, units.ErrIncompatible)).To(BeTrue())
	})

	It("round trips containment", func() {
		for _, f := range []float64{0.2, 0.5, 0.68, 0.9} {
			r := table.ContainmentRadius(f, 2)
			Expect(table.Containment(r, 2)).To(BeNumerically("~", f, 1e-3))
		}
	})

	It("averages over an energy band", func() {
		p, err := table.InEnergyBand(0.5, 50, 2, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Integral()).To(BeNumerically("~", 1, 1e-9))

		_, err = table.InEnergyBand(10, 1, 2, 20)
		Expect(errors.Is(err, axis.ErrOutOfRange)).To(BeTrue())
	})

	It("rejects negative radii", func() {
		_, err := psf.NewEnergyDependentTable(table.EnergyAxis(), []float64{-0.1, 0.1}, make([]float64, 6))
		Expect(errors.Is(err, axis.ErrOutOfRange)).To(BeTrue())
	})

	It("summarizes itself", func() {
		Expect(table.Info()).To(HavePrefix("Summary energy dependent table PSF info\n"))
		Expect(table.Info()).To(ContainSubstring("68% containment radius at E =  1.0 TeV: "))
	})
})
