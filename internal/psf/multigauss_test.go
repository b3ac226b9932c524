package psf_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/psfkit/internal/axis"
	"github.com/san-kum/psfkit/internal/grid"
	"github.com/san-kum/psfkit/internal/psf"
	"github.com/san-kum/psfkit/internal/units"
)

var _ = Describe("Mixture", func() {
	It("normalizes component integrals", func() {
		m := psf.NewMixture([]float64{10, 3, 0.5}, []float64{0.054, 0.108, 0.216})
		c := m.Components()
		Expect(c).To(HaveLen(3))
		Expect(c[0].Weight).To(BeNumerically("~", 1.0/3, 1e-12))
		Expect(c[1].Weight).To(BeNumerically("~", 0.4, 1e-12))
		Expect(c[2].Weight).To(BeNumerically("~", 4.0/15, 1e-12))
	})

	It("drops disabled components", func() {
		m := psf.NewMixture([]float64{1, 5, 0}, []float64{0.1, 0, 0.3})
		Expect(m.Components()).To(Equal([]psf.Component{{Weight: 1, Sigma: 0.1}}))
	})

	It("reduces to a single Gaussian", func() {
		sigma := 0.1
		m := psf.NewMixture([]float64{2}, []float64{sigma})
		Expect(m.Density(0)).To(BeNumerically("~", 1/(2*math.Pi*sigma*sigma), 1e-9))
		Expect(m.Radius(0.68)).To(BeNumerically("~", sigma*math.Sqrt(-2*math.Log(0.32)), 1e-12))
	})

	It("inverts the mixture cumulative", func() {
		m := psf.NewMixture([]float64{10, 3, 0.5}, []float64{0.054, 0.108, 0.216})
		Expect(m.Cumulative(0.1)).To(BeNumerically("~", 0.4398759089887852, 1e-12))
		Expect(m.Density(0.1)).To(BeNumerically("~", 7.6476074823406455, 1e-9))
		for _, f := range []float64{0.1, 0.5, 0.68, 0.9, 0.99} {
			Expect(m.Cumulative(m.Radius(f))).To(BeNumerically("~", f, 1e-9))
		}
	})

	It("is empty without usable components", func() {
		m := psf.NewMixture([]float64{0, 0, 0}, []float64{0.1, 0.2, 0.3})
		Expect(m.Empty()).To(BeTrue())
		Expect(m.Density(0)).To(BeZero())
		Expect(m.Cumulative(1)).To(BeZero())
		Expect(m.Radius(0.68)).To(BeZero())
	})
})

var _ = Describe("MultiGauss", func() {
	var m *psf.MultiGauss

	BeforeEach(func() {
		m = multiGaussFixture()
	})

	It("looks up the bin containing the query", func() {
		Expect(m.At(1, 2)).To(Equal(m.Param(1, 2).Mixture()))
		Expect(m.At(1.5, 2.9)).To(Equal(m.Param(1, 2).Mixture()))
		Expect(m.At(1e-3, -1)).To(Equal(m.Param(0, 0).Mixture()))
		Expect(m.At(1e4, 99)).To(Equal(m.Param(3, 4).Mixture()))
	})

	It("computes the analytic containment radius", func() {
		want := []float64{0.16761102243734377, 0.22544637208778479, 0.31214623123573815}
		got := psf.ContainmentRadii(m, []float64{0.68, 0.8, 0.9}, 1, 2)
		for i := range want {
			Expect(got[i]).To(BeNumerically("~", want[i], 1e-8))
		}
	})

	Describe("ToEnergyDependentTable", func() {
		It("reproduces the containment radius at 2 deg offset", func() {
			table, err := m.ToEnergyDependentTable(2, nil)
			Expect(err).NotTo(HaveOccurred())
			profile := table.AtEnergy(1)
			Expect(profile.ContainmentRadius(0.68)).To(BeNumerically("~", 0.16777693946249078, 1e-6))
			Expect(profile.ContainmentRadius(0.68)).To(BeNumerically("~", m.ContainmentRadius(0.68, 1, 2), 1e-3))
		})

		It("agrees with the analytic radii at zero offset", func() {
			rad := make([]float64, 300)
			for i := range rad {
				rad[i] = 2 * float64(i) / 299
			}
			table, err := m.ToEnergyDependentTable(0, rad)
			Expect(err).NotTo(HaveOccurred())
			fractions := []float64{0.68, 0.8, 0.9}
			want := psf.ContainmentRadii(m, fractions, 1, 0)
			got := table.ContainmentRadii(fractions, 1)
			for i := range fractions {
				Expect(got[i]).To(BeNumerically("~", want[i], 1e-2*want[i]))
			}
		})

		It("fills coverage gaps with zero", func() {
			table, err := m.ToEnergyDependentTable(4.5, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.AtEnergy(0.05).Evaluate(0.03)).To(BeZero())
			Expect(m.Evaluate(0.03, 0.05, 4.5)).To(BeZero())
			Expect(m.ContainmentRadius(0.68, 0.05, 4.5)).To(BeZero())
			Expect(table.AtEnergy(10).Evaluate(0.03)).To(BeNumerically(">", 0))
		})
	})

	Describe("ToPSF3D", func() {
		var rads []float64

		BeforeEach(func() {
			rads = make([]float64, 101)
			for i := range rads {
				rads[i] = float64(i) / 100
			}
		})

		It("builds a rad axis in deg", func() {
			t3, err := m.ToPSF3D(rads)
			Expect(err).NotTo(HaveOccurred())
			Expect(t3.RadAxis().Nbin()).To(Equal(100))
			Expect(t3.RadAxis().Unit()).To(Equal(units.Deg))
			Expect(t3.Kind()).To(Equal(psf.KindTable))
		})

		It("reproduces the analytic containment radii", func() {
			t3, err := m.ToPSF3D(rads)
			Expect(err).NotTo(HaveOccurred())
			fractions := []float64{0.68, 0.8, 0.9}
			want := psf.ContainmentRadii(m, fractions, 1, 0.5)
			got := psf.ContainmentRadii(t3, fractions, 1, 0.5)
			for i := range fractions {
				Expect(got[i]).To(BeNumerically("~", want[i], 0.005))
			}
		})

		It("rejects malformed radius edges", func() {
			_, err := m.ToPSF3D([]float64{0, 0.5, 0.5})
			Expect(errors.Is(err, axis.ErrOutOfRange)).To(BeTrue())
		})
	})

	It("rejects a parameter grid of the wrong size", func() {
		_, err := psf.NewMultiGauss(m.EnergyAxis(), m.OffsetAxis(), m.Params()[1:])
		Expect(errors.Is(err, grid.ErrShapeMismatch)).To(BeTrue())
	})

	It("carries safe energy thresholds", func() {
		lo, hi := m.Thresholds()
		Expect([]float64{lo, hi}).To(Equal([]float64{0.2, 50}))
		fresh, err := psf.NewMultiGauss(m.EnergyAxis(), m.OffsetAxis(), m.Params())
		Expect(err).NotTo(HaveOccurred())
		lo, hi = fresh.Thresholds()
		Expect([]float64{lo, hi}).To(Equal([]float64{psf.DefaultThreshLo, psf.DefaultThreshHi}))
	})

	It("prints a stable summary", func() {
		info := m.Info()
		Expect(info).To(Equal(m.Info()))
		Expect(info).To(ContainSubstring("Theta          : size =     5, min =  0.500 deg, max =  4.500 deg\n"))
		Expect(info).To(ContainSubstring("Energy hi      : size =     4, min =  0.316 TeV, max = 316.228 TeV\n"))
		Expect(info).To(ContainSubstring("Energy lo      : size =     4, min =  0.032 TeV, max = 31.623 TeV\n"))
		Expect(info).To(ContainSubstring("Safe energy threshold lo:  0.200 TeV\n"))
		Expect(info).To(ContainSubstring("Safe energy threshold hi: 50.000 TeV\n"))
		Expect(info).To(ContainSubstring("95% containment radius at theta = 0 deg and E = 10.0 TeV: "))
	})
})
