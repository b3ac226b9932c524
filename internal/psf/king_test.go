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

var _ = Describe("King", func() {
	var k *psf.King

	BeforeEach(func() {
		k = kingFixture()
	})

	Describe("EvaluateParameters", func() {
		It("reproduces the tabulated parameters on axis", func() {
			p := k.EvaluateParameters(1, 0)
			Expect(p.Gamma).To(BeNumerically("~", 1.733179, 1.733179e-5))
			Expect(p.Sigma).To(BeNumerically("~", 0.040576, 0.040576e-5))
		})

		It("interpolates linearly in offset", func() {
			p := k.EvaluateParameters(1, 1)
			Expect(p.Gamma).To(BeNumerically("~", 1.812795, 1.812795e-5))
			Expect(p.Sigma).To(BeNumerically("~", 0.040765, 0.040765e-5))
		})

		It("interpolates in log energy", func() {
			ce := k.EnergyAxis().Center()
			mid := math.Sqrt(ce[1] * ce[2])
			p := k.EvaluateParameters(mid, 0.5)
			Expect(p.Gamma).To(BeNumerically("~", 0.5*(1.733179+2.2), 1e-9))
		})

		It("clamps outside the grid", func() {
			Expect(k.EvaluateParameters(1e-4, -3)).To(Equal(k.EvaluateParameters(0.01, 0)))
			hi := k.EvaluateParameters(1e6, 10)
			Expect(hi.Gamma).To(BeNumerically("~", 2.4, 1e-12))
			Expect(hi.Sigma).To(BeNumerically("~", 0.032, 1e-12))
		})

		It("tags parameters with units", func() {
			q := k.EvaluateParameters(1, 0).Quantities()
			Expect(q["sigma"].Unit).To(Equal(units.Deg))
			arcmin, err := q["sigma"].In(units.Arcmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(arcmin).To(BeNumerically("~", 60*0.040576, 1e-6))
		})
	})

	Describe("Evaluate", func() {
		It("matches the reference densities at 1 deg", func() {
			Expect(k.Evaluate(1, 1, 0)).To(BeNumerically("~", 0.005234, 0.005234e-4))
			Expect(k.Evaluate(1, 1, 1)).To(BeNumerically("~", 0.004015, 0.004015e-4))
		})

		It("is zero for uncovered parameters", func() {
			for _, p := range []psf.KingParams{{Gamma: 1, Sigma: 0.1}, {Gamma: 2, Sigma: 0}, {Gamma: 0.5, Sigma: -1}} {
				Expect(p.Density(0.1)).To(BeZero())
				Expect(p.Cumulative(0.1)).To(BeZero())
				Expect(p.Radius(0.68)).To(BeZero())
			}
		})
	})

	Describe("EvaluateOutside", func() {
		It("clamps like Evaluate", func() {
			Expect(psf.EvaluateOutside(k, grid.Clamp, 0.1, 1000, 0)).To(Equal(k.Evaluate(0.1, 1000, 0)))
			Expect(k.Evaluate(0.1, 1000, 0)).To(BeNumerically(">", 0))
		})

		It("reports no density beyond the axes with FillZero", func() {
			Expect(psf.Covers(k, 1000, 0)).To(BeFalse())
			Expect(psf.EvaluateOutside(k, grid.FillZero, 0.1, 1000, 0)).To(BeZero())
			Expect(psf.EvaluateOutside(k, grid.FillZero, 0.1, 1, 2.5)).To(BeZero())
			Expect(psf.EvaluateOutside(k, grid.FillZero, 0.1, 1, 0.5)).To(Equal(k.Evaluate(0.1, 1, 0.5)))
		})
	})

	Describe("ContainmentRadius", func() {
		It("uses the closed-form inverse", func() {
			r := k.ContainmentRadius(0.68, 1, 0)
			Expect(r).To(BeNumerically("~", 0.14591797252590735, 1e-9))
		})

		DescribeTable("round trips through Containment",
			func(f, energy, offset float64) {
				r := k.ContainmentRadius(f, energy, offset)
				Expect(k.Containment(r, energy, offset)).To(BeNumerically("~", f, 1e-9))
			},
			Entry("core", 0.39, 1.0, 0.0),
			Entry("68%", 0.68, 1.0, 0.3),
			Entry("95%", 0.95, 5.0, 1.2),
			Entry("high energy", 0.8, 50.0, 1.9),
		)

		It("handles the extremes", func() {
			Expect(k.ContainmentRadius(0, 1, 0)).To(BeZero())
			Expect(math.IsInf(k.ContainmentRadius(1, 1, 0), 1)).To(BeTrue())
			Expect(k.Containment(0, 1, 0)).To(BeZero())
			Expect(k.Containment(1e9, 1, 0)).To(BeNumerically("~", 1, 1e-6))
		})
	})

	Describe("ToEnergyDependentTable", func() {
		It("agrees with the analytic containment radii", func() {
			table, err := k.ToEnergyDependentTable(0, nil)
			Expect(err).NotTo(HaveOccurred())

			fractions := []float64{0.68, 0.8, 0.9}
			want := psf.ContainmentRadii(k, fractions, 1, 0)
			got := table.ContainmentRadii(fractions, 1)
			for i := range fractions {
				Expect(got[i]).To(BeNumerically("~", want[i], 1e-2*want[i]))
			}
		})

		It("contains nearly everything within 1 deg", func() {
			table, err := k.ToEnergyDependentTable(0, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Containment(1, 1)).To(BeNumerically("~", 1, 3e-2))
		})

		It("samples the analytic density on the given radii", func() {
			rad := []float64{0, 0.1, 0.5, 1}
			table, err := k.ToEnergyDependentTable(1, rad)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.Rad()).To(Equal(rad))
			Expect(table.Evaluate(1, 1)).To(BeNumerically("~", k.Evaluate(1, 1, 1), 1e-12))
			Expect(table.Evaluate(1.2, 1)).To(BeZero())
		})
	})

	Describe("ToPSF3D", func() {
		It("tabulates close to the analytic radii", func() {
			edges := make([]float64, 101)
			for i := range edges {
				edges[i] = float64(i) / 100
			}
			t3, err := k.ToPSF3D(edges)
			Expect(err).NotTo(HaveOccurred())
			Expect(t3.Data()).To(HaveLen(3 * 2 * 100))

			fractions := []float64{0.68, 0.8, 0.9}
			want := psf.ContainmentRadii(k, fractions, 1, 0)
			got := psf.ContainmentRadii(t3, fractions, 1, 0)
			for i := range fractions {
				Expect(got[i]).To(BeNumerically("~", want[i], 0.01))
			}
		})

		It("rejects malformed radius edges", func() {
			_, err := k.ToPSF3D([]float64{0.2, 0.1})
			Expect(errors.Is(err, axis.ErrOutOfRange)).To(BeTrue())
		})
	})

	It("rejects parameters that do not fit the axes", func() {
		energy, _ := axis.FromEdges("energy_true", []float64{0.1, 1, 10}, units.TeV, axis.Log)
		offset, _ := axis.FromEdges("offset", []float64{0, 1, 2}, units.Deg, axis.Lin)
		_, err := psf.NewKing(energy, offset, []float64{2, 2, 2}, []float64{0.1, 0.1, 0.1, 0.1})
		Expect(errors.Is(err, grid.ErrShapeMismatch)).To(BeTrue())
	})

	It("rejects an offset axis in energy units", func() {
		energy, _ := axis.FromEdges("energy_true", []float64{0.1, 1}, units.TeV, axis.Log)
		_, err := psf.NewKing(energy, energy, []float64{2}, []float64{0.1})
		Expect(errors.Is(err, units.ErrIncompatible)).To(BeTrue())
	})

	It("converts energy axes to TeV", func() {
		energy, _ := axis.FromEdges("ENERG", []float64{100, 1000, 10000}, units.GeV, axis.Log)
		offset, _ := axis.FromEdges("THETA", []float64{0, 2}, units.Deg, axis.Lin)
		g, err := psf.NewKing(energy, offset, []float64{2, 2}, []float64{0.1, 0.2})
		Expect(err).NotTo(HaveOccurred())
		Expect(g.EnergyAxis().Unit()).To(Equal(units.TeV))
		Expect(g.EnergyAxis().Name()).To(Equal("energy_true"))
		lo, hi := g.EnergyAxis().Bounds()
		Expect(lo).To(BeNumerically("~", 0.1, 1e-12))
		Expect(hi).To(BeNumerically("~", 10, 1e-9))
	})

	It("summarizes itself", func() {
		info := k.Info()
		Expect(info).To(HavePrefix("Summary PSF info\n----------------\n"))
		Expect(info).To(ContainSubstring("Theta          : size =     2, min =  0.500 deg, max =  1.500 deg\n"))
		Expect(info).To(ContainSubstring("Gamma          : size =     6, min =  1.733, max =  2.400\n"))
		Expect(info).To(ContainSubstring("68% containment radius at theta = 0 deg and E =  1.0 TeV: 0.14591797 deg\n"))
		Expect(k.Info()).To(Equal(info))
	})
})
