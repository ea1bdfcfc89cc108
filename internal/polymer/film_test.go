package polymer_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
)

// randomState fills a film state with positive concentrations away from
// equilibrium so derivative terms are all active.
func randomState(f *polymer.Film, seed int64) dynamo.State {
	rng := rand.New(rand.NewSource(seed))
	ligand := make([]float64, f.N)
	bound := make([]float64, f.N)
	for i := 0; i < f.N; i++ {
		ligand[i] = 0.1 + rng.Float64()
		bound[i] = rng.Float64() * f.Capacity
	}
	return polymer.Pack(ligand, bound, 0.05)
}

var _ = Describe("Film", func() {
	var film *polymer.Film

	BeforeEach(func() {
		film = polymer.NewFilm(10)
	})

	Describe("construction", func() {
		It("has dimension 2N+1", func() {
			Expect(film.Dim()).To(Equal(21))
		})

		It("spaces layers over the unit half-thickness", func() {
			Expect(film.Delta()).To(BeNumerically("~", 0.1, 1e-15))
		})

		It("clamps the layer count to the minimum", func() {
			Expect(polymer.NewFilm(1).N).To(Equal(3))
		})
	})

	Describe("Validate", func() {
		It("accepts the defaults", func() {
			Expect(film.Validate()).To(Succeed())
		})

		DescribeTable("rejects bad parameters",
			func(mutate func(*polymer.Film)) {
				mutate(film)
				Expect(film.Validate()).To(MatchError(dynamo.ErrInvalidParameter))
			},
			Entry("too few layers", func(f *polymer.Film) { f.N = 2 }),
			Entry("zero diffusion", func(f *polymer.Film) { f.Diffusion = 0 }),
			Entry("negative diffusion", func(f *polymer.Film) { f.Diffusion = -1 }),
			Entry("negative binding", func(f *polymer.Film) { f.Binding = -0.1 }),
			Entry("negative capacity", func(f *polymer.Film) { f.Capacity = -2 }),
			Entry("negative loading", func(f *polymer.Film) { f.Loading = -1 }),
		)
	})

	Describe("DefaultState", func() {
		It("drains the interface layer and equilibrates the complex", func() {
			x := film.DefaultState()
			ligand, bound, released, err := polymer.Unpack(x, film.N)
			Expect(err).NotTo(HaveOccurred())

			Expect(ligand[0]).To(Equal(film.Loading))
			Expect(ligand[film.N-1]).To(BeZero())
			Expect(released).To(BeZero())

			eq := polymer.EquilibriumBound(film.Loading, film.Binding, film.Capacity)
			for i := 0; i < film.N; i++ {
				Expect(bound[i]).To(BeNumerically("~", eq, 1e-15))
				Expect(polymer.BindingRate(film.Loading, bound[i], film.Binding, film.Capacity)).
					To(BeNumerically("~", 0, 1e-12))
			}
		})
	})

	Describe("Derive", func() {
		It("produces no reaction flux without binding", func() {
			film.Binding = 0
			x := randomState(film, 1)
			// Clear the complex so its decay term is inactive too.
			for i := film.N; i < 2*film.N; i++ {
				x[i] = 0
			}

			d := film.Derive(x, 0)
			for i := film.N; i < 2*film.N; i++ {
				Expect(d[i]).To(BeZero())
			}
		})

		It("diffuses toward the drained interface without reacting", func() {
			f := polymer.NewFilm(3)
			f.Binding = 0
			f.Capacity = 0
			x := polymer.Pack([]float64{0.5, 0.5, 0}, []float64{0, 0, 0}, 0)

			d := f.Derive(x, 0)
			Expect(d[0]).To(BeNumerically("~", 0, 1e-12))
			Expect(d[1]).To(BeNumerically("<", 0))
			Expect(d[2]).To(BeNumerically(">", 0))
			for i := 3; i < 6; i++ {
				Expect(d[i]).To(BeZero())
			}
			Expect(d[6]).To(BeNumerically(">", 0))
		})

		It("keeps the interface layer reaction-free by default", func() {
			x := randomState(film, 2)
			d := film.Derive(x, 0)
			Expect(d[2*film.N-1]).To(BeZero())
		})

		It("reacts at the interface layer when the switch is on", func() {
			film.BoundaryReaction = true
			x := randomState(film, 2)
			d := film.Derive(x, 0)
			Expect(d[2*film.N-1]).NotTo(BeZero())
		})

		It("conserves the discrete mass invariant exactly", func() {
			// With the interface reaction off the semi-discrete system holds
			// sum(l) + sum(c) - l[N-1] + 2*released/delta constant, so the
			// same combination of derivatives must vanish.
			x := randomState(film, 3)
			d := film.Derive(x, 0)

			n := film.N
			sum := 0.0
			for i := 0; i < 2*n; i++ {
				sum += d[i]
			}
			sum -= d[n-1]
			sum += 2 * d[2*n] / film.Delta()

			Expect(sum).To(BeNumerically("~", 0, 1e-9))
		})

		It("moves released mass out through the interface", func() {
			x := film.DefaultState()
			d := film.Derive(x, 0)
			// Interface starts drained below its neighbor, so the outward
			// flux and the release derivative are positive.
			Expect(d[2*film.N]).To(BeNumerically(">", 0))
		})

		It("returns a zero derivative for a malformed state", func() {
			d := film.Derive(make(dynamo.State, 5), 0)
			Expect(d).To(HaveLen(film.Dim()))
			Expect(d[0]).To(BeZero())
		})
	})

	Describe("parameters", func() {
		It("round-trips through GetParams and SetParam", func() {
			Expect(film.SetParam("binding", 7.5)).To(Succeed())
			Expect(film.SetParam("diffusion", 0.25)).To(Succeed())
			params := film.GetParams()
			Expect(params["binding"]).To(Equal(7.5))
			Expect(params["diffusion"]).To(Equal(0.25))
		})

		It("rejects unknown parameter names", func() {
			Expect(film.SetParam("viscosity", 1)).To(HaveOccurred())
		})
	})
})

var _ = Describe("state packing", func() {
	It("round-trips fields through Pack and Unpack", func() {
		ligand := []float64{1, 2, 3}
		bound := []float64{4, 5, 6}
		s := polymer.Pack(ligand, bound, 7)

		l, c, released, err := polymer.Unpack(s, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(l).To(Equal(ligand))
		Expect(c).To(Equal(bound))
		Expect(released).To(Equal(7.0))
	})

	It("rejects a state of the wrong length", func() {
		_, _, _, err := polymer.Unpack(make(dynamo.State, 6), 3)
		Expect(err).To(MatchError(dynamo.ErrInvalidLength))
	})

	It("converts released flux units into layer units", func() {
		n := 4
		delta := 1.0 / float64(n)
		s := polymer.Pack(make([]float64, n), make([]float64, n), 0.5)

		total, err := polymer.TotalMass(s, n, delta)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeNumerically("~", 2*0.5/delta, 1e-15))
	})
})

var _ = Describe("kinetics", func() {
	It("vanishes at the equilibrium bound concentration", func() {
		eq := polymer.EquilibriumBound(0.8, 4.0, 2.0)
		Expect(polymer.BindingRate(0.8, eq, 4.0, 2.0)).To(BeNumerically("~", 0, 1e-14))
	})

	It("binds forward below equilibrium and unbinds above", func() {
		eq := polymer.EquilibriumBound(0.8, 4.0, 2.0)
		Expect(polymer.BindingRate(0.8, eq*0.5, 4.0, 2.0)).To(BeNumerically(">", 0))
		Expect(polymer.BindingRate(0.8, eq*1.5, 4.0, 2.0)).To(BeNumerically("<", 0))
	})

	It("has no equilibrium complex without binding", func() {
		Expect(polymer.EquilibriumBound(1.0, 0, 2.0)).To(BeZero())
	})
})
