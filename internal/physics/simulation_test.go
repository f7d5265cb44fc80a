package physics_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/physics"
)

func newSim(params physics.Params, seed int64) *physics.Simulation {
	s, err := physics.New(params, rand.New(rand.NewSource(seed)))
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Simulation", func() {
	var params physics.Params

	BeforeEach(func() {
		params = physics.DefaultParams()
	})

	Describe("Initialize", func() {
		It("draws radii in range with mass equal to radius squared", func() {
			s := newSim(params, 1)
			Expect(s.Initialize(1000, 800, 600, 0.99)).To(Succeed())

			v := s.View()
			Expect(v.Raw()).To(HaveLen(1000 * particle.Stride))
			for i := 0; i < v.Len(); i++ {
				p := v.At(i)
				Expect(p.Radius).To(BeNumerically(">=", params.MinRadius))
				Expect(p.Radius).To(BeNumerically("<=", params.MaxRadius))
				Expect(p.Mass).To(Equal(p.Radius * p.Radius))
			}
		})

		DescribeTable("rejects precondition violations",
			func(count int, w, h, damping float64, want error) {
				s := newSim(params, 1)
				Expect(s.Initialize(count, w, h, damping)).To(MatchError(want))
			},
			Entry("negative count", -1, 100.0, 100.0, 0.99, physics.ErrNegativeCount),
			Entry("zero width", 10, 0.0, 100.0, 0.99, physics.ErrInvalidBounds),
			Entry("negative height", 10, 100.0, -5.0, 0.99, physics.ErrInvalidBounds),
			Entry("zero damping", 10, 100.0, 100.0, 0.0, physics.ErrInvalidDamping),
			Entry("damping above one", 10, 100.0, 100.0, 1.1, physics.ErrInvalidDamping),
		)

		It("accepts an empty population", func() {
			s := newSim(params, 1)
			Expect(s.Initialize(0, 100, 100, 1)).To(Succeed())
			Expect(s.Step(1.0/60, 100, 100)).To(Succeed())
			Expect(s.View().Len()).To(BeZero())
		})
	})

	Describe("Step", func() {
		It("keeps every centre within one radius of the world", func() {
			s := newSim(params, 2)
			Expect(s.Initialize(800, 400, 300, 0.995)).To(Succeed())
			margin := params.MaxRadius

			for frame := 0; frame < 300; frame++ {
				s.ApplyGravity(0, 0.5)
				if frame%50 == 0 {
					Expect(s.ApplyForce(200, 150, 80, 200)).To(Succeed())
				}
				Expect(s.Step(1.0/60, 400, 300)).To(Succeed())

				v := s.View()
				for i := 0; i < v.Len(); i++ {
					p := v.At(i)
					Expect(p.X).To(BeNumerically(">=", -margin))
					Expect(p.X).To(BeNumerically("<=", 400+margin))
					Expect(p.Y).To(BeNumerically(">=", -margin))
					Expect(p.Y).To(BeNumerically("<=", 300+margin))
				}
			}
			Expect(s.View().Valid()).To(BeTrue())
			Expect(s.Steps()).To(Equal(300))
		})

		It("rejects a negative dt and bad bounds", func() {
			s := newSim(params, 1)
			Expect(s.Initialize(10, 100, 100, 1)).To(Succeed())
			Expect(s.Step(-0.1, 100, 100)).To(MatchError(physics.ErrNegativeDt))
			Expect(s.Step(math.NaN(), 100, 100)).To(MatchError(physics.ErrNegativeDt))
			Expect(s.Step(0.1, 0, 100)).To(MatchError(physics.ErrInvalidBounds))
		})

		It("is reproducible for a fixed seed", func() {
			run := func() []float64 {
				s := newSim(params, 99)
				Expect(s.Initialize(400, 300, 300, 0.99)).To(Succeed())
				for frame := 0; frame < 120; frame++ {
					s.ApplyGravity(0, 0.3)
					Expect(s.Step(1.0/60, 300, 300)).To(Succeed())
				}
				return s.Snapshot(nil)
			}
			Expect(run()).To(Equal(run()))
		})

		It("rebounds off a wall at 0.8 of the inbound speed", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 5, Y: 50, VX: -30, Radius: 5},
			}, 100, 100, 1)).To(Succeed())

			Expect(s.Step(0.01, 100, 100)).To(Succeed())
			p := s.View().At(0)
			Expect(p.X).To(Equal(5.0))
			Expect(p.VX).To(BeNumerically("~", 24, 1e-9))
			Expect(s.LastStats().WallHits).To(Equal(1))
		})

		It("sizes its grid from the bounds passed to each step", func() {
			s := newSim(params, 1)
			Expect(s.Initialize(20, 400, 300, 1)).To(Succeed())

			Expect(s.Step(0.01, 400, 300)).To(Succeed())
			cols, rows := s.Grid().Dims()
			Expect([]int{cols, rows}).To(Equal([]int{21, 16}))

			Expect(s.Step(0.01, 200, 100)).To(Succeed())
			cols, rows = s.Grid().Dims()
			Expect([]int{cols, rows}).To(Equal([]int{11, 6}))
			w, h := s.Bounds()
			Expect([]float64{w, h}).To(Equal([]float64{200, 100}))
		})
	})

	Describe("collision resolution", func() {
		It("reverses two equal particles overlapping head-on and separates them", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 50, Y: 50, VX: 10, Radius: 5},
				{X: 58, Y: 50, VX: -10, Radius: 5},
			}, 200, 100, 1)).To(Succeed())

			Expect(s.Step(0, 200, 100)).To(Succeed())

			a, b := s.View().At(0), s.View().At(1)
			Expect(a.VX).To(BeNumerically("<", 0))
			Expect(b.VX).To(BeNumerically(">", 0))
			Expect(a.VX).To(BeNumerically("~", -8, 1e-9))
			Expect(b.VX).To(BeNumerically("~", 8, 1e-9))
			Expect(b.X - a.X).To(BeNumerically(">=", 8+2-1e-9))
			Expect(s.LastStats().Contacts).To(Equal(1))
		})

		It("conserves momentum for an elastic collision of unequal masses", func() {
			params.CollisionRestitution = 1
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 50, Y: 50, VX: 12, VY: 3, Radius: 4},
				{X: 60, Y: 52, VX: -6, VY: -1, Radius: 7},
			}, 200, 200, 1)).To(Succeed())

			px0, py0 := s.View().Momentum()
			ke0 := s.View().KineticEnergy()
			Expect(s.Step(0, 200, 200)).To(Succeed())
			px1, py1 := s.View().Momentum()

			Expect(s.LastStats().Contacts).To(Equal(1))
			Expect(px1).To(BeNumerically("~", px0, 1e-9))
			Expect(py1).To(BeNumerically("~", py0, 1e-9))
			Expect(s.View().KineticEnergy()).To(BeNumerically("~", ke0, 1e-6))
		})

		It("leaves separating pairs untouched", func() {
			s := newSim(params, 1)
			in := []particle.Particle{
				{X: 50, Y: 50, VX: -10, Radius: 5},
				{X: 58, Y: 50, VX: 10, Radius: 5},
			}
			Expect(s.InitializeFrom(in, 200, 100, 1)).To(Succeed())
			Expect(s.Step(0, 200, 100)).To(Succeed())

			Expect(s.View().At(0)).To(Equal(particle.Particle{X: 50, Y: 50, VX: -10, Radius: 5, Mass: 25}))
			Expect(s.View().At(1)).To(Equal(particle.Particle{X: 58, Y: 50, VX: 10, Radius: 5, Mass: 25}))
			Expect(s.LastStats().Contacts).To(BeZero())
		})

		It("skips coincident centres", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 50, Y: 50, VX: 1, Radius: 5},
				{X: 50, Y: 50, VX: -1, Radius: 5},
			}, 100, 100, 1)).To(Succeed())
			Expect(s.Step(0, 100, 100)).To(Succeed())
			Expect(s.LastStats().Contacts).To(BeZero())
			Expect(s.View().At(0).VX).To(Equal(1.0))
		})

		It("finds pairs that straddle a cell boundary", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 38, Y: 39, VX: 5, VY: 5, Radius: 4},
				{X: 43, Y: 42, VX: -5, VY: -5, Radius: 4},
			}, 100, 100, 1)).To(Succeed())
			Expect(s.Step(0, 100, 100)).To(Succeed())
			Expect(s.LastStats().Contacts).To(Equal(1))
		})

		It("resolves a chain in ascending slot order", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 50, Y: 50, VX: 10, Radius: 5},
				{X: 58, Y: 50, Radius: 5},
				{X: 66, Y: 50, VX: -10, Radius: 5},
			}, 200, 100, 1)).To(Succeed())

			Expect(s.Step(0, 200, 100)).To(Succeed())

			// (0,1) first, then (1,2) sees the corrected state of 1.
			want := []float64{
				49, 50, 1, 0, 5, 25,
				57.5, 50, -8.1, 0, 5, 25,
				67.5, 50, 7.1, 0, 5, 25,
			}
			got := s.View().Raw()
			Expect(got).To(HaveLen(len(want)))
			for k := range want {
				Expect(got[k]).To(BeNumerically("~", want[k], 1e-9), "offset %d", k)
			}
			Expect(s.LastStats().Contacts).To(Equal(2))
		})

		It("heavier particles change velocity less", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 50, Y: 50, VX: 10, Radius: 3},
				{X: 60, Y: 50, VX: -10, Radius: 8},
			}, 200, 100, 1)).To(Succeed())
			Expect(s.Step(0, 200, 100)).To(Succeed())

			light, heavy := s.View().At(0), s.View().At(1)
			Expect(math.Abs(light.VX - 10)).To(BeNumerically(">", math.Abs(heavy.VX+10)))
		})
	})

	Describe("forces", func() {
		It("applies gravity as a flat per-call delta", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 10, Y: 10, VX: 1, VY: 2, Radius: 3},
				{X: 50, Y: 50, Radius: 3},
			}, 100, 100, 1)).To(Succeed())

			s.ApplyGravity(0.5, -1)
			s.ApplyGravity(0.5, -1)
			Expect(s.View().At(0).VX).To(Equal(2.0))
			Expect(s.View().At(0).VY).To(Equal(0.0))
			Expect(s.View().At(1).VY).To(Equal(-2.0))

			s.ApplyGravityDt(0, 60, 0.5)
			Expect(s.View().At(1).VY).To(Equal(28.0))
		})

		It("skips a particle at the force centre and halves the impulse at half radius", func() {
			s := newSim(params, 1)
			Expect(s.InitializeFrom([]particle.Particle{
				{X: 100, Y: 100, Radius: 5},
				{X: 125, Y: 100, Radius: 5},
				{X: 100, Y: 200, Radius: 5},
			}, 300, 300, 1)).To(Succeed())

			Expect(s.ApplyForce(100, 100, 50, 100)).To(Succeed())

			centre, mid, far := s.View().At(0), s.View().At(1), s.View().At(2)
			Expect(centre.VX).To(BeZero())
			Expect(centre.VY).To(BeZero())
			Expect(mid.VX).To(BeNumerically("~", 50, 1e-9))
			Expect(mid.VY).To(BeNumerically("~", 0, 1e-9))
			Expect(far.VY).To(BeZero())
		})

		It("rejects a non-positive radius", func() {
			s := newSim(params, 1)
			Expect(s.Initialize(1, 10, 10, 1)).To(Succeed())
			Expect(s.ApplyForce(0, 0, 0, 10)).To(MatchError(physics.ErrInvalidForceRadius))
			Expect(s.ApplyForce(0, 0, -1, 10)).To(MatchError(physics.ErrInvalidForceRadius))
			Expect(s.ApplyForce(0, 0, math.Inf(1), 10)).To(MatchError(physics.ErrInvalidForceRadius))
		})

		DescribeTable("rejects a non-finite centre or strength without touching velocities",
			func(px, py, strength float64) {
				s := newSim(params, 1)
				Expect(s.InitializeFrom([]particle.Particle{{X: 10, Y: 10, Radius: 3}}, 100, 100, 1)).To(Succeed())
				Expect(s.ApplyForce(px, py, 50, strength)).To(MatchError(physics.ErrNonFiniteForce))
				Expect(s.View().At(0).VX).To(BeZero())
				Expect(s.View().Valid()).To(BeTrue())
			},
			Entry("NaN x", math.NaN(), 10.0, 10.0),
			Entry("infinite y", 10.0, math.Inf(-1), 10.0),
			Entry("NaN strength", 12.0, 10.0, math.NaN()),
		)

		It("leaves every particle alone when the raw centre is NaN", func() {
			data := []float64{10, 10, 0, 0, 3, 9, 20, 20, 0, 0, 3, 9}
			Expect(physics.ApplyForce(data, math.NaN(), 10, 50, 10)).To(BeZero())
			Expect(data[2]).To(BeZero())
			Expect(data[8]).To(BeZero())
		})
	})

	It("rejects invalid params", func() {
		params.CellSize = 4
		_, err := physics.New(params, nil)
		Expect(err).To(MatchError(physics.ErrInvalidParams))
	})
})
