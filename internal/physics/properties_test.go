package physics_test

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/balls/internal/physics"
)

func closedSystem(seed int64) *physics.World {
	rnd := rand.New(rand.NewSource(seed))
	w := physics.NewWorld()
	for i := 0; i < 8; i++ {
		pos := mgl64.Vec2{-150 + 100*float64(i%4), -50 + 100*float64(i/4)}
		vel := mgl64.Vec2{rnd.Float64()*200 - 100, rnd.Float64()*200 - 100}
		radius := 8 + rnd.Float64()*12
		_, err := w.Create(pos, vel, radius, radius/5)
		Expect(err).NotTo(HaveOccurred())
	}
	return w
}

var _ = Describe("Engine", func() {
	var arena physics.Arena

	BeforeEach(func() {
		arena = physics.CenteredArena(400, 400)
	})

	Describe("two-body collisions", func() {
		It("conserves momentum with unequal masses", func() {
			w := physics.NewWorld()
			_, err := w.Create(mgl64.Vec2{-30, 0}, mgl64.Vec2{20, 5}, 10, 3)
			Expect(err).NotTo(HaveOccurred())
			_, err = w.Create(mgl64.Vec2{30, 3}, mgl64.Vec2{-15, 0}, 10, 1)
			Expect(err).NotTo(HaveOccurred())

			eng := physics.NewEngine(0, physics.DefaultOptions())
			big := physics.CenteredArena(10000, 10000)
			before := physics.TotalMomentum(w.Bodies())

			bounces := 0
			for i := 0; i < 300; i++ {
				w.Step(eng, big, 0.01)
				bounces += eng.Contacts().PairBounces
				after := physics.TotalMomentum(w.Bodies())
				Expect(after.Sub(before).Len()).To(BeNumerically("<", 1e-4*before.Len()))
			}
			Expect(bounces).To(BeNumerically(">=", 1))
		})

		It("fully exchanges velocities in an equal-mass head-on collision", func() {
			w := physics.NewWorld()
			a, _ := w.Create(mgl64.Vec2{-20, 0}, mgl64.Vec2{10, 0}, 5, 1)
			b, _ := w.Create(mgl64.Vec2{20, 0}, mgl64.Vec2{-10, 0}, 5, 1)

			eng := physics.NewEngine(0, physics.DefaultOptions())
			for i := 0; i < 30; i++ {
				w.Step(eng, physics.CenteredArena(2000, 2000), 0.1)
			}

			ba, _ := w.Body(a)
			bb, _ := w.Body(b)
			Expect(ba.Velocity[0]).To(BeNumerically("~", -10, 1e-9))
			Expect(bb.Velocity[0]).To(BeNumerically("~", 10, 1e-9))
			Expect(ba.Velocity[1]).To(BeNumerically("~", 0, 1e-9))
			Expect(bb.Velocity[1]).To(BeNumerically("~", 0, 1e-9))
		})

		It("swaps speeds along the normal in equal-mass exchange mode", func() {
			opts := physics.DefaultOptions()
			opts.Collision = physics.EqualMassExchange
			bodies := []physics.Body{
				{Position: mgl64.Vec2{-10, 0}, Velocity: mgl64.Vec2{10, 0}, Radius: 10, Mass: 1, GroundSlack: math.Inf(1)},
				{Position: mgl64.Vec2{10, 0}, Velocity: mgl64.Vec2{-4, 0}, Radius: 10, Mass: 1, GroundSlack: math.Inf(1)},
			}
			physics.NewEngine(0, opts).Step(bodies, physics.CenteredArena(2000, 2000), 0.1)

			Expect(bodies[0].Velocity[0]).To(BeNumerically("~", -10, 1e-9))
			Expect(bodies[1].Velocity[0]).To(BeNumerically("~", 4, 1e-9))
		})
	})

	Describe("energy", func() {
		It("does not grow over a long closed run", func() {
			w := closedSystem(7)
			eng := physics.NewEngine(0, physics.DefaultOptions())
			initial := physics.TotalKineticEnergy(w.Bodies())
			Expect(initial).To(BeNumerically(">", 0))

			for i := 0; i < 5000; i++ {
				w.Step(eng, arena, 0.01)
			}

			final := physics.TotalKineticEnergy(w.Bodies())
			Expect(math.Abs(final-initial) / initial).To(BeNumerically("<", 1e-6))
		})
	})

	Describe("overlap separation", func() {
		It("converges to touching and stays there", func() {
			w := physics.NewWorld()
			a, _ := w.Create(mgl64.Vec2{0, 0}, mgl64.Vec2{}, 10, 1)
			b, _ := w.Create(mgl64.Vec2{15, 0}, mgl64.Vec2{}, 10, 4)
			eng := physics.NewEngine(0, physics.DefaultOptions())

			for i := 0; i < 10; i++ {
				w.Step(eng, arena, 0.01)
				ba, _ := w.Body(a)
				bb, _ := w.Body(b)
				Expect(ba.Position.Sub(bb.Position).Len()).To(BeNumerically("~", 20, 1e-9))
			}
		})
	})

	Describe("boundary", func() {
		It("reflects and clamps a body running into the right wall", func() {
			arena = physics.CenteredArena(200, 200)
			bodies := []physics.Body{
				{Position: mgl64.Vec2{95, 0}, Velocity: mgl64.Vec2{50, 0}, Radius: 10, Mass: 1, GroundSlack: math.Inf(1)},
			}
			physics.NewEngine(0, physics.DefaultOptions()).Step(bodies, arena, 0.1)

			Expect(bodies[0].Velocity[0]).To(BeNumerically("<", 0))
			Expect(bodies[0].Position[0]).To(BeNumerically("<=", 90))
		})

		It("keeps falling bodies inside the arena", func() {
			w := physics.NewWorld()
			for i := 0; i < 6; i++ {
				r := 5 + float64(i)*3
				_, err := w.Create(mgl64.Vec2{-120 + float64(i)*45, 100 - float64(i)*20}, mgl64.Vec2{float64(i*13 - 30), 0}, r, r/10)
				Expect(err).NotTo(HaveOccurred())
			}
			eng := physics.NewEngine(1000, physics.DefaultOptions())

			for i := 0; i < 3000; i++ {
				w.Step(eng, arena, 0.001)
				for _, b := range w.Bodies() {
					Expect(b.IsValid()).To(BeTrue())
					Expect(arena.Contains(b, 1e-6)).To(BeTrue(), "body escaped at tick %d: %+v", i, b)
				}
			}
		})

		It("follows a resized arena without a reset", func() {
			w := physics.NewWorld()
			h, _ := w.Create(mgl64.Vec2{150, 0}, mgl64.Vec2{}, 10, 1)
			eng := physics.NewEngine(0, physics.DefaultOptions())

			w.Step(eng, physics.CenteredArena(400, 400), 0.01)
			w.Step(eng, physics.CenteredArena(200, 200), 0.01)

			b, _ := w.Body(h)
			Expect(b.Position[0]).To(BeNumerically("<=", 90))
		})
	})

	Describe("determinism", func() {
		It("produces identical output for identical input", func() {
			run := func() []physics.Body {
				w := closedSystem(42)
				eng := physics.NewEngine(1000, physics.DefaultOptions())
				for i := 0; i < 2000; i++ {
					w.Step(eng, arena, 0.001)
				}
				return w.Snapshot()
			}

			Expect(run()).To(Equal(run()))
		})
	})
})
