package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/balls/internal/geom"
)

// Contacts counts what the last Step did.
type Contacts struct {
	PairBounces int
	Separations int
	WallBounces int
	Clamps      int
	Pinned      int
	Repaired    int
}

// Add accumulates o into c.
func (c *Contacts) Add(o Contacts) {
	c.PairBounces += o.PairBounces
	c.Separations += o.Separations
	c.WallBounces += o.WallBounces
	c.Clamps += o.Clamps
	c.Pinned += o.Pinned
	c.Repaired += o.Repaired
}

func (c *Contacts) count(r wallResult) {
	if r.bounced {
		c.WallBounces++
	}
	if r.clamped {
		c.Clamps++
	}
	if r.pinned {
		c.Pinned++
	}
}

// Engine advances bodies by fixed ticks. Gravity and strategies are fixed at
// construction; the arena and dt are supplied per tick.
type Engine struct {
	gravity  float64
	opts     Options
	contacts Contacts
	touched  []bool
}

func NewEngine(gravity float64, opts Options) *Engine {
	return &Engine{gravity: gravity, opts: opts}
}

func (e *Engine) Gravity() float64   { return e.gravity }
func (e *Engine) Options() Options   { return e.opts }
func (e *Engine) Contacts() Contacts { return e.contacts }

// Step runs one tick: gravity, pairwise collision, boundary collision,
// integration. Bodies are mutated in place.
func (e *Engine) Step(bodies []Body, arena Arena, dt float64) {
	e.contacts = Contacts{}

	for i := range bodies {
		if e.opts.GroundDamping {
			applyDampedGravity(&bodies[i], e.gravity, dt)
		} else {
			applyGravity(&bodies[i], e.gravity, dt)
		}
	}

	e.resolvePairs(bodies, dt)
	e.resolveBoundary(bodies, arena, dt)

	for i := range bodies {
		if !Integrate(&bodies[i], dt) {
			e.contacts.Repaired++
		}
	}
}

// Integrate moves the body by velocity*dt. If that would leave the position
// non-finite the body is kept in place with zero velocity and false is returned.
func Integrate(b *Body, dt float64) bool {
	next := b.Position.Add(b.Velocity.Mul(dt))
	if !geom.Finite(next) || !geom.Finite(b.Velocity) {
		b.Velocity = mgl64.Vec2{}
		if !geom.Finite(b.Position) {
			b.Position = mgl64.Vec2{}
		}
		return false
	}
	b.Position = next
	return true
}
