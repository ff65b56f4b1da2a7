package metrics

import (
	"github.com/san-kum/balls/internal/physics"
)

// Containment is the fraction of observed ticks on which every body was
// fully inside the arena.
type Containment struct {
	name       string
	eps        float64
	violations int
	samples    int
}

func NewContainment(eps float64) *Containment {
	return &Containment{
		name: "containment",
		eps:  eps,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(bodies []physics.Body, arena physics.Arena, t float64) {
	c.samples++
	for i := range bodies {
		if !arena.Contains(bodies[i], c.eps) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// MaxSpeed is the fastest body speed seen.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (s *MaxSpeed) Name() string { return s.name }

func (s *MaxSpeed) Observe(bodies []physics.Body, arena physics.Arena, t float64) {
	for i := range bodies {
		if v := bodies[i].Velocity.Len(); v > s.max {
			s.max = v
		}
	}
}

func (s *MaxSpeed) Value() float64 { return s.max }
func (s *MaxSpeed) Reset()         { s.max = 0 }
