package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/balls/internal/physics"
)

// MomentumDrift is the largest |P - P0| / |P0| seen. Walls and gravity change
// momentum, so it is only meaningful for free-space pair interactions.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []physics.Body, arena physics.Arena, t float64) {
	p := physics.TotalMomentum(bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	if base := m.initial.Len(); base != 0 {
		m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len()/base)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec2{}
	m.maxDrift = 0
	m.samples = 0
}
