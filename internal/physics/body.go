package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/balls/internal/geom"
)

// Body is a single simulated disk.
type Body struct {
	Position mgl64.Vec2
	Velocity mgl64.Vec2
	Radius   float64
	Mass     float64

	// GroundSlack is how far the body may still fall before its next wall
	// contact. Gravity reads and resets it, the boundary pass tightens it.
	GroundSlack float64
}

func NewBody(pos, vel mgl64.Vec2, radius, mass float64) (Body, error) {
	if !(radius > 0) || !(mass > 0) || math.IsInf(radius, 0) || math.IsInf(mass, 0) {
		return Body{}, fmt.Errorf("%w: radius=%v mass=%v", ErrInvalidBody, radius, mass)
	}
	if !geom.Finite(pos) || !geom.Finite(vel) {
		return Body{}, fmt.Errorf("%w: position=%v velocity=%v", ErrInvalidBody, pos, vel)
	}
	return Body{
		Position:    pos,
		Velocity:    vel,
		Radius:      radius,
		Mass:        mass,
		GroundSlack: math.Inf(1),
	}, nil
}

func (b Body) Diameter() float64 { return 2 * b.Radius }

func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
}

func (b Body) Momentum() mgl64.Vec2 { return b.Velocity.Mul(b.Mass) }

func (b Body) IsValid() bool {
	return geom.Finite(b.Position) && geom.Finite(b.Velocity)
}

// Arena is the axis-aligned rectangle [Left, Right] x [Bottom, Top].
type Arena struct {
	Left   float64
	Right  float64
	Bottom float64
	Top    float64
}

// CenteredArena builds a w x h arena centered on the origin, the shape of a
// window with the camera at its middle.
func CenteredArena(w, h float64) Arena {
	return Arena{Left: -w / 2, Right: w / 2, Bottom: -h / 2, Top: h / 2}
}

func (a Arena) Width() float64  { return a.Right - a.Left }
func (a Arena) Height() float64 { return a.Top - a.Bottom }

func (a Arena) Center() mgl64.Vec2 {
	return mgl64.Vec2{(a.Left + a.Right) / 2, (a.Bottom + a.Top) / 2}
}

// Contains reports whether the whole disk lies inside the arena. eps absorbs
// rounding on bodies resting exactly against a wall.
func (a Arena) Contains(b Body, eps float64) bool {
	return b.Position[0]-b.Radius >= a.Left-eps &&
		b.Position[0]+b.Radius <= a.Right+eps &&
		b.Position[1]-b.Radius >= a.Bottom-eps &&
		b.Position[1]+b.Radius <= a.Top+eps
}

// TotalKineticEnergy sums 0.5*m*|v|^2 over bodies.
func TotalKineticEnergy(bodies []Body) float64 {
	e := 0.0
	for i := range bodies {
		e += bodies[i].KineticEnergy()
	}
	return e
}

// TotalMomentum sums m*v over bodies.
func TotalMomentum(bodies []Body) mgl64.Vec2 {
	var p mgl64.Vec2
	for i := range bodies {
		p = p.Add(bodies[i].Momentum())
	}
	return p
}

// TotalEnergy is kinetic plus gravitational potential energy, with the
// potential measured from y = 0.
func TotalEnergy(bodies []Body, g float64) float64 {
	e := 0.0
	for i := range bodies {
		e += bodies[i].KineticEnergy() + bodies[i].Mass*g*bodies[i].Position[1]
	}
	return e
}
