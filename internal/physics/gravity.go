package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// applyGravity removes g*dt from the vertical velocity.
func applyGravity(b *Body, g, dt float64) {
	b.Velocity[1] -= g * dt
}

// applyDampedGravity scales the gravity impulse by how much room is left
// before the next wall contact, then resets the slack for this tick.
func applyDampedGravity(b *Body, g, dt float64) {
	b.Velocity[1] -= g * dt * gravityFactor(b.GroundSlack, g, dt)
	b.GroundSlack = math.Inf(1)
}

// gravityFactor is clamp(slack / (g*dt^2), 0, 1).
func gravityFactor(slack, g, dt float64) float64 {
	fall := math.Abs(g) * dt * dt
	if fall == 0 || math.IsNaN(slack) {
		return 1
	}
	return mgl64.Clamp(slack/fall, 0, 1)
}
