package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/balls/internal/geom"
)

// resolvePairs walks every pair (i, j), i < j, in ascending order. A body
// that already took a response this tick is skipped for the rest of the pass.
func (e *Engine) resolvePairs(bodies []Body, dt float64) {
	n := len(bodies)
	if cap(e.touched) < n {
		e.touched = make([]bool, n)
	}
	touched := e.touched[:n]
	for i := range touched {
		touched[i] = false
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if touched[i] {
				break
			}
			if touched[j] {
				continue
			}
			a, b := &bodies[i], &bodies[j]

			// Swept boxes: grow each radius by the distance covered this tick
			// so the predictive test below is never culled.
			reachA := a.Radius + a.Velocity.Len()*dt
			reachB := b.Radius + b.Velocity.Len()*dt
			if !geom.OverlapsAABB(a.Position, reachA, b.Position, reachB) {
				continue
			}

			if e.opts.SeparateOverlaps && geom.Penetration(a.Position, a.Radius, b.Position, b.Radius) > 0 {
				Separate(a, b)
				e.contacts.Separations++
				touched[i], touched[j] = true, true
				continue
			}

			nextA := geom.Extrapolate(a.Position, a.Velocity, dt)
			nextB := geom.Extrapolate(b.Position, b.Velocity, dt)
			if !geom.CirclesOverlap(nextA, a.Radius, nextB, b.Radius) {
				continue
			}

			if e.bounce(a, b) {
				e.contacts.PairBounces++
				touched[i], touched[j] = true, true
			}
		}
	}
}

// Separate moves a and b apart along the line between their centers, each by
// half the penetration depth. Coincident centers split along geom.FallbackNormal.
func Separate(a, b *Body) {
	depth := geom.Penetration(a.Position, a.Radius, b.Position, b.Radius)
	if depth <= 0 {
		return
	}
	n, _ := geom.Normal(a.Position, b.Position)
	half := n.Mul(depth / 2)
	a.Position = a.Position.Sub(half)
	b.Position = b.Position.Add(half)
}

func (e *Engine) bounce(a, b *Body) bool {
	n, ok := geom.Normal(a.Position, b.Position)
	if !ok {
		return false
	}
	if e.opts.DirectionAware && b.Velocity.Sub(a.Velocity).Dot(n) >= 0 {
		return false
	}
	switch e.opts.Collision {
	case EqualMassExchange:
		ExchangeBounce(a, b, n)
	default:
		ElasticBounce(a, b, n)
	}
	return true
}

// ElasticBounce resolves a frictionless collision along the unit normal n
// (pointing from a to b). Tangential velocity is untouched.
func ElasticBounce(a, b *Body, n mgl64.Vec2) {
	projA := geom.Project(a.Velocity, n)
	projB := geom.Project(b.Velocity, n)

	restA := a.Velocity.Sub(projA)
	restB := b.Velocity.Sub(projB)

	a.Velocity = restA.Add(speedAfterCollision(a.Mass, b.Mass, projA, projB))
	b.Velocity = restB.Add(speedAfterCollision(b.Mass, a.Mass, projB, projA))
}

// ExchangeBounce sends a back along -n and b along n, each keeping its speed.
func ExchangeBounce(a, b *Body, n mgl64.Vec2) {
	a.Velocity = n.Mul(-a.Velocity.Len())
	b.Velocity = n.Mul(b.Velocity.Len())
}

// speedAfterCollision is the 1-D elastic result for the body of mass mA.
func speedAfterCollision(mA, mB float64, uA, uB mgl64.Vec2) mgl64.Vec2 {
	total := mA + mB
	return uA.Mul((mA - mB) / total).Add(uB.Mul(2 * mB / total))
}
