package physics

import (
	"math"

	"github.com/san-kum/balls/internal/geom"
)

// wallResult is what happened to one body on one axis.
type wallResult struct {
	bounced bool
	clamped bool
	pinned  bool
}

// resolveAxis handles one axis of one body against [lo, hi]. pos and vel are
// the body's coordinate and velocity on that axis.
//
// edgeOf is taken relative to the arena midpoint so that the far-edge choice
// means "the edge nearer the closest wall" for any arena placement.
func resolveAxis(pos, vel *float64, radius, lo, hi, dt float64, opts Options) wallResult {
	var res wallResult
	diameter := 2 * radius
	mid := (lo + hi) / 2

	// A disk that cannot fit is held at the middle; reflecting it would flip
	// its velocity every tick.
	if diameter >= hi-lo {
		*pos = mid
		*vel = 0
		res.pinned = true
		return res
	}

	next := geom.Extrapolate1D(*pos, *vel, dt)
	nextEdge := geom.EdgeOf(next-mid, diameter) + mid

	switch {
	case nextEdge > hi && (!opts.DirectionAware || *vel > 0):
		*vel = -*vel
		res.bounced = true
	case nextEdge < lo && (!opts.DirectionAware || *vel < 0):
		*vel = -*vel
		res.bounced = true
	}

	if opts.CorrectPenetration {
		edge := geom.EdgeOf(*pos-mid, diameter) + mid
		switch {
		case edge > hi:
			*pos = hi - radius
			res.clamped = true
		case edge < lo:
			*pos = lo + radius
			res.clamped = true
		}
	}
	return res
}

// wallGap is the distance from the body's current edge to the nearer of the
// two bounds on an axis.
func wallGap(pos, radius, lo, hi float64) float64 {
	mid := (lo + hi) / 2
	edge := geom.EdgeOf(pos-mid, 2*radius) + mid
	if pos > mid {
		return math.Abs(hi - edge)
	}
	return math.Abs(edge - lo)
}

// resolveBoundary bounces every body off the arena walls. Vertical bounces
// tighten GroundSlack for the next tick's gravity.
func (e *Engine) resolveBoundary(bodies []Body, arena Arena, dt float64) {
	for i := range bodies {
		b := &bodies[i]

		rx := resolveAxis(&b.Position[0], &b.Velocity[0], b.Radius, arena.Left, arena.Right, dt, e.opts)
		ry := resolveAxis(&b.Position[1], &b.Velocity[1], b.Radius, arena.Bottom, arena.Top, dt, e.opts)

		e.contacts.count(rx)
		e.contacts.count(ry)

		if ry.bounced {
			gap := wallGap(b.Position[1], b.Radius, arena.Bottom, arena.Top)
			b.GroundSlack = math.Min(b.GroundSlack, gap)
		}
	}
}
