// Package geom holds the stateless 2D helpers shared by the collision code.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FallbackNormal is used when two centers coincide and no direction can be derived.
var FallbackNormal = mgl64.Vec2{1, 0}

// OverlapsAABB reports whether the square boxes (side = diameter) around the two
// circles intersect. Touching boxes do not overlap.
func OverlapsAABB(posA mgl64.Vec2, radiusA float64, posB mgl64.Vec2, radiusB float64) bool {
	return posA[0]-radiusA < posB[0]+radiusB &&
		posA[0]+radiusA > posB[0]-radiusB &&
		posA[1]-radiusA < posB[1]+radiusB &&
		posA[1]+radiusA > posB[1]-radiusB
}

// CirclesOverlap is the exact test: distance between centers <= sum of radii.
func CirclesOverlap(posA mgl64.Vec2, radiusA float64, posB mgl64.Vec2, radiusB float64) bool {
	return posA.Sub(posB).Len() <= radiusA+radiusB
}

// Penetration returns how deep the circles intersect (negative when apart).
func Penetration(posA mgl64.Vec2, radiusA float64, posB mgl64.Vec2, radiusB float64) float64 {
	return radiusA + radiusB - posA.Sub(posB).Len()
}

// EdgeOf returns the 1-D coordinate of the edge farther from the origin.
// Only exact for a body close to the boundary on that side.
func EdgeOf(center, diameter float64) float64 {
	if center > 0 {
		return center + diameter/2
	}
	return center - diameter/2
}

// Extrapolate looks one tick ahead.
func Extrapolate(pos, vel mgl64.Vec2, dt float64) mgl64.Vec2 {
	return pos.Add(vel.Mul(dt))
}

// Extrapolate1D is Extrapolate for a single axis.
func Extrapolate1D(pos, vel, dt float64) float64 {
	return pos + vel*dt
}

// Normal returns the unit vector from a to b. ok is false when the points
// coincide (or the distance is not finite), in which case n is FallbackNormal.
func Normal(a, b mgl64.Vec2) (n mgl64.Vec2, ok bool) {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return FallbackNormal, false
	}
	return d.Mul(1 / l), true
}

// Project returns the component of v along the unit vector n.
func Project(v, n mgl64.Vec2) mgl64.Vec2 {
	return n.Mul(v.Dot(n))
}

// Finite reports whether both components are neither NaN nor Inf.
func Finite(v mgl64.Vec2) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
