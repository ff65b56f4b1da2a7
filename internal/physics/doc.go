// Package physics is the rigid-disk engine: non-rotating circles falling under
// gravity inside a rectangular arena, bouncing off its walls and off each other.
//
// The package is built around a few types:
//
//   - [Body]: one disk (position, velocity, radius, mass, ground slack)
//   - [Arena]: the axis-aligned bounds for the current tick
//   - [World]: contiguous body store with stable [Handle]s
//   - [Options]: the collision / gravity strategies selected up front
//   - [Engine]: runs one fixed-timestep tick over a slice of bodies
//
// # Tick order
//
// Every [Engine.Step] runs gravity, pairwise collision, boundary collision and
// integration, in that order. Gravity reads the ground slack written by the
// previous tick's boundary pass; the boundary pass writes it for the next one.
//
// # Example
//
//	w := physics.NewWorld()
//	h, _ := w.Create(mgl64.Vec2{0, 100}, mgl64.Vec2{}, 10, 2)
//	eng := physics.NewEngine(1000, physics.DefaultOptions())
//	arena := physics.CenteredArena(800, 600)
//	for i := 0; i < 10000; i++ {
//	    w.Step(eng, arena, 1.0/10000)
//	}
//	b, _ := w.Body(h)
//
// # Thread Safety
//
// Nothing here is safe for concurrent use. Bodies must not be read or mutated
// while a step is running.
package physics
