package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle identifies a body for as long as it stays in its World.
type Handle uint64

// World is the contiguous body store. Bodies keep creation order, which is
// also the pair enumeration order of the engine.
type World struct {
	bodies  []Body
	handles []Handle
	index   map[Handle]int
	next    Handle
}

func NewWorld() *World {
	return &World{
		bodies:  make([]Body, 0),
		handles: make([]Handle, 0),
		index:   make(map[Handle]int),
		next:    1,
	}
}

// Create adds a body. Overlapping or out-of-arena positions are accepted.
func (w *World) Create(pos, vel mgl64.Vec2, radius, mass float64) (Handle, error) {
	b, err := NewBody(pos, vel, radius, mass)
	if err != nil {
		return 0, err
	}
	return w.Add(b), nil
}

// Add stores an already constructed body.
func (w *World) Add(b Body) Handle {
	h := w.next
	w.next++
	w.index[h] = len(w.bodies)
	w.bodies = append(w.bodies, b)
	w.handles = append(w.handles, h)
	return h
}

// Remove deletes a body and keeps the order of the remaining ones.
func (w *World) Remove(h Handle) error {
	i, ok := w.index[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBody, h)
	}
	w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
	w.handles = append(w.handles[:i], w.handles[i+1:]...)
	delete(w.index, h)
	for j := i; j < len(w.handles); j++ {
		w.index[w.handles[j]] = j
	}
	return nil
}

func (w *World) Body(h Handle) (Body, error) {
	i, ok := w.index[h]
	if !ok {
		return Body{}, fmt.Errorf("%w: %d", ErrUnknownBody, h)
	}
	return w.bodies[i], nil
}

func (w *World) Has(h Handle) bool {
	_, ok := w.index[h]
	return ok
}

// Bodies exposes the store for reading between ticks. Callers must not keep
// the slice across Create/Remove.
func (w *World) Bodies() []Body { return w.bodies }

func (w *World) Handles() []Handle {
	out := make([]Handle, len(w.handles))
	copy(out, w.handles)
	return out
}

func (w *World) Len() int { return len(w.bodies) }

// Snapshot copies the current bodies.
func (w *World) Snapshot() []Body {
	out := make([]Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Clone returns an independent world with the same bodies and handles.
func (w *World) Clone() *World {
	c := &World{
		bodies:  w.Snapshot(),
		handles: w.Handles(),
		index:   make(map[Handle]int, len(w.index)),
		next:    w.next,
	}
	for h, i := range w.index {
		c.index[h] = i
	}
	return c
}

func (w *World) Step(e *Engine, arena Arena, dt float64) {
	e.Step(w.bodies, arena, dt)
}
