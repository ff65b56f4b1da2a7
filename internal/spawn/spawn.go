// Package spawn creates random bodies the way the interactive view does on a
// click, and scatters initial populations for batch runs.
package spawn

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/balls/internal/physics"
)

const (
	DefaultMinSize  = 10.0
	DefaultMaxSize  = 200.0
	DefaultDebounce = 100 * time.Millisecond

	// sizes are diameters; mass is size / massDivisor.
	massDivisor = 10.0

	placementAttempts = 50
)

type Options struct {
	MinSize  float64
	MaxSize  float64
	Debounce time.Duration
	// MaxSpeed bounds each velocity component of scattered bodies.
	MaxSpeed float64
}

func DefaultOptions() Options {
	return Options{
		MinSize:  DefaultMinSize,
		MaxSize:  DefaultMaxSize,
		Debounce: DefaultDebounce,
	}
}

// Spawner is not safe for concurrent use.
type Spawner struct {
	opts    Options
	rnd     *rand.Rand
	last    time.Time
	clicked bool
}

func New(seed int64, opts Options) *Spawner {
	if !(opts.MinSize > 0) {
		opts.MinSize = DefaultMinSize
	}
	if opts.MaxSize < opts.MinSize {
		opts.MaxSize = opts.MinSize
	}
	return &Spawner{opts: opts, rnd: rand.New(rand.NewSource(seed))}
}

func (s *Spawner) Options() Options { return s.opts }

// At returns a resting body centred on pos, or false when the call comes
// within the debounce window of the previously accepted one.
func (s *Spawner) At(pos mgl64.Vec2, now time.Time) (physics.Body, bool) {
	if s.clicked && now.Sub(s.last) < s.opts.Debounce {
		return physics.Body{}, false
	}
	s.last = now
	s.clicked = true

	b, err := s.body(pos, mgl64.Vec2{}, s.size(math.Inf(1)))
	if err != nil {
		return physics.Body{}, false
	}
	return b, true
}

// Scatter places n bodies fully inside the arena with random velocities,
// avoiding overlaps where it can find room.
func (s *Spawner) Scatter(n int, arena physics.Arena) []physics.Body {
	limit := math.Min(arena.Width(), arena.Height()) / 2
	out := make([]physics.Body, 0, n)
	if !(limit > 0) {
		return out
	}

	for len(out) < n {
		size := s.size(limit)
		r := size / 2

		var pos mgl64.Vec2
		for attempt := 0; attempt < placementAttempts; attempt++ {
			pos = mgl64.Vec2{
				arena.Left + r + s.rnd.Float64()*(arena.Width()-size),
				arena.Bottom + r + s.rnd.Float64()*(arena.Height()-size),
			}
			if !overlapsAny(out, pos, r) {
				break
			}
		}

		vel := mgl64.Vec2{s.signed(s.opts.MaxSpeed), s.signed(s.opts.MaxSpeed)}
		b, err := s.body(pos, vel, size)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

// size draws a diameter from [MinSize, MaxSize), capped at limit.
func (s *Spawner) size(limit float64) float64 {
	size := s.opts.MinSize + s.rnd.Float64()*(s.opts.MaxSize-s.opts.MinSize)
	return math.Min(size, limit)
}

func (s *Spawner) signed(max float64) float64 {
	if max <= 0 {
		return 0
	}
	return (2*s.rnd.Float64() - 1) * max
}

func (s *Spawner) body(pos, vel mgl64.Vec2, size float64) (physics.Body, error) {
	return physics.NewBody(pos, vel, size/2, size/massDivisor)
}

func overlapsAny(bodies []physics.Body, pos mgl64.Vec2, r float64) bool {
	for i := range bodies {
		if bodies[i].Position.Sub(pos).Len() < bodies[i].Radius+r {
			return true
		}
	}
	return false
}

// Point draws a uniform position inside the arena.
func (s *Spawner) Point(arena physics.Arena) mgl64.Vec2 {
	return mgl64.Vec2{
		arena.Left + s.rnd.Float64()*arena.Width(),
		arena.Bottom + s.rnd.Float64()*arena.Height(),
	}
}
