package sim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/balls/internal/physics"
)

type Simulator struct {
	world     *physics.World
	engine    *physics.Engine
	arena     physics.Arena
	events    []Event
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(world *physics.World, engine *physics.Engine, arena physics.Arena) *Simulator {
	return &Simulator{
		world:     world,
		engine:    engine,
		arena:     arena,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.New(io.Discard),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Schedule(evs ...Event)  { s.events = append(s.events, evs...) }

func (s *Simulator) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetArena changes the walls for every following tick. Bodies left outside
// are pulled back in by the boundary pass.
func (s *Simulator) SetArena(a physics.Arena) { s.arena = a }

func (s *Simulator) World() *physics.World   { return s.world }
func (s *Simulator) Engine() *physics.Engine { return s.engine }
func (s *Simulator) Arena() physics.Arena    { return s.arena }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}
	result := &Result{
		Frames:  make([]Frame, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	queue := newEventQueue(s.events)
	g := s.engine.Gravity()
	t := 0.0

	if err := s.applyEvents(queue, 0, t); err != nil {
		return result, err
	}
	result.Frames = append(result.Frames, s.world.Snapshot())
	result.Times = append(result.Times, t)
	initialEnergy := physics.TotalEnergy(s.world.Bodies(), g)

	s.logger.Debug("run started", "bodies", s.world.Len(), "steps", steps, "dt", cfg.Dt)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if i > 0 {
			if err := s.applyEvents(queue, i, t); err != nil {
				return result, err
			}
		}

		bodies := s.world.Bodies()
		for _, m := range s.metrics {
			m.Observe(bodies, s.arena, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(bodies, s.arena, t)
		}

		s.world.Step(s.engine, s.arena, cfg.Dt)
		c := s.engine.Contacts()
		result.Contacts.Add(c)
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++

		if c.Repaired > 0 {
			result.Errors = append(result.Errors, SimError{
				Time: t, Step: i, Message: fmt.Sprintf("repaired %d non-finite bodies", c.Repaired),
			})
		}
		if cfg.ValidateState && !allValid(s.world.Bodies()) {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: "invalid state", Err: ErrInvalidState})
			break
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.Frames = append(result.Frames, s.world.Snapshot())
			result.Times = append(result.Times, t)
		}
	}

	finalEnergy := physics.TotalEnergy(s.world.Bodies(), g)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	if cfg.DriftWarn > 0 && result.EnergyDrift > cfg.DriftWarn {
		s.logger.Warn("energy drift above threshold", "drift", result.EnergyDrift, "threshold", cfg.DriftWarn)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "steps", result.StepsTaken, "frames", len(result.Frames),
		"pair_bounces", result.Contacts.PairBounces, "wall_bounces", result.Contacts.WallBounces)

	return result, nil
}

// RunWithCallback steps until the duration elapses, the context ends or fn
// returns false. A zero Duration runs without limit. fn sees the live body
// slice and must not retain it.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, fn func(bodies []physics.Body, t float64) bool) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative, got %f", ErrInvalidConfig, cfg.Duration)
	}

	queue := newEventQueue(s.events)
	for i := 0; cfg.Duration == 0 || float64(i)*cfg.Dt < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if err := s.applyEvents(queue, i, t); err != nil {
			return err
		}
		if !fn(s.world.Bodies(), t) {
			return nil
		}

		s.world.Step(s.engine, s.arena, cfg.Dt)

		if cfg.ValidateState && !allValid(s.world.Bodies()) {
			return SimError{Time: t + cfg.Dt, Step: i, Message: "invalid state", Err: ErrInvalidState}
		}
	}
	return nil
}

func (s *Simulator) applyEvents(q *eventQueue, step int, t float64) error {
	for _, ev := range q.due(t) {
		if err := apply(s.world, ev); err != nil {
			return SimError{Time: t, Step: step, Message: ev.Kind.String() + " event", Err: err}
		}
		s.logger.Debug("event applied", "kind", ev.Kind, "t", t, "bodies", s.world.Len())
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

func allValid(bodies []physics.Body) bool {
	for i := range bodies {
		if !bodies[i].IsValid() {
			return false
		}
	}
	return true
}
