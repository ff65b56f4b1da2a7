package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
)

// Experiment wires a config into a ready-to-run simulator.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Setup(logger *log.Logger, metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	opts, err := e.cfg.EngineOptions()
	if err != nil {
		return err
	}
	bodies, err := e.cfg.InitialBodies()
	if err != nil {
		return err
	}
	events, err := e.cfg.SimEvents()
	if err != nil {
		return err
	}

	world := physics.NewWorld()
	for _, b := range bodies {
		world.Add(b)
	}

	e.simulator = sim.New(world, physics.NewEngine(e.cfg.Gravity, opts), e.cfg.ArenaBounds())
	e.simulator.SetLogger(logger)
	e.simulator.Schedule(events...)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

// Factory returns an ensemble factory that reruns the config with each
// seed, using fresh metrics from the registry.
func Factory(cfg *config.Config, r *Registry, logger *log.Logger) sim.Factory {
	return func(seed int64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Seed = seed
		e := New(c)
		if err := e.Setup(logger, r.DefaultMetrics(c.Gravity)); err != nil {
			return nil, err
		}
		return e.Simulator(), nil
	}
}
