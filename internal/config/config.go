package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
	"github.com/san-kum/balls/internal/spawn"
)

const (
	DefaultDt          = 1.0 / 10000
	DefaultDuration    = 5.0
	DefaultGravity     = 1000.0
	DefaultSampleEvery = 100
	DefaultWidth       = 800.0
	DefaultHeight      = 600.0
	DefaultDriftWarn   = 0.01
)

type Config struct {
	Dt          float64       `yaml:"dt"`
	Duration    float64       `yaml:"duration"`
	Gravity     float64       `yaml:"gravity"`
	SampleEvery int           `yaml:"sample_every"`
	DriftWarn   float64       `yaml:"drift_warn"`
	Seed        int64         `yaml:"seed"`
	Arena       ArenaConfig   `yaml:"arena"`
	Engine      EngineConfig  `yaml:"engine"`
	Spawn       SpawnConfig   `yaml:"spawn"`
	Bodies      []BodyConfig  `yaml:"bodies,omitempty"`
	Events      []EventConfig `yaml:"events,omitempty"`
}

type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type EngineConfig struct {
	Collision          string `yaml:"collision"`
	SeparateOverlaps   bool   `yaml:"separate_overlaps"`
	CorrectPenetration bool   `yaml:"correct_penetration"`
	DirectionAware     bool   `yaml:"direction_aware"`
	GroundDamping      bool   `yaml:"ground_damping"`
}

type SpawnConfig struct {
	Count      int     `yaml:"count"`
	MinSize    float64 `yaml:"min_size"`
	MaxSize    float64 `yaml:"max_size"`
	MaxSpeed   float64 `yaml:"max_speed"`
	DebounceMs int     `yaml:"debounce_ms"`
}

type BodyConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`
}

// EventConfig is either a spawn (Body set) or a removal (Remove set to the
// 1-based creation index of the body).
type EventConfig struct {
	At     float64     `yaml:"at"`
	Body   *BodyConfig `yaml:"spawn,omitempty"`
	Remove int         `yaml:"remove,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Gravity:     DefaultGravity,
		SampleEvery: DefaultSampleEvery,
		DriftWarn:   DefaultDriftWarn,
		Arena:       ArenaConfig{Width: DefaultWidth, Height: DefaultHeight},
		Engine: EngineConfig{
			Collision:          physics.MassWeighted.String(),
			SeparateOverlaps:   true,
			CorrectPenetration: true,
			DirectionAware:     true,
			GroundDamping:      true,
		},
		Spawn: SpawnConfig{
			MinSize:    spawn.DefaultMinSize,
			MaxSize:    spawn.DefaultMaxSize,
			DebounceMs: int(spawn.DefaultDebounce / time.Millisecond),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	cp.Events = make([]EventConfig, len(c.Events))
	for i, ev := range c.Events {
		cp.Events[i] = ev
		if ev.Body != nil {
			b := *ev.Body
			cp.Events[i].Body = &b
		}
	}
	return &cp
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
		DriftWarn:     c.DriftWarn,
	}
}

func (c *Config) ArenaBounds() physics.Arena {
	return physics.CenteredArena(c.Arena.Width, c.Arena.Height)
}

func (c *Config) EngineOptions() (physics.Options, error) {
	mode, err := physics.ParseCollisionMode(c.Engine.Collision)
	if err != nil {
		return physics.Options{}, err
	}
	return physics.Options{
		Collision:          mode,
		SeparateOverlaps:   c.Engine.SeparateOverlaps,
		CorrectPenetration: c.Engine.CorrectPenetration,
		DirectionAware:     c.Engine.DirectionAware,
		GroundDamping:      c.Engine.GroundDamping,
	}, nil
}

func (c *Config) SpawnOptions() spawn.Options {
	return spawn.Options{
		MinSize:  c.Spawn.MinSize,
		MaxSize:  c.Spawn.MaxSize,
		MaxSpeed: c.Spawn.MaxSpeed,
		Debounce: time.Duration(c.Spawn.DebounceMs) * time.Millisecond,
	}
}

func (b BodyConfig) Build() (physics.Body, error) {
	return physics.NewBody(mgl64.Vec2{b.X, b.Y}, mgl64.Vec2{b.VX, b.VY}, b.Radius, b.Mass)
}

// InitialBodies returns the explicit bodies followed by Spawn.Count scattered
// ones drawn from a spawner seeded with Seed.
func (c *Config) InitialBodies() ([]physics.Body, error) {
	out := make([]physics.Body, 0, len(c.Bodies)+c.Spawn.Count)
	for i, bc := range c.Bodies {
		b, err := bc.Build()
		if err != nil {
			return nil, fmt.Errorf("config: body %d: %w", i, err)
		}
		out = append(out, b)
	}
	if c.Spawn.Count > 0 {
		s := spawn.New(c.Seed, c.SpawnOptions())
		out = append(out, s.Scatter(c.Spawn.Count, c.ArenaBounds())...)
	}
	return out, nil
}

func (c *Config) SimEvents() ([]sim.Event, error) {
	out := make([]sim.Event, 0, len(c.Events))
	for i, ec := range c.Events {
		switch {
		case ec.Body != nil && ec.Remove != 0:
			return nil, fmt.Errorf("config: event %d: spawn and remove are exclusive", i)
		case ec.Body != nil:
			b, err := ec.Body.Build()
			if err != nil {
				return nil, fmt.Errorf("config: event %d: %w", i, err)
			}
			out = append(out, sim.Event{At: ec.At, Kind: sim.SpawnEvent, Body: b})
		case ec.Remove > 0:
			out = append(out, sim.Event{At: ec.At, Kind: sim.RemoveEvent, ID: physics.Handle(ec.Remove)})
		default:
			return nil, fmt.Errorf("config: event %d: neither spawn nor remove", i)
		}
	}
	return out, nil
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", sim.ErrInvalidConfig, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", sim.ErrInvalidConfig, c.Duration)
	}
	if !(c.Arena.Width > 0) || !(c.Arena.Height > 0) {
		return fmt.Errorf("%w: arena must have positive size, got %vx%v", sim.ErrInvalidConfig, c.Arena.Width, c.Arena.Height)
	}
	if c.Spawn.Count < 0 {
		return fmt.Errorf("%w: spawn count must not be negative", sim.ErrInvalidConfig)
	}
	if _, err := c.EngineOptions(); err != nil {
		return err
	}
	return nil
}
