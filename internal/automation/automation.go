package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/experiment"
	"github.com/san-kum/balls/internal/metrics"
	"github.com/san-kum/balls/internal/sim"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a config file and overrides the
// fields that are set.
type ScenarioStep struct {
	Preset    string   `yaml:"preset"`
	Config    string   `yaml:"config"`
	Duration  float64  `yaml:"duration"`
	Dt        float64  `yaml:"dt"`
	Gravity   *float64 `yaml:"gravity"`
	Collision string   `yaml:"collision"`
	Seed      *int64   `yaml:"seed"`
	SaveAs    string   `yaml:"save_as"`
}

// StepResult is one finished scenario step.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyScenario, path)
	}
	return &scenario, nil
}

// Build resolves the step into a full config.
func (s ScenarioStep) Build() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", s.Preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Gravity != nil {
		cfg.Gravity = *s.Gravity
	}
	if s.Collision != "" {
		cfg.Engine.Collision = s.Collision
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	return cfg, cfg.Validate()
}

// name is what the step is saved and reported as.
func (s ScenarioStep) name(i int) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	default:
		return fmt.Sprintf("step%d", i+1)
	}
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.name(i)
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.Build()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(logger, registry.DefaultMetrics(cfg.Gravity)); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

// MonteCarloConfig jitters every explicit body of Base by up to Perturbation
// on each axis, per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult is one perturbed run. Stable means every body stayed
// finite and inside the arena at every sample.
type MonteCarloResult struct {
	TrialID     int
	Stable      bool
	Containment float64
	EnergyDrift float64
	MaxSpeed    float64
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Base == nil {
		return nil, fmt.Errorf("%w: monte carlo needs a base config", sim.ErrInvalidConfig)
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	rng := rand.New(rand.NewSource(cfg.Seed))

	for trial := 0; trial < cfg.NumTrials; trial++ {
		c := cfg.Base.Clone()
		c.Seed = cfg.Base.Seed + int64(trial)
		for i := range c.Bodies {
			c.Bodies[i].X += (rng.Float64()*2 - 1) * cfg.Perturbation
			c.Bodies[i].Y += (rng.Float64()*2 - 1) * cfg.Perturbation
		}

		containment := metrics.NewContainment(1e-6)
		maxSpeed := metrics.NewMaxSpeed()
		exp := experiment.New(c)
		if err := exp.Setup(logger, []sim.Metric{containment, maxSpeed}); err != nil {
			return results, fmt.Errorf("trial %d setup: %w", trial, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("trial %d run: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Stable:      len(result.Errors) == 0 && containment.Value() == 1,
			Containment: containment.Value(),
			EnergyDrift: result.EnergyDrift,
			MaxSpeed:    maxSpeed.Value(),
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
