package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/experiment"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	path := writeScenario(t, `
name: smoke
steps:
  - preset: drop
    duration: 0.1
  - preset: newton
    duration: 0.1
    collision: equal_mass
    save_as: newton_exchange
  - duration: 0.05
    gravity: 0
    seed: 9
`)
	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if scenario.Name != "smoke" || len(scenario.Steps) != 3 {
		t.Fatalf("LoadScenario() = %+v", scenario)
	}

	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	want := []string{"drop", "newton_exchange", "step3"}
	for i, r := range results {
		if r.Name != want[i] {
			t.Errorf("results[%d].Name = %q, want %q", i, r.Name, want[i])
		}
		if r.Result.StepsTaken == 0 {
			t.Errorf("results[%d] took no steps", i)
		}
	}
	if results[1].Config.Engine.Collision != "equal_mass" {
		t.Errorf("collision override lost: %q", results[1].Config.Engine.Collision)
	}
	if results[2].Config.Gravity != 0 || results[2].Config.Seed != 9 {
		t.Errorf("pointer overrides lost: %+v", results[2].Config)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); !errors.Is(err, ErrEmptyScenario) {
		t.Errorf("err = %v, want ErrEmptyScenario", err)
	}
	if _, err := LoadScenario(writeScenario(t, "steps: {")); err == nil {
		t.Error("expected parse error")
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	scenario := &Scenario{Steps: []ScenarioStep{
		{Preset: "drop", Duration: 0.01},
		{Preset: "missing"},
		{Preset: "drop", Duration: 0.01},
	}}
	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry(), nil)
	if err == nil {
		t.Fatal("expected unknown preset error")
	}
	if len(results) != 1 {
		t.Errorf("got %d results before the failure, want 1", len(results))
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.GetPreset("newton")
	base.Duration = 0.2

	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{
		Base:         base,
		Perturbation: 5,
		NumTrials:    3,
		Seed:         1,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d trials, want 3", len(results))
	}

	stable, unstable := MonteCarloStats(results)
	if stable != 3 || unstable != 0 {
		t.Errorf("stable/unstable = %d/%d, want 3/0", stable, unstable)
	}
	for _, r := range results {
		if r.MaxSpeed < 150 {
			t.Errorf("trial %d max speed = %v, want at least the launch speed", r.TrialID, r.MaxSpeed)
		}
	}

	if len(base.Bodies) != 3 || base.Bodies[0].X != -200 {
		t.Error("monte carlo should not mutate the base config")
	}
}

func TestRunMonteCarloNoBase(t *testing.T) {
	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{NumTrials: 1}, nil); err == nil {
		t.Error("expected error without a base config")
	}
}
