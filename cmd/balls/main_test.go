package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"dt=1e-3,5e-4", " gravity = 0, 1000"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "dt" || names[1] != "gravity" {
		t.Errorf("names = %v", names)
	}
	if len(ranges[0]) != 2 || ranges[0][1] != 5e-4 || ranges[1][1] != 1000 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"dt", "=1", "dt=", "dt=fast"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("parseGrid(%q) should fail", bad)
		}
	}
}

func newSimCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	return cmd
}

func TestResolveConfig(t *testing.T) {
	cmd := newSimCmd()
	if err := cmd.ParseFlags([]string{"--gravity", "0", "--count", "4"}); err != nil {
		t.Fatal(err)
	}

	name, cfg, err := resolveConfig(cmd, []string{"newton"})
	if err != nil {
		t.Fatal(err)
	}
	if name != "newton" || cfg.Gravity != 0 || cfg.Spawn.Count != 4 {
		t.Errorf("resolveConfig = %s %+v", name, cfg)
	}
	if cfg.Duration != 4 {
		t.Errorf("unset --time should keep the preset duration, got %v", cfg.Duration)
	}

	if _, _, err := resolveConfig(newSimCmd(), []string{"nope"}); err == nil {
		t.Error("unknown preset should fail")
	}

	cmd = newSimCmd()
	cmd.ParseFlags([]string{"--dt", "0"})
	if _, _, err := resolveConfig(cmd, nil); err == nil {
		t.Error("zero dt should fail validation")
	}
}

func TestVariants(t *testing.T) {
	for _, name := range variantNames() {
		cfg := newSimCmd()
		_, base, err := resolveConfig(cfg, []string{"heavy"})
		if err != nil {
			t.Fatal(err)
		}
		variants[name](&base.Engine)
		if err := base.Validate(); err != nil {
			t.Errorf("variant %s: %v", name, err)
		}
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{1, 3})
	if mean != 2 || std != 1 {
		t.Errorf("meanStd = %v, %v, want 2, 1", mean, std)
	}
	if m, s := meanStd(nil); m != 0 || s != 0 {
		t.Errorf("meanStd(nil) = %v, %v", m, s)
	}
}
