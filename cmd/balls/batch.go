package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/balls/internal/analysis"
	"github.com/san-kum/balls/internal/automation"
	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/experiment"
	"github.com/san-kum/balls/internal/optim"
	"github.com/san-kum/balls/internal/sim"
	"github.com/san-kum/balls/internal/viz"
)

var (
	numRuns   int
	seedStart int64
	parallel  int

	saveSteps bool

	trials  int
	perturb float64

	grid       []string
	metricName string
	paramName  string
	sweepLo    float64
	sweepHi    float64
	sweepN     int

	delta float64
)

// batchCommands run many simulations and summarise them.
func batchCommands() []*cobra.Command {
	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run one preset over many seeds concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of runs")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "seed of the first run")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent runs (0 = number of CPUs)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations from yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveSteps, "save", false, "save every step as a run")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "check containment under random perturbations of the initial bodies",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 10, "max position jitter per axis")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search config parameters minimising a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter axis as name=v1,v2,... (repeatable; names: "+strings.Join(optim.Params, ", ")+")")
	tuneCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimise")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "plot a metric against one config parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&paramName, "param", "gravity", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepLo, "lo", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepHi, "hi", 2000, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to record")

	divergeCmd := &cobra.Command{
		Use:   "diverge [preset]",
		Short: "measure how fast two nearly identical starts separate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDiverge,
	}
	addSimFlags(divergeCmd)
	divergeCmd.Flags().Float64Var(&delta, "delta", 1e-3, "initial x offset of the first body")

	return []*cobra.Command{ensembleCmd, scenarioCmd, monteCarloCmd, tuneCmd, sweepCmd, divergeCmd}
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ens := sim.NewEnsemble(experiment.Factory(cfg, experiment.NewRegistry(), logger), numRuns, seedStart)
	if parallel > 0 {
		ens.SetLimit(parallel)
	}

	logger.Info("running ensemble", "preset", name, "runs", numRuns, "seed_start", seedStart)
	start := time.Now()
	results, err := ens.Run(context.Background(), cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tDRIFT\tPAIRS\tWALLS\tCONTAINMENT\tMAX SPEED")
	drifts := make([]float64, len(results))
	for i, r := range results {
		drifts[i] = r.EnergyDrift
		fmt.Fprintf(w, "%d\t%.2e\t%d\t%d\t%.3f\t%.1f\n",
			seedStart+int64(i), r.EnergyDrift, r.Contacts.PairBounces, r.Contacts.WallBounces,
			r.Metrics["containment"], r.Metrics["max_speed"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := meanStd(drifts)
	fmt.Printf("\ndrift %s  mean %.2e  std %.2e\n", viz.SparklineChart(drifts, 30, viz.CurrentTheme), mean, std)
	fmt.Printf("%d runs in %v\n", len(results), elapsed)
	return nil
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(v / float64(len(xs)))
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	if scenario.Name != "" {
		fmt.Printf("scenario: %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}

	results, err := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	st := openStore()
	if saveSteps {
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tSTEPS\tDRIFT\tPAIRS\tRUN")
	for i, r := range results {
		runID := "-"
		if saveSteps {
			id, err := st.Save(r.Name, r.Config, r.Result)
			if err != nil {
				return err
			}
			runID = id
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2e\t%d\t%s\n",
			i+1, r.Name, r.Result.StepsTaken, r.Result.EnergyDrift, r.Result.Contacts.PairBounces, runID)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Bodies) == 0 {
		logger.Warn("preset has no explicit bodies, trials differ only by seed", "preset", name)
	}

	results, err := automation.RunMonteCarlo(context.Background(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	frac := 0.0
	if len(results) > 0 {
		frac = float64(stable) / float64(len(results))
	}
	fmt.Printf("monte carlo: %s, %d trials, jitter ±%g\n\n", name, len(results), perturb)
	fmt.Printf("stable   %s %d/%d\n", viz.ProgressBar(frac, 30, viz.CurrentTheme), stable, len(results))
	fmt.Printf("unstable %d\n", unstable)

	drifts := make([]float64, len(results))
	for i, r := range results {
		drifts[i] = r.EnergyDrift
	}
	mean, std := meanStd(drifts)
	fmt.Printf("energy drift mean %.2e std %.2e\n", mean, std)
	return nil
}

// parseGrid turns name=v1,v2 specs into search axes.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad grid axis %q, want name=v1,v2", spec)
		}
		var values []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid axis %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid axis is required")
	}

	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	logger.Info("grid search", "preset", name, "axes", names, "metric", metricName)
	best, val, trialsRun, err := gs.Search(context.Background(), cfg, experiment.NewRegistry(), metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName))
	for _, t := range trialsRun {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", t.Params[n])
		}
		fmt.Fprintf(w, "%.4e\n", t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, best[k])
	}
	fmt.Printf("\nbest: %s (%s = %.4e)\n", strings.Join(parts, " "), metricName, val)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	name, base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if paramName == "dt" {
		return fmt.Errorf("sweep runs every point with the same dt, use tune --grid dt=... instead")
	}
	registry := experiment.NewRegistry()
	if _, err := registry.GetMetric(metricName, base.Gravity); err != nil {
		return err
	}

	build := func(param float64) (*sim.Simulator, error) {
		c := base.Clone()
		if err := optim.Apply(c, paramName, param); err != nil {
			return nil, err
		}
		exp := experiment.New(c)
		if err := exp.Setup(logger, registry.DefaultMetrics(c.Gravity)); err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	}
	measure := func(r *sim.Result) float64 { return r.Metrics[metricName] }

	points, err := analysis.Sweep(context.Background(), sweepLo, sweepHi, sweepN, build, base.SimConfig(), measure)
	if err != nil {
		return err
	}

	fmt.Printf("sweep: %s, %s over %s in [%g, %g]\n\n", name, metricName, paramName, sweepLo, sweepHi)
	fmt.Println(analysis.SweepToASCII(points, 60, 15))
	fmt.Println()
	for _, p := range points {
		fmt.Printf("  %s=%-10g %s=%.4e\n", paramName, p.Param, metricName, p.Value)
	}
	return nil
}

func runDiverge(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Bodies) == 0 {
		return fmt.Errorf("preset %s has no explicit bodies to perturb", name)
	}

	shifted := cfg.Clone()
	shifted.Bodies[0].X += delta

	a, err := runConfig(cfg)
	if err != nil {
		return err
	}
	b, err := runConfig(shifted)
	if err != nil {
		return err
	}

	sep := analysis.Separation(a.Frames, b.Frames)
	rate := analysis.DivergenceRate(sep, a.Times)

	fmt.Printf("divergence: %s, first body shifted by %g\n\n", name, delta)
	fmt.Println(asciigraph.Plot(sep,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("rms separation"),
	))
	fmt.Printf("\nfinal separation: %.4g\n", sep[len(sep)-1])
	fmt.Printf("divergence rate: %.4f /s\n", rate)
	return nil
}

func runConfig(cfg *config.Config) (*sim.Result, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(logger, nil); err != nil {
		return nil, err
	}
	return exp.Run(context.Background())
}
