package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/experiment"
	"github.com/san-kum/balls/internal/logging"
	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/spawn"
	"github.com/san-kum/balls/internal/storage"
	"github.com/san-kum/balls/internal/viz"
)

const defaultPreset = "drop"

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	// Simulation overrides, applied only when set on the command line.
	configFile  string
	dt          float64
	duration    float64
	seed        int64
	gravity     float64
	collision   string
	count       int
	sampleEvery int

	themeName  string
	benchSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "balls",
		Short:         "2D bouncing balls physics lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".balls", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", "", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the engine step against body count",
		Args:  cobra.NoArgs,
		RunE:  benchEngine,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 1000, "ticks per measurement")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [variant...]",
		Short: "compare engine variants (" + strings.Join(variantNames(), ", ") + ") on the same preset",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareVariants,
	}
	addSimFlags(compareCmd)

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, benchCmd, compareCmd)
	rootCmd.AddCommand(inspectCommands()...)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Int64Var(&seed, "seed", 0, "random seed for scattered bodies")
	f.Float64Var(&gravity, "gravity", config.DefaultGravity, "gravitational acceleration")
	f.StringVar(&collision, "collision", physics.MassWeighted.String(), "collision response (mass_weighted, equal_mass)")
	f.IntVar(&count, "count", 0, "number of randomly scattered bodies")
	f.IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "ticks between saved frames")
}

// resolveConfig loads the config file or the named preset, then applies the
// flags the user set.
func resolveConfig(cmd *cobra.Command, args []string) (string, *config.Config, error) {
	name := defaultPreset
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if len(args) == 0 {
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		}
	} else {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return "", nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("collision") {
		cfg.Engine.Collision = collision
	}
	if flags.Changed("count") {
		cfg.Spawn.Count = count
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}

	return name, cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	st.SetLogger(logger)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(logger, registry.DefaultMetrics(cfg.Gravity)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running simulation", "preset", name, "bodies", exp.Simulator().World().Len(), "duration", cfg.Duration, "dt", cfg.Dt)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	c := result.Contacts
	fmt.Printf("contacts: %d pair bounces, %d separations, %d wall bounces, %d clamps\n",
		c.PairBounces, c.Separations, c.WallBounces, c.Clamps)

	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	if len(result.Errors) > 0 {
		fmt.Printf("\n%d step errors, first: %v\n", len(result.Errors), result.Errors[0])
	}
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if themeName != "" {
		viz.SetTheme(themeName)
	}

	m, err := viz.NewModel(name, cfg)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tSCATTER\tEVENTS\tGRAVITY\tCOLLISION\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.0f\t%s\t%.1fs\n",
			name, len(p.Bodies), p.Spawn.Count, len(p.Events), p.Gravity, p.Engine.Collision, p.Duration)
	}
	return w.Flush()
}

func benchEngine(cmd *cobra.Command, args []string) error {
	counts := []int{10, 50, 100, 200, 400}
	arena := physics.CenteredArena(config.DefaultWidth*4, config.DefaultHeight*4)
	opts := spawn.DefaultOptions()
	opts.MaxSpeed = 200

	fmt.Printf("benchmarking engine step (dt=%g, %d ticks)\n\n", config.DefaultDt, benchSteps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tPAIRS\tTIME\tSTEPS/SEC\tPAIR BOUNCES")
	for _, n := range counts {
		bodies := spawn.New(42, opts).Scatter(n, arena)
		world := physics.NewWorld()
		for _, b := range bodies {
			world.Add(b)
		}
		engine := physics.NewEngine(config.DefaultGravity, physics.DefaultOptions())

		var contacts physics.Contacts
		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			world.Step(engine, arena, config.DefaultDt)
			contacts.Add(engine.Contacts())
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%d\n",
			n, n*(n-1)/2, elapsed, float64(benchSteps)/elapsed.Seconds(), contacts.PairBounces)
	}
	return w.Flush()
}

// variants are the named engine strategy sets compare can run.
var variants = map[string]func(e *config.EngineConfig){
	"mass_weighted": func(e *config.EngineConfig) { e.Collision = physics.MassWeighted.String() },
	"equal_mass":    func(e *config.EngineConfig) { e.Collision = physics.EqualMassExchange.String() },
	"basic": func(e *config.EngineConfig) {
		*e = config.EngineConfig{Collision: physics.MassWeighted.String()}
	},
	"no_damping": func(e *config.EngineConfig) { e.GroundDamping = false },
}

func variantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func compareVariants(cmd *cobra.Command, args []string) error {
	name, base, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	names := args[1:]
	if len(names) == 0 {
		names = variantNames()
	}

	fmt.Printf("comparing engine variants for %s (dt=%g, duration=%.1fs)\n\n", name, base.Dt, base.Duration)
	fmt.Printf("%-14s  %-12s  %-8s  %-8s  %-11s  %-10s\n", "variant", "energy_drift", "pairs", "walls", "containment", "time_ms")
	fmt.Println(strings.Repeat("-", 72))

	registry := experiment.NewRegistry()
	for _, v := range names {
		apply, ok := variants[v]
		if !ok {
			fmt.Printf("%-14s  error: unknown variant (available: %v)\n", v, variantNames())
			continue
		}
		cfg := base.Clone()
		apply(&cfg.Engine)

		exp := experiment.New(cfg)
		if err := exp.Setup(logger, registry.DefaultMetrics(cfg.Gravity)); err != nil {
			fmt.Printf("%-14s  error: %v\n", v, err)
			continue
		}
		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-14s  error: %v\n", v, err)
			continue
		}

		fmt.Printf("%-14s  %12.2e  %8d  %8d  %11.3f  %10.2f\n", v, result.EnergyDrift,
			result.Contacts.PairBounces, result.Contacts.WallBounces,
			result.Metrics["containment"], float64(elapsed.Microseconds())/1000)
	}
	return nil
}
