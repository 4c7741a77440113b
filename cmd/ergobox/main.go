package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ergobox/internal/analysis"
	"github.com/san-kum/ergobox/internal/automation"
	"github.com/san-kum/ergobox/internal/config"
	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/experiment"
	"github.com/san-kum/ergobox/internal/export"
	"github.com/san-kum/ergobox/internal/metrics"
	"github.com/san-kum/ergobox/internal/optim"
	"github.com/san-kum/ergobox/internal/sim"
	"github.com/san-kum/ergobox/internal/storage"
	"github.com/san-kum/ergobox/internal/viz"
)

var (
	dataDir string
	verbose bool
	// Run parameters
	boxL        float64
	dt          float64
	duration    float64
	seed        int64
	particles   int
	mass        float64
	speed       float64
	epsilon     float64
	maxSubSteps int
	workers     int
	recordEvery int
	onError     string
	grid        int
	// Config file
	configFile string
	// Preset name
	preset string
	// Live view
	frameRate     int
	stepsPerFrame int
	projection    string
	// Plot
	particleIdx int
	// Export
	svgOutput string
	svgSize   int
	// Sweep
	sweepParams []string
	sweepMetric string
	// Monte Carlo
	trials int
)

// main registers the ergobox commands and flags and executes the root
// command, exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ergobox",
		Short:         "free particles in a reflecting box",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ergobox", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 10, "steps advanced per frame")
	liveCmd.Flags().StringVar(&projection, "projection", "xy", "projection (xy, xz, yz)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particleIdx, "particle", 0, "particle to plot")
	plotCmd.Flags().StringVar(&projection, "projection", "xy", "projection (xy, xz, yz)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(cmd.OutOrStdout(), args[0])
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a stored trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&particleIdx, "particle", 0, "particle to draw")
	exportSVGCmd.Flags().StringVar(&projection, "projection", "xy", "projection (xy, xz, yz)")
	exportSVGCmd.Flags().StringVarP(&svgOutput, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a parameter grid and report a metric per point",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "swept parameter name=v1,v2,... (dt, time, box, speed, mass, epsilon)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "occupancy_chi2", "metric to minimize")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "repeat a run over consecutive seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 10, "number of seeded trials")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models := config.ListModels()
			if len(args) > 0 {
				models = args[:1]
			}
			for _, model := range models {
				presets := config.ListPresets(model)
				if len(presets) == 0 {
					fmt.Printf("no presets for model: %s\n", model)
					continue
				}
				fmt.Printf("presets for %s:\n", model)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the wall resolver",
		RunE:  benchResolver,
	}
	addRunFlags(benchCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, presetsCmd, sweepCmd, scenarioCmd, monteCarloCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().Float64Var(&boxL, "box", def.BoxL, "box edge length L")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", def.Duration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVarP(&particles, "particles", "n", def.Particles, "number of particles")
	cmd.Flags().Float64Var(&mass, "mass", def.Mass, "particle mass")
	cmd.Flags().Float64Var(&speed, "speed", def.Speed, "initial particle speed")
	cmd.Flags().Float64Var(&epsilon, "epsilon", def.Epsilon, "wall tie tolerance as a fraction of the box edge")
	cmd.Flags().IntVar(&maxSubSteps, "max-sub-steps", def.MaxSubSteps, "consecutive zero-length sub-steps before a stall")
	cmd.Flags().IntVar(&workers, "workers", def.Workers, "worker goroutines (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&recordEvery, "record-every", def.RecordEvery, "record positions every n steps (0 = off)")
	cmd.Flags().StringVar(&onError, "on-error", def.OnError, "particle error policy (abort, skip)")
	cmd.Flags().IntVar(&grid, "grid", def.Grid, "occupancy grid cells per axis")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml, ini or gcfg)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Model = args[0]
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("box") {
		cfg.BoxL = boxL
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if flags.Changed("max-sub-steps") {
		cfg.MaxSubSteps = maxSubSteps
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Changed("on-error") {
		cfg.OnError = onError
	}
	if flags.Changed("grid") {
		cfg.Grid = grid
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	box, err := cfg.Box()
	if err != nil {
		return err
	}
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger := newLogger()
	registry := experiment.NewRegistry()
	occupancy := metrics.NewOccupancy(box, cfg.Grid)
	ms := []sim.Metric{occupancy, metrics.NewSpeedDrift(), metrics.NewPressure(box), metrics.NewTimeAverage(box)}

	exp := experiment.New(cfg.ExperimentConfig())
	if err := exp.Setup(registry, box, ms, logger); err != nil {
		return err
	}
	idealPressure := metrics.IdealGasPressure(box, exp.Particles())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s simulation (%d particles, %d steps)...\n", cfg.Model, cfg.Particles, simCfg.Steps())
	start := time.Now()

	result, err := exp.Run(ctx, simCfg)
	var simErr *dynamo.SimulationError
	switch {
	case errors.As(err, &simErr), errors.Is(err, context.Canceled):
		logger.Warn("run stopped early, saving partial result", "err", err)
	case err != nil:
		return err
	}

	elapsed := time.Since(start)

	runID, saveErr := st.Save(storage.RunMetadata{
		Model:     cfg.Model,
		Seed:      cfg.Seed,
		BoxL:      cfg.BoxL,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Particles: cfg.Particles,
		Mass:      cfg.Mass,
		Speed:     cfg.Speed,
	}, result)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  sub-steps: %d  reflections: %d\n", result.StepsTaken, result.SubSteps, result.Reflections)
	if len(result.Skipped) > 0 {
		fmt.Printf("skipped particles: %v\n", result.Skipped)
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	fmt.Printf("  coverage: %.4f\n", occupancy.Coverage())
	fmt.Printf("  ideal_gas_pressure: %.6g\n", idealPressure)

	fmt.Println()
	fmt.Println(viz.PlotProfile(occupancy.Profile(dynamo.AxisX), "x occupancy profile"))

	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	box, err := cfg.Box()
	if err != nil {
		return err
	}
	proj, ok := viz.ParseProjection(projection)
	if !ok {
		return fmt.Errorf("unknown projection: %s", projection)
	}

	ps, err := experiment.NewRegistry().Build(cfg.Model, box, cfg.ExperimentConfig())
	if err != nil {
		return err
	}

	m := viz.NewModel(box, ps, viz.Options{
		Dt:            cfg.Dt,
		StepsPerFrame: stepsPerFrame,
		FrameRate:     frameRate,
		Projection:    proj,
		Grid:          cfg.Grid,
		Title:         cfg.Model,
	})
	return viz.Run(m)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tN\tBOX\tDURATION\tDT\tSTEPS\tREFLECTIONS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%.2fs\t%gs\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.BoxL,
			run.Duration,
			run.Dt,
			run.Steps,
			run.Reflections,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	positions, times, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(positions) == 0 {
		return fmt.Errorf("no trajectory recorded (run with --record-every > 0)")
	}
	if particleIdx < 0 || 3*particleIdx+2 >= len(positions[0]) {
		return fmt.Errorf("particle %d not in run (%d particles)", particleIdx, len(positions[0])/3)
	}
	proj, ok := viz.ParseProjection(projection)
	if !ok {
		return fmt.Errorf("unknown projection: %s", projection)
	}

	box, err := dynamo.NewBox(meta.BoxL)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d (t = %g .. %g)\n\n", len(positions), times[0], times[len(times)-1])

	sampleDt := 0.0
	if len(times) > 1 {
		sampleDt = times[1] - times[0]
	}
	for axis := dynamo.AxisX; axis <= dynamo.AxisZ; axis++ {
		data := viz.Column(positions, 3*particleIdx+int(axis))
		fmt.Println(viz.PlotSeries(data, fmt.Sprintf("%s%d vs time", axis, particleIdx)))
		if f := analysis.DominantFrequency(data, sampleDt); f > 0 {
			fmt.Printf("bounce frequency: %.4g (|v%s| = %.4g)\n", f, axis, 2*meta.BoxL*f)
		}
		fmt.Println()
	}

	fmt.Println(viz.Heading("visited positions (" + proj.String() + ")"))
	fmt.Print(viz.RenderProjection(box, positions, proj, 40, 16))

	return nil
}

func benchResolver(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	box, err := cfg.Box()
	if err != nil {
		return err
	}

	ps, err := experiment.NewRegistry().Build(cfg.Model, box, cfg.ExperimentConfig())
	if err != nil {
		return err
	}
	steps := int(cfg.Duration/cfg.Dt + 0.5)

	fmt.Printf("benchmarking %s: %d particles, %d steps\n", cfg.Model, len(ps), steps)

	var total dynamo.Trace
	start := time.Now()
	for s := 0; s < steps; s++ {
		for _, p := range ps {
			tr, err := box.Advance(p, cfg.Dt)
			if err != nil {
				return err
			}
			total.Add(tr)
		}
	}
	elapsed := time.Since(start)

	calls := steps * len(ps)
	fmt.Printf("advance calls: %d\n", calls)
	fmt.Printf("sub-steps: %d  reflections: %d\n", total.SubSteps, total.Reflections)
	fmt.Printf("time: %v\n", elapsed)
	if calls > 0 {
		fmt.Printf("per call: %v\n", elapsed/time.Duration(calls))
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	positions, _, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	proj, ok := viz.ParseProjection(projection)
	if !ok {
		return fmt.Errorf("unknown projection: %s", projection)
	}
	box, err := dynamo.NewBox(meta.BoxL)
	if err != nil {
		return err
	}

	svg, err := export.TrajectoryToSVG(box, positions, particleIdx, proj, svgSize, "#00ff00")
	if err != nil {
		return err
	}
	if svgOutput == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), svg)
		return err
	}
	if err := os.WriteFile(svgOutput, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOutput)
	return nil
}

func applyParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		cfg.Dt = v
	case "time":
		cfg.Duration = v
	case "box":
		cfg.BoxL = v
	case "speed":
		cfg.Speed = v
	case "mass":
		cfg.Mass = v
	case "epsilon":
		cfg.Epsilon = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	var names []string
	var ranges [][]float64
	for _, raw := range sweepParams {
		name, values, err := optim.ParseParam(raw)
		if err != nil {
			return err
		}
		if err := applyParam(&config.Config{}, name, 0); err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	logger := newLogger()
	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, sim.Config, error) {
		cfg := *base
		for name, v := range params {
			if err := applyParam(&cfg, name, v); err != nil {
				return nil, sim.Config{}, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, sim.Config{}, err
		}
		box, err := cfg.Box()
		if err != nil {
			return nil, sim.Config{}, err
		}
		simCfg, err := cfg.SimConfig()
		if err != nil {
			return nil, sim.Config{}, err
		}
		simCfg.RecordEvery = 0
		logger.Debug("sweep point", "params", params)

		exp := experiment.New(cfg.ExperimentConfig())
		return exp, simCfg, exp.Setup(registry, box, registry.DefaultMetrics(box, cfg.Grid), logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points, best, err := optim.NewGridSearch(names, ranges).Search(ctx, build, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t", strings.ToUpper(name))
	}
	fmt.Fprintln(w, strings.ToUpper(sweepMetric))
	for _, p := range points {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", p.Params[name])
		}
		fmt.Fprintf(w, "%.6g\n", p.Value)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6g at %v\n", sweepMetric, best.Value, best.Params)
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	if len(values) > 1 {
		fmt.Println(viz.PlotSeries(values, sweepMetric+" per grid point"))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, st, newLogger())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tN\tSTEPS\tREFLECTIONS\tOCCUPANCY\tRUN")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.4g\t%s\n",
			i+1,
			r.Config.Model,
			r.Config.Particles,
			r.Result.StepsTaken,
			r.Result.Reflections,
			r.Result.Metrics["occupancy_chi2"],
			r.RunID,
		)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d trials of %s (seeds %d..%d)...\n", trials, cfg.Model, cfg.Seed, cfg.Seed+int64(trials)-1)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{Base: cfg, NumTrials: trials}, newLogger())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics over trials:")
	for _, name := range names {
		mean, stddev := automation.MonteCarloStats(results, name)
		values := make([]float64, len(results))
		for i, r := range results {
			values[i] = r.Metrics[name]
		}
		fmt.Printf("  %-16s %.6g ± %.3g  %s\n", name, mean, stddev, viz.Sparkline(values, 30))
	}
	return nil
}
