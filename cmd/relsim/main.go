package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/relsim/internal/analysis"
	"github.com/san-kum/relsim/internal/config"
	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/experiment"
	"github.com/san-kum/relsim/internal/export"
	"github.com/san-kum/relsim/internal/metrics"
	"github.com/san-kum/relsim/internal/optim"
	"github.com/san-kum/relsim/internal/polymer"
	"github.com/san-kum/relsim/internal/sim"
	"github.com/san-kum/relsim/internal/storage"
	"github.com/san-kum/relsim/internal/tui"
	"github.com/san-kum/relsim/internal/viz"
)

var (
	dataDir string

	layers           int
	binding          float64
	diffusion        float64
	capacity         float64
	loading          float64
	boundaryReaction bool

	duration float64
	outputDt float64
	solver   string
	relTol   float64
	absTol   float64
	maxSteps int

	configFile string
	preset     string

	threshold  float64
	outPath    string
	dataFile   string
	bindings   string
	diffusions string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "relsim",
		Short: "ligand release simulation from a polymer matrix",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".relsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a release simulation",
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render PNG charts for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVar(&outPath, "out", "relsim", "output file prefix")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	checkCmd := &cobra.Command{
		Use:   "check [run_id]",
		Short: "audit mass conservation of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  checkRun,
	}
	checkCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "relative drift threshold")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep binding strengths and compare release kinetics",
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&bindings, "bindings", "0,1,4,16", "comma-separated binding strengths")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "fit binding and diffusion to a measured release curve",
		RunE:  runFit,
	}
	addModelFlags(fitCmd)
	fitCmd.Flags().StringVar(&dataFile, "obs", "", "CSV of (time, release fraction) observations")
	fitCmd.Flags().StringVar(&bindings, "bindings", "0.5,1,2,4,8", "comma-separated binding candidates")
	fitCmd.Flags().StringVar(&diffusions, "diffusions", "0.25,0.5,1,2,4", "comma-separated diffusion candidates")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in parameter presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, chartCmd, exportCmd, checkCmd, sweepCmd, fitCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&layers, "layers", config.DefaultLayers, "number of spatial layers")
	cmd.Flags().Float64Var(&binding, "binding", config.DefaultBinding, "dimensionless binding strength (p1)")
	cmd.Flags().Float64Var(&diffusion, "diffusion", config.DefaultDiffusion, "dimensionless diffusion coefficient (p2)")
	cmd.Flags().Float64Var(&capacity, "capacity", config.DefaultCapacity, "dimensionless host capacity (p3)")
	cmd.Flags().Float64Var(&loading, "loading", config.DefaultLoading, "initial free ligand concentration")
	cmd.Flags().BoolVar(&boundaryReaction, "boundary-reaction", false, "enable binding kinetics at the interface layer")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration")
	cmd.Flags().Float64Var(&outputDt, "output-dt", config.DefaultOutputDt, "output time step")
	cmd.Flags().StringVar(&solver, "solver", config.DefaultSolver, "solver (euler, rk4, rosenbrock)")
	cmd.Flags().Float64Var(&relTol, "rtol", config.DefaultRelTol, "relative tolerance")
	cmd.Flags().Float64Var(&absTol, "atol", config.DefaultAbsTol, "absolute tolerance")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "internal step budget")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset configuration")
}

// buildConfig merges preset, config file and explicit flags, with flags
// winning over the file and the file over the preset.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("layers") {
		cfg.Layers = layers
	}
	if cmd.Flags().Changed("binding") {
		cfg.Binding = binding
	}
	if cmd.Flags().Changed("diffusion") {
		cfg.Diffusion = diffusion
	}
	if cmd.Flags().Changed("capacity") {
		cfg.Capacity = capacity
	}
	if cmd.Flags().Changed("loading") {
		cfg.Loading = loading
	}
	if cmd.Flags().Changed("boundary-reaction") {
		cfg.BoundaryReaction = boundaryReaction
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("output-dt") {
		cfg.OutputDt = outputDt
	}
	if cmd.Flags().Changed("solver") {
		cfg.Solver = solver
	}
	if cmd.Flags().Changed("rtol") {
		cfg.RelTol = relTol
	}
	if cmd.Flags().Changed("atol") {
		cfg.AbsTol = absTol
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running release simulation (N=%d, solver=%s)...\n", cfg.Layers, cfg.Solver)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fractions, err := analysis.Fractions(result, cfg.Layers, exp.Film().Delta())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("output points: %d  internal steps: %d (rejected %d)  rhs evals: %d\n",
		len(result.Times), result.StepsTaken, result.StepsRejected, result.DerivEvals)
	fmt.Printf("final release fraction: %.4f\n", fractions[len(fractions)-1])
	if t50, ok := analysis.HalfTime(result.Times, fractions); ok {
		fmt.Printf("half-release time: %.4f\n", t50)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}
	if drift := result.Metrics["mass_drift"]; drift > cfg.DriftThreshold {
		fmt.Printf("\nwarning: mass drift %.3g exceeds threshold %.3g, audit with 'relsim check %s'\n",
			drift, cfg.DriftThreshold, runID)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	film := cfg.Film()
	if err := film.Validate(); err != nil {
		return err
	}
	stepper, err := experiment.NewRegistry().GetStepper(cfg.Solver)
	if err != nil {
		return err
	}

	return tui.Run(film, stepper, cfg.SimConfig())
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tN\tBINDING\tDIFFUSION\tCAPACITY\tSOLVER")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%g\t%s\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.Layers, r.Binding, r.Diffusion, r.Capacity, r.Solver)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.LoadMetadata(runID)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, result, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	delta := 1.0 / float64(meta.Layers)

	fractions, err := analysis.Fractions(result, meta.Layers, delta)
	if err != nil {
		return err
	}

	fmt.Println(viz.ReleaseCurve(fractions, 12))
	fmt.Println()

	last := result.States[len(result.States)-1]
	ligand, bound, _, err := polymer.Unpack(last, meta.Layers)
	if err != nil {
		return err
	}
	fmt.Println(viz.Profile(ligand, "free ligand, final"))
	fmt.Println()
	fmt.Println(viz.Profile(bound, "bound complex, final"))
	fmt.Println()
	fmt.Println("depletion front (time ->, center at top):")
	fmt.Print(viz.SpaceTime(result, meta.Layers, 0.5*meta.Loading, 40, 8))

	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	delta := 1.0 / float64(meta.Layers)

	fractions, err := analysis.Fractions(result, meta.Layers, delta)
	if err != nil {
		return err
	}

	releasePath := outPath + "_release.png"
	if err := export.ReleaseChart(releasePath, result.Times, fractions); err != nil {
		return err
	}
	fmt.Println("wrote", releasePath)

	last := result.States[len(result.States)-1]
	ligand, bound, _, err := polymer.Unpack(last, meta.Layers)
	if err != nil {
		return err
	}
	profilePath := outPath + "_profiles.png"
	if err := export.ProfileChart(profilePath, ligand, bound); err != nil {
		return err
	}
	fmt.Println("wrote", profilePath)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.ExportJSONStdout(*meta, result)
	}
	if err := storage.ExportJSON(outPath, *meta, result); err != nil {
		return err
	}
	fmt.Println("wrote", outPath)
	return nil
}

func checkRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	delta := 1.0 / float64(meta.Layers)

	report, err := metrics.Audit(result, meta.Layers, delta, threshold)
	if err != nil {
		return err
	}

	fmt.Printf("initial total mass: %.6f\n", report.Initial)
	fmt.Printf("max relative drift: %.3g at t=%.4f (threshold %.3g)\n",
		report.MaxDrift, report.MaxDriftTime, report.Threshold)
	if report.Violated {
		fmt.Println("CONSERVATION VIOLATION: drift exceeds threshold")
		fmt.Println("hint: rerun with --boundary-reaction or tighter --rtol to separate cause from symptom")
	} else {
		fmt.Println("conservation holds within threshold")
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	values, err := parseFloats(bindings)
	if err != nil {
		return err
	}

	newStepper, err := experiment.NewRegistry().NewStepperFunc(cfg.Solver)
	if err != nil {
		return err
	}

	variants := make([]sim.Variant, 0, len(values))
	for _, b := range values {
		c := *cfg
		c.Binding = b
		film := c.Film()
		if err := film.Validate(); err != nil {
			return err
		}
		variants = append(variants, sim.Variant{
			Name: fmt.Sprintf("binding=%g", b),
			Sys:  film,
			X0:   film.DefaultState(),
		})
	}

	results := sim.RunSweep(context.Background(), variants, cfg.SimConfig(), newStepper,
		func(v sim.Variant) []dynamo.Metric {
			film := v.Sys.(*polymer.Film)
			return experiment.DefaultMetrics(film)
		})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tFINAL FRACTION\tHALF TIME\tMASS DRIFT\tEVALS")
	for i, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\tfailed: %v\t\t\t\n", r.Name, r.Err)
			continue
		}
		film := variants[i].Sys.(*polymer.Film)
		fractions, err := analysis.Fractions(r.Result, film.N, film.Delta())
		if err != nil {
			return err
		}
		half := "-"
		if t50, ok := analysis.HalfTime(r.Result.Times, fractions); ok {
			half = fmt.Sprintf("%.4f", t50)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%s\t%.3g\t%d\n",
			r.Name, fractions[len(fractions)-1], half,
			r.Result.Metrics["mass_drift"], r.Result.DerivEvals)
	}
	return w.Flush()
}

func runFit(cmd *cobra.Command, args []string) error {
	if dataFile == "" {
		return fmt.Errorf("--obs is required")
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	obs, err := optim.LoadObservations(dataFile)
	if err != nil {
		return err
	}
	bs, err := parseFloats(bindings)
	if err != nil {
		return err
	}
	ds, err := parseFloats(diffusions)
	if err != nil {
		return err
	}

	newStepper, err := experiment.NewRegistry().NewStepperFunc(cfg.Solver)
	if err != nil {
		return err
	}

	search := &optim.GridSearch{Bindings: bs, Diffusions: ds}
	fmt.Printf("fitting %d candidates against %d observations...\n", len(bs)*len(ds), len(obs))

	fit, err := search.Fit(context.Background(), cfg.Film(), cfg.SimConfig(), newStepper, obs)
	if err != nil {
		return err
	}

	fmt.Printf("best fit: binding=%g diffusion=%g (rmse %.4g)\n", fit.Binding, fit.Diffusion, fit.RMSE)
	return nil
}

func parseFloats(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}
