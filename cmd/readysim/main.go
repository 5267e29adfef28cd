package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/readysim/internal/config"
)

var (
	dataDir     string
	logLevel    string
	metricsAddr string
	// Scenario
	configFile string
	preset     string
	profile    string
	regimeName string
	overrides  map[string]string
	horizon    float64
	step       float64
	period     float64
	warmup     int
	threshold  float64
	integrator string
	// Sweep
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	// Output
	outFile   string
	stateIdx  int
	xAxis     int
	yAxis     int
	showPlot  bool
	frameRate int
)

// main registers the commands and exits 1 when one of them fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "readysim",
		Short:         "training readiness simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			serveMetrics(metricsAddr)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".readysim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate a scenario and store the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	scenarioFlags(simulateCmd)
	simulateCmd.Flags().BoolVar(&showPlot, "plot", false, "plot readiness after the run")

	equilibriumCmd := &cobra.Command{
		Use:   "equilibrium",
		Short: "rest state of the week-averaged system",
		Args:  cobra.NoArgs,
		RunE:  runEquilibrium,
	}
	scenarioFlags(equilibriumCmd)

	periodicCmd := &cobra.Command{
		Use:   "periodic",
		Short: "steady repeating week and its Floquet multipliers",
		Args:  cobra.NoArgs,
		RunE:  runPeriodic,
	}
	scenarioFlags(periodicCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "steady-week readiness across a parameter range",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	scenarioFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.MarkFlagRequired("from")
	sweepCmd.MarkFlagRequired("to")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "simulate several profiles on one regime",
		Args:  cobra.NoArgs,
		RunE:  runCompare,
	}
	scenarioFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareProfiles, "profiles", []string{"nominal", "endurance", "power"}, "profiles to compare")

	saveConfigCmd := &cobra.Command{
		Use:   "save-config [path]",
		Short: "write the resolved scenario as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  saveConfig,
	}
	scenarioFlags(saveConfigCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot readiness or one state of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&stateIdx, "state", -1, "state index to plot instead of readiness")
	plotCmd.Flags().Int("width", 80, "plot width")
	plotCmd.Flags().Int("height", 12, "plot height")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two states",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 2, "state index for y-axis")
	phaseCmd.Flags().Int("width", 60, "plot width")
	phaseCmd.Flags().Int("height", 20, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run as headerless CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the readiness curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	for _, c := range []*cobra.Command{exportCSVCmd, exportJSONCmd, exportSVGCmd} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout if empty)")
	}
	exportSVGCmd.Flags().Int("width", 800, "image width")
	exportSVGCmd.Flags().Int("height", 300, "image height")

	watchCmd := &cobra.Command{
		Use:   "watch [run_id]",
		Short: "replay a run day by day",
		Args:  cobra.ExactArgs(1),
		RunE:  watchRun,
	}
	watchCmd.Flags().IntVar(&frameRate, "fps", 4, "days per second")

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "list parameter profiles",
		Args:  cobra.NoArgs,
		RunE:  listProfiles,
	}
	regimesCmd := &cobra.Command{
		Use:   "regimes",
		Short: "list regime presets",
		Args:  cobra.NoArgs,
		RunE:  listRegimes,
	}
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(simulateCmd, equilibriumCmd, periodicCmd, sweepCmd, compareCmd, saveConfigCmd, listCmd, plotCmd, phaseCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, watchCmd, profilesCmd, regimesCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a scenario preset")
	cmd.Flags().StringVar(&profile, "profile", d.Profile, "parameter profile")
	cmd.Flags().StringVar(&regimeName, "regime", config.DefaultRegime, "regime preset")
	cmd.Flags().StringToStringVar(&overrides, "set", nil, "parameter overrides, key=value")
	cmd.Flags().Float64Var(&horizon, "horizon", d.Horizon, "horizon in days")
	cmd.Flags().Float64Var(&step, "step", d.Step, "output step in days")
	cmd.Flags().Float64Var(&period, "period", d.Period, "averaging period in days")
	cmd.Flags().IntVar(&warmup, "warmup", d.Warmup, "warm-up periods before the fixed-point solve")
	cmd.Flags().Float64Var(&threshold, "threshold", d.Threshold, "damage risk threshold")
	cmd.Flags().StringVar(&integrator, "integrator", d.Integrator, "integrator (rk45, rk4)")
}

// resolveConfig layers defaults, preset, config file and changed flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	// Config file overrides preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = profile
	}
	if flags.Changed("regime") {
		cfg.Regime = config.RegimeConfig{Preset: regimeName}
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("period") {
		cfg.Period = period
	}
	if flags.Changed("warmup") {
		cfg.Warmup = warmup
	}
	if flags.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if len(overrides) > 0 {
		if cfg.Overrides == nil {
			cfg.Overrides = make(map[string]float64, len(overrides))
		}
		for k, v := range overrides {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("--set %s: %w", k, err)
			}
			cfg.Overrides[k] = f
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func saveConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
	return nil
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
}
