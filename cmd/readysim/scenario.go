package main

import (
	"fmt"
	"math/cmplx"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/readysim/internal/analysis"
	"github.com/san-kum/readysim/internal/config"
	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/export"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/quad"
	"github.com/san-kum/readysim/internal/regime"
	"github.com/san-kum/readysim/internal/sim"
	"github.com/san-kum/readysim/internal/storage"
	"github.com/san-kum/readysim/internal/viz"
)

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, r, err := cfg.Build()
	if err != nil {
		return err
	}
	opts, err := cfg.SimOptions()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("simulating %s on %s for %.0f days...\n", cfg.Profile, r.Name, cfg.Horizon)
	start := time.Now()

	out, err := sim.Simulate(cmd.Context(), p, r, cfg.Horizon, cfg.Step, opts...)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	meta := export.Meta{
		Profile:    cfg.Profile,
		Regime:     r.Name,
		Horizon:    cfg.Horizon,
		Step:       cfg.Step,
		Integrator: cfg.Integrator,
	}
	run, err := st.Save(meta, cfg.Overrides, out)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", run.ID)
	fmt.Printf("samples: %d, solver steps: %d\n", out.Len(), out.Steps)
	fmt.Println(viz.RenderSummary(out.Summary))

	if showPlot {
		chart, err := viz.PlotReadiness(out, 80, 12)
		if err != nil {
			return err
		}
		fmt.Println(chart)
	}
	return nil
}

func runEquilibrium(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, r, err := cfg.Build()
	if err != nil {
		return err
	}

	eq, err := analysis.Equilibrium(cmd.Context(), p, r, analysis.EquilibriumOptions{Period: cfg.Period})
	if err != nil {
		return err
	}

	fmt.Printf("equilibrium of %s on %s (%.0f-day average)\n\n", cfg.Profile, r.Name, cfg.Period)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	writeState(w, eq.State)
	fmt.Fprintf(w, "readiness\t%.6f\n", eq.Readiness)
	fmt.Fprintf(w, "residual\t%.2e (%d iterations)\n", eq.Residual, eq.Iterations)
	fmt.Fprintf(w, "max Re(λ)\t%.6f\n", eq.MaxReal)
	if eq.Stable {
		fmt.Fprintf(w, "half-life\t%.2f d\n", eq.HalfLife)
	} else {
		fmt.Fprintln(w, "half-life\tunstable")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\neigenvalues:")
	for _, ev := range eq.Eigenvalues {
		fmt.Printf("  %s\n", formatComplex(ev))
	}
	return nil
}

func runPeriodic(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, r, err := cfg.Build()
	if err != nil {
		return err
	}
	opts, err := cfg.SimOptions()
	if err != nil {
		return err
	}

	week, err := analysis.SteadyWeeklySummary(cmd.Context(), p, r, cfg.Period, steadyOptions(cfg, opts))
	if err != nil {
		return err
	}

	fmt.Printf("steady %.0f-day cycle of %s on %s\n\n", cfg.Period, cfg.Profile, r.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	writeState(w, week.State)
	fmt.Fprintf(w, "residual\t%.2e (%d iterations)\n", week.FixedPoint.Residual, week.FixedPoint.Iterations)
	fmt.Fprintf(w, "readiness\tmin %.4f  median %.4f  max %.4f\n", week.Envelope.Min, week.Envelope.Median, week.Envelope.Max)
	fmt.Fprintf(w, "risk\t%.1f%% above %.2f\n", 100*week.RiskFraction, cfg.Threshold)
	fmt.Fprintf(w, "spectral radius\t%.6f\n", week.Floquet.SpectralRadius)
	fmt.Fprintf(w, "stable\t%v\n", week.Floquet.Stable)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nFloquet multipliers:")
	for _, mu := range week.Floquet.Multipliers {
		fmt.Printf("  %s  |μ|=%.6f\n", formatComplex(mu), cmplx.Abs(mu))
	}

	chart, err := viz.PlotReadiness(week.Trajectory, 80, 10)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(chart)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, r, err := cfg.Build()
	if err != nil {
		return err
	}
	opts, err := cfg.SimOptions()
	if err != nil {
		return err
	}

	key := args[0]
	points, err := analysis.Sweep(cmd.Context(), p, r, key, sweepFrom, sweepTo, sweepSteps, cfg.Period, steadyOptions(cfg, opts))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMIN\tMEDIAN\tMAX\tRISK\tρ\n", key)
	for _, pt := range points {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4f\t%.3f\t%.4f\n",
			pt.Value, pt.Envelope.Min, pt.Envelope.Median, pt.Envelope.Max, pt.RiskFraction, pt.SpectralRadius)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(analysis.SweepToASCII(points, 60, 15))
	return nil
}

func listProfiles(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tA0\tN0\tK_A\tK_N\tQ0")
	for _, name := range params.ListProfiles() {
		p, err := params.Profile(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.3g\t%.3g\t%.2f\n", name, p.A0, p.N0, p.KA, p.KN, p.Kernel.Q0)
	}
	return w.Flush()
}

func listRegimes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGIME\tBEDTIME\tSLEEP\tNAPS\tLOAD/WEEK")
	for _, name := range regime.ListPresets() {
		r, err := regime.Preset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%05.2f\t%.1fh\t%d\t%.2f\n", name, r.Bedtime, r.SleepHours, len(r.Naps), weeklyLoad(r))
	}
	return w.Flush()
}

// weeklyLoad is the combined training load over days 0..7 in load-hours.
func weeklyLoad(r *regime.Regime) float64 {
	days, err := quad.Integral(r.Load, 0, 7, 7*96)
	if err != nil {
		return 0
	}
	return 24 * days
}

func steadyOptions(cfg *config.Config, simOpts []sim.Option) analysis.SteadyOptions {
	opts := analysis.DefaultSteadyOptions()
	opts.Warmup = cfg.Warmup
	opts.Threshold = cfg.Threshold
	opts.Sim = simOpts
	return opts
}

func writeState(w *tabwriter.Writer, x dynamo.State) {
	for i, name := range dynamo.StateNames {
		fmt.Fprintf(w, "%s\t%.6f\n", name, x[i])
	}
}

func formatComplex(z complex128) string {
	if imag(z) == 0 {
		return fmt.Sprintf("%+.6f", real(z))
	}
	return fmt.Sprintf("%+.6f %+.6fi", real(z), imag(z))
}
