package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/readysim/internal/analysis"
	"github.com/san-kum/readysim/internal/export"
	"github.com/san-kum/readysim/internal/sim"
	"github.com/san-kum/readysim/internal/storage"
	"github.com/san-kum/readysim/internal/viz"
)

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
	fmt.Fprintln(w, "ID\tPROFILE\tREGIME\tTIME\tHORIZON\tSTEP\tINTEG\tPEAK\tRISK")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0fd\t%.4fd\t%s\t%.4f\t%.3f\n",
			run.ID,
			run.Profile,
			run.Regime,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Horizon,
			run.Step,
			run.Integrator,
			run.Summary.Peak,
			run.Summary.RiskFraction,
		)
	}

	return w.Flush()
}

// loadRun reads a stored run back into a readout with its summary.
func loadRun(runID string) (*storage.RunMetadata, *sim.Readout, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	out := series.Readout()
	out.Summary = meta.Summary
	out.Steps = meta.Steps
	return meta, out, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, _ := cmd.Flags().GetInt("width")
	h, _ := cmd.Flags().GetInt("height")

	var chart string
	if stateIdx < 0 {
		chart, err = viz.PlotReadiness(out, w, h)
	} else {
		chart, err = viz.PlotState(out, stateIdx, w, h)
	}
	if err != nil {
		return err
	}
	fmt.Println(chart)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	portrait, err := analysis.PhasePortrait(out, xAxis, yAxis)
	if err != nil {
		return err
	}
	w, _ := cmd.Flags().GetInt("width")
	h, _ := cmd.Flags().GetInt("height")

	xl, yl := portrait.Labels()
	fmt.Printf("%s vs %s\n", yl, xl)
	fmt.Print(portrait.ToASCII(w, h))
	return nil
}

// withOutput runs write against --out, or stdout when it is empty.
func withOutput(write func(io.Writer) error) error {
	if outFile == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported to %s\n", outFile)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(func(w io.Writer) error {
		return export.WriteSeries(w, out)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(func(w io.Writer) error {
		return export.WriteJSON(w, meta.Meta, out)
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, _ := cmd.Flags().GetInt("width")
	h, _ := cmd.Flags().GetInt("height")

	svg, err := export.SeriesToSVG(out.Times, out.Readiness, w, h, "#00ff88")
	if err != nil {
		return err
	}
	return withOutput(func(wr io.Writer) error {
		_, err := io.WriteString(wr, svg)
		return err
	})
}

func watchRun(cmd *cobra.Command, args []string) error {
	meta, out, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fps := max(frameRate, 1)
	m, err := viz.NewReplay(meta.Profile+" / "+meta.Regime, out, time.Second/time.Duration(fps))
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
