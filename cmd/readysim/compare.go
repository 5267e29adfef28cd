package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/readysim/internal/config"
	"github.com/san-kum/readysim/internal/sim"
	"github.com/san-kum/readysim/internal/viz"
)

var compareProfiles []string

// compareJobs pairs each named profile, with the config's overrides applied,
// with the config's regime.
func compareJobs(cfg *config.Config, names []string) ([]sim.Job, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("compare: no profiles given")
	}
	_, r, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	jobs := make([]sim.Job, 0, len(names))
	for _, name := range names {
		c := *cfg
		c.Profile = name
		p, err := c.Params()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, sim.Job{Name: name, Params: p, Regime: r})
	}
	return jobs, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	jobs, err := compareJobs(cfg, compareProfiles)
	if err != nil {
		return err
	}
	opts, err := cfg.SimOptions()
	if err != nil {
		return err
	}

	outs, err := sim.Batch(cmd.Context(), jobs, cfg.Horizon, cfg.Step, opts...)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d profiles on %s over %.0f days\n", len(jobs), jobs[0].Regime.Name, cfg.Horizon)
	for i, job := range jobs {
		fmt.Fprintln(w, viz.Title.Render(job.Name))
		fmt.Fprintln(w, viz.RenderSummary(outs[i].Summary))
	}
	return nil
}
