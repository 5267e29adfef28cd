package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/regime"
)

// Job is one (athlete, schedule) pairing in a batch.
type Job struct {
	Name   string
	Params params.Set
	Regime *regime.Regime
}

// Batch simulates every job over the same grid. Results are index-aligned
// with jobs; the first failure cancels the rest.
func Batch(ctx context.Context, jobs []Job, horizon, step float64, opts ...Option) ([]*Readout, error) {
	results := make([]*Readout, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, job := range jobs {
		g.Go(func() error {
			out, err := Simulate(ctx, job.Params, job.Regime, horizon, step, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
