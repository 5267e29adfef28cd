package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/integrators"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/physio"
	"github.com/san-kum/readysim/internal/regime"
)

// decay is dx/dt = -x on every component.
type decay struct{ dim int }

func (d decay) StateDim() int { return d.dim }

func (d decay) Derive(x dynamo.State, t float64) dynamo.State {
	return x.Scale(-1)
}

func TestSimulateGrid(t *testing.T) {
	out, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 3, 0.25)
	require.NoError(t, err)

	require.Equal(t, 13, out.Len())
	assert.Len(t, out.States, 13)
	assert.Len(t, out.Readiness, 13)
	assert.Equal(t, 0.0, out.Times[0])
	assert.InDelta(t, 3.0, out.Times[out.Len()-1], 1e-12)
	for i := 1; i < out.Len(); i++ {
		assert.Greater(t, out.Times[i], out.Times[i-1])
		assert.InDelta(t, 0.25, out.Times[i]-out.Times[i-1], 1e-12)
	}
	assert.Equal(t, dynamo.State(params.Nominal().Initial()), out.States[0])
}

func TestReadinessMatchesStates(t *testing.T) {
	p := params.Nominal()
	out, err := Simulate(context.Background(), p, regime.TwoADay(), 7, 1.0/24)
	require.NoError(t, err)

	for i, x := range out.States {
		assert.InDelta(t, physio.Readiness(&p, x), out.Readiness[i], 1e-9)
	}
}

func TestSimulateIsIdempotent(t *testing.T) {
	p := params.Nominal()
	r := regime.HardEasy()

	a, err := Simulate(context.Background(), p, r, 5, 0.5)
	require.NoError(t, err)
	b, err := Simulate(context.Background(), p, r, 5, 0.5)
	require.NoError(t, err)

	assert.Equal(t, a.Times, b.Times)
	assert.Equal(t, a.States, b.States)
	assert.Equal(t, a.Readiness, b.Readiness)
	assert.Equal(t, a.Summary, b.Summary)
}

func TestSingleMorningSixWeeks(t *testing.T) {
	out, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 42, 1.0/24)
	require.NoError(t, err)

	require.Equal(t, 42*24+1, out.Len())
	assert.Greater(t, out.Summary.Peak, out.Readiness[0])
	assert.Equal(t, 0.8, out.Summary.Threshold)
	assert.Greater(t, out.Summary.TimeToPeak, 0.0)

	peak := math.Inf(-1)
	for _, v := range out.Readiness {
		peak = math.Max(peak, v)
	}
	assert.Equal(t, peak, out.Summary.Peak)
}

func TestBedRestRecovers(t *testing.T) {
	out, err := Simulate(context.Background(), params.Nominal(), regime.BedRest(), 60, 0.25)
	require.NoError(t, err)

	for i, tm := range out.Times {
		if tm < 3 || i == 0 {
			continue
		}
		assert.GreaterOrEqual(t, out.Readiness[i], out.Readiness[i-1]-1e-6, "readiness dropped at t=%.2f", tm)
	}

	final := out.Final()
	assert.Less(t, math.Abs(final[dynamo.IdxFa]), 1e-4)
	assert.Less(t, math.Abs(final[dynamo.IdxS]), 1e-4)
	assert.Less(t, math.Abs(final[dynamo.IdxFc]), 1e-3)
	assert.Less(t, final[dynamo.IdxFc], out.States[0][dynamo.IdxFc])
}

func TestSimulateRejectsDegenerateGrid(t *testing.T) {
	tests := []struct {
		name          string
		horizon, step float64
	}{
		{"zero step", 1, 0},
		{"negative step", 1, -0.1},
		{"zero horizon", 0, 0.1},
		{"nan horizon", math.NaN(), 0.1},
		{"step longer than horizon", 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), tt.horizon, tt.step)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, dynamo.ErrDegenerateInput)
		})
	}
}

func TestSimulateRejectsInvalidInputs(t *testing.T) {
	p := params.Nominal()
	p.TauA = 0
	_, err := Simulate(context.Background(), p, regime.SingleMorning(), 1, 0.1)
	assert.Error(t, err)

	_, err = Simulate(context.Background(), params.Nominal(), &regime.Regime{Name: "empty"}, 1, 0.1)
	assert.Error(t, err)
}

func TestRunStepBudget(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.MaxSteps = 50

	out, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 7, 1, WithSolver(cfg))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, dynamo.ErrStepBudget)

	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, 50, simErr.Step)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Simulate(ctx, params.Nominal(), regime.SingleMorning(), 1, 0.5)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWithStateAndOffset(t *testing.T) {
	x0 := dynamo.State{1, 1, 1, 1, 1, 1}
	out, err := Run(context.Background(), params.Nominal(), decay{dim: 6}, x0, 10, 1, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 10.0, out.Times[0])
	assert.InDelta(t, 11.0, out.Times[out.Len()-1], 1e-12)
	assert.InDelta(t, math.Exp(-1), out.Final()[0], 1e-5)
	assert.Equal(t, 1.0, x0[0], "input state must not be mutated")

	_, err = Run(context.Background(), params.Nominal(), decay{dim: 6}, dynamo.State{1}, 0, 1, 0.1)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestRK4AgreesWithRK45(t *testing.T) {
	p := params.Nominal()
	r := regime.SingleMorning()

	a, err := Simulate(context.Background(), p, r, 3, 0.5)
	require.NoError(t, err)

	cfg := dynamo.DefaultConfig()
	cfg.MaxStep = 1.0 / 480
	b, err := Simulate(context.Background(), p, r, 3, 0.5,
		WithSolver(cfg),
		WithAdvancer(func() dynamo.Advancer { return integrators.NewRK4() }),
	)
	require.NoError(t, err)

	for i := range a.Readiness {
		assert.InDelta(t, a.Readiness[i], b.Readiness[i], 5e-3)
	}
}

func TestThresholdOption(t *testing.T) {
	out, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 2, 0.5, WithThreshold(-1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Summary.RiskFraction)
	assert.Equal(t, -1.0, out.Summary.Threshold)
}

func TestMetricsSnapshotMatchesSummary(t *testing.T) {
	out, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 3, 0.25)
	require.NoError(t, err)

	require.Len(t, out.Metrics, 3)
	assert.Equal(t, out.Summary.Peak, out.Metrics["peak"])
	assert.Equal(t, out.Summary.Mean, out.Metrics["mean"])
	assert.Equal(t, out.Summary.RiskFraction, out.Metrics["risk_fraction"])
}

func TestInstrumentation(t *testing.T) {
	before := testutil.ToFloat64(runsTotal.WithLabelValues("ok"))
	stepsBefore := testutil.ToFloat64(solverSteps)

	out, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 1, 0.5)
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(runsTotal.WithLabelValues("ok")))
	assert.Equal(t, stepsBefore+float64(out.Steps), testutil.ToFloat64(solverSteps))
}

func TestBatch(t *testing.T) {
	jobs := []Job{
		{Name: "nominal", Params: params.Nominal(), Regime: regime.SingleMorning()},
		{Name: "rest", Params: params.Nominal(), Regime: regime.BedRest()},
	}
	outs, err := Batch(context.Background(), jobs, 2, 0.5)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	single, err := Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, single.Readiness, outs[0].Readiness)

	jobs = append(jobs, Job{Name: "broken", Params: params.Nominal(), Regime: &regime.Regime{}})
	_, err = Batch(context.Background(), jobs, 2, 0.5)
	assert.ErrorContains(t, err, "broken")
}
