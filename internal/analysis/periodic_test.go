package analysis_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/readysim/internal/analysis"
	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/regime"
)

var _ = Describe("PoincareMap", func() {
	ctx := context.Background()

	It("rejects a zero period", func() {
		p := params.Nominal()
		_, err := analysis.PoincareMap(ctx, p.Initial(), p, regime.SingleMorning(), 0)
		Expect(err).To(MatchError(dynamo.ErrDegenerateInput))
	})

	It("does not mutate its input state", func() {
		p := params.Nominal()
		z0 := p.Initial()
		before := z0.Clone()
		_, err := analysis.PoincareMap(ctx, z0, p, regime.SingleMorning(), analysis.DefaultPeriod)
		Expect(err).NotTo(HaveOccurred())
		Expect(z0).To(Equal(before))
	})
})

var _ = Describe("Weekly steady state", Ordered, func() {
	var (
		ctx = context.Background()
		p   = params.Nominal()
		r   = regime.SingleMorning()
		fp  *analysis.FixedPoint
		fl  *analysis.Floquet
	)

	BeforeAll(func() {
		var err error
		fp, err = analysis.PoincareFixedPoint(ctx, p, r, analysis.DefaultPeriod, analysis.DefaultWarmupPeriods)
		Expect(err).NotTo(HaveOccurred())
		fl, err = analysis.FloquetMultipliers(ctx, fp.State, p, r, analysis.DefaultPeriod, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("maps the fixed point onto itself", func() {
		next, err := analysis.PoincareMap(ctx, fp.State, p, r, analysis.DefaultPeriod)
		Expect(err).NotTo(HaveOccurred())
		Expect(maxDiff(next, fp.State)).To(BeNumerically("<=", analysis.FixedPointTol))
		Expect(fp.Residual).To(BeNumerically("<=", analysis.FixedPointTol))
	})

	It("starts Newton from the warmed-up state", func() {
		warm, err := analysis.PoincareFixedPoint(ctx, p, r, analysis.DefaultPeriod, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(warm.Seed).To(Equal(p.Initial()))
		Expect(fp.Seed).NotTo(Equal(p.Initial()))
		Expect(maxDiff(warm.State, fp.State)).To(BeNumerically("<", 1e-6))
	})

	It("finds a stable weekly cycle", func() {
		Expect(fl.Multipliers).To(HaveLen(dynamo.StateDim))
		Expect(fl.SpectralRadius).To(BeNumerically("<", 1))
		Expect(fl.Stable).To(BeTrue())
	})

	It("pulls a perturbed state back toward the cycle", func() {
		z := fp.State.Clone()
		for i := range z {
			z[i] += 1e-3
		}
		d0 := maxDiff(z, fp.State)

		for k := 0; k < 6; k++ {
			var err error
			z, err = analysis.PoincareMap(ctx, z, p, r, analysis.DefaultPeriod)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(maxDiff(z, fp.State)).To(BeNumerically("<", d0))
	})

	It("summarizes the steady week", func() {
		week, err := analysis.SteadyWeeklySummary(ctx, p, r, analysis.DefaultPeriod, analysis.DefaultSteadyOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(maxDiff(week.State, fp.State)).To(BeNumerically("<", 1e-8))
		Expect(week.Trajectory.Len()).To(Equal(7*96 + 1))
		Expect(week.Trajectory.Times[0]).To(BeZero())
		Expect(week.Envelope.Min).To(BeNumerically("<=", week.Envelope.Median))
		Expect(week.Envelope.Median).To(BeNumerically("<=", week.Envelope.Max))
		Expect(week.Envelope.Min).To(BeNumerically("<", week.Envelope.Max))
		Expect(week.RiskFraction).To(BeNumerically(">=", 0))
		Expect(week.RiskFraction).To(BeNumerically("<=", 1))
		Expect(week.Floquet.Stable).To(BeTrue())
	})

	It("honours a zero warmup and a zero threshold", func() {
		opts := analysis.DefaultSteadyOptions()
		opts.Warmup = 0
		opts.Threshold = 0
		week, err := analysis.SteadyWeeklySummary(ctx, p, r, analysis.DefaultPeriod, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(week.FixedPoint.Seed).To(Equal(p.Initial()))
		Expect(week.Trajectory.Summary.Threshold).To(BeZero())
		// Damage stays strictly positive over the steady week.
		Expect(week.RiskFraction).To(Equal(1.0))
	})

	It("rejects a negative warmup", func() {
		_, err := analysis.PoincareFixedPoint(ctx, p, r, analysis.DefaultPeriod, -1)
		Expect(err).To(MatchError(dynamo.ErrDegenerateInput))
	})

	It("reports a failed map evaluation as a convergence failure", func() {
		cfg := dynamo.DefaultConfig()
		cfg.MaxSteps = 10
		_, err := analysis.PoincareFixedPoint(ctx, p, r, analysis.DefaultPeriod, 0, withSolver(cfg))
		Expect(err).To(MatchError(dynamo.ErrStepBudget))

		var cerr *dynamo.ConvergenceError
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Iterations).To(BeZero())
	})
})

var _ = Describe("FloquetMultipliers", func() {
	It("rejects a state of the wrong dimension", func() {
		_, err := analysis.FloquetMultipliers(context.Background(), dynamo.State{1, 2}, params.Nominal(), regime.SingleMorning(), 7, 0)
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})
})
