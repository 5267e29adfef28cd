package analysis_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/readysim/internal/analysis"
	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/physio"
	"github.com/san-kum/readysim/internal/regime"
)

var _ = Describe("WeeklyAverages", func() {
	ctx := context.Background()

	It("averages a single morning session and nightly sleep", func() {
		m, err := analysis.WeeklyAverages(ctx, params.Nominal(), regime.SingleMorning(), analysis.DefaultPeriod)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.UE).To(BeNumerically("~", 1.0/24, 1e-3))
		Expect(m.UH).To(BeZero())
		Expect(m.US).To(BeZero())
		Expect(m.Sleep).To(BeNumerically("~", 8.0/24, 1e-3))
		Expect(m.Nutrition).To(BeNumerically("~", 0.8, 1e-12))
		Expect(m.Stress).To(BeNumerically("~", 0.1, 1e-12))
		Expect(m.SleepQ).To(BeNumerically(">", 0))
		Expect(m.SleepQ).To(BeNumerically("<=", 0.9*m.Sleep+1e-12))
	})

	It("gives full efficiency when nothing loads the kernel", func() {
		m, err := analysis.WeeklyAverages(ctx, params.Nominal(), regime.BedRest(), analysis.DefaultPeriod)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Sleep).To(BeNumerically("~", 1, 1e-12))
		Expect(m.SleepQ).To(BeNumerically("~", 0.9, 1e-12))
	})

	DescribeTable("rejects degenerate windows",
		func(period float64) {
			_, err := analysis.WeeklyAverages(ctx, params.Nominal(), regime.SingleMorning(), period)
			Expect(err).To(MatchError(dynamo.ErrDegenerateInput))
		},
		Entry("zero", 0.0),
		Entry("negative", -7.0),
		Entry("NaN", math.NaN()),
	)
})

var _ = Describe("Equilibrium", func() {
	ctx := context.Background()
	p := params.Nominal()

	It("solves the averaged system to tolerance", func() {
		eq, err := analysis.Equilibrium(ctx, p, regime.SingleMorning(), analysis.EquilibriumOptions{})
		Expect(err).NotTo(HaveOccurred())

		rhs := physio.NewAveraged(p, eq.Means.Inputs()).Derive(eq.State, 0)
		for i, v := range rhs {
			Expect(math.Abs(v)).To(BeNumerically("<=", 1e-8), "component %s", dynamo.StateNames[i])
		}
		Expect(eq.Residual).To(BeNumerically("<=", analysis.EquilibriumTol))
		Expect(eq.Readiness).To(BeNumerically("~", physio.Readiness(&p, eq.State), 1e-12))
	})

	It("reports a stable rest state with a finite half-life", func() {
		eq, err := analysis.Equilibrium(ctx, p, regime.TwoADay(), analysis.EquilibriumOptions{})
		Expect(err).NotTo(HaveOccurred())

		Expect(eq.Eigenvalues).To(HaveLen(dynamo.StateDim))
		rows, cols := eq.Jacobian.Dims()
		Expect(rows).To(Equal(dynamo.StateDim))
		Expect(cols).To(Equal(dynamo.StateDim))
		Expect(eq.MaxReal).To(BeNumerically("<", 0))
		Expect(eq.Stable).To(BeTrue())
		Expect(eq.HalfLife).To(BeNumerically("~", math.Ln2/math.Abs(eq.MaxReal), 1e-12))
		for _, v := range eq.Eigenvalues {
			Expect(real(v)).To(BeNumerically("<=", eq.MaxReal))
		}
	})

	It("reaches the same state from a caller-supplied guess", func() {
		base, err := analysis.Equilibrium(ctx, p, regime.SingleMorning(), analysis.EquilibriumOptions{})
		Expect(err).NotTo(HaveOccurred())

		guess := dynamo.State{0.9, 0.9, 0, 0, 0, 0}
		again, err := analysis.Equilibrium(ctx, p, regime.SingleMorning(), analysis.EquilibriumOptions{Guess: guess})
		Expect(err).NotTo(HaveOccurred())
		for i := range base.State {
			Expect(again.State[i]).To(BeNumerically("~", base.State[i], 1e-8))
		}
	})

	It("surfaces non-convergence with the last iterate", func() {
		_, err := analysis.Equilibrium(ctx, p, regime.SingleMorning(), analysis.EquilibriumOptions{Tol: 1e-300, MaxIter: 2})
		Expect(err).To(MatchError(dynamo.ErrNoConvergence))

		var cerr *dynamo.ConvergenceError
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Iterations).To(Equal(2))
		Expect(cerr.X).To(HaveLen(dynamo.StateDim))
		Expect(cerr.Residual).To(BeNumerically(">", 0))
	})

	It("rejects a guess of the wrong dimension", func() {
		_, err := analysis.Equilibrium(ctx, p, regime.SingleMorning(), analysis.EquilibriumOptions{Guess: dynamo.State{1}})
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})
})
