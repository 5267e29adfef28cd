package analysis_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/readysim/internal/analysis"
	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/regime"
	"github.com/san-kum/readysim/internal/sim"
)

var _ = Describe("PhasePortrait", func() {
	It("projects a readout onto two components", func() {
		out, err := sim.Simulate(context.Background(), params.Nominal(), regime.SingleMorning(), 3, 1.0/24)
		Expect(err).NotTo(HaveOccurred())

		portrait, err := analysis.PhasePortrait(out, dynamo.IdxFa, dynamo.IdxA)
		Expect(err).NotTo(HaveOccurred())
		Expect(portrait.Points).To(HaveLen(out.Len()))
		Expect(portrait.Points[5].X).To(Equal(out.States[5][dynamo.IdxFa]))

		x, y := portrait.Labels()
		Expect(x).To(Equal("Fa"))
		Expect(y).To(Equal("A"))

		art := portrait.ToASCII(40, 10)
		Expect(strings.Split(strings.TrimSuffix(art, "\n"), "\n")).To(HaveLen(10))
		Expect(art).To(ContainSubstring("•"))
	})

	It("draws a motionless trajectory on a unit span", func() {
		portrait := &analysis.Portrait{Points: []analysis.Point{{X: 2, Y: 2}, {X: 2, Y: 2}}}
		art := portrait.ToASCII(20, 5)
		Expect(art).NotTo(BeEmpty())
		Expect(art).NotTo(ContainSubstring("NaN"))
	})

	It("rejects empty readouts and bad indices", func() {
		_, err := analysis.PhasePortrait(&sim.Readout{}, 0, 1)
		Expect(err).To(MatchError(dynamo.ErrDegenerateInput))

		out := &sim.Readout{States: []dynamo.State{make(dynamo.State, dynamo.StateDim)}}
		_, err = analysis.PhasePortrait(out, 0, dynamo.StateDim)
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})
})

var _ = Describe("NewEnvelope", func() {
	It("takes the middle of an odd series", func() {
		env, err := analysis.NewEnvelope([]float64{3, 1, 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(env).To(Equal(analysis.Envelope{Min: 1, Median: 2, Max: 3}))
	})

	It("rejects an empty series", func() {
		_, err := analysis.NewEnvelope(nil)
		Expect(err).To(MatchError(dynamo.ErrDegenerateInput))
	})
})

var _ = Describe("Sweep", func() {
	It("summarizes one steady week per parameter value", func() {
		points, err := analysis.Sweep(context.Background(), params.Nominal(), regime.SingleMorning(), "k_a", 2, 3, 2, analysis.DefaultPeriod, analysis.DefaultSteadyOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(2))
		Expect(points[0].Value).To(Equal(2.0))
		Expect(points[1].Value).To(Equal(3.0))
		// More endurance drive lifts the steady week.
		Expect(points[1].Envelope.Max).To(BeNumerically(">", points[0].Envelope.Max))

		art := analysis.SweepToASCII(points, 20, 8)
		Expect(art).To(ContainSubstring("•"))
	})

	It("rejects unknown keys and empty ranges", func() {
		_, err := analysis.Sweep(context.Background(), params.Nominal(), regime.SingleMorning(), "nope", 0, 1, 2, 7, analysis.DefaultSteadyOptions())
		Expect(err).To(HaveOccurred())

		_, err = analysis.Sweep(context.Background(), params.Nominal(), regime.SingleMorning(), "k_a", 0, 1, 0, 7, analysis.DefaultSteadyOptions())
		Expect(err).To(MatchError(dynamo.ErrDegenerateInput))
	})
})
