package analysis_test

import (
	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/sim"
)

func maxDiff(a, b dynamo.State) float64 { return a.Sub(b).MaxAbs() }

func withSolver(cfg dynamo.Config) sim.Option { return sim.WithSolver(cfg) }
