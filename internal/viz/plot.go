package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/sim"
)

// PlotReadiness charts P(t) over the whole readout.
func PlotReadiness(out *sim.Readout, width, height int) (string, error) {
	if out == nil || out.Len() == 0 {
		return "", fmt.Errorf("%w: empty readout", dynamo.ErrDegenerateInput)
	}
	caption := fmt.Sprintf("readiness, days %.0f-%.0f (peak %.3f)",
		out.Times[0], out.Times[out.Len()-1], out.Summary.Peak)
	return plot(out.Readiness, width, height, caption), nil
}

// PlotState charts one state component.
func PlotState(out *sim.Readout, idx, width, height int) (string, error) {
	if out == nil || out.Len() == 0 {
		return "", fmt.Errorf("%w: empty readout", dynamo.ErrDegenerateInput)
	}
	if idx < 0 || idx >= dynamo.StateDim {
		return "", fmt.Errorf("%w: state index %d", dynamo.ErrDimensionMismatch, idx)
	}
	return plot(out.Column(idx), width, height, dynamo.StateNames[idx]), nil
}

func plot(data []float64, width, height int, caption string) string {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 12
	}
	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
	)
}
