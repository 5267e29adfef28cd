package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/readysim/internal/dynamo"
)

// SeriesToSVG draws values against times as a single polyline with a
// dashed zero line when zero is in range.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) (string, error) {
	if len(times) < 2 || len(times) != len(values) {
		return "", fmt.Errorf("%w: need at least two aligned samples", dynamo.ErrDegenerateInput)
	}

	// Find bounds
	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := range times {
		minX, maxX = min(minX, times[i]), max(maxX, times[i])
		minY, maxY = min(minY, values[i]), max(maxY, values[i])
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	px := func(t float64) float64 { return (t - minX) / rangeX * float64(width) }
	py := func(v float64) float64 { return float64(height) - (v-minY)/rangeY*float64(height) }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if minY <= 0 && maxY >= 0 {
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="4 4"/>
`, py(0), width, py(0)))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i := range times {
		if i > 0 {
			sb.WriteString(" L")
		}
		sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(times[i]), py(values[i])))
	}
	sb.WriteString("\"/>\n</svg>\n")

	return sb.String(), nil
}
