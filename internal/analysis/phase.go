package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/sim"
)

// Point is one sample of a 2D projection.
type Point struct{ X, Y float64 }

// Portrait holds a trajectory projected onto two state components.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
}

// Labels names the projected components.
func (p *Portrait) Labels() (string, string) {
	return dynamo.StateNames[p.XIndex], dynamo.StateNames[p.YIndex]
}

// PhasePortrait projects a readout onto components xIdx and yIdx.
func PhasePortrait(out *sim.Readout, xIdx, yIdx int) (*Portrait, error) {
	if out == nil || len(out.States) == 0 {
		return nil, fmt.Errorf("%w: empty readout", dynamo.ErrDegenerateInput)
	}
	if xIdx < 0 || xIdx >= dynamo.StateDim || yIdx < 0 || yIdx >= dynamo.StateDim {
		return nil, fmt.Errorf("%w: component indices %d, %d", dynamo.ErrDimensionMismatch, xIdx, yIdx)
	}

	portrait := &Portrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(out.States)),
	}
	for _, x := range out.States {
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait, nil
}

// ToASCII rasterizes the portrait. A component that never moves is drawn on
// a unit span.
func (p *Portrait) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find bounds
	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y

	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
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
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := newCanvas(width, height)

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Mark the start so the direction of travel is readable.
	first := p.Points[0]
	col := int((first.X - minX) / rangeX * float64(width-1))
	row := height - 1 - int((first.Y-minY)/rangeY*float64(height-1))
	if row >= 0 && row < height && col >= 0 && col < width {
		canvas[row][col] = 'o'
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	return canvasString(canvas)
}

func newCanvas(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	return canvas
}

func canvasString(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
