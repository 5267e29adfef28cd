package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/readysim/internal/sim"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(14)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	High = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	Mid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	Low  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Gauge renders frac of width as a bar, coloured by level.
func Gauge(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac > 0.8:
		return High.Render(bar)
	case frac > 0.4:
		return Mid.Render(bar)
	default:
		return Low.Render(bar)
	}
}

// Sparkline compresses series into width block characters.
func Sparkline(series []float64, width int) string {
	norm, err := Normalize(series)
	if err != nil || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	stride := max(len(norm)/width, 1)

	var b strings.Builder
	for i := 0; i < width && i*stride < len(norm); i++ {
		b.WriteRune(chars[int(norm[i*stride]*float64(len(chars)-1))])
	}
	return b.String()
}

// RenderSummary lays out the run summary as label/value rows.
func RenderSummary(s sim.Summary) string {
	rows := []struct {
		label, value string
	}{
		{"peak", fmt.Sprintf("%.4f", s.Peak)},
		{"time to peak", fmt.Sprintf("%.2f d", s.TimeToPeak)},
		{"mean", fmt.Sprintf("%.4f", s.Mean)},
		{"risk", fmt.Sprintf("%.1f%% above %.2f", 100*s.RiskFraction, s.Threshold)},
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(MetricLabel.Render(r.label) + MetricValue.Render(r.value))
	}
	return Panel.Render(b.String())
}
