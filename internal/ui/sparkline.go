package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the most recent width percentages of a series on a
// fixed 0-100 scale, coloured by the threshold of the last value.
func RenderSparkline(data []float64, width int) string {
	return RenderScaledSparkline(data, width, 100)
}

// RenderScaledSparkline draws the most recent width values of a series on a
// fixed 0-max scale. Values outside the range are clamped. The colour follows
// the last value as a share of max.
func RenderScaledSparkline(data []float64, width int, max float64) string {
	if len(data) == 0 || width <= 0 || max <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	top := len(sparklineBlockRunes) - 1
	for _, v := range data {
		level := int(v / max * float64(top))
		if level < 0 {
			level = 0
		} else if level > top {
			level = top
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	last := data[len(data)-1] / max * 100
	return lipgloss.NewStyle().Foreground(getThresholdColor(last)).Render(sb.String())
}

// getThresholdColor returns a color based on percentage thresholds.
//   - 0-60%: green (success)
//   - 60-80%: yellow/amber (warning)
//   - 80-100%: red (error)
func getThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorError
	case percent >= 60:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
