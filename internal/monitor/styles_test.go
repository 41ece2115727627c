package monitor

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/hwdash/internal/plot"
)

func TestMetricColor(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		expect  lipgloss.Color
	}{
		{"healthy low", 0.0, ColorHealthy},
		{"healthy near threshold", 69.9, ColorHealthy},
		{"warning at threshold", 70.0, ColorWarning},
		{"warning near critical", 89.9, ColorWarning},
		{"critical at threshold", 90.0, ColorCritical},
		{"critical max", 100.0, ColorCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, MetricColor(tt.percent))
		})
	}
}

func TestMetricStyle(t *testing.T) {
	assert.Equal(t, lipgloss.TerminalColor(ColorCritical), MetricStyle(95).GetForeground())
}

func TestSectionHeader(t *testing.T) {
	tests := []struct {
		name  string
		title string
		value string
		width int
	}{
		{"normal width", "System", "linux", 34},
		{"narrow width", "System", "linux", 15},
		{"minimum width", "A", "B", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SectionHeader(tt.title, tt.value, tt.width)
			assert.Contains(t, result, "╭")
			assert.Contains(t, result, "╮")
			assert.Contains(t, result, tt.title)
		})
	}
}

func TestSectionHeaderWidth(t *testing.T) {
	assert.Equal(t, 34, lipgloss.Width(SectionHeader("System", "linux", 34)))
}

func TestSectionFooter(t *testing.T) {
	for _, width := range []int{50, 2, 1} {
		result := SectionFooter(width)
		assert.Contains(t, result, "╰")
		assert.Contains(t, result, "╯")
		assert.Equal(t, max(width, 2), lipgloss.Width(result))
	}
}

func TestSectionContentLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		width   int
		want    int
	}{
		{"normal content", "Hello World", 40, 40},
		{"empty content", "", 20, 20},
		{"truncated", "a long line of text", 10, 10},
		{"below minimum", "Y", 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SectionContentLine(tt.content, tt.width)
			assert.Contains(t, result, "│")
			assert.Equal(t, tt.want, lipgloss.Width(result))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"hello", 0, ""},
		{"hello", 1, "…"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.width), "%q at %d", tt.in, tt.width)
	}
}

func TestLipColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#ff0055"), lipColor(plot.RGB(0xFF, 0x00, 0x55)))
}

func TestThresholdConstants(t *testing.T) {
	assert.Equal(t, 70.0, WarningThreshold)
	assert.Equal(t, 90.0, CriticalThreshold)
}
