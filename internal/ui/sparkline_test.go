package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestRenderSparkline_Empty(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		width int
	}{
		{"nil data", nil, 10},
		{"empty data", []float64{}, 10},
		{"zero width", []float64{50}, 0},
		{"negative width", []float64{50}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, RenderSparkline(tt.data, tt.width))
		})
	}
}

func TestRenderSparkline_FixedScale(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want string
	}{
		{"floor", []float64{0}, "▁"},
		{"ceiling", []float64{100}, "█"},
		{"ramp", []float64{0, 50, 100}, "▁▄█"},
		{"flat low values stay low", []float64{5, 5, 5}, "▁▁▁"},
		{"clamped", []float64{-20, 250}, "▁█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ansi.Strip(RenderSparkline(tt.data, 10)))
		})
	}
}

func TestRenderSparkline_KeepsMostRecent(t *testing.T) {
	data := []float64{100, 100, 0, 0}
	assert.Equal(t, "▁▁", ansi.Strip(RenderSparkline(data, 2)))
	assert.Equal(t, "██▁▁", ansi.Strip(RenderSparkline(data, 10)))
}

func TestRenderScaledSparkline(t *testing.T) {
	assert.Equal(t, "▁▄█", ansi.Strip(RenderScaledSparkline([]float64{0, 1500, 3000}, 10, 3000)))
	assert.Empty(t, RenderScaledSparkline([]float64{1}, 10, 0))
}

func TestGetThresholdColor(t *testing.T) {
	tests := []struct {
		percent float64
		want    lipgloss.Color
	}{
		{0, ColorSuccess},
		{59.9, ColorSuccess},
		{60, ColorWarning},
		{79.9, ColorWarning},
		{80, ColorError},
		{100, ColorError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, getThresholdColor(tt.percent), "percent %.1f", tt.percent)
	}
}
