package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorConstants(t *testing.T) {
	tests := []struct {
		name  string
		color lipgloss.Color
		want  string
	}{
		{"success", ColorSuccess, "2"},
		{"error", ColorError, "1"},
		{"warning", ColorWarning, "3"},
		{"primary", ColorPrimary, "7"},
		{"secondary", ColorSecondary, "4"},
		{"muted", ColorMuted, "8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.color))
		})
	}
}

func TestGradientColors(t *testing.T) {
	require.NotEmpty(t, GradientColors)
	for _, c := range GradientColors {
		assert.Regexp(t, `^#[0-9A-F]{6}$`, string(c))
	}
}

func TestStylesRender(t *testing.T) {
	styles := map[string]lipgloss.Style{
		"success": SuccessStyle(),
		"error":   ErrorStyle(),
		"warning": WarningStyle(),
		"muted":   MutedStyle(),
	}
	for name, style := range styles {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style.Render("text"), "text")
		})
	}
}

func TestDisableColors(t *testing.T) {
	defer lipgloss.SetColorProfile(lipgloss.ColorProfile())

	DisableColors()
	assert.Equal(t, "plain", SuccessStyle().Render("plain"))
}
