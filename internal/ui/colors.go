package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for command output. ANSI codes keep plain terminals and
// piped output readable; the dashboard uses its own true-colour palette.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors is the pink to green sweep the spinner cycles through.
var GradientColors = []lipgloss.Color{
	"#FF2E97",
	"#BF40FF",
	"#00FFFF",
	"#39FF14",
}

func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }

// DisableColors switches lipgloss to monochrome output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
