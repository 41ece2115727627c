package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/rileyhilliard/hwdash/internal/plot"
)

// Dashboard color palette - Gen Z Electric Synthwave
const (
	// Background colors (glassmorphism-inspired)
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for metrics - neon style
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors - neon pink primary, cyan secondary
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple
	ColorValue     = lipgloss.Color("#00FFFF") // Neon cyan
)

// surface is ColorSurfaceBg as a plot colour, the backdrop fills blend over.
var surface = plot.RGB(0x12, 0x12, 0x1A)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	// Panel styles; each plot sits in one.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	PanelFocusedStyle = PanelStyle.
				BorderForeground(ColorAccent)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	AxisLabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Italic(true)

	// Text styles
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	FrozenBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorDarkBg).
				Background(ColorWarning).
				Bold(true).
				Padding(0, 1)
)

// MetricColor returns the appropriate color for a percentage-based metric.
// Uses threshold-based coloring: green < 70%, yellow 70-90%, red > 90%.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle returns a style with the appropriate foreground color for the metric.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// lipColor converts a plot colour for lipgloss.
func lipColor(c plot.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// Left: "╭─ " (3 chars) + title + " " (1 char)
	leftWidth := 3 + lipgloss.Width(title) + 1

	// Right: " " (1 char) + value + " ╮" (2 chars)
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorValue).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	middle := strings.Repeat("─", width-2)
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, properly padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)

	// Inner width is total width minus the borders and padding: "│ " on left and " │" on right
	innerWidth := width - 4
	contentWidth := lipgloss.Width(content)
	if contentWidth > innerWidth {
		content = ansi.Truncate(content, innerWidth, "…")
		contentWidth = lipgloss.Width(content)
	}

	padding := innerWidth - contentWidth
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}

// truncate shortens plain text to width cells, ending in an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
