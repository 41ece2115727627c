package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// newHelp returns the footer help model styled for the dashboard.
func newHelp() help.Model {
	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(ColorTextMuted)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(ColorBorder)
	return h
}

// renderHelpOverlay renders a centered help box with keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"))

	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			lines = append(lines, helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
		}
	}

	lines = append(lines, "")
	lines = append(lines, LabelStyle.Render("Press ? to close"))

	helpBox := helpBoxStyle.Render(strings.Join(lines, "\n"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
