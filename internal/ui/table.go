package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table with the CLI styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is selectable in printed output.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a table for printed command output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// DoctorCheckRow represents a row in the doctor diagnostic table.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string
	Message    string
	Suggestion string
}

// RenderDoctorTable renders check results grouped by category, in the order
// categories first appear.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	categories := make(map[string][]DoctorCheckRow)
	var order []string
	for _, row := range rows {
		if _, ok := categories[row.Category]; !ok {
			order = append(order, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range order {
		b.WriteString(headerStyle.Render(cat) + "\n")
		for _, row := range categories[cat] {
			b.WriteString("  " + statusIcon(row.Status) + " " + row.Message + "\n")
			if row.Suggestion != "" && row.Status != "pass" {
				b.WriteString("    " + MutedStyle().Render(row.Suggestion) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func statusIcon(status string) string {
	switch status {
	case "pass":
		return SuccessStyle().Render(SymbolSuccess)
	case "warn":
		return WarningStyle().Render(SymbolWarning)
	case "fail":
		return ErrorStyle().Render(SymbolFail)
	default:
		return MutedStyle().Render(SymbolPending)
	}
}

// PadRight pads s with spaces to a visible width.
func PadRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
