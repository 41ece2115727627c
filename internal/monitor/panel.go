package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hwdash/internal/plot"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// Smallest panel that still draws a plot, border included.
const (
	minPanelWidth  = 16
	minPanelHeight = 5
)

const legendSwatch = "■"

// TerminalOptions adapts render options to braille-dot units: no margins
// (tick labels get their own column), one text row per legend row and
// labels measured in terminal cells. Axis limits are resolved here so the
// label column is sized for the labels Render will produce.
func TerminalOptions(base plot.Options) plot.Options {
	opts := base
	opts.Margins = plot.Margins{}
	if opts.Ticks < 2 {
		opts.Ticks = plot.DefaultTicks
	}
	if opts.MaxFanRPM <= 0 {
		opts.MaxFanRPM = plot.DefaultMaxFanRPM
	}
	if opts.TemperatureMax <= 0 {
		opts.TemperatureMax = plot.DefaultTemperatureMax
	}
	opts.Legend = plot.LegendStyle{
		ItemHeight:   dotsY,
		TextOffset:   2 * dotsX, // swatch plus a space
		ItemSpacing:  2 * dotsX,
		SwatchLength: dotsX,
	}
	opts.Measure = func(label string) float64 {
		return float64(lipgloss.Width(label) * dotsX)
	}
	return opts
}

// renderPanel draws one plot into a bordered box of exactly width x height
// cells. opts must already be in dot units (see TerminalOptions).
func renderPanel(kind plot.Kind, state telemetry.State, opts plot.Options, width, height int, focused bool) string {
	style := PanelStyle
	if focused {
		style = PanelFocusedStyle
	}

	innerW, innerH := width-2, height-2
	if width < minPanelWidth || height < minPanelHeight {
		title := truncate(kind.Title(state), max(innerW, 0))
		return style.Render(padLines([]string{PanelTitleStyle.Render(title)}, max(innerW, 0), max(innerH, 1)))
	}

	labelW := axisLabelWidth(kind.Axis(opts), opts.Ticks)
	canvasW := innerW - labelW
	bodyRows := innerH - 1

	// Legend layout depends only on width, so one pass tells how many rows
	// it needs; the canvas then gets what is left.
	frame := plot.Render(kind, state, NewCanvas(canvasW, bodyRows).Bounds(), opts)
	legendRows := min(plot.Rows(frame.Legend), bodyRows/2)
	canvasRows := bodyRows - legendRows
	if legendRows > 0 {
		frame = plot.Render(kind, state, NewCanvas(canvasW, canvasRows).Bounds(), opts)
	}

	lines := make([]string, 0, innerH)
	lines = append(lines, PanelTitleStyle.Render(truncate(frame.Title, innerW)))

	labels := axisLabels(frame.Ticks, canvasRows, labelW)
	plotLines := renderPlotArea(frame, canvasW, canvasRows)
	for i := 0; i < canvasRows; i++ {
		lines = append(lines, labels[i]+plotLines[i])
	}

	for _, row := range renderLegend(frame.Legend, legendRows, canvasW) {
		lines = append(lines, strings.Repeat(" ", labelW)+row)
	}

	return style.Render(padLines(lines, innerW, innerH))
}

// renderPlotArea rasterizes the frame's lines, or centres its placeholder.
func renderPlotArea(frame plot.Frame, width, height int) []string {
	if frame.Placeholder != "" {
		placed := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			PlaceholderStyle.Render(truncate(frame.Placeholder, width)))
		return strings.Split(placed, "\n")
	}

	canvas := NewCanvas(width, height)
	for _, line := range frame.Lines {
		canvas.FillPolygon(line.Fill, line.Color, frame.FillAlpha)
	}
	for _, line := range frame.Lines {
		canvas.Polyline(line.Points, line.Color)
	}
	return strings.Split(canvas.Render(), "\n")
}

// axisLabelWidth is the widest tick label plus one space.
func axisLabelWidth(axis plot.Axis, ticks int) int {
	w := 0
	for _, t := range axis.Ticks(plot.Rect{}, ticks) {
		w = max(w, lipgloss.Width(t.Label))
	}
	return w + 1
}

// axisLabels places tick labels on the rows they fall on. The top and
// bottom ticks win; the others are dropped when they would touch a row
// that already has a label.
func axisLabels(ticks []plot.Tick, rows, width int) []string {
	text := make([]string, rows)
	if rows > 0 && len(ticks) > 0 {
		order := make([]plot.Tick, 0, len(ticks))
		order = append(order, ticks[len(ticks)-1], ticks[0])
		if len(ticks) > 2 {
			order = append(order, ticks[1:len(ticks)-1]...)
		}

		taken := func(r int) bool { return r >= 0 && r < rows && text[r] != "" }
		for _, t := range order {
			r := dot(t.Y, rows*dotsY) / dotsY
			if taken(r) || taken(r-1) || taken(r+1) {
				continue
			}
			text[r] = t.Label
		}
	}

	out := make([]string, rows)
	for i, label := range text {
		out[i] = AxisLabelStyle.Render(fmt.Sprintf("%*s ", width-1, label))
	}
	return out
}

// renderLegend lays legend items out on text rows at the columns the
// layout computed. Items past maxRows are dropped.
func renderLegend(items []plot.LegendItem, maxRows, width int) []string {
	rows := make([]string, maxRows)
	cols := make([]int, maxRows)
	for _, item := range items {
		if item.Row >= maxRows {
			break
		}
		start := int(item.Origin.X) / dotsX
		if gap := start - cols[item.Row]; gap > 0 {
			rows[item.Row] += strings.Repeat(" ", gap)
			cols[item.Row] += gap
		}
		swatch := lipgloss.NewStyle().Foreground(lipColor(item.Color)).Render(legendSwatch)
		label := truncate(item.Label, width-cols[item.Row]-2)
		rows[item.Row] += swatch + " " + LabelStyle.Render(label)
		cols[item.Row] += 2 + lipgloss.Width(label)
	}
	return rows
}

// padLines returns exactly height lines, each padded to at least width cells.
func padLines(lines []string, width, height int) string {
	out := make([]string, height)
	for i := range out {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		if w := lipgloss.Width(line); w < width {
			line += strings.Repeat(" ", width-w)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}
