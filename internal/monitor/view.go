package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// Layout breakpoints, in terminal columns.
const (
	// BreakpointSidebar is the width from which the system panel is shown.
	BreakpointSidebar = 110
	BreakpointTwoCol  = 90
	BreakpointThree   = 170

	sidebarWidth = 34
	infoLabelW   = 9
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.width == 0 || m.height == 0 {
		return LabelStyle.Render("Starting hwdash...")
	}

	bodyH := max(m.height-2, 1)
	var body string
	switch {
	case len(m.kinds) == 0:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center,
			PlaceholderStyle.Render("No plots configured"))
	case m.viewMode == ViewZoom:
		body = renderPanel(m.kinds[m.focus], m.shown, m.opts, m.width, bodyH, true)
	case m.width >= BreakpointSidebar:
		side := m.renderSystemPanel(sidebarWidth, bodyH)
		grid := m.renderGrid(m.width-sidebarWidth, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, grid, side)
	default:
		body = m.renderGrid(m.width, bodyH)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

// renderHeader renders the title bar with the machine summary and the age
// of each sampler's latest snapshot.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("hwdash")

	parts := []string{}
	if host := m.shown.System.Hostname; host != "" {
		parts = append(parts, host)
	}
	if n := m.shown.CPU.CoreCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d cores", n))
	}
	parts = append(parts, m.gpuLabel())
	parts = append(parts, "cpu "+m.ageText(cpuTaken(m.live.CPU), m.cpuClosed))
	if m.gpuBus != nil {
		parts = append(parts, "gpu "+m.ageText(gpuTaken(m.live.GPU), m.gpuClosed))
	}
	if dropped := m.dropped(); dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", dropped))
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	header := title + stats
	if m.frozen {
		header += " " + FrozenBadgeStyle.Render("FROZEN")
	}
	return HeaderStyle.MaxWidth(m.width).Render(header)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	return FooterStyle.MaxWidth(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// gridColumns picks how many panels go side by side.
func (m Model) gridColumns(width int) int {
	cols := m.columns
	if cols <= 0 {
		switch {
		case width >= BreakpointThree:
			cols = 3
		case width >= BreakpointTwoCol:
			cols = 2
		default:
			cols = 1
		}
	}
	return max(min(cols, len(m.kinds)), 1)
}

// renderGrid lays the plots out row by row, splitting width and height
// evenly. The last column and row absorb the remainder.
func (m Model) renderGrid(width, height int) string {
	cols := m.gridColumns(width)
	rows := (len(m.kinds) + cols - 1) / cols

	var lines []string
	for r := 0; r < rows; r++ {
		panelH := height / rows
		if r == rows-1 {
			panelH = height - panelH*(rows-1)
		}

		var row []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(m.kinds) {
				break
			}
			panelW := width / cols
			if c == cols-1 {
				panelW = width - panelW*(cols-1)
			}
			row = append(row, renderPanel(m.kinds[i], m.shown, m.opts, panelW, panelH, i == m.focus))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderSystemPanel renders the side panel with machine details and the
// latest readings.
func (m Model) renderSystemPanel(width, height int) string {
	sys := m.shown.System
	cpu, gpu := m.shown.CPU, m.shown.GPU

	lines := []string{SectionHeader("System", sys.OS, width)}
	add := func(label, value string) {
		lines = append(lines, m.infoLine(label, ValueStyle, value, width))
	}
	addMetric := func(label string, percent float64, value string) {
		lines = append(lines, m.infoLine(label, MetricStyle(percent), value, width))
	}

	add("Host", orDash(sys.Hostname))
	add("Platform", orDash(sys.Platform))
	add("Kernel", orDash(sys.Kernel))
	add("CPU", orDash(sys.CPUModel))
	if sys.Uptime > 0 {
		add("Uptime", formatUptime(sys.Uptime))
	}

	lines = append(lines, SectionContentLine("", width))
	if cpu != nil {
		avg := telemetry.Latest(cpu.Average)
		addMetric("Load", avg, fmt.Sprintf("%.1f%% on %d cores", avg, cpu.CoreCount()))
		mem := telemetry.Latest(cpu.Memory)
		addMetric("Memory", mem, fmt.Sprintf("%s / %s", formatBytes(cpu.UsedMemoryBytes), formatBytes(cpu.TotalMemoryBytes)))
	} else {
		add("Load", "waiting")
	}

	if m.shown.GPUAvailable {
		lines = append(lines, SectionContentLine("", width))
		if gpu != nil {
			add("GPU", orDash(gpu.Name))
			vram := telemetry.Latest(gpu.VRAM)
			addMetric("VRAM", vram, fmt.Sprintf("%s / %s", formatBytes(gpu.UsedVRAMBytes), formatBytes(gpu.TotalVRAMBytes)))
			temp := telemetry.Latest(gpu.Temperature)
			addMetric("Temp", temp, fmt.Sprintf("%.0f°C", temp))
		} else {
			add("GPU", "waiting")
		}
	}

	for len(lines) < height-1 {
		lines = append(lines, SectionContentLine("", width))
	}
	lines = append(lines[:min(len(lines), max(height-1, 1))], SectionFooter(width))
	return strings.Join(lines, "\n")
}

// infoLine renders a labelled value inside the side panel.
func (m Model) infoLine(label string, style lipgloss.Style, value string, width int) string {
	valueW := width - 4 - infoLabelW
	l := LabelStyle.Render(fmt.Sprintf("%-*s", infoLabelW, label))
	return SectionContentLine(l+style.Render(truncate(value, valueW)), width)
}

func (m Model) gpuLabel() string {
	switch {
	case !m.shown.GPUAvailable:
		return "no GPU"
	case m.shown.GPU != nil && m.shown.GPU.Name != "":
		return m.shown.GPU.Name
	default:
		return "GPU"
	}
}

// dropped totals the snapshots replaced before the dashboard read them.
func (m Model) dropped() uint64 {
	var n uint64
	if m.cpuBus != nil {
		n += m.cpuBus.Dropped()
	}
	if m.gpuBus != nil {
		n += m.gpuBus.Dropped()
	}
	return n
}

// ageText describes how long ago a snapshot was taken.
func (m Model) ageText(taken time.Time, closed bool) string {
	switch {
	case closed:
		return "stopped"
	case taken.IsZero():
		return "waiting"
	}
	return formatAge(m.now().Sub(taken))
}

func cpuTaken(s *telemetry.CPUSnapshot) time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.Taken
}

func gpuTaken(s *telemetry.GPUSnapshot) time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.Taken
}

// formatAge formats a snapshot age: "just now", "3s ago", "2m ago".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
}

// formatUptime formats a duration as "3d 4h", "4h 12m" or "12m".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
