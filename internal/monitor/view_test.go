package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hwdash/internal/plot"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

func sized(m Model, width, height int) Model {
	m.width = width
	m.height = height
	m.help.Width = width
	return m
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{8 * gib, "8.0 GB"},
		{1024 * gib, "1.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatBytes(tt.bytes))
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{0, "just now"},
		{900 * time.Millisecond, "just now"},
		{3 * time.Second, "3s ago"},
		{59 * time.Second, "59s ago"},
		{2*time.Minute + 10*time.Second, "2m ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.age))
	}
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "12m", formatUptime(12*time.Minute))
	assert.Equal(t, "4h 12m", formatUptime(4*time.Hour+12*time.Minute))
	assert.Equal(t, "3d 4h", formatUptime(76*time.Hour))
}

func TestView_BeforeWindowSize(t *testing.T) {
	m, _ := newTestModel(t, sampleState())
	assert.Contains(t, m.View(), "Starting hwdash")
}

func TestView_Dimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"narrow single column", 80, 40},
		{"two columns", 100, 36},
		{"sidebar", 140, 40},
		{"three columns with sidebar", 220, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, sampleState())
			m = sized(m, tt.width, tt.height)

			lines := strings.Split(m.View(), "\n")
			assert.Len(t, lines, tt.height)
			for i, line := range lines {
				assert.LessOrEqual(t, lipgloss.Width(line), tt.width, "line %d", i)
			}
		})
	}
}

func TestView_GridShowsEveryPlot(t *testing.T) {
	m, _ := newTestModel(t, sampleState())
	m = sized(m, 140, 48)
	out := ansi.Strip(m.View())

	for _, k := range plot.AllKinds() {
		assert.Contains(t, out, k.Title(sampleState())[:8], k.ID())
	}
	assert.Contains(t, out, "System")
	assert.Contains(t, out, "AMD Ryzen 9 5900X")
}

func TestView_Zoom(t *testing.T) {
	m, _ := newTestModel(t, sampleState())
	m = sized(m, 100, 30)
	m.focus = 4 // gpu-fan
	m.viewMode = ViewZoom

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "GPU Fan Speed")
	assert.Contains(t, out, "3000RPM")
	assert.NotContains(t, out, "CPU Core Usage")
}

func TestView_HelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, sampleState())
	m = sized(m, 100, 30)
	m.showHelp = true

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Keyboard Shortcuts")
	assert.Contains(t, out, "freeze display")
}

func TestView_NoPlots(t *testing.T) {
	m := sized(NewModel(Options{State: sampleState()}), 80, 20)
	assert.Contains(t, ansi.Strip(m.View()), "No plots configured")
}

func TestRenderHeader(t *testing.T) {
	m, _ := newTestModel(t, sampleState())
	m = sized(m, 200, 40)

	out := ansi.Strip(m.renderHeader())
	assert.Contains(t, out, "hwdash")
	assert.Contains(t, out, "rig")
	assert.Contains(t, out, "3 cores")
	assert.Contains(t, out, "NVIDIA GeForce RTX 3080")
	assert.Contains(t, out, "cpu 3s ago")
	assert.Contains(t, out, "gpu 3s ago")
	assert.NotContains(t, out, "FROZEN")
	assert.NotContains(t, out, "skipped")

	m.frozen = true
	assert.Contains(t, ansi.Strip(m.renderHeader()), "FROZEN")
}

func TestRenderHeader_Waiting(t *testing.T) {
	m, _ := newTestModel(t, telemetry.State{})
	m = sized(m, 200, 40)

	out := ansi.Strip(m.renderHeader())
	assert.Contains(t, out, "no GPU")
	assert.Contains(t, out, "cpu waiting")
	assert.NotContains(t, out, "cores")
}

func TestRenderHeader_StoppedAndSkipped(t *testing.T) {
	m, b := newTestModel(t, sampleState())
	m = sized(m, 200, 40)
	b.cpu.Publish(&telemetry.CPUSnapshot{})
	b.cpu.Publish(&telemetry.CPUSnapshot{})
	m.cpuClosed = true

	out := ansi.Strip(m.renderHeader())
	assert.Contains(t, out, "cpu stopped")
	assert.Contains(t, out, "1 skipped")
}

func TestRenderHeader_NoGPUBus(t *testing.T) {
	state := sampleState()
	state.GPU = nil
	state.GPUAvailable = false
	m := sized(NewModel(Options{State: state, Kinds: plot.AllKinds(), Now: func() time.Time { return epoch }}), 200, 40)

	out := ansi.Strip(m.renderHeader())
	assert.Contains(t, out, "no GPU")
	assert.NotContains(t, out, "gpu ")
}

func TestRenderSystemPanel(t *testing.T) {
	m, _ := newTestModel(t, sampleState())
	out := m.renderSystemPanel(sidebarWidth, 20)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 20)
	for _, line := range lines {
		assert.Equal(t, sidebarWidth, lipgloss.Width(line))
	}

	text := ansi.Strip(out)
	assert.Contains(t, text, "rig")
	assert.Contains(t, text, "1d 3h")
	assert.Contains(t, text, "8.0 GB / 16.0 GB")
	assert.Contains(t, text, "60°C")
}

func TestRenderSystemPanel_Short(t *testing.T) {
	m, _ := newTestModel(t, sampleState())
	lines := strings.Split(m.renderSystemPanel(sidebarWidth, 5), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[4], "╰")
}

func TestGridColumns(t *testing.T) {
	m, _ := newTestModel(t, sampleState())

	assert.Equal(t, 1, m.gridColumns(80))
	assert.Equal(t, 2, m.gridColumns(BreakpointTwoCol))
	assert.Equal(t, 3, m.gridColumns(BreakpointThree))

	m.columns = 4
	assert.Equal(t, 4, m.gridColumns(80))

	m.kinds = m.kinds[:2]
	assert.Equal(t, 2, m.gridColumns(80))
}
