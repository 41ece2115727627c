package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hwdash/internal/plot"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// clockInterval refreshes the snapshot ages in the header even when no
// sampler is publishing.
const clockInterval = time.Second

// Options configures a dashboard Model.
type Options struct {
	// Context bounds the mailbox receives. Cancel it after the program exits.
	Context context.Context

	CPU *telemetry.Mailbox[*telemetry.CPUSnapshot]
	// GPU is nil when no GPU backend is bound.
	GPU *telemetry.Mailbox[*telemetry.GPUSnapshot]

	// State is shown until the first snapshots arrive. Its GPUAvailable and
	// System fields are kept for the life of the model.
	State telemetry.State

	Kinds []plot.Kind
	Plot  plot.Options
	// Columns fixes the grid width; 0 picks it from the terminal width.
	Columns int

	Now func() time.Time
}

// Model is the Bubble Tea model for the hardware dashboard.
type Model struct {
	ctx    context.Context
	cpuBus *telemetry.Mailbox[*telemetry.CPUSnapshot]
	gpuBus *telemetry.Mailbox[*telemetry.GPUSnapshot]

	// live always holds the newest snapshots; shown is what is drawn and
	// stops following live while the display is frozen.
	live   telemetry.State
	shown  telemetry.State
	frozen bool

	kinds    []plot.Kind
	opts     plot.Options
	columns  int
	focus    int
	viewMode ViewMode

	keys     KeyMap
	help     help.Model
	showHelp bool
	quitting bool

	// Set once a sampler's mailbox reports closed.
	cpuClosed bool
	gpuClosed bool

	width  int
	height int
	now    func() time.Time
}

// cpuSnapshotMsg carries a snapshot received from the CPU mailbox.
type cpuSnapshotMsg struct{ snap *telemetry.CPUSnapshot }

// gpuSnapshotMsg carries a snapshot received from the GPU mailbox.
type gpuSnapshotMsg struct{ snap *telemetry.GPUSnapshot }

// busClosedMsg reports that a mailbox was closed by its producer side.
type busClosedMsg struct{ gpu bool }

// clockMsg signals a periodic header refresh.
type clockMsg time.Time

// NewModel creates a dashboard model reading from the given mailboxes.
func NewModel(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return Model{
		ctx:     opts.Context,
		cpuBus:  opts.CPU,
		gpuBus:  opts.GPU,
		live:    opts.State,
		shown:   opts.State,
		kinds:   opts.Kinds,
		opts:    TerminalOptions(opts.Plot),
		columns: opts.Columns,
		keys:    DefaultKeyMap(),
		help:    newHelp(),
		now:     opts.Now,
	}
}

// Init starts listening on both mailboxes and the header clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.receiveCPUCmd(),
		m.receiveGPUCmd(),
		clockCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case cpuSnapshotMsg:
		m.live.CPU = msg.snap
		m.follow()
		return m, m.receiveCPUCmd()

	case gpuSnapshotMsg:
		m.live.GPU = msg.snap
		m.follow()
		return m, m.receiveGPUCmd()

	case busClosedMsg:
		if msg.gpu {
			m.gpuClosed = true
		} else {
			m.cpuClosed = true
		}

	case clockMsg:
		return m, clockCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// follow copies the live state to the display unless it is frozen.
func (m *Model) follow() {
	if !m.frozen {
		m.shown = m.live
	}
}

// Frozen reports whether the display is frozen.
func (m Model) Frozen() bool { return m.frozen }

// Focused returns the kind of the focused plot, or nil without plots.
func (m Model) Focused() plot.Kind {
	if len(m.kinds) == 0 {
		return nil
	}
	return m.kinds[m.focus]
}

// Shown returns the state currently drawn.
func (m Model) Shown() telemetry.State { return m.shown }

func (m Model) receiveCPUCmd() tea.Cmd {
	if m.cpuBus == nil {
		return nil
	}
	return receiveCmd(m.ctx, m.cpuBus, false, func(s *telemetry.CPUSnapshot) tea.Msg {
		return cpuSnapshotMsg{snap: s}
	})
}

func (m Model) receiveGPUCmd() tea.Cmd {
	if m.gpuBus == nil {
		return nil
	}
	return receiveCmd(m.ctx, m.gpuBus, true, func(s *telemetry.GPUSnapshot) tea.Msg {
		return gpuSnapshotMsg{snap: s}
	})
}

// receiveCmd blocks on one mailbox receive. Update re-arms it after every
// snapshot, so at most one receive per mailbox is outstanding.
func receiveCmd[T any](ctx context.Context, bus *telemetry.Mailbox[T], gpu bool, wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, err := bus.Receive(ctx)
		switch {
		case err == nil:
			return wrap(v)
		case errors.Is(err, telemetry.ErrMailboxClosed):
			return busClosedMsg{gpu: gpu}
		default:
			// Context cancelled: the program is shutting down.
			return nil
		}
	}
}

// clockCmd returns a command that sends a clock tick after clockInterval.
func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
