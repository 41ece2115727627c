package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewGrid ViewMode = iota
	ViewZoom
)

// KeyMap holds the dashboard key bindings. It implements help.KeyMap so the
// footer and the help overlay list the same keys.
type KeyMap struct {
	Quit   key.Binding
	Next   key.Binding
	Prev   key.Binding
	First  key.Binding
	Last   key.Binding
	Zoom   key.Binding
	Back   key.Binding
	Freeze key.Binding
	Help   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "j", "down", "right"),
			key.WithHelp("tab/j", "next plot"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "k", "up", "left"),
			key.WithHelp("shift+tab/k", "previous plot"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "first plot"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "last plot"),
		),
		Zoom: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "zoom plot"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to grid"),
		),
		Freeze: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "freeze display"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Zoom, k.Freeze, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.First, k.Last},
		{k.Zoom, k.Back, k.Freeze, k.Help, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	// If help is showing, Esc closes it
	if m.showHelp && key.Matches(msg, m.keys.Back) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Next):
		if len(m.kinds) > 0 {
			m.focus = (m.focus + 1) % len(m.kinds)
		}
		return true, nil

	case key.Matches(msg, m.keys.Prev):
		if len(m.kinds) > 0 {
			m.focus = (m.focus - 1 + len(m.kinds)) % len(m.kinds)
		}
		return true, nil

	case key.Matches(msg, m.keys.First):
		m.focus = 0
		return true, nil

	case key.Matches(msg, m.keys.Last):
		if len(m.kinds) > 0 {
			m.focus = len(m.kinds) - 1
		}
		return true, nil

	case key.Matches(msg, m.keys.Zoom):
		if len(m.kinds) > 0 {
			m.viewMode = ViewZoom
		}
		return true, nil

	case key.Matches(msg, m.keys.Back):
		m.viewMode = ViewGrid
		return true, nil

	case key.Matches(msg, m.keys.Freeze):
		m.frozen = !m.frozen
		if !m.frozen {
			m.shown = m.live
		}
		return true, nil
	}

	return false, nil
}
