package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows an animated status line while a command samples hardware,
// and a final status line with the elapsed time once it finishes.
type Spinner struct {
	mu        sync.Mutex
	w         io.Writer
	label     string
	state     SpinnerState
	frame     int
	startTime time.Time
	lastWidth int
	stop      chan struct{}
	done      chan struct{}
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{w: os.Stderr, label: label}
}

// SetOutput redirects the spinner.
func (s *Spinner) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

// Start begins the animation. Calling it twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	s.mu.Unlock()

	go s.animate()
}

// Success stops the spinner with a success mark.
func (s *Spinner) Success() { s.finish(SpinnerSuccess) }

// Fail stops the spinner with a failure mark.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) finish(state SpinnerState) {
	s.mu.Lock()
	if s.state != SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	s.mu.Unlock()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	symbol := SuccessStyle().Render(SymbolSuccess)
	if state == SpinnerFailed {
		symbol = ErrorStyle().Render(SymbolFail)
	}
	s.clearLocked()
	fmt.Fprintf(s.w, "%s %s %s\n", symbol, s.label, MutedStyle().Render(formatDuration(time.Since(s.startTime))))
}

func (s *Spinner) drawLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	line := lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]) + " " + s.label + "..."

	s.clearLocked()
	fmt.Fprint(s.w, line)
	s.lastWidth = ansi.StringWidth(line)
}

func (s *Spinner) clearLocked() {
	if s.lastWidth > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastWidth)+"\r")
		s.lastWidth = 0
	}
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
