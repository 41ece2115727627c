// Package monitor implements the real-time TUI dashboard for local CPU,
// memory and GPU telemetry.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds the latest snapshots, plot focus, zoom and freeze state
//   - Update: Processes messages (keystrokes, window size, new snapshots)
//   - View: Renders the current state to a string for display
//
// # Message Flow
//
// The samplers run in their own goroutines and publish immutable snapshots
// into one mailbox each. The model never polls them:
//
//  1. receiveCmd blocks on a mailbox and returns the newest snapshot
//  2. Update stores it as the live state and re-arms the receive
//  3. Unless the display is frozen, the shown state follows the live one
//  4. View renders every plot from the shown state
//
// A slow redraw therefore never slows a sampler down; intermediate snapshots
// are simply replaced in the mailbox and counted as skipped in the header.
//
// # Rendering
//
// Plot geometry comes from internal/plot in braille-dot units (2x4 dots per
// cell, see TerminalOptions). Canvas rasterizes the lines into braille and
// tints the area under each line by compositing its colour over the panel
// background.
//
// # Layout
//
// Plots are laid out in a grid whose column count follows the terminal width
// (or the dashboard.columns setting). From BreakpointSidebar columns a system
// panel with machine details and the latest readings is shown on the right.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C        - Quit
//	Tab, j, ↓        - Focus next plot
//	Shift+Tab, k, ↑  - Focus previous plot
//	Enter            - Zoom the focused plot
//	Esc              - Back to the grid
//	Space            - Freeze / unfreeze the display
//	?                - Toggle help overlay
package monitor
