package ui

// Status symbols shared by command output.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolWarning  = "⚠"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolComplete = "●"
	SymbolSkipped  = "⊘"
)
