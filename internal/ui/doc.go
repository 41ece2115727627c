// Package ui holds the styling helpers for hwdash's printed command output:
// snapshot summaries, doctor reports and the plots listing. The interactive
// dashboard lives in internal/monitor.
//
// Colors are ANSI codes so output stays legible in plain terminals and logs.
// Use DisableColors for monochrome output.
//
//	ColorSuccess (green)  - Passing checks
//	ColorError   (red)    - Failures
//	ColorWarning (yellow) - Warnings
//	ColorMuted   (gray)   - Suggestions, timing
//
// Sparklines summarize a series on a fixed scale in eight block levels:
//
//	ui.RenderSparkline(cpu.Average, 30)           // percentages
//	ui.RenderScaledSparkline(fan, 30, maxFanRPM)  // any unit
//
// The Spinner animates on stderr while a command samples:
//
//	s := ui.NewSpinner("Sampling")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail()
package ui
