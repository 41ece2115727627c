package doctor

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/hwdash/internal/util"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// IsIssue reports whether the status counts against the verdict.
func (s CheckStatus) IsIssue() bool {
	return s == StatusWarn || s == StatusFail
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // Whether --fix can address this
}

// NeedsFix reports whether --fix should try this result's check.
func (r CheckResult) NeedsFix() bool {
	return r.Fixable && r.Status.IsIssue()
}

// Check is one diagnostic. Hardware checks talk to drivers, so Run may block.
type Check interface {
	Name() string
	// Category groups checks in the report: "CONFIG", "CPU" or "GPU".
	Category() string
	Run() CheckResult
	// Fix attempts to repair the issue. Nil when fixed or not applicable.
	Fix() error
}

// DefaultTimeout bounds the whole doctor run. NVML initialisation and
// nvidia-smi can hang inside a wedged driver without honouring a context.
const DefaultTimeout = 15 * time.Second

type indexedResult struct {
	idx    int
	result CheckResult
}

// RunAll runs every check concurrently and returns the results in check
// order. A check still running after timeout is reported as failed; its
// goroutine is left to finish on its own.
func RunAll(checks []Check, timeout time.Duration) []CheckResult {
	done := make(chan indexedResult, len(checks))
	for i, check := range checks {
		go func(idx int, c Check) {
			done <- indexedResult{idx, c.Run()}
		}(i, check)
	}

	results := make([]CheckResult, len(checks))
	finished := make([]bool, len(checks))
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for remaining := len(checks); remaining > 0; remaining-- {
		select {
		case r := <-done:
			results[r.idx] = r.result
			finished[r.idx] = true
		case <-deadline.C:
			for i, ok := range finished {
				if !ok {
					results[i] = timedOut(checks[i], timeout)
				}
			}
			return results
		}
	}
	return results
}

func timedOut(c Check, timeout time.Duration) CheckResult {
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusFail,
		Message:    fmt.Sprintf("No answer after %v", timeout),
		Suggestion: "The driver may be hung; check dmesg, or set gpu.backend to none",
	}
}

// Group is the results of one category, in check order.
type Group struct {
	Category string        `json:"name"`
	Results  []CheckResult `json:"results"`
}

// GroupResults groups results by their check's category, keeping the
// categories in first-seen order.
func GroupResults(checks []Check, results []CheckResult) []Group {
	var groups []Group
	index := make(map[string]int)
	for i, check := range checks {
		cat := check.Category()
		g, ok := index[cat]
		if !ok {
			g = len(groups)
			index[cat] = g
			groups = append(groups, Group{Category: cat})
		}
		groups[g].Results = append(groups[g].Results, results[i])
	}
	return groups
}

// Tally counts results by status.
type Tally struct {
	Pass    int `json:"pass"`
	Warn    int `json:"warn"`
	Fail    int `json:"fail"`
	Fixable int `json:"fixable"`
}

// Count tallies results.
func Count(results []CheckResult) Tally {
	var t Tally
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			t.Pass++
		case StatusWarn:
			t.Warn++
		case StatusFail:
			t.Fail++
		}
		if r.NeedsFix() {
			t.Fixable++
		}
	}
	return t
}

// Issues is the number of warnings and failures.
func (t Tally) Issues() int { return t.Warn + t.Fail }

// AllClear is true when nothing warned or failed.
func (t Tally) AllClear() bool { return t.Issues() == 0 }

// Summary is the one-line verdict.
func (t Tally) Summary() string {
	if t.AllClear() {
		return "Everything looks good"
	}
	n := t.Issues()
	return fmt.Sprintf("%d %s found", n, util.Pluralize(n, "issue", "issues"))
}
