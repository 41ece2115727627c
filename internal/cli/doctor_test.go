package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/hwdash/internal/doctor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCheck implements doctor.Check for testing
type mockCheck struct {
	name     string
	result   doctor.CheckResult
	category string
	fixed    bool
	fixErr   error
}

func (m *mockCheck) Name() string {
	if m.name == "" {
		return "mock_check"
	}
	return m.name
}

func (m *mockCheck) Run() doctor.CheckResult {
	return m.result
}

func (m *mockCheck) Category() string {
	if m.category == "" {
		return "TEST"
	}
	return m.category
}

func (m *mockCheck) Fix() error {
	m.fixed = true
	return m.fixErr
}

// stubDoctor replaces the check runner with one returning fixed results.
func stubDoctor(t *testing.T, results []doctor.CheckResult, asJSON, fix bool) {
	t.Helper()
	oldRun, oldJSON, oldFix := runChecks, doctorJSON, doctorFix
	t.Cleanup(func() { runChecks, doctorJSON, doctorFix = oldRun, oldJSON, oldFix })

	runChecks = func(checks []doctor.Check) []doctor.CheckResult {
		require.Len(t, checks, len(results), "one result per collected check")
		return append([]doctor.CheckResult(nil), results...)
	}
	doctorJSON, doctorFix = asJSON, fix
}

func passing(n int) []doctor.CheckResult {
	results := make([]doctor.CheckResult, n)
	for i := range results {
		results[i] = doctor.CheckResult{Name: fmt.Sprintf("check_%d", i), Status: doctor.StatusPass, Message: "ok"}
	}
	return results
}

func TestCollectChecks(t *testing.T) {
	isolate(t)

	checks := collectChecks("")
	require.Len(t, checks, 5)

	var categories []string
	for _, c := range checks {
		categories = append(categories, c.Category())
	}
	assert.Equal(t, []string{"CONFIG", "CONFIG", "CPU", "GPU", "GPU"}, categories)
}

func TestCollectChecksBrokenConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir+"/.hwdash.yaml", "cpu: [not, a, map\n")

	// The hardware checks fall back to the defaults.
	assert.Len(t, collectChecks(""), 5)
}

func TestAttemptFixes(t *testing.T) {
	t.Run("pass status is left alone", func(t *testing.T) {
		results := []doctor.CheckResult{{Status: doctor.StatusPass, Message: "All good", Fixable: true}}
		check := &mockCheck{result: results[0]}

		newResults := attemptFixes([]doctor.Check{check}, results)
		assert.False(t, check.fixed)
		assert.Equal(t, results, newResults)
	})

	t.Run("not fixable", func(t *testing.T) {
		original := doctor.CheckResult{Status: doctor.StatusFail, Message: "Not fixable failure"}
		check := &mockCheck{result: original}

		newResults := attemptFixes([]doctor.Check{check}, []doctor.CheckResult{original})
		assert.False(t, check.fixed)
		assert.Equal(t, original, newResults[0])
	})

	t.Run("fix error keeps the original", func(t *testing.T) {
		original := doctor.CheckResult{Status: doctor.StatusWarn, Message: "No config file", Fixable: true}
		check := &mockCheck{result: doctor.CheckResult{Status: doctor.StatusPass}, fixErr: fmt.Errorf("read-only")}

		newResults := attemptFixes([]doctor.Check{check}, []doctor.CheckResult{original})
		assert.True(t, check.fixed)
		assert.Equal(t, original, newResults[0])
	})

	t.Run("multiple checks", func(t *testing.T) {
		results := []doctor.CheckResult{
			{Status: doctor.StatusPass, Message: "Already passing"},
			{Status: doctor.StatusFail, Message: "Failing check", Fixable: true},
			{Status: doctor.StatusWarn, Message: "Warning check", Fixable: true},
			{Status: doctor.StatusFail, Message: "Not fixable"},
		}
		checks := []doctor.Check{
			&mockCheck{result: results[0]},
			&mockCheck{result: doctor.CheckResult{Status: doctor.StatusPass, Message: "Fixed 1"}},
			&mockCheck{result: doctor.CheckResult{Status: doctor.StatusPass, Message: "Fixed 2"}},
			&mockCheck{result: results[3]},
		}

		newResults := attemptFixes(checks, results)
		assert.Equal(t, doctor.StatusPass, newResults[0].Status)
		assert.Equal(t, "Fixed 1", newResults[1].Message)
		assert.Equal(t, "Fixed 2", newResults[2].Message)
		assert.Equal(t, doctor.StatusFail, newResults[3].Status)
	})
}

func TestBuildDoctorOutput(t *testing.T) {
	checks := []doctor.Check{
		&mockCheck{category: "CONFIG"},
		&mockCheck{category: "CPU"},
		&mockCheck{category: "GPU"},
		&mockCheck{category: "GPU"},
	}
	results := []doctor.CheckResult{
		{Status: doctor.StatusWarn, Message: "No config file", Fixable: true},
		{Status: doctor.StatusPass, Message: "8 cores"},
		{Status: doctor.StatusFail, Message: "No GPU"},
		{Status: doctor.StatusPass, Message: "nvidia-smi: not needed"},
	}

	out := buildDoctorOutput(checks, results)

	require.Len(t, out.Categories, 3)
	assert.Equal(t, "CONFIG", out.Categories[0].Name)
	assert.Equal(t, "CPU", out.Categories[1].Name)
	assert.Equal(t, "GPU", out.Categories[2].Name)
	assert.Len(t, out.Categories[2].Results, 2)

	assert.Equal(t, SummaryOutput{Pass: 2, Warn: 1, Fail: 1, Fixable: 1, AllClear: false}, out.Summary)
}

func TestBuildDoctorOutputAllClear(t *testing.T) {
	out := buildDoctorOutput([]doctor.Check{&mockCheck{}}, passing(1))
	assert.True(t, out.Summary.AllClear)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"all_clear":true`)
}

func TestOutputDoctorText(t *testing.T) {
	checks := []doctor.Check{&mockCheck{category: "CONFIG"}, &mockCheck{category: "GPU"}}

	t.Run("all clear", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, outputDoctorText(&buf, checks, passing(2), false))

		got := ansi.Strip(buf.String())
		assert.Contains(t, got, "hwdash diagnostic report")
		assert.Contains(t, got, "CONFIG")
		assert.Contains(t, got, "✓ Everything looks good")
	})

	t.Run("issues with fix hint", func(t *testing.T) {
		results := []doctor.CheckResult{
			{Status: doctor.StatusWarn, Message: "No config file found", Suggestion: "Run 'hwdash config init'", Fixable: true},
			{Status: doctor.StatusFail, Message: "No GPU: NVML failed", Suggestion: "Pass --no-gpu"},
		}

		var buf bytes.Buffer
		require.NoError(t, outputDoctorText(&buf, checks, results, false))

		got := ansi.Strip(buf.String())
		assert.Contains(t, got, "Run 'hwdash config init'")
		assert.Contains(t, got, "2 issues found")
		assert.Contains(t, got, "Run with --fix")
	})

	t.Run("no fix hint after fixing", func(t *testing.T) {
		results := []doctor.CheckResult{
			{Status: doctor.StatusWarn, Message: "No config file found", Fixable: true},
			{Status: doctor.StatusPass, Message: "ok"},
		}

		var buf bytes.Buffer
		require.NoError(t, outputDoctorText(&buf, checks, results, true))

		got := ansi.Strip(buf.String())
		assert.Contains(t, got, "1 issue found")
		assert.NotContains(t, got, "--fix")
	})
}

func TestDoctorCommand(t *testing.T) {
	t.Run("json all clear", func(t *testing.T) {
		isolate(t)
		stubDoctor(t, passing(5), true, false)

		var buf bytes.Buffer
		require.NoError(t, doctorCommand(&buf))

		var env struct {
			Success bool         `json:"success"`
			Data    DoctorOutput `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
		assert.True(t, env.Success)
		assert.True(t, env.Data.Summary.AllClear)
		assert.Equal(t, 5, env.Data.Summary.Pass)
	})

	t.Run("failures return an error", func(t *testing.T) {
		isolate(t)
		results := passing(5)
		results[3] = doctor.CheckResult{Status: doctor.StatusFail, Message: "No GPU"}
		stubDoctor(t, results, false, false)

		var buf bytes.Buffer
		err := doctorCommand(&buf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 issue found")
		assert.Contains(t, ansi.Strip(buf.String()), "No GPU")
	})

	t.Run("warnings are not fatal", func(t *testing.T) {
		isolate(t)
		results := passing(5)
		results[0] = doctor.CheckResult{Status: doctor.StatusWarn, Message: "No config file found"}
		stubDoctor(t, results, false, false)

		require.NoError(t, doctorCommand(&bytes.Buffer{}))
	})
}
