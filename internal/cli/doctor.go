package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/doctor"
	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/ui"
)

var (
	doctorJSON bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// runChecks is replaced in tests.
var runChecks = func(checks []doctor.Check) []doctor.CheckResult {
	return doctor.RunAll(checks, doctor.DefaultTimeout)
}

// doctorCommand implements the doctor command logic.
func doctorCommand(w io.Writer) error {
	checks := collectChecks(Config())
	results := runChecks(checks)

	if doctorFix {
		results = attemptFixes(checks, results)
	}

	var err error
	if doctorJSON {
		err = WriteJSONSuccess(w, buildDoctorOutput(checks, results))
	} else {
		err = outputDoctorText(w, checks, results, doctorFix)
	}
	if err != nil {
		return err
	}

	if tally := doctor.Count(results); tally.Fail > 0 {
		return errors.New(errors.ErrConfig,
			tally.Summary(),
			"Fix the failed checks above and run 'hwdash doctor' again.")
	}
	return nil
}

// collectChecks gathers the config checks and, using the config in effect
// (or the defaults when it can't be loaded), the hardware checks.
func collectChecks(cfgPath string) []doctor.Check {
	checks := doctor.NewConfigChecks(cfgPath)

	cfg, _, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		// The schema check reports the problem.
		cfg = config.DefaultConfig()
	}
	return append(checks, doctor.NewHardwareChecks(cfg)...)
}

// attemptFixes tries to fix issues where possible.
func attemptFixes(checks []doctor.Check, results []doctor.CheckResult) []doctor.CheckResult {
	for i, result := range results {
		if result.NeedsFix() {
			if err := checks[i].Fix(); err == nil {
				results[i] = checks[i].Run()
			}
		}
	}
	return results
}

func buildDoctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	groups := doctor.GroupResults(checks, results)
	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(groups)),
	}
	for _, g := range groups {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    g.Category,
			Results: g.Results,
		})
	}

	tally := doctor.Count(results)
	output.Summary = SummaryOutput{
		Pass:     tally.Pass,
		Warn:     tally.Warn,
		Fail:     tally.Fail,
		Fixable:  tally.Fixable,
		AllClear: tally.AllClear(),
	}
	return output
}

// outputDoctorText renders the results as a table grouped by category,
// followed by a one-line verdict.
func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) error {
	headerStyle := lipgloss.NewStyle().Bold(true)

	rows := make([]ui.DoctorCheckRow, len(results))
	for i, r := range results {
		rows[i] = ui.DoctorCheckRow{
			Status:     r.Status.String(),
			Category:   checks[i].Category(),
			Message:    r.Message,
			Suggestion: r.Suggestion,
		}
	}

	var b strings.Builder
	b.WriteString("\n" + headerStyle.Render("hwdash diagnostic report") + "\n\n")
	b.WriteString(ui.RenderDoctorTable(rows))
	b.WriteString("\n" + strings.Repeat("━", 60) + "\n\n")

	tally := doctor.Count(results)
	if tally.AllClear() {
		fmt.Fprintf(&b, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), tally.Summary())
	} else {
		fmt.Fprintf(&b, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), tally.Summary())

		if tally.Fixable > 0 && !fixed {
			fmt.Fprintf(&b, "\n  Run with %s to attempt automatic fixes where possible.\n",
				ui.MutedStyle().Render("--fix"))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
