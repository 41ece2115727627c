package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/hwdash/internal/config"
)

// isolate runs the test from an empty directory with an empty home, so no
// real config file is found.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigFileCheck(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		check := &ConfigFileCheck{ConfigPath: filepath.Join(t.TempDir(), "nonexistent.yaml")}
		result := check.Run()

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
	})

	t.Run("no file uses defaults", func(t *testing.T) {
		isolate(t)
		result := (&ConfigFileCheck{}).Run()

		if result.Status != StatusWarn {
			t.Errorf("expected StatusWarn, got %v: %s", result.Status, result.Message)
		}
		if !result.Fixable {
			t.Error("expected missing config to be fixable")
		}
	})

	t.Run("config found", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, dir, config.ConfigFileName, "version: 1\n")

		result := (&ConfigFileCheck{}).Run()
		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
		if !strings.Contains(result.Message, config.ConfigFileName) {
			t.Errorf("expected message to name the file, got %q", result.Message)
		}
	})

	t.Run("name and category", func(t *testing.T) {
		check := &ConfigFileCheck{}
		if check.Name() != "config_file" {
			t.Errorf("expected name 'config_file', got %s", check.Name())
		}
		if check.Category() != "CONFIG" {
			t.Errorf("expected category 'CONFIG', got %s", check.Category())
		}
	})
}

func TestConfigFileCheckFix(t *testing.T) {
	dir := isolate(t)
	check := &ConfigFileCheck{InitPath: filepath.Join(dir, config.ConfigFileName)}

	if err := check.Fix(); err != nil {
		t.Fatalf("Fix() error: %v", err)
	}
	if result := check.Run(); result.Status != StatusPass {
		t.Errorf("expected StatusPass after fix, got %v: %s", result.Status, result.Message)
	}

	// A second fix must not overwrite the file.
	if err := check.Fix(); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestConfigSchemaCheck(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    CheckStatus
	}{
		{"valid schema", "version: 1\ngpu:\n  backend: none\n", StatusPass},
		{"invalid yaml", "this is not valid yaml: [unclosed", StatusFail},
		{"unknown plot", "dashboard:\n  plots: [cpu-average, warp-drive]\n", StatusFail},
		{"interval too short", "cpu:\n  interval: 10ms\n", StatusFail},
		{"future version", "version: 99\n", StatusFail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, dir, strings.ReplaceAll(tc.name, " ", "_")+".yaml", tc.content)

			result := (&ConfigSchemaCheck{ConfigPath: path}).Run()
			if result.Status != tc.want {
				t.Errorf("expected %v, got %v: %s", tc.want, result.Status, result.Message)
			}
			if tc.want == StatusFail && result.Suggestion == "" {
				t.Error("expected a suggestion on failure")
			}
		})
	}
}

func TestConfigSchemaCheckDefaults(t *testing.T) {
	isolate(t)
	result := (&ConfigSchemaCheck{}).Run()

	if result.Status != StatusPass {
		t.Errorf("expected defaults to validate, got %v: %s", result.Status, result.Message)
	}
}

func TestNewConfigChecks(t *testing.T) {
	checks := NewConfigChecks("")
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
	for _, c := range checks {
		if c.Category() != "CONFIG" {
			t.Errorf("expected CONFIG category, got %s for %s", c.Category(), c.Name())
		}
	}
}

// chdir changes the working directory for the rest of the test and restores
// it on cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
