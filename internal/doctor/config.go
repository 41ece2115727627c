package doctor

import (
	"fmt"

	"github.com/rileyhilliard/hwdash/internal/config"
)

// ConfigFileCheck reports which config file is in effect. Running on
// defaults is fine, so a missing file is only a warning.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
	// InitPath is where Fix writes a default config.
	InitPath string
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config file: " + headline(err),
			Suggestion: suggestion(err, "Check the --config path"),
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'hwdash config init' to create " + config.ConfigFileName,
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + path,
	}
}

// Fix writes the default config to InitPath. It never overwrites.
func (c *ConfigFileCheck) Fix() error {
	path := c.InitPath
	if path == "" {
		path = config.ConfigFileName
	}
	return config.WriteDefault(path, false)
}

// ConfigSchemaCheck verifies that the effective config, file plus
// environment overrides, passes validation.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return "CONFIG" }

func (c *ConfigSchemaCheck) Run() CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Failed to load config: " + headline(err),
			Suggestion: suggestion(err, "Check the YAML syntax in your config file"),
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Schema error: " + headline(err),
			Suggestion: suggestion(err, "Fix the configuration errors in your "+config.ConfigFileName),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Schema valid (%d plots, %d-sample history)", len(cfg.Dashboard.Plots), cfg.History.Depth),
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}
