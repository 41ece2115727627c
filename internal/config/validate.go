package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/plot"
	"github.com/rileyhilliard/hwdash/internal/provider"
)

// History depth bounds. Every tick copies cores x depth samples, so the
// upper bound keeps a typo from allocating gigabytes per interval.
const (
	MinHistoryDepth = 2
	MaxHistoryDepth = 10000
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	// Check version
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but hwdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade hwdash, or lower 'version' in .hwdash.yaml.")
	}

	checks := []struct {
		section string
		check   func() error
	}{
		{"history", func() error { return validateHistory(cfg.History) }},
		{"cpu", func() error { return validateCPU(cfg.CPU) }},
		{"gpu", func() error { return validateGPU(cfg.GPU) }},
		{"dashboard", func() error { return validateDashboard(cfg.Dashboard) }},
	}
	for _, c := range checks {
		if err := c.check(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check the '%s' section in your .hwdash.yaml.", c.section))
		}
	}

	return nil
}

// ValidateInterval checks a sampling interval, as given on the command line
// or in the config.
func ValidateInterval(name string, d time.Duration) error {
	if d < MinInterval {
		return fmt.Errorf("%s %v is too short - use %v or more", name, d, MinInterval)
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	if h.Depth < MinHistoryDepth {
		return fmt.Errorf("history.depth needs to be at least %d (got %d)", MinHistoryDepth, h.Depth)
	}
	if h.Depth > MaxHistoryDepth {
		return fmt.Errorf("history.depth can be at most %d (got %d)", MaxHistoryDepth, h.Depth)
	}
	return nil
}

func validateCPU(c CPUConfig) error {
	if !slices.Contains(provider.CPUBackends(), c.Backend) {
		return fmt.Errorf("cpu.backend '%s' isn't valid - use %s", c.Backend, strings.Join(provider.CPUBackends(), " or "))
	}
	if err := ValidateInterval("cpu.interval", c.Interval); err != nil {
		return err
	}
	if c.Backend == provider.CPUProcFS && c.ProcRoot == "" {
		return fmt.Errorf("cpu.proc_root can't be empty with the procfs backend")
	}
	return nil
}

func validateGPU(g GPUConfig) error {
	if !slices.Contains(provider.GPUBackends(), g.Backend) {
		return fmt.Errorf("gpu.backend '%s' isn't valid - try: %s", g.Backend, strings.Join(provider.GPUBackends(), ", "))
	}
	if g.Backend == provider.BackendNone {
		if g.Required {
			return fmt.Errorf("gpu.required is true but gpu.backend is 'none' - one of them has to give")
		}
		return nil
	}
	if g.Device < 0 {
		return fmt.Errorf("gpu.device can't be negative (got %d)", g.Device)
	}
	if err := ValidateInterval("gpu.interval", g.Interval); err != nil {
		return err
	}
	if !positive(g.MaxFanRPM) {
		return fmt.Errorf("gpu.max_fan_rpm needs to be a positive number (got %v)", g.MaxFanRPM)
	}
	if !positive(g.TemperatureMax) {
		return fmt.Errorf("gpu.temperature_max needs to be a positive number (got %v)", g.TemperatureMax)
	}
	return nil
}

func validateDashboard(d DashboardConfig) error {
	if len(d.Plots) == 0 {
		return fmt.Errorf("dashboard.plots is empty - list at least one of: %s", strings.Join(plot.KindIDs(), ", "))
	}
	if _, err := plot.ParseKinds(d.Plots); err != nil {
		return fmt.Errorf("dashboard.plots: %w", err)
	}
	if _, err := plot.ParsePalette(d.Palette); err != nil {
		return fmt.Errorf("dashboard.palette: %w", err)
	}
	if d.Columns < 0 {
		return fmt.Errorf("dashboard.columns can't be negative (got %d)", d.Columns)
	}
	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
