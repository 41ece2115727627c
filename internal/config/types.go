package config

import (
	"time"

	"github.com/rileyhilliard/hwdash/internal/plot"
	"github.com/rileyhilliard/hwdash/internal/provider"
	"github.com/rileyhilliard/hwdash/internal/sampler"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// MinInterval is the shortest sampling interval accepted anywhere.
const MinInterval = 50 * time.Millisecond

// Config represents the complete .hwdash.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	CPU       CPUConfig       `yaml:"cpu" mapstructure:"cpu"`
	GPU       GPUConfig       `yaml:"gpu" mapstructure:"gpu"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// HistoryConfig controls how much of the past each plot shows.
type HistoryConfig struct {
	// Depth is the number of samples kept per series.
	Depth int `yaml:"depth" mapstructure:"depth"`
}

// CPUConfig selects the CPU/memory provider.
type CPUConfig struct {
	// Backend is "gopsutil" or "procfs".
	Backend  string        `yaml:"backend" mapstructure:"backend"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// ProcRoot is where the procfs backend reads from.
	ProcRoot string `yaml:"proc_root" mapstructure:"proc_root"`
}

// GPUConfig selects and tunes the GPU provider.
type GPUConfig struct {
	// Backend is "auto", "nvml", "nvidia-smi", "sysfs" or "none".
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Device is the index of the GPU to monitor.
	Device int `yaml:"device" mapstructure:"device"`
	// Required makes a missing GPU fatal at startup.
	Required bool          `yaml:"required" mapstructure:"required"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// MaxFanRPM is the fan speed drawn at the top of the fan plot.
	MaxFanRPM float64 `yaml:"max_fan_rpm" mapstructure:"max_fan_rpm"`
	// TemperatureMax is the temperature at the top of its plot, in °C.
	TemperatureMax float64 `yaml:"temperature_max" mapstructure:"temperature_max"`
	SMIPath        string  `yaml:"nvidia_smi_path" mapstructure:"nvidia_smi_path"`
	SysRoot        string  `yaml:"sys_root" mapstructure:"sys_root"`
}

// DashboardConfig controls the terminal dashboard.
type DashboardConfig struct {
	// Plots lists plot ids in display order.
	Plots []string `yaml:"plots" mapstructure:"plots"`
	// Palette replaces the built-in series colours when non-empty.
	Palette []string `yaml:"palette" mapstructure:"palette"`
	// Columns fixes the grid width; 0 picks one from the terminal size.
	Columns int `yaml:"columns" mapstructure:"columns"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		History: HistoryConfig{
			Depth: telemetry.DefaultDepth,
		},
		CPU: CPUConfig{
			Backend:  provider.CPUGopsutil,
			Interval: sampler.DefaultInterval,
			ProcRoot: "/proc",
		},
		GPU: GPUConfig{
			Backend:        provider.BackendAuto,
			Device:         0,
			Required:       false,
			Interval:       sampler.DefaultInterval,
			MaxFanRPM:      sampler.DefaultMaxFanRPM,
			TemperatureMax: plot.DefaultTemperatureMax,
			SMIPath:        "nvidia-smi",
			SysRoot:        "/sys",
		},
		Dashboard: DashboardConfig{
			Plots:   plot.KindIDs(),
			Palette: []string{},
			Columns: 0,
		},
	}
}

// Kinds resolves the configured plot list.
func (c *Config) Kinds() ([]plot.Kind, error) {
	return plot.ParseKinds(c.Dashboard.Plots)
}

// PlotOptions builds render options for the dashboard from the config.
// The host still has to fill in units-dependent fields like Margins.
func (c *Config) PlotOptions() (plot.Options, error) {
	palette, err := plot.ParsePalette(c.Dashboard.Palette)
	if err != nil {
		return plot.Options{}, err
	}
	opts := plot.DefaultOptions()
	opts.Palette = palette
	opts.MaxFanRPM = c.GPU.MaxFanRPM
	opts.TemperatureMax = c.GPU.TemperatureMax
	return opts, nil
}

// CPUSamplerOptions maps the config onto sampler options.
func (c *Config) CPUSamplerOptions() sampler.Options {
	return sampler.Options{Depth: c.History.Depth, Interval: c.CPU.Interval}
}

// GPUSamplerOptions maps the config onto sampler options.
func (c *Config) GPUSamplerOptions() sampler.Options {
	return sampler.Options{Depth: c.History.Depth, Interval: c.GPU.Interval, MaxFanRPM: c.GPU.MaxFanRPM}
}

// GPUOptions maps the config onto provider options.
func (c *Config) GPUOptions() provider.GPUOptions {
	return provider.GPUOptions{
		Backend:   c.GPU.Backend,
		Device:    c.GPU.Device,
		MaxFanRPM: c.GPU.MaxFanRPM,
		SMIPath:   c.GPU.SMIPath,
		SysRoot:   c.GPU.SysRoot,
	}
}
