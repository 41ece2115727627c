package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/provider"
	"github.com/spf13/cobra"
)

// SamplingFlags are the config overrides shared by the dashboard and
// snapshot commands.
type SamplingFlags struct {
	Interval   string
	History    int
	GPUBackend string
	NoGPU      bool
	Plots      string
}

// DashboardFlags adds the flags only the interactive dashboard uses.
type DashboardFlags struct {
	SamplingFlags
	LogFile string
}

var dashFlags DashboardFlags

// AddSamplingFlags registers --interval, --history, --gpu-backend, --no-gpu
// and --plots on a command.
func AddSamplingFlags(cmd *cobra.Command, flags *SamplingFlags) {
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "sampling interval for CPU and GPU (e.g., 200ms, 1s)")
	cmd.Flags().IntVar(&flags.History, "history", 0, "samples kept per series (2-10000)")
	cmd.Flags().StringVar(&flags.GPUBackend, "gpu-backend", "",
		"GPU backend: "+strings.Join(provider.GPUBackends(), ", "))
	cmd.Flags().BoolVar(&flags.NoGPU, "no-gpu", false, "don't monitor the GPU (same as --gpu-backend none)")
	cmd.Flags().StringVar(&flags.Plots, "plots", "", "comma-separated plot ids to show (see 'hwdash plots')")
}

func addDashboardFlags(cmd *cobra.Command, flags *DashboardFlags) {
	AddSamplingFlags(cmd, &flags.SamplingFlags)
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "write logs here while the dashboard runs (default: discard)")
}

// ParseInterval parses an --interval value. Empty means "use the config".
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 200ms, 500ms, or 1s.")
	}
	if err := config.ValidateInterval("--interval", d); err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid interval",
			fmt.Sprintf("Use %v or more.", config.MinInterval))
	}
	return d, nil
}

// parsePlotList splits a comma-separated --plots value.
func parsePlotList(flag string) []string {
	var ids []string
	for _, id := range strings.Split(flag, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Apply layers the flags over cfg and validates the result.
func (f SamplingFlags) Apply(cfg *config.Config) error {
	interval, err := ParseInterval(f.Interval)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.CPU.Interval = interval
		cfg.GPU.Interval = interval
	}
	if f.History != 0 {
		cfg.History.Depth = f.History
	}
	if f.GPUBackend != "" {
		cfg.GPU.Backend = f.GPUBackend
	}
	if f.NoGPU {
		cfg.GPU.Backend = provider.BackendNone
		cfg.GPU.Required = false
	}
	if f.Plots != "" {
		cfg.Dashboard.Plots = parsePlotList(f.Plots)
	}
	return config.Validate(cfg)
}

// loadConfig loads the effective config and applies the flag overrides.
func loadConfig(flags SamplingFlags) (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, err
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
