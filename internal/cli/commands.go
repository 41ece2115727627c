package cli

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/plot"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
	"github.com/rileyhilliard/hwdash/internal/ui"
	"github.com/spf13/cobra"
)

// plotsCmd lists the plot kinds
var plotsCmd = &cobra.Command{
	Use:   "plots",
	Short: "List the available plots",
	Long: `List every plot kind with the id used in dashboard.plots and --plots.

Examples:
  hwdash plots
  hwdash --plots cpu-average,gpu-temperature`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotsCommand(cmd.OutOrStdout())
	},
}

// doctorCmd checks the config and the hardware backends
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the config and the CPU/GPU backends",
	Long: `Run diagnostic checks: the config file and schema, the CPU backend, the GPU
backend and the nvidia-smi tool.

Examples:
  hwdash doctor
  hwdash doctor --fix
  hwdash doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = doctorJSON
		return doctorCommand(cmd.OutOrStdout())
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for hwdash.

Examples:
  # Bash
  hwdash completion bash > /etc/bash_completion.d/hwdash

  # Zsh
  hwdash completion zsh > "${fpath[1]}/_hwdash"

  # Fish
  hwdash completion fish > ~/.config/fish/completions/hwdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCompletion(cmd.Root(), cmd.OutOrStdout(), args[0])
	},
}

func writeCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(w)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletion(w)
	default:
		return errors.New(errors.ErrExec,
			"Unknown shell: "+shell,
			"Supported shells: bash, zsh, fish, powershell")
	}
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(plotsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}

// plotsCommand prints the plot kinds, marking the ones in the current config.
func plotsCommand(w io.Writer) error {
	enabled := map[string]bool{}
	opts := plot.DefaultOptions()
	if cfg, _, err := config.LoadOrDefault(Config()); err == nil {
		for _, id := range cfg.Dashboard.Plots {
			enabled[id] = true
		}
		if o, err := cfg.PlotOptions(); err == nil {
			opts = o
		}
	}

	rows := make([][]string, 0, len(plot.AllKinds()))
	for _, k := range plot.AllKinds() {
		source := "cpu"
		if k.RequiresGPU() {
			source = "gpu"
		}
		shown := ""
		if enabled[k.ID()] {
			shown = ui.SymbolSuccess
		}
		rows = append(rows, []string{k.ID(), k.Title(telemetry.State{}), source, axisRange(k.Axis(opts)), shown})
	}

	_, err := fmt.Fprintln(w, ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "ID", Width: 16},
		{Title: "Plot", Width: 20},
		{Title: "Source", Width: 6},
		{Title: "Axis", Width: 14},
		{Title: "Shown", Width: 5},
	}, rows))
	return err
}

func axisRange(a plot.Axis) string {
	return a.Label(0) + "-" + a.Label(1)
}
