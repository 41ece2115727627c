package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/hwdash/internal/logger"
	"github.com/rileyhilliard/hwdash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "hwdash",
	Short: "Live CPU, memory and GPU plots in your terminal",
	Long: `hwdash samples CPU, memory and GPU telemetry in the background and plots
the recent history of every metric in a terminal dashboard.

Run without a subcommand to open the dashboard. GPU plots show a placeholder
when no GPU backend is available.`,
	Example: `  hwdash                          # open the dashboard
  hwdash --interval 500ms         # sample twice a second
  hwdash --no-gpu --plots cpu-cores,memory
  hwdash snapshot --json          # one-shot reading for scripts`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
		if noColor {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), dashFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .hwdash.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging (same as HWDASH_DEBUG=1)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	addDashboardFlags(rootCmd, &dashFlags)
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if isUnknownCommandError(err) {
			if name := extractUnknownCommand(err); name != "" {
				fmt.Fprintf(os.Stderr, "✗ Unknown command %q\n\n  Run 'hwdash --help' for the list of commands.\n", name)
				os.Exit(1)
			}
		}
		if MachineMode() {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// isUnknownCommandError reports whether cobra rejected the command line
// itself rather than a command failing.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "hwdash"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.IndexByte(msg, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(msg[start+1:], '"')
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
