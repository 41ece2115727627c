package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	initForce  bool
	initPath   string
	initGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, inspect and edit the config file",
	Long: `Manage .hwdash.yaml.

The config is searched for in the current directory and its parents (stopping
at a git root or your home directory), then at ~/.config/hwdash/config.yaml.
Every key can also be overridden with an HWDASH_<SECTION>_<KEY> variable.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Example: `  hwdash config init
  hwdash config init --global
  hwdash config init --path ./rig.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initPath
		if initGlobal {
			path = config.GlobalPath()
		}
		return configInitCommand(cmd.OutOrStdout(), path, initForce, confirmOverwrite)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config (file, environment and defaults)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Long: `Change one setting in the config file, keeping its comments and layout.
Values are parsed as YAML, so lists and booleans work as expected.

Keys:
  ` + strings.Join(config.Keys(), "\n  "),
	Example: `  hwdash config set gpu.backend nvidia-smi
  hwdash config set dashboard.plots "[cpu-cores, memory]"
  hwdash config set cpu.interval 500ms`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.Keys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")
	configInitCmd.Flags().StringVar(&initPath, "path", config.ConfigFileName, "where to write the config")
	configInitCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/hwdash/config.yaml instead")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// configInitCommand writes the default config to path. When the file exists
// and force is unset, confirm decides whether to overwrite.
func configInitCommand(w io.Writer, path string, force bool, confirm func(path string) (bool, error)) error {
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config path",
			"Pass --path, or set HOME to use --global.")
	}
	path = config.ExpandTilde(path)

	if _, err := os.Stat(path); err == nil && !force && confirm != nil {
		overwrite, err := confirm(path)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
		force = true
	}

	if err := config.WriteDefault(path, force); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	fmt.Fprintln(w, ui.MutedStyle().Render("  Edit it directly or with 'hwdash config set <key> <value>'."))
	return nil
}

// confirmOverwrite asks before replacing a config. Without a terminal it
// declines, and WriteDefault reports the existing file.
func confirmOverwrite(path string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New(errors.ErrConfig,
			"Config file already exists: "+path,
			"Pass --force to overwrite it.")
	}

	var overwrite bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", filepath.Base(path))).
				Affirmative("Overwrite").
				Negative("Keep it").
				Value(&overwrite),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Try running with --force to overwrite")
	}
	return overwrite, nil
}

// configShowCommand prints the effective config as YAML, headed by where it
// came from.
func configShowCommand(w io.Writer) error {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render the config", "")
	}

	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}
	fmt.Fprintf(w, "# source: %s\n", source)
	_, err = w.Write(data)
	return err
}

// configSetCommand edits the config file in effect, or creates one in the
// working directory when there is none yet.
func configSetCommand(w io.Writer, key, value string) error {
	path, err := config.Find(Config())
	if err != nil {
		return err
	}
	if path == "" {
		path = config.ConfigFileName
		if err := config.WriteDefault(path, false); err != nil {
			return err
		}
		fmt.Fprintf(w, "Created %s\n", path)
	}

	if err := config.SetValue(path, key, value); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, value,
		ui.MutedStyle().Render("("+path+")"))
	return nil
}
