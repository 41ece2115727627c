package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".hwdash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/hwdash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides: HWDASH_GPU_BACKEND=none.
	EnvPrefix = "HWDASH"
)

// Load reads config from the specified path, layered over the defaults and
// under HWDASH_* environment overrides. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'hwdash config init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .hwdash.yaml in current directory
// 3. .hwdash.yaml in parent directories (stops at git root or home)
// 4. ~/.config/hwdash/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		explicit = ExpandPath(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	if found := findUpward(cwd, homeDir()); found != "" {
		return found, nil
	}

	// 4. Global config
	if global := GlobalPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// findUpward checks dir and its parents for ConfigFileName. It stops after
// a directory containing .git, and never climbs above home.
func findUpward(dir, home string) string {
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		if isGitRoot(dir) {
			return ""
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		if home != "" && parent == home {
			// Don't go above home directory
			return ""
		}
		dir = parent
	}
}

// LoadOrDefault finds and loads the config, falling back to defaults (plus
// environment overrides) when no file exists. It returns the path it loaded,
// or "" for defaults.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// GlobalPath returns ~/.config/hwdash/config.yaml, or "" without a home.
func GlobalPath() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	// viper's default decode hooks turn "200ms" into time.Duration and
	// "a,b" env values into slices.
	if err := v.Unmarshal(cfg); err != nil {
		source := "the environment"
		if path != "" {
			source = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax and value types in "+source)
	}

	cfg.CPU.ProcRoot = ExpandTilde(cfg.CPU.ProcRoot)
	cfg.GPU.SysRoot = ExpandTilde(cfg.GPU.SysRoot)
	cfg.GPU.SMIPath = ExpandTilde(cfg.GPU.SMIPath)

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the
// file never mentions.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("version", def.Version)
	v.SetDefault("history.depth", def.History.Depth)
	v.SetDefault("cpu.backend", def.CPU.Backend)
	v.SetDefault("cpu.interval", def.CPU.Interval)
	v.SetDefault("cpu.proc_root", def.CPU.ProcRoot)
	v.SetDefault("gpu.backend", def.GPU.Backend)
	v.SetDefault("gpu.device", def.GPU.Device)
	v.SetDefault("gpu.required", def.GPU.Required)
	v.SetDefault("gpu.interval", def.GPU.Interval)
	v.SetDefault("gpu.max_fan_rpm", def.GPU.MaxFanRPM)
	v.SetDefault("gpu.temperature_max", def.GPU.TemperatureMax)
	v.SetDefault("gpu.nvidia_smi_path", def.GPU.SMIPath)
	v.SetDefault("gpu.sys_root", def.GPU.SysRoot)
	v.SetDefault("dashboard.plots", def.Dashboard.Plots)
	v.SetDefault("dashboard.palette", def.Dashboard.Palette)
	v.SetDefault("dashboard.columns", def.Dashboard.Columns)
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
