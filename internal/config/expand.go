package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	// Handle ~/path
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unchanged if we can't get home
		}
		return filepath.Join(home, path[2:])
	}

	// Handle standalone ~
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// ExpandPath expands ~ and $VAR / ${VAR} references in a local path, as
// used for --log-file and --config.
func ExpandPath(path string) string {
	return ExpandTilde(os.ExpandEnv(path))
}
