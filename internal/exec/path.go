package exec

import (
	"os"
	"os/exec"
	"path/filepath"
)

// commonBinPaths are places vendor tools get installed outside a minimal PATH
// (systemd units and desktop launchers often run with one).
var commonBinPaths = []string{
	"/usr/bin",
	"/usr/local/bin",
	"/usr/local/nvidia/bin",
	"/opt/nvidia/bin",
	"/usr/lib/wsl/lib",
}

// LookPath resolves cmd via PATH and then the common install locations.
// Absolute or relative paths containing a separator are checked as-is.
func LookPath(cmd string) (string, error) {
	return lookPath(cmd, commonBinPaths)
}

func lookPath(cmd string, fallbacks []string) (string, error) {
	path, err := exec.LookPath(cmd)
	if err == nil {
		return path, nil
	}
	if filepath.Base(cmd) != cmd {
		return "", err
	}

	for _, dir := range fallbacks {
		candidate := filepath.Join(dir, cmd)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", err
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
