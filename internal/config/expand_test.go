package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"tilde alone", "~", home},
		{"tilde path", "~/.config/hwdash/config.yaml", filepath.Join(home, ".config/hwdash/config.yaml")},
		{"absolute path unchanged", "/sys", "/sys"},
		{"relative path unchanged", "fixtures/proc", "fixtures/proc"},
		{"other user unchanged", "~root/x", "~root/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandTilde(tt.input))
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HWDASH_TEST_DIR", "/var/log")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "/var/log/hwdash.log", ExpandPath("$HWDASH_TEST_DIR/hwdash.log"))
	assert.Equal(t, "/var/log/hwdash.log", ExpandPath("${HWDASH_TEST_DIR}/hwdash.log"))
	assert.Equal(t, filepath.Join(home, "hwdash.log"), ExpandPath("~/hwdash.log"))
}
