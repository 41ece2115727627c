package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		verbose   bool
		expectLog bool
	}{
		{name: "logs when HWDASH_DEBUG is set", envValue: "1", expectLog: true},
		{name: "logs when verbose is on", verbose: true, expectLog: true},
		{name: "silent by default", expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, tt.envValue)
			SetVerbose(tt.verbose)
			defer SetVerbose(false)

			NewEnvLogger("[test]").Debug("tick %d skipped", 7)

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] tick 7 skipped")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	buf := captureLog(t)
	l := NewEnvLogger("[gpu]")

	l.Info("bound %s", "nvml")
	l.Warn("fan %d unreadable", 1)
	l.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "[gpu] bound nvml")
	assert.Contains(t, out, "[gpu] WARN: fan 1 unreadable")
	assert.Contains(t, out, "[gpu] ERROR: boom")
}

func TestNoop(t *testing.T) {
	buf := captureLog(t)
	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	l.Debug("a %d", 1)
	l.Warn("b")

	msgs := l.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, LogMessage{Level: "debug", Message: "a 1"}, msgs[0])
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))

	l.Clear()
	assert.Empty(t, l.Messages())
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Info("msg")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, l.Messages(), 800)
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	buf := NewBufferLogger()
	SetDefault(buf)
	Default().Info("hello")
	assert.True(t, buf.HasLevel("info"))
}
