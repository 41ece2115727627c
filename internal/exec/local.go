package exec

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rileyhilliard/hwdash/internal/errors"
)

// Runner runs a command and captures its output. Telemetry backends that
// shell out (nvidia-smi) depend on this so tests can substitute canned output.
type Runner interface {
	Capture(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

// Local runs commands on this machine without a shell.
type Local struct{}

// Capture runs name with args and captures stdout and stderr separately.
// A non-zero exit is reported through exitCode, not err; err is set only when
// the command could not be started or was killed by ctx.
func (Local) Capture(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error) {
	command := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	command.Stdout = &outBuf
	command.Stderr = &errBuf

	runErr := command.Run()
	if runErr != nil {
		if ctx.Err() != nil {
			return outBuf.Bytes(), errBuf.Bytes(), -1, errors.WrapWithCode(ctx.Err(), errors.ErrExec,
				"Command was cancelled: "+name,
				"The sampling interval may be too short for this backend.")
		}
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return outBuf.Bytes(), errBuf.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, nil, -1, errors.WrapWithCode(runErr, errors.ErrExec,
			"Couldn't run "+name,
			"Make sure the command exists and is executable.")
	}

	return outBuf.Bytes(), errBuf.Bytes(), 0, nil
}
