package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	hwerrors "github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/exec"
	"github.com/rileyhilliard/hwdash/internal/logger"
	"github.com/rileyhilliard/hwdash/internal/sampler"
)

// CPU backends.
const (
	CPUGopsutil = "gopsutil"
	CPUProcFS   = "procfs"
)

// GPU backends. BackendAuto tries NVML, then nvidia-smi, then sysfs.
const (
	BackendAuto  = "auto"
	BackendNVML  = "nvml"
	BackendSMI   = "nvidia-smi"
	BackendSysfs = "sysfs"
	BackendNone  = "none"
)

// ErrNoGPU is returned by OpenGPU in auto mode when no backend could bind.
var ErrNoGPU = errors.New("no GPU backend available")

// CPUBackends lists the accepted cpu.backend values.
func CPUBackends() []string {
	return []string{CPUGopsutil, CPUProcFS}
}

// GPUBackends lists the accepted gpu.backend values.
func GPUBackends() []string {
	return []string{BackendAuto, BackendNVML, BackendSMI, BackendSysfs, BackendNone}
}

// OpenCPU returns the named CPU source. procRoot only applies to procfs.
func OpenCPU(backend, procRoot string) (sampler.CPUSource, error) {
	switch backend {
	case "", CPUGopsutil:
		return NewGopsutil(), nil
	case CPUProcFS:
		return NewProcFS(procRoot), nil
	default:
		return nil, hwerrors.New(hwerrors.ErrConfig,
			fmt.Sprintf("Unknown CPU backend %q", backend),
			"Use one of: "+strings.Join(CPUBackends(), ", "))
	}
}

// GPUOptions selects and configures a GPU backend.
type GPUOptions struct {
	Backend   string
	Device    int
	MaxFanRPM float64
	SMIPath   string
	SysRoot   string
	Runner    exec.Runner
	Logger    logger.Logger
}

type gpuOpener func(ctx context.Context, opts GPUOptions) (sampler.GPUDevice, error)

var gpuOpeners = map[string]gpuOpener{
	BackendNVML: func(ctx context.Context, opts GPUOptions) (sampler.GPUDevice, error) {
		dev, err := OpenNVML(opts.Device, opts.MaxFanRPM)
		if err != nil {
			return nil, err
		}
		return dev, nil
	},
	BackendSMI: func(ctx context.Context, opts GPUOptions) (sampler.GPUDevice, error) {
		dev, err := OpenSMI(ctx, opts.Runner, opts.SMIPath, opts.Device, opts.MaxFanRPM)
		if err != nil {
			return nil, err
		}
		return dev, nil
	},
	BackendSysfs: func(ctx context.Context, opts GPUOptions) (sampler.GPUDevice, error) {
		dev, err := OpenSysfs(opts.SysRoot, opts.Device)
		if err != nil {
			return nil, err
		}
		return dev, nil
	},
}

var autoOrder = []string{BackendNVML, BackendSMI, BackendSysfs}

// OpenGPU binds the configured GPU backend and returns the device with the
// backend that bound it. BackendNone returns a nil device and no error.
// Binding failures are PROVIDER errors; whether they are fatal is the
// caller's decision.
func OpenGPU(ctx context.Context, opts GPUOptions) (sampler.GPUDevice, string, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.MaxFanRPM <= 0 {
		opts.MaxFanRPM = sampler.DefaultMaxFanRPM
	}

	switch opts.Backend {
	case BackendNone:
		return nil, BackendNone, nil
	case "", BackendAuto:
		var failures []string
		for _, name := range autoOrder {
			dev, err := gpuOpeners[name](ctx, opts)
			if err == nil {
				opts.Logger.Debug("gpu bound via %s", name)
				return dev, name, nil
			}
			opts.Logger.Debug("gpu backend %s unavailable: %v", name, firstLine(err))
			failures = append(failures, fmt.Sprintf("%s: %s", name, firstLine(err)))
		}
		return nil, "", hwerrors.WrapWithCode(
			fmt.Errorf("%w (%s)", ErrNoGPU, strings.Join(failures, "; ")),
			hwerrors.ErrProvider,
			"Couldn't find a GPU",
			"Install the GPU driver, pick a backend with --gpu-backend, or run with --no-gpu.")
	}

	open, ok := gpuOpeners[opts.Backend]
	if !ok {
		return nil, "", hwerrors.New(hwerrors.ErrConfig,
			fmt.Sprintf("Unknown GPU backend %q", opts.Backend),
			"Use one of: "+strings.Join(GPUBackends(), ", "))
	}
	dev, err := open(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	return dev, opts.Backend, nil
}

// firstLine trims structured errors (which render over several lines) down
// to their headline for log output.
func firstLine(err error) string {
	var hwErr *hwerrors.Error
	if errors.As(err, &hwErr) && hwErr.Cause != nil {
		return hwErr.Cause.Error()
	}
	msg := strings.TrimSpace(err.Error())
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
