package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rileyhilliard/hwdash/internal/config"
	hwerrors "github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/exec"
	"github.com/rileyhilliard/hwdash/internal/provider"
	"github.com/rileyhilliard/hwdash/internal/sampler"
	"github.com/rileyhilliard/hwdash/internal/util"
)

// probeTimeout bounds a single hardware probe.
const probeTimeout = 5 * time.Second

// CPUCheck opens the configured CPU backend and reads every metric the
// sampler needs once.
type CPUCheck struct {
	Backend  string
	ProcRoot string
	Open     func(backend, procRoot string) (sampler.CPUSource, error)
}

func (c *CPUCheck) Name() string     { return "cpu_backend" }
func (c *CPUCheck) Category() string { return "CPU" }

func (c *CPUCheck) Run() CheckResult {
	open := c.Open
	if open == nil {
		open = provider.OpenCPU
	}
	fail := func(what string, err error) CheckResult {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s (%s): %s", what, c.Backend, headline(err)),
			Suggestion: suggestion(err, "Try the other backend with 'hwdash config set cpu.backend procfs' or 'gopsutil'"),
		}
	}

	src, err := open(c.Backend, c.ProcRoot)
	if err != nil {
		return fail("Can't open CPU backend", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	cores, err := src.CoreCount()
	if err != nil {
		return fail("Can't count cores", err)
	}
	if cores == 0 {
		return fail("Can't count cores", errors.New("backend reported 0 cores"))
	}
	if _, err := src.CoreUsage(ctx); err != nil {
		return fail("Can't read core usage", err)
	}
	_, total, err := src.Memory(ctx)
	if err != nil {
		return fail("Can't read memory", err)
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d cores, %s memory via %s", cores, gigabytes(total), c.Backend),
	}
}

func (c *CPUCheck) Fix() error { return nil }

// GPUCheck binds the configured GPU backend and takes one reading. A missing
// GPU, or one whose VRAM can't be read, is a warning unless the config marks
// it required.
type GPUCheck struct {
	Options  provider.GPUOptions
	Required bool
	Open     func(ctx context.Context, opts provider.GPUOptions) (sampler.GPUDevice, string, error)
}

func (c *GPUCheck) Name() string     { return "gpu_backend" }
func (c *GPUCheck) Category() string { return "GPU" }

func (c *GPUCheck) Run() CheckResult {
	if c.Options.Backend == provider.BackendNone {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "GPU monitoring disabled (gpu.backend: none)",
		}
	}

	open := c.Open
	if open == nil {
		open = provider.OpenGPU
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	status := StatusWarn
	if c.Required {
		status = StatusFail
	}

	dev, backend, err := open(ctx, c.Options)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    "No GPU: " + headline(err),
			Suggestion: suggestion(err, "Install the GPU driver or set gpu.backend to none"),
		}
	}
	defer dev.Close()

	name, err := dev.Name()
	if err != nil || name == "" {
		name = "unknown GPU"
	}

	// The GPU sampler publishes only on a VRAM reading.
	if _, _, err := dev.Memory(); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    fmt.Sprintf("%s via %s can't report VRAM: %s", name, backend, headline(err)),
			Suggestion: "Pick another backend with gpu.backend, or set it to none",
		}
	}
	fans, _ := dev.FanCount()

	msg := fmt.Sprintf("%s via %s, %d %s", name, backend, fans, util.Pluralize(fans, "fan", "fans"))
	if temp, err := dev.Temperature(); err == nil {
		msg += fmt.Sprintf(", %.0f°C", temp)
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

func (c *GPUCheck) Fix() error { return nil }

// SMIToolCheck looks for nvidia-smi when a backend may need it.
type SMIToolCheck struct {
	Backend string
	Path    string
}

func (c *SMIToolCheck) Name() string     { return "nvidia_smi" }
func (c *SMIToolCheck) Category() string { return "GPU" }

func (c *SMIToolCheck) Run() CheckResult {
	if c.Backend != provider.BackendAuto && c.Backend != provider.BackendSMI {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "nvidia-smi not needed for backend " + c.Backend,
		}
	}

	path, err := exec.LookPath(c.Path)
	if err != nil {
		status := StatusPass
		msg := "nvidia-smi not installed (optional in auto mode)"
		if c.Backend == provider.BackendSMI {
			status = StatusFail
			msg = "nvidia-smi not found: " + c.Path
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    msg,
			Suggestion: "Install the NVIDIA driver utilities or set gpu.nvidia_smi_path",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "nvidia-smi: " + path,
	}
}

func (c *SMIToolCheck) Fix() error { return nil }

// NewHardwareChecks creates the CPU and GPU checks for cfg.
func NewHardwareChecks(cfg *config.Config) []Check {
	return []Check{
		&CPUCheck{Backend: cfg.CPU.Backend, ProcRoot: cfg.CPU.ProcRoot},
		&GPUCheck{Options: cfg.GPUOptions(), Required: cfg.GPU.Required},
		&SMIToolCheck{Backend: cfg.GPU.Backend, Path: cfg.GPU.SMIPath},
	}
}

// headline returns the first line of a structured error.
func headline(err error) string {
	var hwErr *hwerrors.Error
	if errors.As(err, &hwErr) {
		return hwErr.Message
	}
	return err.Error()
}

func suggestion(err error, fallback string) string {
	var hwErr *hwerrors.Error
	if errors.As(err, &hwErr) && hwErr.Suggestion != "" {
		return hwErr.Suggestion
	}
	return fallback
}

func gigabytes(b uint64) string {
	return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
}
