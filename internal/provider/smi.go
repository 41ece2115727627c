package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rileyhilliard/hwdash/internal/exec"
)

// smiQuery is the field list passed to --query-gpu. ParseSMIQuery expects
// this exact order.
const smiQuery = "name,temperature.gpu,fan.speed,memory.used,memory.total"

// SMIReading is one parsed nvidia-smi row. Fields nvidia-smi reports as
// [N/A] (fanless laptops, some datacenter boards) have their Has flag unset.
type SMIReading struct {
	Name string

	Temperature    float64
	HasTemperature bool

	// FanPercent is nvidia-smi's fan.speed, a percentage of the board's max.
	FanPercent float64
	HasFan     bool

	MemoryUsed  uint64
	MemoryTotal uint64
	HasMemory   bool
}

// ParseSMIQuery parses a single CSV row of
//
//	nvidia-smi --query-gpu=name,temperature.gpu,fan.speed,memory.used,memory.total --format=csv,noheader,nounits
//
// Example: "NVIDIA GeForce RTX 3080, 65, 42, 2048, 10240".
func ParseSMIQuery(output string) (*SMIReading, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, fmt.Errorf("nvidia-smi returned no output")
	}

	// Only the first line; --id restricts the query to one device anyway.
	if i := strings.IndexByte(output, '\n'); i >= 0 {
		output = strings.TrimSpace(output[:i])
	}

	lower := strings.ToLower(output)
	if strings.Contains(lower, "no devices") ||
		strings.Contains(lower, "failed") ||
		strings.Contains(lower, "error") {
		return nil, fmt.Errorf("nvidia-smi: %s", output)
	}

	fields := strings.Split(output, ",")
	if len(fields) < 5 {
		return nil, fmt.Errorf("nvidia-smi output has insufficient fields: expected 5, got %d", len(fields))
	}

	r := &SMIReading{Name: strings.TrimSpace(fields[0])}

	if v, ok, err := smiFloat(fields[1]); err != nil {
		return nil, fmt.Errorf("failed to parse GPU temperature: %w", err)
	} else if ok {
		r.Temperature, r.HasTemperature = v, true
	}

	if v, ok, err := smiFloat(fields[2]); err != nil {
		return nil, fmt.Errorf("failed to parse GPU fan speed: %w", err)
	} else if ok {
		r.FanPercent, r.HasFan = v, true
	}

	used, okUsed, err := smiFloat(fields[3])
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU memory used: %w", err)
	}
	total, okTotal, err := smiFloat(fields[4])
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU memory total: %w", err)
	}
	if okUsed && okTotal {
		// MiB to bytes
		r.MemoryUsed = uint64(used) * 1024 * 1024
		r.MemoryTotal = uint64(total) * 1024 * 1024
		r.HasMemory = true
	}

	return r, nil
}

// smiFloat parses one CSV field. Missing values ("[N/A]", "[Not Supported]",
// empty) return ok=false without an error.
func smiFloat(field string) (v float64, ok bool, err error) {
	s := strings.TrimSpace(field)
	if s == "" || strings.HasPrefix(s, "[") {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%q: %w", s, err)
	}
	return v, true, nil
}

// SMI is an NVIDIA GPU read through the nvidia-smi CLI. It needs no driver
// library at build time. One Refresh runs nvidia-smi once; the getters
// return the values from the latest refresh.
type SMI struct {
	path      string
	device    int
	maxFanRPM float64
	runner    exec.Runner

	mu      sync.Mutex
	reading *SMIReading
}

// OpenSMI binds to device index via the nvidia-smi at path and performs the
// first refresh. A failure here means the backend is unusable.
func OpenSMI(ctx context.Context, runner exec.Runner, path string, device int, maxFanRPM float64) (*SMI, error) {
	if runner == nil {
		runner = exec.Local{}
	}
	if path == "" {
		path = "nvidia-smi"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		resolved = path
	}

	s := &SMI{path: resolved, device: device, maxFanRPM: maxFanRPM, runner: runner}
	if err := s.Refresh(ctx); err != nil {
		return nil, bindError("nvidia-smi", err,
			"Make sure the NVIDIA driver is installed and nvidia-smi is on your PATH, or set gpu.nvidia_smi_path.")
	}
	return s, nil
}

// Refresh runs nvidia-smi once and replaces the cached reading.
func (s *SMI) Refresh(ctx context.Context) error {
	stdout, stderr, exitCode, err := s.runner.Capture(ctx, s.path,
		fmt.Sprintf("--id=%d", s.device),
		"--query-gpu="+smiQuery,
		"--format=csv,noheader,nounits")
	if err != nil {
		return err
	}
	if exitCode != 0 {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = strings.TrimSpace(string(stdout))
		}
		return fmt.Errorf("nvidia-smi exited with code %d: %s", exitCode, msg)
	}

	reading, err := ParseSMIQuery(string(stdout))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reading = reading
	s.mu.Unlock()
	return nil
}

func (s *SMI) current() *SMIReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading
}

// Brand is always "NVIDIA"; nvidia-smi does not expose the product brand.
func (s *SMI) Brand() (string, error) {
	return "NVIDIA", nil
}

func (s *SMI) Name() (string, error) {
	r := s.current()
	if r == nil || r.Name == "" {
		return "", wrapQuery("name", ErrUnavailable)
	}
	return r.Name, nil
}

// FanCount is 1 when nvidia-smi reports a fan speed, else 0. nvidia-smi
// only reports the first fan.
func (s *SMI) FanCount() (int, error) {
	r := s.current()
	if r != nil && r.HasFan {
		return 1, nil
	}
	return 0, nil
}

func (s *SMI) Temperature() (float64, error) {
	r := s.current()
	if r == nil || !r.HasTemperature {
		return 0, wrapQuery("temperature", ErrUnavailable)
	}
	return r.Temperature, nil
}

// FanSpeed converts nvidia-smi's percentage to RPM against the configured
// max so the sampler's RPM scaling round-trips.
func (s *SMI) FanSpeed(fan int) (float64, error) {
	r := s.current()
	if fan != 0 || r == nil || !r.HasFan {
		return 0, wrapQuery(fmt.Sprintf("fan %d", fan), ErrUnavailable)
	}
	return r.FanPercent / 100 * s.maxFanRPM, nil
}

func (s *SMI) Memory() (used, total uint64, err error) {
	r := s.current()
	if r == nil || !r.HasMemory {
		return 0, 0, wrapQuery("memory", ErrUnavailable)
	}
	return r.MemoryUsed, r.MemoryTotal, nil
}

func (s *SMI) Close() error { return nil }
