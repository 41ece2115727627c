package sampler

import "context"

// CPUSource is the operating system side of the CPU/memory sampler.
// Implementations live in internal/provider.
type CPUSource interface {
	// CoreCount returns the number of logical cores. Called once at construction.
	CoreCount() (int, error)
	// CoreUsage refreshes and returns per-core utilization percentages.
	CoreUsage(ctx context.Context) ([]float64, error)
	// Memory refreshes and returns used and total system memory in bytes.
	Memory(ctx context.Context) (used, total uint64, err error)
}

// GPUDevice is a GPU already bound to a physical device. Every query can fail
// independently; a failure must never affect the other queries.
type GPUDevice interface {
	Brand() (string, error)
	Name() (string, error)
	// FanCount is called once at construction.
	FanCount() (int, error)
	// Temperature returns the core temperature in degrees Celsius.
	Temperature() (float64, error)
	// FanSpeed returns the speed of fan i in RPM.
	FanSpeed(fan int) (float64, error)
	// Memory returns used and total VRAM in bytes.
	Memory() (used, total uint64, err error)
	Close() error
}

// Refresher is implemented by devices that fetch all readings in one call
// (for example a single nvidia-smi invocation). The sampler refreshes such a
// device once at the start of every tick.
type Refresher interface {
	Refresh(ctx context.Context) error
}
