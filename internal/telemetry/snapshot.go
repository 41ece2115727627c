package telemetry

import "time"

// CPUSnapshot is the published state of the CPU/memory sampler for one tick.
// Every slice is a private copy; consumers must treat a snapshot as read-only.
type CPUSnapshot struct {
	Tick  uint64
	Taken time.Time

	// Cores holds one history per logical core, oldest sample first.
	Cores   [][]float64
	Average []float64
	// Memory is the used-memory history as a percentage of total.
	Memory []float64

	UsedMemoryBytes  uint64
	TotalMemoryBytes uint64
}

// CoreCount returns the number of per-core histories.
func (s *CPUSnapshot) CoreCount() int {
	if s == nil {
		return 0
	}
	return len(s.Cores)
}

// GPUSnapshot is the published state of the GPU sampler for one tick.
// Every slice is a private copy; consumers must treat a snapshot as read-only.
type GPUSnapshot struct {
	Tick  uint64
	Taken time.Time

	Brand string
	Name  string

	// Temperature is in degrees Celsius, not a percentage.
	Temperature []float64
	// Fans holds one history per fan, as a percentage of the configured max RPM.
	Fans [][]float64
	// VRAM is the used-VRAM history as a percentage of total.
	VRAM []float64

	UsedVRAMBytes  uint64
	TotalVRAMBytes uint64
}

// FanCount returns the number of per-fan histories.
func (s *GPUSnapshot) FanCount() int {
	if s == nil {
		return 0
	}
	return len(s.Fans)
}

// SystemInfo describes the machine being monitored. Captured once at startup.
type SystemInfo struct {
	Hostname string
	OS       string
	Platform string
	Kernel   string
	CPUModel string
	Uptime   time.Duration
}

// State is the consumer's view of all subsystems: the last snapshot received
// from each sampler. Replacing a field never mutates the previous snapshot.
type State struct {
	CPU *CPUSnapshot
	GPU *GPUSnapshot

	// GPUAvailable is false when no GPU backend could be bound. GPU plots
	// then render a placeholder instead of waiting for data forever.
	GPUAvailable bool

	System SystemInfo
}

// Latest returns the newest sample of a history, or 0 for an empty one.
func Latest(history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1]
}

// Histories deep-copies a set of series for inclusion in a snapshot.
func Histories(series []*Series) [][]float64 {
	out := make([][]float64, len(series))
	for i, s := range series {
		out[i] = s.Values()
	}
	return out
}

// ZeroHistories returns count zero-filled histories of the given depth.
func ZeroHistories(count, depth int) [][]float64 {
	out := make([][]float64, count)
	for i := range out {
		out[i] = make([]float64, depth)
	}
	return out
}
