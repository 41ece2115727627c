package plot

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/hwdash/internal/telemetry"
	"github.com/rileyhilliard/hwdash/internal/util"
)

// Kind selects which series of the state a plot draws and how its axis is
// labelled. The set is closed: the unexported method keeps other packages
// from adding variants, and every variant must implement every method.
type Kind interface {
	// ID is the stable identifier used in config and on the command line.
	ID() string
	// Title is the heading drawn above the plot; it may include live values.
	Title(state telemetry.State) string
	Axis(opts Options) Axis
	// RequiresGPU reports whether the kind draws GPU telemetry.
	RequiresGPU() bool
	// Series returns the histories to draw, or nil before the first
	// snapshot of the kind's subsystem arrives.
	Series(state telemetry.State, opts Options) []Series
	// Legend reports whether the kind draws one line per core or fan and
	// therefore needs a legend.
	Legend() bool

	kind()
}

// Series is one history selected for drawing.
type Series struct {
	Label  string
	Color  Color
	Values []float64
}

type (
	// AverageCPU draws the mean utilization across all cores.
	AverageCPU struct{}
	// PerCoreCPU draws one line per logical core.
	PerCoreCPU struct{}
	// Memory draws used system memory as a percentage of total.
	Memory struct{}
	// GPUVRAM draws used VRAM as a percentage of total.
	GPUVRAM struct{}
	// GPUFan draws one line per fan, labelled in RPM.
	GPUFan struct{}
	// GPUTemperature draws the core temperature in degrees Celsius.
	GPUTemperature struct{}
)

// AllKinds returns every kind in dashboard order.
func AllKinds() []Kind {
	return []Kind{AverageCPU{}, PerCoreCPU{}, Memory{}, GPUVRAM{}, GPUFan{}, GPUTemperature{}}
}

// KindIDs returns the IDs of AllKinds.
func KindIDs() []string {
	kinds := AllKinds()
	ids := make([]string, len(kinds))
	for i, k := range kinds {
		ids[i] = k.ID()
	}
	return ids
}

// ParseKind resolves a kind by ID.
func ParseKind(id string) (Kind, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, k := range AllKinds() {
		if k.ID() == id {
			return k, nil
		}
	}
	if hint := util.DidYouMean(id, KindIDs()); hint != "" {
		return nil, fmt.Errorf("unknown plot %q, %s", id, hint)
	}
	return nil, fmt.Errorf("unknown plot %q (valid: %s)", id, strings.Join(KindIDs(), ", "))
}

// ParseKinds resolves a list of IDs, rejecting duplicates.
func ParseKinds(ids []string) ([]Kind, error) {
	seen := make(map[string]bool, len(ids))
	kinds := make([]Kind, 0, len(ids))
	for _, id := range ids {
		k, err := ParseKind(id)
		if err != nil {
			return nil, err
		}
		if seen[k.ID()] {
			return nil, fmt.Errorf("plot %q listed twice", k.ID())
		}
		seen[k.ID()] = true
		kinds = append(kinds, k)
	}
	return kinds, nil
}

const gib = 1024 * 1024 * 1024

func gb(bytes uint64) float64 {
	return float64(bytes) / gib
}

func single(label string, color Color, values []float64) []Series {
	return []Series{{Label: label, Color: color, Values: values}}
}

func indexed(prefix string, histories [][]float64, palette []Color) []Series {
	series := make([]Series, len(histories))
	for i, h := range histories {
		series[i] = Series{
			Label:  fmt.Sprintf("%s %d", prefix, i+1),
			Color:  PaletteColor(palette, i),
			Values: h,
		}
	}
	return series
}

func (AverageCPU) ID() string                   { return "cpu-average" }
func (AverageCPU) Title(telemetry.State) string { return "CPU Usage (average)" }
func (AverageCPU) Axis(Options) Axis            { return PercentAxis }
func (AverageCPU) RequiresGPU() bool            { return false }
func (AverageCPU) Legend() bool                 { return false }
func (AverageCPU) kind()                        {}
func (AverageCPU) Series(s telemetry.State, o Options) []Series {
	if s.CPU == nil {
		return nil
	}
	return single("Average", PaletteColor(o.Palette, 1), s.CPU.Average)
}

func (PerCoreCPU) ID() string                   { return "cpu-cores" }
func (PerCoreCPU) Title(telemetry.State) string { return "CPU Core Usage" }
func (PerCoreCPU) Axis(Options) Axis            { return PercentAxis }
func (PerCoreCPU) RequiresGPU() bool            { return false }
func (PerCoreCPU) Legend() bool                 { return true }
func (PerCoreCPU) kind()                        {}
func (PerCoreCPU) Series(s telemetry.State, o Options) []Series {
	if s.CPU == nil {
		return nil
	}
	return indexed("Core", s.CPU.Cores, o.Palette)
}

func (Memory) ID() string { return "memory" }
func (Memory) Title(s telemetry.State) string {
	if s.CPU == nil {
		return "RAM Usage"
	}
	return fmt.Sprintf("RAM Usage: %.2f GB / %.2f GB", gb(s.CPU.UsedMemoryBytes), gb(s.CPU.TotalMemoryBytes))
}
func (Memory) Axis(Options) Axis { return PercentAxis }
func (Memory) RequiresGPU() bool { return false }
func (Memory) Legend() bool      { return false }
func (Memory) kind()             {}
func (Memory) Series(s telemetry.State, o Options) []Series {
	if s.CPU == nil {
		return nil
	}
	return single("Used", PaletteColor(o.Palette, 2), s.CPU.Memory)
}

func (GPUVRAM) ID() string { return "gpu-vram" }
func (GPUVRAM) Title(s telemetry.State) string {
	if s.GPU == nil {
		return "GPU VRAM Usage"
	}
	return fmt.Sprintf("GPU: %s · VRAM Usage: %.2f GB / %.2f GB", s.GPU.Name, gb(s.GPU.UsedVRAMBytes), gb(s.GPU.TotalVRAMBytes))
}
func (GPUVRAM) Axis(Options) Axis { return PercentAxis }
func (GPUVRAM) RequiresGPU() bool { return true }
func (GPUVRAM) Legend() bool      { return false }
func (GPUVRAM) kind()             {}
func (GPUVRAM) Series(s telemetry.State, o Options) []Series {
	if s.GPU == nil {
		return nil
	}
	return single("VRAM", PaletteColor(o.Palette, 3), s.GPU.VRAM)
}

func (GPUFan) ID() string                   { return "gpu-fan" }
func (GPUFan) Title(telemetry.State) string { return "GPU Fan Speed" }

// Axis keeps the stored percentage as the plotted value but labels ticks in
// RPM against the configured maximum.
func (GPUFan) Axis(o Options) Axis {
	return Axis{Divisor: 100, LabelMax: o.MaxFanRPM, Unit: "RPM"}
}
func (GPUFan) RequiresGPU() bool { return true }
func (GPUFan) Legend() bool      { return true }
func (GPUFan) kind()             {}
func (GPUFan) Series(s telemetry.State, o Options) []Series {
	if s.GPU == nil {
		return nil
	}
	return indexed("Fan", s.GPU.Fans, o.Palette)
}

func (GPUTemperature) ID() string                   { return "gpu-temperature" }
func (GPUTemperature) Title(telemetry.State) string { return "GPU Temperature" }
func (GPUTemperature) Axis(o Options) Axis {
	return Axis{Divisor: o.TemperatureMax, LabelMax: o.TemperatureMax, Unit: "°C"}
}
func (GPUTemperature) RequiresGPU() bool { return true }
func (GPUTemperature) Legend() bool      { return false }
func (GPUTemperature) kind()             {}
func (GPUTemperature) Series(s telemetry.State, o Options) []Series {
	if s.GPU == nil {
		return nil
	}
	return single("Temperature", PaletteColor(o.Palette, 4), s.GPU.Temperature)
}
