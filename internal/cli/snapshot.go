package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/logger"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
	"github.com/rileyhilliard/hwdash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// MaxSnapshotTicks bounds --ticks so a typo can't sample for hours.
const MaxSnapshotTicks = 1000

// sparkWidth is the widest sparkline the text summary prints.
const sparkWidth = 30

var (
	snapshotFlags SamplingFlags
	snapshotTicks int
	snapshotJSON  bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Sample for a moment and print the readings",
	Long: `Run the samplers in the foreground for a few ticks at the configured interval
and print the latest readings, with a sparkline of the ticks taken.

Use --json for the machine-readable form.`,
	Example: `  hwdash snapshot
  hwdash snapshot --ticks 20 --interval 100ms
  hwdash snapshot --json | jq .data.cpu.average`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = snapshotJSON
		return snapshotCommand(cmd.Context(), cmd.OutOrStdout(), snapshotFlags, snapshotTicks, snapshotJSON)
	},
}

func init() {
	AddSamplingFlags(snapshotCmd, &snapshotFlags)
	snapshotCmd.Flags().IntVarP(&snapshotTicks, "ticks", "n", 5, "number of sampler ticks to run")
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "output in JSON format")
}

// SnapshotOutput is the --json data of the snapshot command.
type SnapshotOutput struct {
	Host   HostOutput  `json:"host"`
	Ticks  int         `json:"ticks"`
	Taken  time.Time   `json:"taken"`
	CPU    CPUOutput   `json:"cpu"`
	GPU    *GPUOutput  `json:"gpu,omitempty"`
	Config ConfigBrief `json:"config"`
}

// HostOutput describes the sampled machine.
type HostOutput struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform,omitempty"`
	Kernel        string `json:"kernel,omitempty"`
	CPUModel      string `json:"cpu_model,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// CPUOutput holds the latest CPU and memory readings.
type CPUOutput struct {
	Cores            int       `json:"cores"`
	Average          float64   `json:"average"`
	PerCore          []float64 `json:"per_core"`
	MemoryPercent    float64   `json:"memory_percent"`
	MemoryUsedBytes  uint64    `json:"memory_used_bytes"`
	MemoryTotalBytes uint64    `json:"memory_total_bytes"`
}

// GPUOutput holds the latest GPU readings.
type GPUOutput struct {
	Name           string      `json:"name"`
	Brand          string      `json:"brand,omitempty"`
	Backend        string      `json:"backend"`
	Temperature    float64     `json:"temperature_c"`
	Fans           []FanOutput `json:"fans"`
	VRAMPercent    float64     `json:"vram_percent"`
	VRAMUsedBytes  uint64      `json:"vram_used_bytes"`
	VRAMTotalBytes uint64      `json:"vram_total_bytes"`
}

// FanOutput is one fan's latest speed.
type FanOutput struct {
	Percent float64 `json:"percent"`
	RPM     float64 `json:"rpm"`
}

// ConfigBrief records the settings that shaped the readings.
type ConfigBrief struct {
	CPUBackend string `json:"cpu_backend"`
	GPUBackend string `json:"gpu_backend"`
	Interval   string `json:"interval"`
}

// snapshotCommand samples synchronously and prints the result.
func snapshotCommand(ctx context.Context, w io.Writer, flags SamplingFlags, ticks int, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if ticks < 1 || ticks > MaxSnapshotTicks {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--ticks must be between 1 and %d (got %d)", MaxSnapshotTicks, ticks),
			"Try --ticks 5.")
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log := logger.NewEnvLogger("[snapshot]")
	s, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	var spin *ui.Spinner
	if !asJSON && term.IsTerminal(int(os.Stderr.Fd())) {
		spin = ui.NewSpinner(fmt.Sprintf("Sampling %d ticks", ticks))
		spin.Start()
	}

	state, err := s.sample(ctx, ticks, log)
	if spin != nil {
		if err != nil {
			spin.Fail()
		} else {
			spin.Success()
		}
	}
	if err != nil {
		return err
	}

	out := buildSnapshotOutput(state, s.gpuBackend, cfg, ticks)
	if asJSON {
		return WriteJSONSuccess(w, out)
	}
	_, err = io.WriteString(w, renderSnapshot(state, cfg, ticks))
	return err
}

// sample ticks both samplers ticks times, one interval apart, and returns
// the final state. A failed tick keeps the previous snapshot; it is an
// error only when the CPU never produced one.
func (s *session) sample(ctx context.Context, ticks int, log logger.Logger) (telemetry.State, error) {
	state := s.state
	interval := s.cfg.CPU.Interval

	var lastErr error
	for i := 0; i < ticks; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return state, errors.WrapWithCode(ctx.Err(), errors.ErrSampler, "Sampling interrupted", "")
			case <-time.After(interval):
			}
		}

		if snap, err := s.cpu.Tick(ctx); err != nil {
			log.Debug("cpu tick %d: %v", i+1, err)
			lastErr = err
		} else {
			state.CPU = snap
		}

		if s.gpu != nil {
			if snap, err := s.gpu.Tick(ctx); err != nil {
				log.Debug("gpu tick %d: %v", i+1, err)
			} else {
				state.GPU = snap
			}
		}
	}

	if state.CPU.Tick == 0 {
		return state, errors.WrapWithCode(lastErr, errors.ErrSampler,
			"Every CPU reading failed",
			"Run 'hwdash doctor' to check the CPU backend.")
	}
	return state, nil
}

func buildSnapshotOutput(state telemetry.State, gpuBackend string, cfg *config.Config, ticks int) SnapshotOutput {
	cpu := state.CPU
	out := SnapshotOutput{
		Host: HostOutput{
			Hostname:      state.System.Hostname,
			OS:            state.System.OS,
			Platform:      state.System.Platform,
			Kernel:        state.System.Kernel,
			CPUModel:      state.System.CPUModel,
			UptimeSeconds: int64(state.System.Uptime / time.Second),
		},
		Ticks: ticks,
		Taken: cpu.Taken,
		CPU: CPUOutput{
			Cores:            cpu.CoreCount(),
			Average:          telemetry.Latest(cpu.Average),
			PerCore:          make([]float64, cpu.CoreCount()),
			MemoryPercent:    telemetry.Latest(cpu.Memory),
			MemoryUsedBytes:  cpu.UsedMemoryBytes,
			MemoryTotalBytes: cpu.TotalMemoryBytes,
		},
		Config: ConfigBrief{
			CPUBackend: cfg.CPU.Backend,
			GPUBackend: cfg.GPU.Backend,
			Interval:   cfg.CPU.Interval.String(),
		},
	}
	for i, core := range cpu.Cores {
		out.CPU.PerCore[i] = telemetry.Latest(core)
	}

	if gpu := state.GPU; state.GPUAvailable && gpu != nil {
		g := &GPUOutput{
			Name:           gpu.Name,
			Brand:          gpu.Brand,
			Backend:        gpuBackend,
			Temperature:    telemetry.Latest(gpu.Temperature),
			Fans:           make([]FanOutput, gpu.FanCount()),
			VRAMPercent:    telemetry.Latest(gpu.VRAM),
			VRAMUsedBytes:  gpu.UsedVRAMBytes,
			VRAMTotalBytes: gpu.TotalVRAMBytes,
		}
		for i, fan := range gpu.Fans {
			pct := telemetry.Latest(fan)
			g.Fans[i] = FanOutput{Percent: pct, RPM: pct / 100 * cfg.GPU.MaxFanRPM}
		}
		out.GPU = g
	}
	return out
}

// renderSnapshot formats the text summary: one line per metric with a
// sparkline of the ticks taken and the latest value.
func renderSnapshot(state telemetry.State, cfg *config.Config, ticks int) string {
	const labelW = 12
	width := min(ticks, sparkWidth)
	titleStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	line := func(label, spark, value string) {
		b.WriteString("  " + ui.PadRight(label, labelW) + " " + ui.PadRight(spark, width) + "  " + value + "\n")
	}

	host := state.System.Hostname
	if host == "" {
		host = "localhost"
	}
	b.WriteString(titleStyle.Render("hwdash snapshot") + ui.MutedStyle().Render(fmt.Sprintf(" · %s · %d ticks @ %v", host, ticks, cfg.CPU.Interval)) + "\n\n")

	cpu := state.CPU
	b.WriteString(titleStyle.Render("CPU") + "\n")
	line("Average", ui.RenderSparkline(cpu.Average, width), percent(telemetry.Latest(cpu.Average)))
	for i, core := range cpu.Cores {
		line(fmt.Sprintf("Core %d", i+1), ui.RenderSparkline(core, width), percent(telemetry.Latest(core)))
	}
	line("Memory", ui.RenderSparkline(cpu.Memory, width), fmt.Sprintf("%s  %s / %s",
		percent(telemetry.Latest(cpu.Memory)), gib(cpu.UsedMemoryBytes), gib(cpu.TotalMemoryBytes)))

	b.WriteString("\n" + titleStyle.Render("GPU") + "\n")
	gpu := state.GPU
	if !state.GPUAvailable || gpu == nil {
		b.WriteString("  " + ui.MutedStyle().Render("no GPU") + "\n")
		return b.String()
	}
	b.WriteString("  " + gpu.Name + "\n")
	line("VRAM", ui.RenderSparkline(gpu.VRAM, width), fmt.Sprintf("%s  %s / %s",
		percent(telemetry.Latest(gpu.VRAM)), gib(gpu.UsedVRAMBytes), gib(gpu.TotalVRAMBytes)))
	for i, fan := range gpu.Fans {
		pct := telemetry.Latest(fan)
		line(fmt.Sprintf("Fan %d", i+1), ui.RenderSparkline(fan, width),
			fmt.Sprintf("%.0f RPM", pct/100*cfg.GPU.MaxFanRPM))
	}
	line("Temperature", ui.RenderScaledSparkline(gpu.Temperature, width, cfg.GPU.TemperatureMax),
		fmt.Sprintf("%.0f°C", telemetry.Latest(gpu.Temperature)))
	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%5.1f%%", v)
}

func gib(b uint64) string {
	return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
}
