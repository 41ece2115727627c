package provider

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// Gopsutil reads CPU and memory usage through gopsutil. It works on every
// platform gopsutil supports and is the default CPU backend.
type Gopsutil struct {
	percent func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	counts  func(logical bool) (int, error)
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewGopsutil returns a CPU source backed by gopsutil.
func NewGopsutil() *Gopsutil {
	return &Gopsutil{
		percent: cpu.PercentWithContext,
		counts:  cpu.Counts,
		virtual: mem.VirtualMemoryWithContext,
	}
}

// CoreCount returns the number of logical cores.
func (g *Gopsutil) CoreCount() (int, error) {
	n, err := g.counts(true)
	if err != nil {
		return 0, wrapQuery("cpu core count", err)
	}
	return n, nil
}

// CoreUsage returns per-core utilization since the previous call. The first
// call measures from process start.
func (g *Gopsutil) CoreUsage(ctx context.Context) ([]float64, error) {
	usage, err := g.percent(ctx, 0, true)
	if err != nil {
		return nil, wrapQuery("cpu usage", err)
	}
	return usage, nil
}

// Memory returns used and total physical memory in bytes.
func (g *Gopsutil) Memory(ctx context.Context) (used, total uint64, err error) {
	vm, err := g.virtual(ctx)
	if err != nil {
		return 0, 0, wrapQuery("virtual memory", err)
	}
	return vm.Used, vm.Total, nil
}

// HostInfo describes the local machine. Fields that cannot be read are left
// empty; it never fails.
func HostInfo(ctx context.Context) telemetry.SystemInfo {
	var info telemetry.SystemInfo

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = h.Hostname
		info.OS = h.OS
		info.Platform = strings.TrimSpace(h.Platform + " " + h.PlatformVersion)
		info.Kernel = h.KernelVersion
		info.Uptime = time.Duration(h.Uptime) * time.Second
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = strings.TrimSpace(cpus[0].ModelName)
	}

	return info
}
