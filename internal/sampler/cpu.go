package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	hwerrors "github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

var (
	// ErrNoCores is returned when a source reports no logical cores.
	ErrNoCores = errors.New("no cores detected")
	// ErrCardinality is returned when a source reports a different number of
	// per-core readings than it did at startup.
	ErrCardinality = errors.New("core count changed")
)

// CPUSampler samples per-core utilization and memory usage and publishes a
// CPUSnapshot per successful tick. Its series are private to the goroutine
// running Tick/Run.
type CPUSampler struct {
	source CPUSource
	bus    *telemetry.Mailbox[*telemetry.CPUSnapshot]
	opts   Options

	cores   []*telemetry.Series
	average *telemetry.Series
	memory  *telemetry.Series
	tick    uint64
}

// NewCPUSampler discovers the core count once and allocates the working series.
func NewCPUSampler(source CPUSource, bus *telemetry.Mailbox[*telemetry.CPUSnapshot], opts Options) (*CPUSampler, error) {
	opts = opts.withDefaults()

	cores, err := source.CoreCount()
	if err != nil {
		return nil, hwerrors.WrapWithCode(err, hwerrors.ErrSampler,
			"Couldn't detect CPU cores",
			"Try the other CPU backend: set cpu.backend to procfs or gopsutil in .hwdash.yaml")
	}
	if cores < 1 {
		return nil, hwerrors.WrapWithCode(fmt.Errorf("%w: source reported %d", ErrNoCores, cores), hwerrors.ErrSampler,
			"Couldn't detect CPU cores",
			"Try the other CPU backend: set cpu.backend to procfs or gopsutil in .hwdash.yaml")
	}

	return &CPUSampler{
		source:  source,
		bus:     bus,
		opts:    opts,
		cores:   newSeriesSet(cores, opts.Depth),
		average: telemetry.NewSeries(opts.Depth),
		memory:  telemetry.NewSeries(opts.Depth),
	}, nil
}

// Cores returns the core count discovered at construction.
func (s *CPUSampler) Cores() int {
	return len(s.cores)
}

// Interval returns the configured tick interval.
func (s *CPUSampler) Interval() time.Duration {
	return s.opts.Interval
}

// Initial returns a zero-filled snapshot with the right cardinality, suitable
// for the first paint before any tick has completed.
func (s *CPUSampler) Initial() *telemetry.CPUSnapshot {
	return &telemetry.CPUSnapshot{
		Taken:   s.opts.Now(),
		Cores:   telemetry.ZeroHistories(len(s.cores), s.opts.Depth),
		Average: make([]float64, s.opts.Depth),
		Memory:  make([]float64, s.opts.Depth),
	}
}

// Tick queries the source once. On success it pushes every reading, publishes
// and returns the new snapshot. On failure nothing is pushed or published and
// the previous snapshot stays current.
func (s *CPUSampler) Tick(ctx context.Context) (*telemetry.CPUSnapshot, error) {
	usage, err := s.source.CoreUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("core usage: %w", err)
	}
	if len(usage) != len(s.cores) {
		return nil, fmt.Errorf("%w: expected %d readings, got %d", ErrCardinality, len(s.cores), len(usage))
	}
	used, total, err := s.source.Memory(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}

	var sum float64
	for i, u := range usage {
		u = telemetry.ClampPercent(u)
		s.cores[i].Push(u)
		sum += u
	}
	s.average.PushPercent(sum / float64(len(s.cores)))
	s.memory.PushPercent(telemetry.Percent(float64(used), float64(total)))

	s.tick++
	snap := &telemetry.CPUSnapshot{
		Tick:             s.tick,
		Taken:            s.opts.Now(),
		Cores:            telemetry.Histories(s.cores),
		Average:          s.average.Values(),
		Memory:           s.memory.Values(),
		UsedMemoryBytes:  used,
		TotalMemoryBytes: total,
	}
	if s.bus != nil {
		s.bus.Publish(snap)
	}
	return snap, nil
}

// Run ticks every Interval until ctx is done. Failed ticks are logged at
// debug level and skipped.
func (s *CPUSampler) Run(ctx context.Context) {
	run(ctx, s.opts.Interval, func() {
		if _, err := s.Tick(ctx); err != nil {
			s.opts.Logger.Debug("cpu tick skipped: %v", err)
		}
	})
}

// run calls tick immediately and then once per interval until ctx is done.
func run(ctx context.Context, interval time.Duration, tick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
