package sampler

import (
	"context"
	"fmt"
	"time"

	hwerrors "github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// Unknown is reported for a GPU brand or name that could not be queried.
const Unknown = "Unknown"

// GPUSampler samples temperature, fan speeds and VRAM usage from a bound
// device. Each metric fails independently: a failed query leaves that
// metric's history untouched so its last good value stays current.
type GPUSampler struct {
	device GPUDevice
	bus    *telemetry.Mailbox[*telemetry.GPUSnapshot]
	opts   Options

	brand string
	name  string

	temperature *telemetry.Series
	fans        []*telemetry.Series
	vram        *telemetry.Series
	used, total uint64
	tick        uint64
}

// NewGPUSampler discovers the fan count and device identity once. A device
// that cannot report its fan count is sampled with no fans.
func NewGPUSampler(device GPUDevice, bus *telemetry.Mailbox[*telemetry.GPUSnapshot], opts Options) (*GPUSampler, error) {
	if device == nil {
		return nil, hwerrors.New(hwerrors.ErrSampler, "No GPU device to sample",
			"Run with --no-gpu or set gpu.backend to none")
	}
	opts = opts.withDefaults()

	fans, err := device.FanCount()
	if err != nil {
		opts.Logger.Debug("gpu fan count unavailable: %v", err)
		fans = 0
	}
	if fans < 0 {
		fans = 0
	}

	s := &GPUSampler{
		device:      device,
		bus:         bus,
		opts:        opts,
		brand:       identity(device.Brand),
		name:        identity(device.Name),
		temperature: telemetry.NewSeries(opts.Depth),
		fans:        newSeriesSet(fans, opts.Depth),
		vram:        telemetry.NewSeries(opts.Depth),
	}
	return s, nil
}

func identity(query func() (string, error)) string {
	v, err := query()
	if err != nil || v == "" {
		return Unknown
	}
	return v
}

// Brand returns the brand discovered at construction.
func (s *GPUSampler) Brand() string { return s.brand }

// Name returns the device name discovered at construction.
func (s *GPUSampler) Name() string { return s.name }

// Fans returns the fan count discovered at construction.
func (s *GPUSampler) Fans() int { return len(s.fans) }

// Interval returns the configured tick interval.
func (s *GPUSampler) Interval() time.Duration {
	return s.opts.Interval
}

// Initial returns a zero-filled snapshot for the first paint.
func (s *GPUSampler) Initial() *telemetry.GPUSnapshot {
	return &telemetry.GPUSnapshot{
		Taken:       s.opts.Now(),
		Brand:       s.brand,
		Name:        s.name,
		Temperature: make([]float64, s.opts.Depth),
		Fans:        telemetry.ZeroHistories(len(s.fans), s.opts.Depth),
		VRAM:        make([]float64, s.opts.Depth),
	}
}

// Tick queries every metric once. Temperature and fan failures are logged
// and skipped. A snapshot is published only when the memory query
// succeeds; otherwise Tick returns the memory error.
func (s *GPUSampler) Tick(ctx context.Context) (*telemetry.GPUSnapshot, error) {
	if r, ok := s.device.(Refresher); ok {
		if err := r.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("refresh: %w", err)
		}
	}

	if t, err := s.device.Temperature(); err != nil {
		s.opts.Logger.Debug("gpu temperature unavailable: %v", err)
	} else {
		s.temperature.Push(t)
	}

	for i, series := range s.fans {
		rpm, err := s.device.FanSpeed(i)
		if err != nil {
			s.opts.Logger.Debug("gpu fan %d unavailable: %v", i, err)
			continue
		}
		series.PushPercent(rpm / s.opts.MaxFanRPM * 100)
	}

	used, total, err := s.device.Memory()
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	s.used, s.total = used, total
	s.vram.PushPercent(telemetry.Percent(float64(used), float64(total)))

	s.tick++
	snap := &telemetry.GPUSnapshot{
		Tick:           s.tick,
		Taken:          s.opts.Now(),
		Brand:          s.brand,
		Name:           s.name,
		Temperature:    s.temperature.Values(),
		Fans:           telemetry.Histories(s.fans),
		VRAM:           s.vram.Values(),
		UsedVRAMBytes:  s.used,
		TotalVRAMBytes: s.total,
	}
	if s.bus != nil {
		s.bus.Publish(snap)
	}
	return snap, nil
}

// Run ticks every Interval until ctx is done.
func (s *GPUSampler) Run(ctx context.Context) {
	run(ctx, s.opts.Interval, func() {
		if _, err := s.Tick(ctx); err != nil {
			s.opts.Logger.Debug("gpu tick not published: %v", err)
		}
	})
}

// Close releases the underlying device.
func (s *GPUSampler) Close() error {
	return s.device.Close()
}
