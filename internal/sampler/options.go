package sampler

import (
	"time"

	"github.com/rileyhilliard/hwdash/internal/logger"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// Defaults used when an Options field is left at its zero value.
const (
	DefaultInterval  = 200 * time.Millisecond
	DefaultMaxFanRPM = 3000.0
)

// Options configures a sampler. Zero values select the defaults.
type Options struct {
	// Depth is the number of samples kept per series.
	Depth int
	// Interval is the sleep between ticks.
	Interval time.Duration
	// MaxFanRPM is the fan speed mapped to 100%. GPU sampler only.
	MaxFanRPM float64
	Logger    logger.Logger
	// Now is the clock used to stamp snapshots. Tests override it.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Depth < 1 {
		o.Depth = telemetry.DefaultDepth
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxFanRPM <= 0 {
		o.MaxFanRPM = DefaultMaxFanRPM
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// newSeriesSet allocates count series of the given depth.
func newSeriesSet(count, depth int) []*telemetry.Series {
	set := make([]*telemetry.Series, count)
	for i := range set {
		set[i] = telemetry.NewSeries(depth)
	}
	return set
}
