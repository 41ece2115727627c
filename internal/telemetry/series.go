package telemetry

import "math"

// DefaultDepth is the default number of samples retained per series
// (24 seconds at the default 200ms cadence).
const DefaultDepth = 120

// Series is a fixed-length rolling window of samples. It always holds exactly
// Len() values; a new sample evicts the oldest one.
//
// A Series is owned by a single sampler goroutine and is not safe for
// concurrent use. Other goroutines only ever see copies taken via Values.
type Series struct {
	data []float64
	head int // index of the oldest sample, also the next write position
}

// NewSeries creates a zero-filled series with the given depth.
// Depths below 1 fall back to DefaultDepth.
func NewSeries(depth int) *Series {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &Series{data: make([]float64, depth)}
}

// Push appends a sample and evicts the oldest. Non-finite values are stored as 0.
func (s *Series) Push(value float64) {
	s.data[s.head] = Finite(value)
	s.head = (s.head + 1) % len(s.data)
}

// PushPercent clamps the value into [0, 100] before pushing it.
func (s *Series) PushPercent(value float64) {
	s.Push(ClampPercent(value))
}

// Len returns the fixed depth of the series.
func (s *Series) Len() int {
	return len(s.data)
}

// At returns the i-th sample counted from the oldest (0) to the newest (Len()-1).
// i is taken modulo Len(), so -1 is the newest sample and Len() the oldest.
func (s *Series) At(i int) float64 {
	n := len(s.data)
	i %= n
	if i < 0 {
		i += n
	}
	return s.data[(s.head+i)%n]
}

// Latest returns the newest sample.
func (s *Series) Latest() float64 {
	return s.At(len(s.data) - 1)
}

// Values returns a copy of the samples, oldest first.
func (s *Series) Values() []float64 {
	return s.AppendTo(make([]float64, 0, len(s.data)))
}

// AppendTo appends the samples, oldest first, to dst.
func (s *Series) AppendTo(dst []float64) []float64 {
	dst = append(dst, s.data[s.head:]...)
	return append(dst, s.data[:s.head]...)
}

// Finite maps NaN and ±Inf to 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ClampPercent clamps v into [0, 100]; non-finite input yields exactly 0.
func ClampPercent(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Percent returns part/total*100 clamped into [0, 100]. A zero total yields 0.
func Percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return ClampPercent(part / total * 100)
}
