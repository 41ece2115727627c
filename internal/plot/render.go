package plot

import "github.com/rileyhilliard/hwdash/internal/telemetry"

// Placeholder messages shown instead of lines.
const (
	PlaceholderNoGPU   = "No GPU detected"
	PlaceholderWaiting = "Waiting for data…"
	PlaceholderNoData  = "No sensors reported"
)

// Line is one series mapped into the plot area.
type Line struct {
	Label  string
	Color  Color
	Points []Point
	// Fill is Points closed along the bottom edge, for the translucent area.
	Fill []Point
}

// Frame is everything a host needs to draw one plot. It holds no references
// into the state it was rendered from.
type Frame struct {
	Kind  Kind
	Title string
	// Bounds is the rectangle passed to Render; Plot is Bounds minus margins.
	Bounds Rect
	Plot   Rect
	Axis   Axis
	Ticks  []Tick
	Lines  []Line
	Legend []LegendItem
	// FillAlpha is the opacity hosts should draw Line.Fill with.
	FillAlpha float64
	// Placeholder is non-empty when there is nothing to plot; Lines and
	// Legend are then empty.
	Placeholder string
}

// Render computes the geometry of kind for the given state. It is pure and
// cheap enough to call on every redraw.
func Render(kind Kind, state telemetry.State, bounds Rect, opts Options) Frame {
	opts = opts.withDefaults()
	plotRect := bounds.Inset(opts.Margins)
	axis := kind.Axis(opts)

	frame := Frame{
		Kind:      kind,
		Title:     kind.Title(state),
		Bounds:    bounds,
		Plot:      plotRect,
		Axis:      axis,
		Ticks:     axis.Ticks(plotRect, opts.Ticks),
		FillAlpha: opts.FillAlpha,
	}

	if kind.RequiresGPU() && !state.GPUAvailable {
		frame.Placeholder = PlaceholderNoGPU
		return frame
	}

	series := kind.Series(state, opts)
	switch {
	case series == nil:
		frame.Placeholder = PlaceholderWaiting
		return frame
	case len(series) == 0:
		frame.Placeholder = PlaceholderNoData
		return frame
	}

	frame.Lines = make([]Line, len(series))
	for i, s := range series {
		points := Polyline(s.Values, plotRect, axis.Divisor)
		frame.Lines[i] = Line{
			Label:  s.Label,
			Color:  s.Color,
			Points: points,
			Fill:   FillPolygon(points, plotRect),
		}
	}

	if kind.Legend() {
		frame.Legend = LayoutLegend(series, plotRect, opts.Legend, opts.Measure)
	}
	return frame
}
