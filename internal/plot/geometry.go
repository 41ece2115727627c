package plot

// Point is a position in the host's drawing units. Y grows downward.
type Point struct {
	X, Y float64
}

// Rect spans (X0,Y0) top-left to (X1,Y1) bottom-right.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect returns the rectangle at (x, y) with the given size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X0: x, Y0: y, X1: x + width, Y1: y + height}
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle has no drawable area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Inset shrinks the rectangle by the given margins.
func (r Rect) Inset(m Margins) Rect {
	return Rect{
		X0: r.X0 + m.Left,
		Y0: r.Y0 + m.Top,
		X1: r.X1 - m.Right,
		Y1: r.Y1 - m.Bottom,
	}
}

// Margins reserve space around the plot area for axis labels.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// Polyline maps a history onto rect: sample k sits at X0 + k*W/(N-1), so
// the oldest sample is on the left edge and the newest on the right edge.
// Values are divided by divisor and pinned to [0,1] of the height.
func Polyline(values []float64, rect Rect, divisor float64) []Point {
	n := len(values)
	if n == 0 {
		return nil
	}

	points := make([]Point, n)
	if n == 1 {
		points[0] = Point{X: rect.X0, Y: yFor(values[0], rect, divisor)}
		return points
	}

	scaleX := rect.Width() / float64(n-1)
	for k, v := range values {
		points[k] = Point{X: rect.X0 + float64(k)*scaleX, Y: yFor(v, rect, divisor)}
	}
	// Pin the newest sample to the edge exactly; k*scaleX can drift by an ulp.
	points[n-1].X = rect.X1
	return points
}

func yFor(v float64, rect Rect, divisor float64) float64 {
	frac := 0.0
	if divisor > 0 {
		frac = v / divisor
	}
	if frac != frac || frac < 0 { // NaN or negative
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return rect.Y1 - frac*rect.Height()
}

// FillPolygon closes a polyline along the bottom edge of rect: the line,
// then straight down at the right end, along the bottom, and back up.
func FillPolygon(line []Point, rect Rect) []Point {
	if len(line) == 0 {
		return nil
	}
	fill := make([]Point, 0, len(line)+2)
	fill = append(fill, line...)
	fill = append(fill,
		Point{X: line[len(line)-1].X, Y: rect.Y1},
		Point{X: line[0].X, Y: rect.Y1},
	)
	return fill
}
