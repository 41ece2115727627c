package monitor

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hwdash/internal/plot"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// Dots per terminal cell.
const (
	dotsX = 2
	dotsY = 4
)

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

type cell struct {
	dots  uint8
	fg    plot.Color
	bg    plot.Color
	hasFg bool
}

// Canvas rasterizes plot geometry into braille cells. Coordinates are in
// dots: a canvas of w x h cells is 2w x 4h dots.
type Canvas struct {
	width, height int
	cells         []cell
}

// NewCanvas creates a blank canvas of width x height cells on the surface
// background.
func NewCanvas(width, height int) *Canvas {
	width = max(width, 0)
	height = max(height, 0)
	c := &Canvas{width: width, height: height, cells: make([]cell, width*height)}
	for i := range c.cells {
		c.cells[i].bg = surface
	}
	return c
}

// Bounds returns the canvas extent in dots, the rectangle to render into.
func (c *Canvas) Bounds() plot.Rect {
	return plot.NewRect(0, 0, float64(c.width*dotsX), float64(c.height*dotsY))
}

func (c *Canvas) at(cx, cy int) *cell {
	return &c.cells[cy*c.width+cx]
}

// Set lights the dot at (x, y) in colour col. Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int, col plot.Color) {
	if x < 0 || y < 0 || x >= c.width*dotsX || y >= c.height*dotsY {
		return
	}
	cl := c.at(x/dotsX, y/dotsY)
	cl.dots |= 1 << brailleDots[y%dotsY][x%dotsX]
	cl.fg = col
	cl.hasFg = true
}

// dot converts a continuous coordinate to a dot index in [0, limit).
// The right and bottom edges of the bounds map onto the last dot.
func dot(v float64, limit int) int {
	return clampInt(int(math.Floor(v)), limit-1)
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Polyline draws connected segments through points.
func (c *Canvas) Polyline(points []plot.Point, col plot.Color) {
	if c.width == 0 || c.height == 0 {
		return
	}
	w, h := c.width*dotsX, c.height*dotsY
	for i, p := range points {
		x, y := dot(p.X, w), dot(p.Y, h)
		if i == 0 {
			c.Set(x, y, col)
			continue
		}
		prev := points[i-1]
		c.line(dot(prev.X, w), dot(prev.Y, h), x, y, col)
	}
}

// line is Bresenham between two dots, inclusive.
func (c *Canvas) line(x0, y0, x1, y1 int, col plot.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FillPolygon tints the background of every cell whose centre lies inside
// poly, compositing col at alpha over what is already there. Overlapping
// fills therefore stack like translucent layers.
func (c *Canvas) FillPolygon(poly []plot.Point, col plot.Color, alpha float64) {
	if len(poly) < 3 {
		return
	}
	xs := make([]float64, 0, 8)
	for cy := 0; cy < c.height; cy++ {
		y := float64(cy*dotsY) + dotsY/2.0

		// Even-odd scanline: collect edge crossings at this row's centre.
		xs = xs[:0]
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			if (a.Y <= y) == (b.Y <= y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			for cx := 0; cx < c.width; cx++ {
				x := float64(cx*dotsX) + dotsX/2.0
				if x < xs[i] || x > xs[i+1] {
					continue
				}
				cl := c.at(cx, cy)
				cl.bg = col.Over(cl.bg, alpha)
			}
		}
	}
}

// Render returns the canvas as height lines of styled braille. Runs of
// cells with the same colours share one style.
func (c *Canvas) Render() string {
	lines := make([]string, c.height)
	for cy := 0; cy < c.height; cy++ {
		var b strings.Builder
		var run []rune
		var runCell cell
		flush := func() {
			if len(run) == 0 {
				return
			}
			style := lipgloss.NewStyle().Background(lipColor(runCell.bg))
			if runCell.hasFg {
				style = style.Foreground(lipColor(runCell.fg))
			}
			b.WriteString(style.Render(string(run)))
			run = run[:0]
		}

		for cx := 0; cx < c.width; cx++ {
			cl := *c.at(cx, cy)
			if len(run) > 0 && (cl.bg != runCell.bg || cl.hasFg != runCell.hasFg || (cl.hasFg && cl.fg != runCell.fg)) {
				flush()
			}
			if len(run) == 0 {
				runCell = cl
			}
			if cl.dots == 0 {
				run = append(run, ' ')
			} else {
				run = append(run, brailleBase+rune(cl.dots))
			}
		}
		flush()
		lines[cy] = b.String()
	}
	return strings.Join(lines, "\n")
}
