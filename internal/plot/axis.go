package plot

import (
	"fmt"
	"math"
)

// DefaultTicks is the number of horizontal gridlines: 0%, 10%, ... 100%.
const DefaultTicks = 11

// Axis maps a kind's values onto the vertical extent of a plot.
type Axis struct {
	// Divisor is the data value drawn at the top edge.
	Divisor float64
	// LabelMax is the value printed next to the top tick. It differs from
	// Divisor when the data is normalised, e.g. fan percent labelled in RPM.
	LabelMax float64
	Unit     string
}

// Label formats the tick at fraction frac (0 bottom, 1 top).
func (a Axis) Label(frac float64) string {
	return fmt.Sprintf("%d%s", int(math.Round(frac*a.LabelMax)), a.Unit)
}

// Tick is one horizontal gridline.
type Tick struct {
	Y        float64
	Fraction float64
	Label    string
}

// Ticks returns n evenly spaced ticks from the bottom edge (fraction 0) to
// the top edge (fraction 1). n < 2 selects DefaultTicks.
func (a Axis) Ticks(rect Rect, n int) []Tick {
	if n < 2 {
		n = DefaultTicks
	}
	ticks := make([]Tick, n)
	for i := range ticks {
		frac := float64(i) / float64(n-1)
		ticks[i] = Tick{
			Y:        rect.Y1 - frac*rect.Height(),
			Fraction: frac,
			Label:    a.Label(frac),
		}
	}
	return ticks
}

// PercentAxis is the 0-100% axis shared by most kinds.
var PercentAxis = Axis{Divisor: 100, LabelMax: 100, Unit: "%"}
