package plot

// LegendItem is one placed swatch and label.
type LegendItem struct {
	Label string
	Color Color
	// Origin is the item's top-left corner; Width includes the trailing gap.
	Origin Point
	Width  float64
	Row    int
	// Swatch is the coloured sample line, Text the label's top-left corner.
	Swatch [2]Point
	Text   Point
}

// LayoutLegend flows items left to right from the legend inset of rect.
// An item moves to a new row when it would cross rect.X1 minus the right
// margin; the first item of a row never wraps, so an item wider than the
// whole row still gets placed.
func LayoutLegend(series []Series, rect Rect, style LegendStyle, measure func(string) float64) []LegendItem {
	if len(series) == 0 {
		return nil
	}
	if measure == nil {
		measure = MeasureRunes(defaultCharWidth)
	}

	startX := rect.X0 + style.Inset.X
	x, y := startX, rect.Y0+style.Inset.Y
	right := rect.X1 - style.RightMargin
	row := 0

	items := make([]LegendItem, len(series))
	for i, s := range series {
		width := style.TextOffset + measure(s.Label) + style.ItemSpacing

		if x+width > right && x > startX {
			x = startX
			y += style.ItemHeight + style.RowSpacing
			row++
		}

		items[i] = LegendItem{
			Label:  s.Label,
			Color:  s.Color,
			Origin: Point{X: x, Y: y},
			Width:  width,
			Row:    row,
			Swatch: [2]Point{
				{X: x, Y: y + style.SwatchBaseline},
				{X: x + style.SwatchLength, Y: y + style.SwatchBaseline},
			},
			Text: Point{X: x + style.TextOffset, Y: y},
		}
		x += width
	}
	return items
}

// Rows returns the number of legend rows.
func Rows(items []LegendItem) int {
	if len(items) == 0 {
		return 0
	}
	return items[len(items)-1].Row + 1
}
