package plot

import "unicode/utf8"

// LegendStyle holds the fixed legend metrics, in the same units as the
// plot rectangle.
type LegendStyle struct {
	// Inset is the offset of the first item from the plot's top-left corner.
	Inset Point
	// ItemHeight and RowSpacing set the vertical pitch of wrapped rows.
	ItemHeight float64
	RowSpacing float64
	// ItemSpacing is the gap after each item's label.
	ItemSpacing float64
	// TextOffset is the distance from an item's origin to its label.
	TextOffset float64
	// SwatchLength is the length of the coloured sample line.
	SwatchLength float64
	// SwatchBaseline is the swatch's offset below the item origin.
	SwatchBaseline float64
	// RightMargin keeps items clear of the plot's right edge.
	RightMargin float64
}

// DefaultLegendStyle is tuned for pixel units with a 12pt label font.
func DefaultLegendStyle() LegendStyle {
	return LegendStyle{
		Inset:          Point{X: 10, Y: 10},
		ItemHeight:     16,
		RowSpacing:     4,
		ItemSpacing:    16,
		TextOffset:     20,
		SwatchLength:   8,
		SwatchBaseline: 6,
		RightMargin:    10,
	}
}

// Options parameterise Render. Zero fields take the defaults, except
// Margins where zero is meaningful.
type Options struct {
	Palette []Color
	// Margins reserve room around the plot area for tick labels.
	Margins Margins
	Ticks   int
	Legend  LegendStyle
	// FillAlpha is the opacity of the area under each line.
	FillAlpha float64
	// MaxFanRPM labels the top of the fan axis.
	MaxFanRPM float64
	// TemperatureMax is the temperature at the top of its axis, in °C.
	TemperatureMax float64
	// Measure returns the drawn width of a legend label.
	Measure func(label string) float64
}

// Defaults used by DefaultOptions and for zero Options fields.
const (
	DefaultFillAlpha      = 0.15
	DefaultMaxFanRPM      = 3000
	DefaultTemperatureMax = 100
	// defaultCharWidth approximates a 12pt proportional font.
	defaultCharWidth = 7
)

// DefaultOptions returns pixel-unit options with room for tick labels on
// the left and below the plot.
func DefaultOptions() Options {
	return Options{
		Margins:        Margins{Left: 40, Top: 10, Right: 10, Bottom: 30},
		Ticks:          DefaultTicks,
		Legend:         DefaultLegendStyle(),
		FillAlpha:      DefaultFillAlpha,
		MaxFanRPM:      DefaultMaxFanRPM,
		TemperatureMax: DefaultTemperatureMax,
		Measure:        MeasureRunes(defaultCharWidth),
	}
}

func (o Options) withDefaults() Options {
	if len(o.Palette) == 0 {
		o.Palette = DefaultPalette
	}
	if o.Ticks < 2 {
		o.Ticks = DefaultTicks
	}
	if o.Legend == (LegendStyle{}) {
		o.Legend = DefaultLegendStyle()
	}
	if o.FillAlpha <= 0 {
		o.FillAlpha = DefaultFillAlpha
	}
	if o.MaxFanRPM <= 0 {
		o.MaxFanRPM = DefaultMaxFanRPM
	}
	if o.TemperatureMax <= 0 {
		o.TemperatureMax = DefaultTemperatureMax
	}
	if o.Measure == nil {
		o.Measure = MeasureRunes(defaultCharWidth)
	}
	return o
}

// MeasureRunes measures labels as a fixed width per rune.
func MeasureRunes(width float64) func(string) float64 {
	return func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * width
	}
}
