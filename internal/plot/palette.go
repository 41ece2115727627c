package plot

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque sRGB colour.
type Color struct {
	R, G, B uint8
}

// RGB returns the colour with the given channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Hex returns the colour as #rrggbb, the form lipgloss accepts.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Over composites c at the given opacity over bg. Terminals have no alpha,
// so translucent fills are pre-blended against the background.
func (c Color) Over(bg Color, alpha float64) Color {
	if alpha <= 0 {
		return bg
	}
	if alpha >= 1 {
		return c
	}
	return fromColorful(bg.colorful().BlendRgb(c.colorful(), alpha))
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (Color, error) {
	if len(s) == 4 && s[0] == '#' {
		s = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// ParsePalette parses a list of hex colours. An empty list yields nil, which
// selects DefaultPalette.
func ParsePalette(hexes []string) ([]Color, error) {
	if len(hexes) == 0 {
		return nil, nil
	}
	palette := make([]Color, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		palette[i] = c
	}
	return palette, nil
}

// DefaultPalette is the fixed series palette. Index i of a multi-series plot
// always gets DefaultPalette[i mod 12].
var DefaultPalette = []Color{
	RGB(0, 128, 255),
	RGB(0, 200, 128),
	RGB(255, 128, 0),
	RGB(200, 0, 128),
	RGB(128, 0, 255),
	RGB(255, 0, 128),
	RGB(0, 255, 200),
	RGB(128, 255, 0),
	RGB(0, 255, 0),
	RGB(255, 0, 0),
	RGB(0, 128, 128),
	RGB(128, 128, 0),
}

// PaletteColor returns palette[i mod len(palette)], falling back to
// DefaultPalette when palette is empty. Negative indices wrap too.
func PaletteColor(palette []Color, i int) Color {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	m := i % len(palette)
	if m < 0 {
		m += len(palette)
	}
	return palette[m]
}
