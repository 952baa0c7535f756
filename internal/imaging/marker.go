package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
)

// Default marker colours per class.
const (
	DefaultPositiveColor = "#ff4d4d"
	DefaultOtherColor    = "#4dff4d"
	DefaultNegativeColor = "#4d4dff"
)

// MarkerStyle controls how annotation markers are drawn.
type MarkerStyle struct {
	// Colors is indexed by annotation.MarkerClass.
	Colors  [3]color.RGBA
	Size    int
	Visible bool
}

// DefaultMarkerStyle returns the standard red/green/blue markers of size 8.
func DefaultMarkerStyle() MarkerStyle {
	s := MarkerStyle{Size: 8, Visible: true}
	s.Colors[annotation.Positive], _ = parseHexColor(DefaultPositiveColor)
	s.Colors[annotation.Other], _ = parseHexColor(DefaultOtherColor)
	s.Colors[annotation.Negative], _ = parseHexColor(DefaultNegativeColor)
	return s
}

// SetColor parses hex and assigns it to class.
func (s *MarkerStyle) SetColor(class annotation.MarkerClass, hex string) error {
	if !class.Valid() {
		return annotation.ErrUnknownClass
	}
	c, err := parseHexColor(hex)
	if err != nil {
		return fmt.Errorf("%w: color %q: %v", ErrInvalidAdjustment, hex, err)
	}
	s.Colors[class] = c
	return nil
}

// ColorHex returns the colour of class as "#rrggbb".
func (s MarkerStyle) ColorHex(class annotation.MarkerClass) string {
	if !class.Valid() {
		return ""
	}
	c := s.Colors[class]
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Marker is a point to draw, in the coordinates of the raster it is drawn on.
type Marker struct {
	X     float64
	Y     float64
	Class annotation.MarkerClass
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawRing draws a circle outline of the given stroke width centred on
// (cx, cy). Pixels outside dst are skipped.
func drawRing(dst *image.RGBA, cx, cy, radius, width float64, c color.RGBA) {
	if radius <= 0 || width <= 0 {
		return
	}
	inner := math.Max(0, radius-width)
	bounds := dst.Bounds()

	x0 := int(math.Floor(cx - radius))
	x1 := int(math.Ceil(cx + radius))
	y0 := int(math.Floor(cy - radius))
	y1 := int(math.Ceil(cy + radius))

	for y := y0; y <= y1; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if d <= radius && d >= inner {
				dst.SetRGBA(x, y, c)
			}
		}
	}
}
