package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the colour as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGBColor) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// HSVColor represents a color in HSV space, the space stain separation is
// usually reasoned in.
type HSVColor struct {
	H float64 `json:"h"` // Hue: 0-360 degrees
	S float64 `json:"s"` // Saturation: 0-100 percent
	V float64 `json:"v"` // Value: 0-100 percent
}

// ColorResult contains a pixel colour in several representations.
type ColorResult struct {
	Hex   string   `json:"hex"`
	RGB   RGBColor `json:"rgb"`
	Alpha uint8    `json:"alpha"`
	HSL   HSLColor `json:"hsl"`
	HSV   HSVColor `json:"hsv"`
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based from the top-left of the image bounds. 16-bit
// images are reduced to 8 bits per channel.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, a := img.At(px, py).RGBA()
	rgb := RGBColor{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}

	return &ColorResult{
		Hex:   rgb.Hex(),
		RGB:   rgb,
		Alpha: uint8(a >> 8),
		HSL:   rgbToHSL(rgb),
		HSV:   rgbToHSV(rgb),
	}, nil
}

func rgbToHSL(c RGBColor) HSLColor {
	h, s, l := c.colorful().Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}

func rgbToHSV(c RGBColor) HSVColor {
	h, s, v := c.colorful().Hsv()
	return HSVColor{H: h, S: s * 100, V: v * 100}
}

// ColorFrequency represents a color and its occurrence frequency.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColors returns up to count of the most frequent colours among
// pixels, most frequent first.
//
// Components are quantized to multiples of 16 before counting, so colours
// within 16 units of each other per channel fall into the same bucket.
// Equal frequencies are ordered by hex value to keep the output stable.
func DominantColors(pixels []RGBColor, count int) []ColorFrequency {
	if len(pixels) == 0 || count <= 0 {
		return nil
	}

	buckets := make(map[RGBColor]int)
	for _, p := range pixels {
		q := RGBColor{R: p.R / 16 * 16, G: p.G / 16 * 16, B: p.B / 16 * 16}
		buckets[q]++
	}

	colors := make([]ColorFrequency, 0, len(buckets))
	for c, n := range buckets {
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(len(pixels)) * 100,
			RGB:        c,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}
	return colors
}
