package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

// ErrInvalidAdjustment is returned for out-of-range adjustment values.
var ErrInvalidAdjustment = errors.New("imaging: invalid adjustment")

// Adjustment factors are accepted in this range; 1.0 is neutral.
const (
	MinFactor = 0.1
	MaxFactor = 3.0
)

// Filter is a named convolution filter applied after tone adjustments.
type Filter string

const (
	FilterNone        Filter = "NONE"
	FilterBlur        Filter = "BLUR"
	FilterSharpen     Filter = "SHARPEN"
	FilterEdge        Filter = "EDGE"
	FilterGaussian    Filter = "GAUSSIAN"
	FilterEdgeEnhance Filter = "EDGE_ENHANCE"
)

// Filters lists every supported filter.
var Filters = []Filter{FilterNone, FilterBlur, FilterSharpen, FilterEdge, FilterGaussian, FilterEdgeEnhance}

// ParseFilter accepts a filter name in any case. The empty string is NONE.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterNone, nil
	}
	f := Filter(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Filters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown filter %q", ErrInvalidAdjustment, s)
}

// Adjustments is the full display pipeline state for an image.
//
// The pipeline order is fixed: orientation (rotation then flips), brightness,
// contrast, gamma, filter.
type Adjustments struct {
	Orientation geometry.Orientation `json:"orientation"`
	Brightness  float64              `json:"brightness"`
	Contrast    float64              `json:"contrast"`
	// Gamma maps each normalised channel value v to v^Gamma.
	Gamma  float64 `json:"gamma"`
	Filter Filter  `json:"filter"`
}

// DefaultAdjustments returns the neutral pipeline.
func DefaultAdjustments() Adjustments {
	return Adjustments{
		Brightness: 1.0,
		Contrast:   1.0,
		Gamma:      1.0,
		Filter:     FilterNone,
	}
}

// Validate checks every field.
func (a Adjustments) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"brightness", a.Brightness},
		{"contrast", a.Contrast},
		{"gamma", a.Gamma},
	} {
		if math.IsNaN(f.value) || f.value < MinFactor || f.value > MaxFactor {
			return fmt.Errorf("%w: %s %v outside [%v, %v]", ErrInvalidAdjustment, f.name, f.value, MinFactor, MaxFactor)
		}
	}
	if _, err := ParseFilter(string(a.Filter)); err != nil {
		return err
	}
	if _, err := geometry.NormalizeRotation(a.Orientation.Rotation); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAdjustment, err)
	}
	return nil
}

// IsNeutral reports whether Apply would return the image unchanged.
func (a Adjustments) IsNeutral() bool {
	return a.Orientation.IsIdentity() && a.toneNeutral() && (a.Filter == FilterNone || a.Filter == "")
}

func (a Adjustments) toneNeutral() bool {
	return a.Brightness == 1 && a.Contrast == 1 && a.Gamma == 1
}

// Orient applies only the rotation and flips of o.
func Orient(img image.Image, o geometry.Orientation) image.Image {
	out := img
	switch o.Rotation {
	case 90:
		// imaging rotates counter-clockwise.
		out = imaging.Rotate270(out)
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate90(out)
	}
	if o.FlipH {
		out = imaging.FlipH(out)
	}
	if o.FlipV {
		out = imaging.FlipV(out)
	}
	return out
}

// Apply runs the full pipeline on img. The source image is never modified.
func Apply(img image.Image, a Adjustments) image.Image {
	out := Orient(img, a.Orientation)
	return applyTone(out, a)
}

func applyTone(img image.Image, a Adjustments) image.Image {
	out := img
	if a.Brightness != 1 && a.Brightness > 0 {
		out = adjust.Brightness(out, a.Brightness-1)
	}
	if a.Contrast != 1 && a.Contrast > 0 {
		out = adjust.Contrast(out, a.Contrast-1)
	}
	if a.Gamma != 1 && a.Gamma > 0 {
		// bild raises to 1/gamma.
		out = adjust.Gamma(out, 1/a.Gamma)
	}

	switch a.Filter {
	case FilterBlur:
		out = blur.Box(out, 2)
	case FilterSharpen:
		out = effect.Sharpen(out)
	case FilterEdge:
		out = effect.EdgeDetection(out, 1)
	case FilterGaussian:
		out = blur.Gaussian(out, 2)
	case FilterEdgeEnhance:
		out = effect.UnsharpMask(out, 1, 1)
	}
	return out
}

// Summary returns a one-line human description of the active adjustments.
func (a Adjustments) Summary() string {
	if a.IsNeutral() {
		return "none"
	}
	var parts []string
	if a.Orientation.Rotation != 0 {
		parts = append(parts, fmt.Sprintf("rotation %d°", a.Orientation.Rotation))
	}
	if a.Orientation.FlipH {
		parts = append(parts, "flip horizontal")
	}
	if a.Orientation.FlipV {
		parts = append(parts, "flip vertical")
	}
	if a.Brightness != 1 {
		parts = append(parts, fmt.Sprintf("brightness %.2f", a.Brightness))
	}
	if a.Contrast != 1 {
		parts = append(parts, fmt.Sprintf("contrast %.2f", a.Contrast))
	}
	if a.Gamma != 1 {
		parts = append(parts, fmt.Sprintf("gamma %.2f", a.Gamma))
	}
	if a.Filter != FilterNone && a.Filter != "" {
		parts = append(parts, "filter "+string(a.Filter))
	}
	return strings.Join(parts, ", ")
}
