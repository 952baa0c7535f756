package viewport

import (
	"fmt"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

// ScaleBar is the on-screen layout of a calibrated scale bar.
type ScaleBar struct {
	// LengthUM is the physical length the bar represents.
	LengthUM float64 `json:"length_um"`
	// X0, Y0, X1, Y1 are the bar rectangle corners in view pixels.
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	// Label is the text drawn above the bar.
	Label string `json:"label"`
}

// LengthPx returns the bar length in view pixels.
func (b ScaleBar) LengthPx() float64 {
	return b.X1 - b.X0
}

const (
	scaleBarRightMargin  = 20
	scaleBarBottomMargin = 30
	scaleBarThickness    = 4
	scaleBarMinLength    = 10
)

// ScaleBarTarget picks the bar length in micrometres for an image whose full
// width spans widthUM micrometres.
func ScaleBarTarget(widthUM float64) float64 {
	switch {
	case widthUM < 100:
		return 10
	case widthUM < 200:
		return 20
	case widthUM < 500:
		return 50
	default:
		return 100
	}
}

// LayoutScaleBar places a scale bar in the bottom-right corner of the window.
//
// imageWidth is the source width in pixels and calibration the size of one
// pixel in micrometres. The second return value is false when the bar does
// not fit: its left edge would fall within 10 px of the window edge or it
// would be 10 px long or less.
func LayoutScaleBar(imageWidth, calibration float64, window geometry.Size, s State) (ScaleBar, bool) {
	if calibration <= 0 || imageWidth <= 0 || s.Zoom < ZoomMin {
		return ScaleBar{}, false
	}

	target := ScaleBarTarget(imageWidth * calibration)
	length := target / calibration * s.Zoom

	x1 := window.Width - scaleBarRightMargin
	x0 := x1 - length
	y0 := window.Height - scaleBarBottomMargin

	if x0 <= 10 || length <= scaleBarMinLength {
		return ScaleBar{}, false
	}

	return ScaleBar{
		LengthUM: target,
		X0:       x0,
		Y0:       y0,
		X1:       x1,
		Y1:       y0 + scaleBarThickness,
		Label:    fmt.Sprintf("%g µm", target),
	}, true
}
