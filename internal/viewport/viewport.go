package viewport

import (
	"errors"
	"math"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

const (
	// ZoomMin is the smallest zoom factor any operation will produce.
	ZoomMin = 0.01
	// ZoomMax is the largest zoom factor any operation will produce.
	ZoomMax = 20.0
	// ZoomStep is the default wheel-zoom factor.
	ZoomStep = 1.25
)

// ErrZeroZoom is returned when converting view coordinates under a zero zoom.
var ErrZeroZoom = errors.New("viewport: zoom is zero")

// Mode records how the current zoom was chosen, for display.
type Mode string

const (
	ModeFit    Mode = "fit"
	ModeActual Mode = "100"
	ModeCustom Mode = "custom"
)

// State is the current pan and zoom of a view.
type State struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
	Mode Mode    `json:"mode"`
}

// Identity returns a state with zoom 1 and no pan.
func Identity() State {
	return State{Zoom: 1, Mode: ModeActual}
}

// Clamp limits zoom to [ZoomMin, ZoomMax].
func Clamp(zoom float64) float64 {
	return math.Max(ZoomMin, math.Min(ZoomMax, zoom))
}

// ToView maps an image point to view coordinates.
func ToView(p geometry.Point2D, s State) geometry.Point2D {
	return geometry.Point2D{
		X: p.X*s.Zoom + s.PanX,
		Y: p.Y*s.Zoom + s.PanY,
	}
}

// ToImage maps a view point back to image coordinates.
func ToImage(p geometry.Point2D, s State) (geometry.Point2D, error) {
	if s.Zoom == 0 {
		return geometry.Point2D{}, ErrZeroZoom
	}
	return geometry.Point2D{
		X: (p.X - s.PanX) / s.Zoom,
		Y: (p.Y - s.PanY) / s.Zoom,
	}, nil
}

// FitToWindow returns the state that shows the whole image centred in the
// window without ever enlarging it beyond 1:1.
//
// Degenerate image or window sizes yield Identity.
func FitToWindow(img, window geometry.Size) State {
	if img.Empty() || window.Empty() {
		return Identity()
	}

	zoom := math.Min(math.Min(window.Width/img.Width, window.Height/img.Height), 1.0)
	zoom = Clamp(zoom)

	return State{
		Zoom: zoom,
		PanX: (window.Width - img.Width*zoom) / 2,
		PanY: (window.Height - img.Height*zoom) / 2,
		Mode: ModeFit,
	}
}

// ActualSize returns the 1:1 state with the image centred in the window.
func ActualSize(img, window geometry.Size) State {
	return State{
		Zoom: 1.0,
		PanX: (window.Width - img.Width) / 2,
		PanY: (window.Height - img.Height) / 2,
		Mode: ModeActual,
	}
}

// ZoomAroundPoint scales the zoom by factor while keeping the image point
// under anchor fixed on screen. The result is clamped to [ZoomMin, ZoomMax].
func ZoomAroundPoint(factor float64, anchor geometry.Point2D, s State) State {
	if s.Zoom == 0 {
		s.Zoom = ZoomMin
	}
	newZoom := Clamp(s.Zoom * factor)

	// Image point under the anchor before the change.
	ix := (anchor.X - s.PanX) / s.Zoom
	iy := (anchor.Y - s.PanY) / s.Zoom

	return State{
		Zoom: newZoom,
		PanX: anchor.X - ix*newZoom,
		PanY: anchor.Y - iy*newZoom,
		Mode: ModeCustom,
	}
}

// ZoomAtCenter zooms around the centre of the window.
func ZoomAtCenter(factor float64, window geometry.Size, s State) State {
	return ZoomAroundPoint(factor, window.Center(), s)
}

// Pan shifts the view by (dx, dy) view pixels.
func Pan(dx, dy float64, s State) State {
	s.PanX += dx
	s.PanY += dy
	return s
}

// VisibleRegion returns the image-space rectangle covered by the window,
// as min and max corners. The rectangle is not clipped to the image.
func VisibleRegion(window geometry.Size, s State) (geometry.Point2D, geometry.Point2D, error) {
	lo, err := ToImage(geometry.Point2D{}, s)
	if err != nil {
		return geometry.Point2D{}, geometry.Point2D{}, err
	}
	hi, err := ToImage(geometry.Point2D{X: window.Width, Y: window.Height}, s)
	if err != nil {
		return geometry.Point2D{}, geometry.Point2D{}, err
	}
	return lo, hi, nil
}

// SearchRadius converts a radius in view pixels to image pixels, so that hit
// testing feels the same at every zoom.
func SearchRadius(viewPixels float64, s State) float64 {
	if s.Zoom == 0 {
		return viewPixels
	}
	return viewPixels / s.Zoom
}

// MarkerRadius returns the on-screen marker radius for a base marker size:
// base/zoom truncated, clamped to [3, 20].
func MarkerRadius(base int, zoom float64) int {
	if zoom <= 0 {
		return 20
	}
	r := int(float64(base) / zoom)
	if r > 20 {
		r = 20
	}
	if r < 3 {
		r = 3
	}
	return r
}
