package session

import (
	"fmt"
	"math"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/viewport"
)

// ViewInfo describes the current view for clients.
type ViewInfo struct {
	viewport.State
	Window geometry.Size `json:"window"`
	// Image is the displayed image size, after rotation.
	Image geometry.Size `json:"image"`
	// VisibleFrom and VisibleTo bound the displayed-image region covered by
	// the window. They are not clipped to the image.
	VisibleFrom geometry.Point2D `json:"visible_from"`
	VisibleTo   geometry.Point2D `json:"visible_to"`
	// ZoomPercent is Zoom as shown in a status bar.
	ZoomPercent float64 `json:"zoom_percent"`
}

// PointerInfo is the readout under a window point.
type PointerInfo struct {
	// Inside is false when the pointer is off the image.
	Inside bool `json:"inside"`
	// X and Y are source-image pixels.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// XUM and YUM are X and Y in micrometres.
	XUM float64 `json:"x_um"`
	YUM float64 `json:"y_um"`
}

// View returns the current view state.
func (s *Session) View() (ViewInfo, error) {
	from, to, err := viewport.VisibleRegion(s.window, s.view)
	if err != nil {
		return ViewInfo{}, err
	}
	return ViewInfo{
		State:       s.view,
		Window:      s.window,
		Image:       s.displaySize(),
		VisibleFrom: from,
		VisibleTo:   to,
		ZoomPercent: s.view.Zoom * 100,
	}, nil
}

// SetWindow resizes the view window. A fitted view is refitted.
func (s *Session) SetWindow(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", width, height)
	}
	s.window = geometry.NewSize(width, height)
	if s.view.Mode == viewport.ModeFit {
		s.fit()
	}
	return nil
}

// Fit shows the whole image in the window.
func (s *Session) Fit() error {
	if err := s.requireImage(); err != nil {
		return err
	}
	s.fit()
	return nil
}

func (s *Session) fit() {
	s.view = viewport.FitToWindow(s.displaySize(), s.window)
}

// ActualSize shows the image at 1:1, centred.
func (s *Session) ActualSize() error {
	if err := s.requireImage(); err != nil {
		return err
	}
	s.view = viewport.ActualSize(s.displaySize(), s.window)
	return nil
}

// Zoom multiplies the zoom by factor around the window centre.
func (s *Session) Zoom(factor float64) error {
	if err := checkFactor(factor); err != nil {
		return err
	}
	s.view = viewport.ZoomAtCenter(factor, s.window, s.view)
	return nil
}

// ZoomAt multiplies the zoom by factor keeping window point (vx, vy) fixed.
func (s *Session) ZoomAt(factor, vx, vy float64) error {
	if err := checkFactor(factor); err != nil {
		return err
	}
	s.view = viewport.ZoomAroundPoint(factor, geometry.Point2D{X: vx, Y: vy}, s.view)
	return nil
}

// ZoomIn zooms in one configured step.
func (s *Session) ZoomIn() error { return s.Zoom(s.cfg.ZoomStep) }

// ZoomOut zooms out one configured step.
func (s *Session) ZoomOut() error { return s.Zoom(1 / s.cfg.ZoomStep) }

func checkFactor(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("zoom factor must be positive, got %v", factor)
	}
	return nil
}

// Pan moves the view by (dx, dy) window pixels.
func (s *Session) Pan(dx, dy float64) {
	s.view = viewport.Pan(dx, dy, s.view)
}

// Pointer reports the image position under window point (vx, vy).
func (s *Session) Pointer(vx, vy float64) (PointerInfo, error) {
	p, err := s.PointerToImage(vx, vy)
	if err != nil {
		return PointerInfo{}, err
	}
	return PointerInfo{
		Inside: s.sourceSize().Contains(p),
		X:      p.X,
		Y:      p.Y,
		XUM:    p.X * s.calibration,
		YUM:    p.Y * s.calibration,
	}, nil
}
