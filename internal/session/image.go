package session

import (
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/viewport"
)

// ImageInfo describes the open image.
type ImageInfo struct {
	imaging.ImageInfo
	// Display is the image size after rotation.
	Display     geometry.Size       `json:"display"`
	AreaMM2     float64             `json:"area_mm2"`
	Calibration float64             `json:"calibration_um_per_px"`
	Adjustments imaging.Adjustments `json:"adjustments"`
	Summary     string              `json:"adjustment_summary"`
	Style       MarkerStyleInfo     `json:"marker_style"`
}

// MarkerStyleInfo is the marker style in wire form.
type MarkerStyleInfo struct {
	Colors       map[string]string `json:"colors"`
	Size         int               `json:"size"`
	Visible      bool              `json:"visible"`
	ShowScaleBar bool              `json:"show_scale_bar"`
}

// OpenImage loads the image at path and starts a new project for it.
// Annotations, history and adjustments are discarded; calibration and the
// marker style are kept.
func (s *Session) OpenImage(path string) error {
	img, err := s.cache.Load(path)
	if err != nil {
		return err
	}
	s.setImage(path, img)

	base := filepath.Base(path)
	s.projectName = strings.TrimSuffix(base, filepath.Ext(base))
	s.projectID = uuid.New()
	s.projectPath = ""

	s.clearMarkers()
	s.fit()
	s.addRecent(path)

	b := img.Bounds()
	s.log.Info("image opened",
		logging.String("path", path),
		logging.Int("width", b.Dx()),
		logging.Int("height", b.Dy()))
	s.commit("clear")
	return nil
}

// setImage installs img as the source with neutral adjustments.
func (s *Session) setImage(path string, img image.Image) {
	if s.imagePath != "" && s.imagePath != path {
		s.cache.Evict(s.imagePath)
	}
	s.imagePath = path
	s.source = img
	s.adjust = imaging.DefaultAdjustments()
	s.display = nil
}

// displayImage returns the source with the adjustment pipeline applied. The
// result is cached until the adjustments change.
func (s *Session) displayImage() image.Image {
	if s.source == nil {
		return nil
	}
	if s.display == nil {
		if s.adjust.IsNeutral() {
			s.display = s.source
		} else {
			s.display = imaging.Apply(s.source, s.adjust)
		}
	}
	return s.display
}

// Info describes the open image.
func (s *Session) Info() (*ImageInfo, error) {
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	base, err := imaging.LoadImageInfo(s.cache, s.imagePath)
	if err != nil {
		return nil, err
	}
	src := s.sourceSize()
	return &ImageInfo{
		ImageInfo:   *base,
		Display:     s.displaySize(),
		AreaMM2:     analysis.AreaMM2(int(src.Width), int(src.Height), s.calibration),
		Calibration: s.calibration,
		Adjustments: s.adjust,
		Summary:     s.adjust.Summary(),
		Style:       s.MarkerStyle(),
	}, nil
}

// Adjustments returns the active display pipeline.
func (s *Session) Adjustments() imaging.Adjustments { return s.adjust }

// SetAdjustments replaces brightness, contrast, gamma and filter. The
// orientation is managed by Rotate and the flips and is left as is.
func (s *Session) SetAdjustments(a imaging.Adjustments) error {
	if err := s.requireImage(); err != nil {
		return err
	}
	a.Orientation = s.adjust.Orientation
	if a.Filter == "" {
		a.Filter = imaging.FilterNone
	}
	if err := a.Validate(); err != nil {
		return err
	}
	s.setAdjustments(a)
	return nil
}

func (s *Session) setAdjustments(a imaging.Adjustments) {
	reorient := a.Orientation != s.adjust.Orientation
	s.adjust = a
	s.display = nil
	if reorient && s.view.Mode == viewport.ModeFit {
		s.fit()
	}
	s.log.Debug("adjustments changed", logging.String("adjustments", a.Summary()))
}

// Rotate turns the displayed image by deg, a multiple of 90, clockwise.
func (s *Session) Rotate(deg int) error {
	if err := s.requireImage(); err != nil {
		return err
	}
	o, err := s.adjust.Orientation.Rotate(deg)
	if err != nil {
		return fmt.Errorf("%w: %v", imaging.ErrInvalidAdjustment, err)
	}
	a := s.adjust
	a.Orientation = o
	s.setAdjustments(a)
	return nil
}

// FlipH toggles the horizontal flip.
func (s *Session) FlipH() error {
	if err := s.requireImage(); err != nil {
		return err
	}
	a := s.adjust
	a.Orientation.FlipH = !a.Orientation.FlipH
	s.setAdjustments(a)
	return nil
}

// FlipV toggles the vertical flip.
func (s *Session) FlipV() error {
	if err := s.requireImage(); err != nil {
		return err
	}
	a := s.adjust
	a.Orientation.FlipV = !a.Orientation.FlipV
	s.setAdjustments(a)
	return nil
}

// ResetAdjustments restores the neutral pipeline, orientation included.
func (s *Session) ResetAdjustments() error {
	if err := s.requireImage(); err != nil {
		return err
	}
	s.setAdjustments(imaging.DefaultAdjustments())
	return nil
}

// markers returns every point mapped onto the displayed raster.
func (s *Session) markers() []imaging.Marker {
	src := s.sourceSize()
	all := s.store.All()
	out := make([]imaging.Marker, len(all))
	for i, p := range all {
		d := s.adjust.Orientation.ToDisplay(geometry.Point2D{X: p.X, Y: p.Y}, src)
		out[i] = imaging.Marker{X: d.X, Y: d.Y, Class: p.Class}
	}
	return out
}

// sourceMarkers returns every point in source coordinates.
func (s *Session) sourceMarkers() []imaging.Marker {
	all := s.store.All()
	out := make([]imaging.Marker, len(all))
	for i, p := range all {
		out[i] = imaging.Marker{X: p.X, Y: p.Y, Class: p.Class}
	}
	return out
}

// ScaleBar returns the scale bar layout for the current view, if one fits.
func (s *Session) ScaleBar() (viewport.ScaleBar, bool) {
	if s.source == nil {
		return viewport.ScaleBar{}, false
	}
	return viewport.LayoutScaleBar(s.sourceSize().Width, s.calibration, s.window, s.view)
}

// Render draws the current view as a PNG.
func (s *Session) Render() (*imaging.EncodedImage, error) {
	req := imaging.ViewRequest{
		Image:  s.displayImage(),
		Window: s.window,
		View:   s.view,
		Style:  s.style,
	}
	if s.source != nil {
		req.Markers = s.markers()
	}
	if s.showScaleBar {
		if bar, ok := s.ScaleBar(); ok {
			req.ScaleBar = &bar
		}
	}
	canvas, err := imaging.RenderView(req)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(canvas)
}

// Export writes the full-resolution image with every marker drawn and the
// adjustments applied. Markers are drawn even when hidden in the view.
func (s *Session) Export(path string) (geometry.Size, error) {
	if err := s.requireImage(); err != nil {
		return geometry.Size{}, err
	}
	out := imaging.ExportAnnotated(s.source, s.sourceMarkers(), s.style, s.adjust)
	if err := imaging.Save(out, path); err != nil {
		return geometry.Size{}, err
	}
	b := out.Bounds()
	s.log.Info("annotated image exported",
		logging.String("path", path),
		logging.Int("markers", s.store.CountAll()))
	return geometry.NewSize(b.Dx(), b.Dy()), nil
}

// ColorAnalysis summarises the colours of the displayed image.
func (s *Session) ColorAnalysis() (*imaging.ColorAnalysis, error) {
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	defer s.rec.Time("color")()
	return imaging.AnalyzeColor(s.displayImage()), nil
}

// Calibration returns the pixel size in micrometres.
func (s *Session) Calibration() float64 { return s.calibration }

// Calibrate sets the pixel size in micrometres.
func (s *Session) Calibrate(scale float64) error {
	if err := checkCalibration(scale); err != nil {
		return err
	}
	s.calibration = scale
	s.log.Debug("calibration set", logging.Float64("um_per_px", scale))
	return nil
}

func checkCalibration(scale float64) error {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: got %v", ErrCalibrationNonPositive, scale)
	}
	return nil
}

// MarkerStyle returns the marker style and scale-bar visibility.
func (s *Session) MarkerStyle() MarkerStyleInfo {
	colors := make(map[string]string, len(annotation.Classes))
	for _, c := range annotation.Classes {
		colors[c.String()] = s.style.ColorHex(c)
	}
	return MarkerStyleInfo{
		Colors:       colors,
		Size:         s.style.Size,
		Visible:      s.style.Visible,
		ShowScaleBar: s.showScaleBar,
	}
}

// StyleChange is a partial marker-style update; nil fields are unchanged.
type StyleChange struct {
	Colors       map[annotation.MarkerClass]string
	Size         *int
	Visible      *bool
	ShowScaleBar *bool
}

// SetMarkerStyle applies change. Nothing changes if any field is invalid.
func (s *Session) SetMarkerStyle(change StyleChange) error {
	style := s.style
	for class, hex := range change.Colors {
		if err := style.SetColor(class, hex); err != nil {
			return err
		}
	}
	if change.Size != nil {
		if *change.Size < 1 || *change.Size > 50 {
			return fmt.Errorf("%w: marker size %d outside [1, 50]", imaging.ErrInvalidAdjustment, *change.Size)
		}
		style.Size = *change.Size
	}
	if change.Visible != nil {
		style.Visible = *change.Visible
	}
	s.style = style
	if change.ShowScaleBar != nil {
		s.showScaleBar = *change.ShowScaleBar
	}
	return nil
}
