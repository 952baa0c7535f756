package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/viewport"
)

// Background fills the parts of the window not covered by the image.
var Background = color.RGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}

// markerStroke is the on-screen outline width of view markers.
const markerStroke = 2

// ViewRequest describes one rendered frame of the annotation view.
type ViewRequest struct {
	// Image is the displayed raster, with adjustments already applied.
	Image  image.Image
	Window geometry.Size
	View   viewport.State
	// Markers are in Image coordinates.
	Markers []Marker
	Style   MarkerStyle
	// ScaleBar is drawn when non-nil.
	ScaleBar *viewport.ScaleBar
}

// RenderView draws the visible part of the image into a window-sized canvas,
// then the markers and the scale bar on top.
//
// Only the visible region is resampled, so the cost depends on the window
// size rather than the image size.
func RenderView(req ViewRequest) (*image.RGBA, error) {
	ww := int(math.Round(req.Window.Width))
	wh := int(math.Round(req.Window.Height))
	if ww <= 0 || wh <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", ww, wh)
	}
	if req.View.Zoom <= 0 {
		return nil, viewport.ErrZeroZoom
	}

	canvas := image.NewRGBA(image.Rect(0, 0, ww, wh))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)

	if req.Image != nil {
		if err := drawVisibleRegion(canvas, req); err != nil {
			return nil, err
		}
	}

	if req.Style.Visible {
		radius := float64(viewport.MarkerRadius(req.Style.Size, req.View.Zoom))
		for _, m := range req.Markers {
			if !m.Class.Valid() {
				continue
			}
			v := viewport.ToView(geometry.Point2D{X: m.X, Y: m.Y}, req.View)
			if v.X < 0 || v.Y < 0 || v.X > req.Window.Width || v.Y > req.Window.Height {
				continue
			}
			drawRing(canvas, v.X, v.Y, radius, markerStroke, req.Style.Colors[m.Class])
		}
	}

	if req.ScaleBar != nil {
		drawScaleBar(canvas, *req.ScaleBar)
	}
	return canvas, nil
}

func drawVisibleRegion(canvas *image.RGBA, req ViewRequest) error {
	lo, hi, err := viewport.VisibleRegion(req.Window, req.View)
	if err != nil {
		return err
	}

	b := req.Image.Bounds()
	src := image.Rect(
		b.Min.X+int(math.Floor(math.Max(0, lo.X))),
		b.Min.Y+int(math.Floor(math.Max(0, lo.Y))),
		b.Min.X+int(math.Ceil(math.Min(float64(b.Dx()), hi.X))),
		b.Min.Y+int(math.Ceil(math.Min(float64(b.Dy()), hi.Y))),
	)
	if src.Empty() {
		return nil
	}

	zoom := req.View.Zoom
	dw := int(math.Round(float64(src.Dx()) * zoom))
	dh := int(math.Round(float64(src.Dy()) * zoom))
	if dw <= 0 || dh <= 0 {
		return nil
	}

	filter := imaging.Box
	if zoom > 1 {
		filter = imaging.NearestNeighbor
	}
	region := imaging.Resize(imaging.Crop(req.Image, src), dw, dh, filter)

	origin := viewport.ToView(geometry.Point2D{
		X: float64(src.Min.X - b.Min.X),
		Y: float64(src.Min.Y - b.Min.Y),
	}, req.View)
	at := image.Pt(int(math.Round(origin.X)), int(math.Round(origin.Y)))

	draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(region.Bounds().Size())}, region, image.Point{}, draw.Over)
	return nil
}

func drawScaleBar(canvas *image.RGBA, bar viewport.ScaleBar) {
	rect := image.Rect(
		int(math.Round(bar.X0)), int(math.Round(bar.Y0)),
		int(math.Round(bar.X1)), int(math.Round(bar.Y1)),
	)
	draw.Draw(canvas, rect.Inset(-1), image.Black, image.Point{}, draw.Src)
	draw.Draw(canvas, rect, image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(bar.Label).Ceil()
	cx := (rect.Min.X + rect.Max.X) / 2
	d.Dot = fixed.P(cx-width/2, rect.Min.Y-6)
	d.DrawString(bar.Label)
}

// ExportAnnotated draws markers onto a copy of the source image and then
// runs the adjustment pipeline over the result, so markers stay attached to
// the tissue under rotation and flips.
//
// Marker coordinates are source pixels. The radius is max(8, size) and the
// stroke max(2, radius/4), independent of any zoom.
func ExportAnnotated(src image.Image, markers []Marker, style MarkerStyle, adj Adjustments) image.Image {
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	radius := style.Size
	if radius < 8 {
		radius = 8
	}
	stroke := radius / 4
	if stroke < 2 {
		stroke = 2
	}

	for _, m := range markers {
		if !m.Class.Valid() {
			continue
		}
		drawRing(rgba, m.X, m.Y, float64(radius), float64(stroke), style.Colors[m.Class])
	}
	return Apply(rgba, adj)
}

// EncodedImage is a PNG encoded for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes img to path, choosing the encoder from the extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
