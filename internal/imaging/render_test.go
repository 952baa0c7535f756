package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/viewport"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		wantR   uint8
		wantG   uint8
		wantB   uint8
		wantA   uint8
		wantErr bool
	}{
		{"#FF0000", 255, 0, 0, 255, false},
		{"#4d4dff", 0x4d, 0x4d, 0xff, 255, false},
		{"FF0000", 255, 0, 0, 255, false},    // without #
		{"#FF000080", 255, 0, 0, 128, false}, // with alpha
		{"", 0, 0, 0, 0, true},               // empty
		{"#FFF", 0, 0, 0, 0, true},           // invalid length
		{"#GGGGGG", 0, 0, 0, 0, true},        // invalid hex
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := parseHexColor(tt.hex)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if c.R != tt.wantR || c.G != tt.wantG || c.B != tt.wantB || c.A != tt.wantA {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					c.R, c.G, c.B, c.A, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestMarkerStyle(t *testing.T) {
	s := DefaultMarkerStyle()
	if s.ColorHex(annotation.Positive) != DefaultPositiveColor {
		t.Errorf("positive colour: got %s", s.ColorHex(annotation.Positive))
	}
	if err := s.SetColor(annotation.Other, "#123456"); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	if s.ColorHex(annotation.Other) != "#123456" {
		t.Errorf("other colour: got %s", s.ColorHex(annotation.Other))
	}
	if err := s.SetColor(annotation.Other, "blue"); err == nil {
		t.Error("SetColor should reject a non-hex colour")
	}
}

func TestDrawRing(t *testing.T) {
	img := solidImage(40, 40, color.Black)
	red := color.RGBA{255, 0, 0, 255}
	drawRing(img, 20, 20, 10, 2, red)

	if c := rgbaAt(img, 20, 20); c.R != 0 {
		t.Error("ring centre should stay unpainted")
	}
	if c := rgbaAt(img, 29, 19); c.R != 255 {
		t.Errorf("ring edge should be painted: got %+v", c)
	}

	// Rings partly outside the image are clipped, not a panic.
	drawRing(img, 0, 0, 10, 2, red)
}

func TestRenderView_FitShowsWholeImage(t *testing.T) {
	img := solidImage(200, 100, color.RGBA{0, 0, 255, 255})
	window := geometry.Size{Width: 100, Height: 100}
	view := viewport.FitToWindow(geometry.NewSize(200, 100), window)

	out, err := RenderView(ViewRequest{Image: img, Window: window, View: view})
	if err != nil {
		t.Fatalf("RenderView failed: %v", err)
	}
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Fatalf("canvas size: got %v", out.Bounds())
	}
	// Zoom 0.5, image occupies rows 25..75.
	if c := rgbaAt(out, 50, 50); c.B != 255 {
		t.Errorf("centre should show the image: got %+v", c)
	}
	if c := rgbaAt(out, 50, 5); c != Background {
		t.Errorf("letterbox should be background: got %+v", c)
	}
}

func TestRenderView_Markers(t *testing.T) {
	img := solidImage(100, 100, color.Black)
	window := geometry.Size{Width: 100, Height: 100}
	style := DefaultMarkerStyle()

	out, err := RenderView(ViewRequest{
		Image:   img,
		Window:  window,
		View:    viewport.State{Zoom: 1},
		Markers: []Marker{{X: 50, Y: 50, Class: annotation.Positive}},
		Style:   style,
	})
	if err != nil {
		t.Fatalf("RenderView failed: %v", err)
	}

	// Radius 8 at zoom 1; the ring's right edge is near x=57.
	if c := rgbaAt(out, 57, 49); c != style.Colors[annotation.Positive] {
		t.Errorf("expected positive marker colour at ring edge, got %+v", c)
	}

	style.Visible = false
	hidden, _ := RenderView(ViewRequest{
		Image:   img,
		Window:  window,
		View:    viewport.State{Zoom: 1},
		Markers: []Marker{{X: 50, Y: 50, Class: annotation.Positive}},
		Style:   style,
	})
	if c := rgbaAt(hidden, 57, 49); c.R != 0 {
		t.Errorf("hidden markers should not be drawn, got %+v", c)
	}
}

func TestRenderView_ScaleBar(t *testing.T) {
	window := geometry.Size{Width: 400, Height: 300}
	view := viewport.State{Zoom: 1}
	bar, ok := viewport.LayoutScaleBar(2000, 0.5, window, view)
	if !ok {
		t.Fatal("scale bar should fit")
	}

	out, err := RenderView(ViewRequest{Window: window, View: view, ScaleBar: &bar})
	if err != nil {
		t.Fatalf("RenderView failed: %v", err)
	}
	mid := int((bar.X0 + bar.X1) / 2)
	if c := rgbaAt(out, mid, int(bar.Y0)+1); c.R != 255 || c.G != 255 {
		t.Errorf("scale bar should be white, got %+v", c)
	}
}

func TestRenderView_Errors(t *testing.T) {
	if _, err := RenderView(ViewRequest{Window: geometry.Size{}, View: viewport.State{Zoom: 1}}); err == nil {
		t.Error("expected error for empty window")
	}
	if _, err := RenderView(ViewRequest{Window: geometry.Size{Width: 10, Height: 10}}); err == nil {
		t.Error("expected error for zero zoom")
	}
}

func TestExportAnnotated(t *testing.T) {
	src := solidImage(60, 40, color.Black)
	style := DefaultMarkerStyle()
	adj := DefaultAdjustments()
	adj.Orientation.Rotation = 90

	out := ExportAnnotated(src, []Marker{{X: 10, Y: 10, Class: annotation.Negative}}, style, adj)
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 60 {
		t.Fatalf("rotated size: got %v", out.Bounds())
	}

	// Source pixel (17,10) lies on the ring; a clockwise quarter turn of a
	// 60x40 image moves it to (29,17).
	p := adj.Orientation.ToDisplay(geometry.Point2D{X: 17.5, Y: 10.5}, geometry.NewSize(60, 40))
	if c := rgbaAt(out, int(p.X), int(p.Y)); c.B != 0xff {
		t.Errorf("expected negative marker colour at (%v,%v), got %+v", p.X, p.Y, c)
	}

	// Source untouched.
	if c := rgbaAt(src, 17, 10); c.B != 0 {
		t.Error("ExportAnnotated modified the source")
	}
}

func TestEncodePNGAndSave(t *testing.T) {
	img := createPatternImage(16, 8)
	enc, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if enc.MimeType != "image/png" || enc.Width != 16 || enc.Height != 8 {
		t.Errorf("unexpected result: %+v", enc)
	}
	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("not a PNG: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(img, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := NewImageCache().Load(path); err != nil {
		t.Errorf("saved file unreadable: %v", err)
	}
	if err := Save(img, filepath.Join(t.TempDir(), "out.xyz")); err == nil {
		t.Error("Save should reject an unknown extension")
	}
}
