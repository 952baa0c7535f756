package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

func TestToViewToImage_RoundTrip(t *testing.T) {
	s := State{Zoom: 2.5, PanX: -40, PanY: 13}
	p := geometry.Point2D{X: 123.4, Y: 56.7}

	v := ToView(p, s)
	assert.InDelta(t, 123.4*2.5-40, v.X, 1e-9)
	assert.InDelta(t, 56.7*2.5+13, v.Y, 1e-9)

	back, err := ToImage(v, s)
	require.NoError(t, err)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestToImage_ZeroZoom(t *testing.T) {
	_, err := ToImage(geometry.Point2D{X: 1, Y: 1}, State{})
	assert.ErrorIs(t, err, ErrZeroZoom)
}

func TestFitToWindow(t *testing.T) {
	tests := []struct {
		name     string
		img      geometry.Size
		window   geometry.Size
		wantZoom float64
		wantPanX float64
		wantPanY float64
	}{
		{"large image shrinks", geometry.Size{Width: 4000, Height: 2000}, geometry.Size{Width: 1000, Height: 800}, 0.25, 0, 150},
		{"tall image limited by height", geometry.Size{Width: 1000, Height: 4000}, geometry.Size{Width: 1000, Height: 800}, 0.2, 400, 0},
		{"small image never enlarged", geometry.Size{Width: 100, Height: 50}, geometry.Size{Width: 1000, Height: 800}, 1.0, 450, 375},
		{"exact fit", geometry.Size{Width: 1000, Height: 800}, geometry.Size{Width: 1000, Height: 800}, 1.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FitToWindow(tt.img, tt.window)
			assert.InDelta(t, tt.wantZoom, s.Zoom, 1e-9)
			assert.InDelta(t, tt.wantPanX, s.PanX, 1e-9)
			assert.InDelta(t, tt.wantPanY, s.PanY, 1e-9)
			assert.LessOrEqual(t, s.Zoom, 1.0)
			assert.Equal(t, ModeFit, s.Mode)
		})
	}
}

func TestFitToWindow_Degenerate(t *testing.T) {
	s := FitToWindow(geometry.Size{}, geometry.Size{Width: 100, Height: 100})
	assert.Equal(t, Identity(), s)

	s = FitToWindow(geometry.Size{Width: 100, Height: 100}, geometry.Size{Width: 0, Height: 100})
	assert.Equal(t, Identity(), s)
}

func TestZoomAroundPoint_AnchorFixed(t *testing.T) {
	s := State{Zoom: 0.5, PanX: 10, PanY: 20}
	anchor := geometry.Point2D{X: 300, Y: 200}

	before, err := ToImage(anchor, s)
	require.NoError(t, err)

	for _, factor := range []float64{1.25, 0.8, 3, 0.1} {
		next := ZoomAroundPoint(factor, anchor, s)
		after, err := ToImage(anchor, next)
		require.NoError(t, err)
		assert.InDelta(t, before.X, after.X, 1e-9, "factor %v", factor)
		assert.InDelta(t, before.Y, after.Y, 1e-9, "factor %v", factor)
	}
}

func TestZoomAroundPoint_Clamped(t *testing.T) {
	s := State{Zoom: 15}
	assert.Equal(t, ZoomMax, ZoomAroundPoint(10, geometry.Point2D{}, s).Zoom)

	s = State{Zoom: 0.02}
	assert.Equal(t, ZoomMin, ZoomAroundPoint(0.1, geometry.Point2D{}, s).Zoom)
}

func TestActualSizeAndPan(t *testing.T) {
	s := ActualSize(geometry.Size{Width: 200, Height: 100}, geometry.Size{Width: 1000, Height: 800})
	assert.Equal(t, State{Zoom: 1, PanX: 400, PanY: 350, Mode: ModeActual}, s)

	s = Pan(-50, 25, s)
	assert.Equal(t, 350.0, s.PanX)
	assert.Equal(t, 375.0, s.PanY)
}

func TestZoomAtCenter(t *testing.T) {
	window := geometry.Size{Width: 800, Height: 600}
	s := State{Zoom: 1}
	next := ZoomAtCenter(2, window, s)
	assert.Equal(t, 2.0, next.Zoom)
	assert.Equal(t, -400.0, next.PanX)
	assert.Equal(t, -300.0, next.PanY)
}

func TestVisibleRegion(t *testing.T) {
	lo, hi, err := VisibleRegion(geometry.Size{Width: 100, Height: 50}, State{Zoom: 2, PanX: -20, PanY: 0})
	require.NoError(t, err)
	assert.Equal(t, geometry.Point2D{X: 10, Y: 0}, lo)
	assert.Equal(t, geometry.Point2D{X: 60, Y: 25}, hi)
}

func TestMarkerRadius(t *testing.T) {
	tests := []struct {
		base int
		zoom float64
		want int
	}{
		{8, 1, 8},
		{8, 0.1, 20},
		{8, 4, 3},
		{10, 2, 5},
		{8, 0, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarkerRadius(tt.base, tt.zoom), "base=%d zoom=%v", tt.base, tt.zoom)
	}
}

func TestSearchRadius(t *testing.T) {
	assert.Equal(t, 40.0, SearchRadius(20, State{Zoom: 0.5}))
	assert.Equal(t, 10.0, SearchRadius(20, State{Zoom: 2}))
}
