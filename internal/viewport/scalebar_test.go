package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

func TestScaleBarTarget(t *testing.T) {
	tests := []struct {
		widthUM float64
		want    float64
	}{
		{1000, 100},
		{500, 100},
		{499, 50},
		{200, 50},
		{199, 20},
		{100, 20},
		{99, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaleBarTarget(tt.widthUM), "width %v", tt.widthUM)
	}
}

func TestLayoutScaleBar(t *testing.T) {
	window := geometry.Size{Width: 1000, Height: 800}

	// 4000 px * 0.25 = 1000 um wide, so 100 um = 400 px, shown at zoom 0.5 = 200 px.
	bar, ok := LayoutScaleBar(4000, 0.25, window, State{Zoom: 0.5})
	assert.True(t, ok)
	assert.Equal(t, 100.0, bar.LengthUM)
	assert.InDelta(t, 200, bar.LengthPx(), 1e-9)
	assert.Equal(t, 980.0, bar.X1)
	assert.Equal(t, 770.0, bar.Y0)
	assert.Equal(t, 774.0, bar.Y1)
	assert.Equal(t, "100 µm", bar.Label)
}

func TestLayoutScaleBar_DoesNotFit(t *testing.T) {
	window := geometry.Size{Width: 1000, Height: 800}

	// Too short: 100 um = 400 px at zoom 0.02 = 8 px.
	_, ok := LayoutScaleBar(4000, 0.25, window, State{Zoom: 0.02})
	assert.False(t, ok)

	// Too long: 400 px at zoom 5 = 2000 px, wider than the window.
	_, ok = LayoutScaleBar(4000, 0.25, window, State{Zoom: 5})
	assert.False(t, ok)

	_, ok = LayoutScaleBar(4000, 0, window, State{Zoom: 1})
	assert.False(t, ok)
}
