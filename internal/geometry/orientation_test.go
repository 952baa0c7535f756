package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint2D_Distance(t *testing.T) {
	assert.InDelta(t, 5.0, NewPoint2D(0, 0).Distance(NewPoint2D(3, 4)), 1e-12)
	assert.Equal(t, Point2D{X: 4, Y: 6}, NewPoint2D(1, 2).Add(NewPoint2D(3, 4)))
	assert.Equal(t, Point2D{X: -2, Y: -2}, NewPoint2D(1, 2).Sub(NewPoint2D(3, 4)))
	assert.Equal(t, Point2D{X: 2, Y: 4}, NewPoint2D(1, 2).Scale(2))
}

func TestSize_Contains(t *testing.T) {
	s := NewSize(100, 50)
	assert.True(t, s.Contains(Point2D{X: 0, Y: 0}))
	assert.True(t, s.Contains(Point2D{X: 99.9, Y: 49.9}))
	assert.False(t, s.Contains(Point2D{X: 100, Y: 10}))
	assert.False(t, s.Contains(Point2D{X: -0.1, Y: 10}))
	assert.False(t, Size{}.Contains(Point2D{}))
	assert.True(t, Size{Width: 0, Height: 10}.Empty())
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, 0, false},
		{90, 90, false},
		{-90, 270, false},
		{360, 0, false},
		{450, 90, false},
		{45, 0, true},
	}

	for _, tt := range tests {
		got, err := NormalizeRotation(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "rotation %d", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "rotation %d", tt.in)
	}
}

func TestOrientation_ToDisplay(t *testing.T) {
	src := NewSize(200, 100)
	p := Point2D{X: 10, Y: 20}

	tests := []struct {
		name     string
		o        Orientation
		want     Point2D
		wantSize Size
	}{
		{"identity", Orientation{}, Point2D{X: 10, Y: 20}, Size{Width: 200, Height: 100}},
		{"rotate 90", Orientation{Rotation: 90}, Point2D{X: 80, Y: 10}, Size{Width: 100, Height: 200}},
		{"rotate 180", Orientation{Rotation: 180}, Point2D{X: 190, Y: 80}, Size{Width: 200, Height: 100}},
		{"rotate 270", Orientation{Rotation: 270}, Point2D{X: 20, Y: 190}, Size{Width: 100, Height: 200}},
		{"flip h", Orientation{FlipH: true}, Point2D{X: 190, Y: 20}, Size{Width: 200, Height: 100}},
		{"flip v", Orientation{FlipV: true}, Point2D{X: 10, Y: 80}, Size{Width: 200, Height: 100}},
		{"rotate 90 then flip h", Orientation{Rotation: 90, FlipH: true}, Point2D{X: 20, Y: 10}, Size{Width: 100, Height: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSize, tt.o.DisplaySize(src))
			got := tt.o.ToDisplay(p, src)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestOrientation_RoundTrip(t *testing.T) {
	src := NewSize(640, 480)
	points := []Point2D{{X: 0, Y: 0}, {X: 12.5, Y: 400}, {X: 639, Y: 1}, {X: 320, Y: 240}}

	for _, rot := range []int{0, 90, 180, 270} {
		for _, fh := range []bool{false, true} {
			for _, fv := range []bool{false, true} {
				o := Orientation{Rotation: rot, FlipH: fh, FlipV: fv}
				for _, p := range points {
					back := o.ToSource(o.ToDisplay(p, src), src)
					assert.InDelta(t, p.X, back.X, 1e-9, "%+v", o)
					assert.InDelta(t, p.Y, back.Y, 1e-9, "%+v", o)
				}
			}
		}
	}
}

func TestOrientation_Rotate(t *testing.T) {
	o := Orientation{}
	o, err := o.Rotate(-90)
	require.NoError(t, err)
	assert.Equal(t, 270, o.Rotation)

	o, err = o.Rotate(90)
	require.NoError(t, err)
	assert.True(t, o.IsIdentity())

	_, err = o.Rotate(30)
	assert.Error(t, err)
}
