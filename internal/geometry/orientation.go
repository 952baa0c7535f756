package geometry

import (
	"fmt"
)

// Orientation describes how a source raster is presented: a clockwise
// quarter-turn rotation followed by optional horizontal and vertical flips.
//
// Annotations always live in source coordinates. Orientation converts between
// source space and the displayed (oriented) raster.
type Orientation struct {
	// Rotation in degrees clockwise. Always one of 0, 90, 180, 270.
	Rotation int  `json:"rotation"`
	FlipH    bool `json:"flip_h"`
	FlipV    bool `json:"flip_v"`
}

// NormalizeRotation folds any multiple of 90 into [0, 360).
// Values that are not quarter turns return an error.
func NormalizeRotation(deg int) (int, error) {
	if deg%90 != 0 {
		return 0, fmt.Errorf("rotation %d is not a multiple of 90", deg)
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg, nil
}

// Rotate returns the orientation turned by deg degrees clockwise.
func (o Orientation) Rotate(deg int) (Orientation, error) {
	r, err := NormalizeRotation(o.Rotation + deg)
	if err != nil {
		return o, err
	}
	o.Rotation = r
	return o, nil
}

// IsIdentity reports whether the orientation leaves the raster untouched.
func (o Orientation) IsIdentity() bool {
	return o.Rotation == 0 && !o.FlipH && !o.FlipV
}

// DisplaySize returns the size of the oriented raster for a source of size src.
func (o Orientation) DisplaySize(src Size) Size {
	if o.Rotation == 90 || o.Rotation == 270 {
		return src.Transposed()
	}
	return src
}

// ToDisplay maps a source-space point onto the oriented raster.
func (o Orientation) ToDisplay(p Point2D, src Size) Point2D {
	var q Point2D
	switch o.Rotation {
	case 90:
		q = Point2D{X: src.Height - p.Y, Y: p.X}
	case 180:
		q = Point2D{X: src.Width - p.X, Y: src.Height - p.Y}
	case 270:
		q = Point2D{X: p.Y, Y: src.Width - p.X}
	default:
		q = p
	}

	disp := o.DisplaySize(src)
	if o.FlipH {
		q.X = disp.Width - q.X
	}
	if o.FlipV {
		q.Y = disp.Height - q.Y
	}
	return q
}

// ToSource maps a point on the oriented raster back to source space.
// It is the exact inverse of ToDisplay.
func (o Orientation) ToSource(p Point2D, src Size) Point2D {
	disp := o.DisplaySize(src)
	if o.FlipV {
		p.Y = disp.Height - p.Y
	}
	if o.FlipH {
		p.X = disp.Width - p.X
	}

	switch o.Rotation {
	case 90:
		return Point2D{X: p.Y, Y: src.Height - p.X}
	case 180:
		return Point2D{X: src.Width - p.X, Y: src.Height - p.Y}
	case 270:
		return Point2D{X: src.Width - p.Y, Y: p.X}
	default:
		return p
	}
}
