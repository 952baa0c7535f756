package analysis

import (
	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

// ProliferationIndex returns positive/(positive+negative) as a percentage,
// or 0 when there are no positive or negative points.
func ProliferationIndex(positive, negative int) float64 {
	base := positive + negative
	if base <= 0 {
		return 0
	}
	return float64(positive) / float64(base) * 100
}

// AreaMM2 returns the physical area of a width x height pixel image, given
// scale micrometres per pixel.
func AreaMM2(width, height int, scale float64) float64 {
	return (float64(width) * scale) * (float64(height) * scale) / 1e6
}

// Density returns count per square millimetre, or 0 for a non-positive area.
func Density(count int, areaMM2 float64) float64 {
	if areaMM2 <= 0 {
		return 0
	}
	return float64(count) / areaMM2
}

// ToPhysical scales pixel coordinates to micrometres.
func ToPhysical(points []geometry.Point2D, scale float64) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = p.Scale(scale)
	}
	return out
}
