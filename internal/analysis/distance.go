package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

// DistanceStats summarises every pairwise distance in a point set.
type DistanceStats struct {
	Min    float64 `json:"min_distance"`
	Max    float64 `json:"max_distance"`
	Mean   float64 `json:"avg_distance"`
	StdDev float64 `json:"std_distance"`
	// CV is StdDev/Mean, or 0 when the mean is 0.
	CV float64 `json:"cv_distance"`
}

// PairwiseDistances returns the n(n-1)/2 distances between distinct points.
func PairwiseDistances(points []geometry.Point2D) []float64 {
	n := len(points)
	if n < 2 {
		return nil
	}
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, points[i].Distance(points[j]))
		}
	}
	return out
}

// PairwiseDistanceStats computes min, max, mean, population standard
// deviation and coefficient of variation over all pairwise distances.
// Fewer than two points give all zeros.
//
// The cost is quadratic in the number of points.
func PairwiseDistanceStats(points []geometry.Point2D) DistanceStats {
	d := PairwiseDistances(points)
	if len(d) == 0 {
		return DistanceStats{}
	}

	mean, std := stat.PopMeanStdDev(d, nil)
	stats := DistanceStats{
		Min:    floats.Min(d),
		Max:    floats.Max(d),
		Mean:   mean,
		StdDev: std,
	}
	if mean > 0 {
		stats.CV = std / mean
	}
	return stats
}
