package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

// NeighborStats summarises each point's distance to its nearest neighbour.
type NeighborStats struct {
	Mean   float64 `json:"mean_nn_distance"`
	Min    float64 `json:"min_nn_distance"`
	Max    float64 `json:"max_nn_distance"`
	StdDev float64 `json:"std_nn_distance"`
	// ClarkEvans is the ratio of the observed mean nearest-neighbour distance
	// to the one expected under complete spatial randomness over the same
	// area: below 1 means aggregated, above 1 means dispersed. It is 0 when
	// no area is given.
	ClarkEvans float64 `json:"clark_evans_index"`
}

// NearestNeighbors returns, for every point, the distance to the closest
// other point. Coincident points have a nearest distance of 0.
func NearestNeighbors(points []geometry.Point2D) []float64 {
	if len(points) < 2 {
		return nil
	}

	// kdtree.New reorders its input, so it gets its own slice.
	pts := make(kdtree.Points, len(points))
	for i, p := range points {
		pts[i] = kdtree.Point{p.X, p.Y}
	}
	tree := kdtree.New(pts, false)

	out := make([]float64, len(points))
	for i, p := range points {
		// The query point is in the tree, so keep two: itself and its neighbour.
		keep := kdtree.NewNKeeper(2)
		tree.NearestSet(keep, kdtree.Point{p.X, p.Y})

		nearest := 0.0
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			nearest = math.Max(nearest, cd.Dist)
		}
		// Point.Distance is squared Euclidean.
		out[i] = math.Sqrt(nearest)
	}
	return out
}

// NearestNeighborStats computes nearest-neighbour statistics. areaUM2 is the
// study area in square micrometres, used only for the Clark-Evans ratio.
func NearestNeighborStats(points []geometry.Point2D, areaUM2 float64) NeighborStats {
	d := NearestNeighbors(points)
	if len(d) == 0 {
		return NeighborStats{}
	}

	mean, std := stat.PopMeanStdDev(d, nil)
	ns := NeighborStats{
		Mean:   mean,
		StdDev: std,
		Min:    d[0],
		Max:    d[0],
	}
	for _, v := range d[1:] {
		ns.Min = math.Min(ns.Min, v)
		ns.Max = math.Max(ns.Max, v)
	}

	if areaUM2 > 0 {
		expected := 0.5 * math.Sqrt(areaUM2/float64(len(d)))
		ns.ClarkEvans = mean / expected
	}
	return ns
}
