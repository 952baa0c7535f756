package analysis

import (
	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

// DefaultClusterThresholdUM is the conventional single-linkage distance for
// nuclei clustering.
const DefaultClusterThresholdUM = 50.0

// minClusterPoints is the number of points below which no clustering is
// attempted.
const minClusterPoints = 3

// ClusterStats describes the connected components of the "closer than
// threshold" graph that have at least two members.
type ClusterStats struct {
	// Clusters holds the indices of each cluster's members, in discovery order.
	Clusters       [][]int `json:"-"`
	NumClusters    int     `json:"num_clusters"`
	AvgClusterSize float64 `json:"avg_cluster_size"`
	// ClusterDensity is clusters per square millimetre.
	ClusterDensity float64 `json:"cluster_density"`
	// ClusteringIndex is clusters per point.
	ClusteringIndex float64 `json:"clustering_index"`
}

// ClusterByDistance groups points whose chains of neighbours are each
// strictly closer than threshold, using breadth-first search. Singletons are
// dropped. Points and threshold must share units. With fewer than three
// points the result is zero.
func ClusterByDistance(points []geometry.Point2D, threshold, areaMM2 float64) ClusterStats {
	n := len(points)
	if n < minClusterPoints {
		return ClusterStats{}
	}

	visited := make([]bool, n)
	var clusters [][]int

	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true
		component := []int{i}
		queue := []int{i}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for j := range points {
				if visited[j] {
					continue
				}
				if points[cur].Distance(points[j]) < threshold {
					visited[j] = true
					component = append(component, j)
					queue = append(queue, j)
				}
			}
		}

		if len(component) > 1 {
			clusters = append(clusters, component)
		}
	}

	if len(clusters) == 0 {
		return ClusterStats{}
	}

	members := 0
	for _, c := range clusters {
		members += len(c)
	}

	return ClusterStats{
		Clusters:        clusters,
		NumClusters:     len(clusters),
		AvgClusterSize:  float64(members) / float64(len(clusters)),
		ClusterDensity:  Density(len(clusters), areaMM2),
		ClusteringIndex: float64(len(clusters)) / float64(n),
	}
}
