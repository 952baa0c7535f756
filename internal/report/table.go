package report

import (
	"fmt"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
)

// Section is a titled group of label/value rows.
type Section struct {
	Title string
	Rows  []Row
}

// Row is one labelled metric, already formatted.
type Row struct {
	Label string
	Value string
}

// Sections lays out a summary in display order: basic metrics, then
// distribution, clustering and nearest-neighbour statistics.
func Sections(s analysis.Summary) []Section {
	b := s.Basic
	return []Section{
		{Title: "Basic Metrics", Rows: []Row{
			{"Positive nuclei", fmt.Sprintf("%d", b.PositiveCount)},
			{"Negative nuclei", fmt.Sprintf("%d", b.NegativeCount)},
			{"Other", fmt.Sprintf("%d", b.OtherCount)},
			{"Total nuclei", fmt.Sprintf("%d", b.TotalCount)},
			{"Proliferation index", fmt.Sprintf("%.2f%%", b.ProliferationIndex)},
			{"Total density", fmt.Sprintf("%.1f nuclei/mm²", b.TotalDensity)},
			{"Positive density", fmt.Sprintf("%.1f nuclei/mm²", b.PositiveDensity)},
			{"Negative density", fmt.Sprintf("%.1f nuclei/mm²", b.NegativeDensity)},
			{"Other count", fmt.Sprintf("%.2f per mm²", b.OtherPerMM2)},
			{"Analysed area", fmt.Sprintf("%.2f mm²", b.AreaMM2)},
			{"Scale", fmt.Sprintf("%.4f µm/pixel", b.Scale)},
			{"Resolution", fmt.Sprintf("%d × %d px", b.Width, b.Height)},
		}},
		{Title: "Distribution Metrics", Rows: []Row{
			{"Min Distance", um(s.Distribution.Min)},
			{"Max Distance", um(s.Distribution.Max)},
			{"Avg Distance", um(s.Distribution.Mean)},
			{"Std Distance", um(s.Distribution.StdDev)},
			{"Cv Distance", fmt.Sprintf("%.4f", s.Distribution.CV)},
		}},
		{Title: "Clustering Metrics", Rows: []Row{
			{"Num Clusters", fmt.Sprintf("%d", s.Clustering.NumClusters)},
			{"Avg Cluster Size", fmt.Sprintf("%.2f", s.Clustering.AvgClusterSize)},
			{"Cluster Density", fmt.Sprintf("%.2f clusters/mm²", s.Clustering.ClusterDensity)},
			{"Clustering Index", fmt.Sprintf("%.4f", s.Clustering.ClusteringIndex)},
		}},
		{Title: "Nearest Neighbour", Rows: []Row{
			{"Mean NN Distance", um(s.Neighbors.Mean)},
			{"Min NN Distance", um(s.Neighbors.Min)},
			{"Max NN Distance", um(s.Neighbors.Max)},
			{"Std NN Distance", um(s.Neighbors.StdDev)},
			{"Clark-Evans Index", fmt.Sprintf("%.4f", s.Neighbors.ClarkEvans)},
		}},
	}
}

func um(v float64) string {
	return fmt.Sprintf("%.2f µm", v)
}
