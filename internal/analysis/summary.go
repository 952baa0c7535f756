package analysis

import (
	"github.com/ironsheep/histopath-mcp/internal/geometry"
)

// Input is everything Summarize needs. Point coordinates are source pixels.
type Input struct {
	Positive []geometry.Point2D
	Other    []geometry.Point2D
	Negative []geometry.Point2D

	Width  int
	Height int
	// Scale is micrometres per pixel.
	Scale float64
	// ClusterThresholdUM is the clustering link distance in micrometres.
	ClusterThresholdUM float64
}

// All returns every point in class order Positive, Other, Negative.
func (in Input) All() []geometry.Point2D {
	out := make([]geometry.Point2D, 0, len(in.Positive)+len(in.Other)+len(in.Negative))
	out = append(out, in.Positive...)
	out = append(out, in.Other...)
	out = append(out, in.Negative...)
	return out
}

// Basic holds the counts and densities shown after every edit.
type Basic struct {
	PositiveCount int `json:"positive_count"`
	OtherCount    int `json:"other_count"`
	NegativeCount int `json:"negative_count"`
	TotalCount    int `json:"total_count"`

	ProliferationIndex float64 `json:"proliferation_index"`
	TotalDensity       float64 `json:"total_density"`
	PositiveDensity    float64 `json:"positive_density"`
	NegativeDensity    float64 `json:"negative_density"`
	OtherPerMM2        float64 `json:"other_per_mm2"`

	AreaMM2 float64 `json:"area_mm2"`
	Scale   float64 `json:"scale_um_per_px"`
	Width   int     `json:"width_px"`
	Height  int     `json:"height_px"`
}

// Summary is the full metrics sheet for one image.
type Summary struct {
	Basic        Basic         `json:"basic"`
	Distribution DistanceStats `json:"distribution"`
	Clustering   ClusterStats  `json:"clustering"`
	Neighbors    NeighborStats `json:"nearest_neighbor"`
}

// Quick computes only the counts and densities.
func Quick(in Input) Basic {
	area := AreaMM2(in.Width, in.Height, in.Scale)
	pos, oth, neg := len(in.Positive), len(in.Other), len(in.Negative)
	total := pos + oth + neg

	return Basic{
		PositiveCount:      pos,
		OtherCount:         oth,
		NegativeCount:      neg,
		TotalCount:         total,
		ProliferationIndex: ProliferationIndex(pos, neg),
		TotalDensity:       Density(total, area),
		PositiveDensity:    Density(pos, area),
		NegativeDensity:    Density(neg, area),
		OtherPerMM2:        Density(oth, area),
		AreaMM2:            area,
		Scale:              in.Scale,
		Width:              in.Width,
		Height:             in.Height,
	}
}

// Summarize computes every metric over all classes pooled together.
func Summarize(in Input) Summary {
	basic := Quick(in)
	phys := ToPhysical(in.All(), in.Scale)

	return Summary{
		Basic:        basic,
		Distribution: PairwiseDistanceStats(phys),
		Clustering:   ClusterByDistance(phys, in.ClusterThresholdUM, basic.AreaMM2),
		Neighbors:    NearestNeighborStats(phys, basic.AreaMM2*1e6),
	}
}
