package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/project"
)

type analyzeOptions struct {
	ThresholdUM float64
}

// analyzeResult is the JSON printed by "analyze".
type analyzeResult struct {
	Project   string           `json:"project"`
	Image     string           `json:"image"`
	Threshold float64          `json:"cluster_threshold_um"`
	Skipped   int              `json:"skipped_records,omitempty"`
	Summary   analysis.Summary `json:"summary"`
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze PROJECT.hpa",
		Short: "Print the metrics summary of a saved project",
		Long: "Reads a project file and prints its metrics summary as JSON.\n" +
			"The image is only read for its dimensions; when it cannot be read\n" +
			"the area and densities are zero.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}
	cmd.Flags().Float64Var(&opts.ThresholdUM, "threshold", 0, "cluster linkage distance in µm (default from config)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *analyzeOptions) error {
	cc, err := getCLIContext(cmd)
	if err != nil {
		return err
	}
	log := cc.Logger

	threshold := cc.Config.Session.ClusterThresholdUM
	if cmd.Flags().Changed("threshold") {
		threshold = opts.ThresholdUM
	}
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return fmt.Errorf("threshold must be a non-negative number, got %v", threshold)
	}

	p, err := project.Read(path)
	if err != nil {
		return err
	}
	if !(p.CalibrationScale > 0) || math.IsInf(p.CalibrationScale, 0) {
		return fmt.Errorf("project %s: calibration scale must be positive, got %v", path, p.CalibrationScale)
	}

	points, skipped := p.Points()
	if skipped > 0 {
		log.Warn("skipped invalid annotation records", logging.Int("skipped", skipped))
	}

	imagePath := p.ResolveImagePath(path)
	width, height, err := imaging.DecodeSize(imagePath)
	if err != nil {
		log.Warn("image unreadable, area is zero", logging.String("image", imagePath), logging.Err(err))
		width, height = 0, 0
	}

	in := analysis.Input{
		Width:              width,
		Height:             height,
		Scale:              p.CalibrationScale,
		ClusterThresholdUM: threshold,
	}
	for _, pt := range points {
		xy := geometry.Point2D{X: pt.X, Y: pt.Y}
		switch pt.Class {
		case annotation.Positive:
			in.Positive = append(in.Positive, xy)
		case annotation.Other:
			in.Other = append(in.Other, xy)
		case annotation.Negative:
			in.Negative = append(in.Negative, xy)
		}
	}

	return printJSON(cmd, analyzeResult{
		Project:   p.Name,
		Image:     imagePath,
		Threshold: threshold,
		Skipped:   skipped,
		Summary:   analysis.Summarize(in),
	})
}
