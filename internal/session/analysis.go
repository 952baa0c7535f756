package session

import (
	"fmt"
	"math"
	"time"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/report"
)

func toPoints(points []annotation.Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = geometry.Point2D{X: p.X, Y: p.Y}
	}
	return out
}

func (s *Session) analysisInput(thresholdUM float64) analysis.Input {
	src := s.sourceSize()
	return analysis.Input{
		Positive:           toPoints(s.store.Points(annotation.Positive)),
		Other:              toPoints(s.store.Points(annotation.Other)),
		Negative:           toPoints(s.store.Points(annotation.Negative)),
		Width:              int(src.Width),
		Height:             int(src.Height),
		Scale:              s.calibration,
		ClusterThresholdUM: thresholdUM,
	}
}

// QuickMetrics returns the counts and densities. Without an image the area
// is zero and so are the densities.
func (s *Session) QuickMetrics() analysis.Basic {
	return analysis.Quick(s.analysisInput(s.cfg.ClusterThresholdUM))
}

// ClusterThreshold returns the configured clustering distance in µm.
func (s *Session) ClusterThreshold() float64 { return s.cfg.ClusterThresholdUM }

// Summary computes every metric with the given cluster threshold in µm.
func (s *Session) Summary(thresholdUM float64) (analysis.Summary, error) {
	if err := s.requireImage(); err != nil {
		return analysis.Summary{}, err
	}
	if thresholdUM < 0 || math.IsNaN(thresholdUM) || math.IsInf(thresholdUM, 0) {
		return analysis.Summary{}, fmt.Errorf("cluster threshold must be a non-negative number, got %v", thresholdUM)
	}

	defer s.rec.Time("summary")()
	start := time.Now()
	sum := analysis.Summarize(s.analysisInput(thresholdUM))
	s.log.Debug("metrics computed",
		logging.Int("points", sum.Basic.TotalCount),
		logging.Float64("threshold_um", thresholdUM),
		logging.Duration("elapsed", time.Since(start)))
	return sum, nil
}

func (s *Session) reportMeta(thresholdUM float64) report.Meta {
	return report.Meta{
		ProjectName:        s.projectName,
		ImagePath:          s.imagePath,
		Generated:          time.Now(),
		ClusterThresholdUM: thresholdUM,
		Style:              s.style,
	}
}

// ExportCSV writes the metrics sheet as CSV.
func (s *Session) ExportCSV(path string, thresholdUM float64) (analysis.Summary, error) {
	sum, err := s.Summary(thresholdUM)
	if err != nil {
		return analysis.Summary{}, err
	}
	if err := report.SaveCSV(path, sum); err != nil {
		return analysis.Summary{}, err
	}
	s.log.Info("metrics exported", logging.String("path", path), logging.String("format", "csv"))
	return sum, nil
}

// ExportPDF writes the metrics report as PDF.
func (s *Session) ExportPDF(path string, thresholdUM float64) (analysis.Summary, error) {
	sum, err := s.Summary(thresholdUM)
	if err != nil {
		return analysis.Summary{}, err
	}
	if err := report.SavePDF(path, s.reportMeta(thresholdUM), sum); err != nil {
		return analysis.Summary{}, err
	}
	s.log.Info("metrics exported", logging.String("path", path), logging.String("format", "pdf"))
	return sum, nil
}

// ExportColorReport analyses the colours and writes them as a text report.
func (s *Session) ExportColorReport(path string) error {
	ca, err := s.ColorAnalysis()
	if err != nil {
		return err
	}
	if err := report.SaveColorText(path, s.reportMeta(s.cfg.ClusterThresholdUM), ca); err != nil {
		return err
	}
	s.log.Info("color analysis exported", logging.String("path", path))
	return nil
}
