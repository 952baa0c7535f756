package session

import (
	"context"
	"time"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/detection"
	"github.com/ironsheep/histopath-mcp/internal/logging"
)

// Models lists the detector models available to AutoCount.
func (s *Session) Models() []string { return s.detector.Models() }

// AutoCount replaces the annotations with the detector's proposals for the
// open image. Detections go through the normal add path and the history is
// cleared afterwards, so an automatic count cannot be undone point by point.
// On error the annotations are left untouched.
func (s *Session) AutoCount(ctx context.Context, model string) (annotation.Counts, error) {
	if err := s.requireImage(); err != nil {
		return annotation.Counts{}, err
	}
	src := s.sourceSize()

	defer s.rec.Time("autocount")()
	start := time.Now()
	found, err := s.detector.Detect(ctx, detection.Request{
		Model:  model,
		Width:  int(src.Width),
		Height: int(src.Height),
	})
	if err != nil {
		return annotation.Counts{}, err
	}

	s.clearMarkers()
	for _, d := range found {
		if !d.Class.Valid() {
			continue
		}
		s.add(d.Class, d.X, d.Y)
	}
	s.history.Clear()

	counts := s.store.Counts()
	s.log.Info("automatic count finished",
		logging.String("model", model),
		logging.Int("points", counts.Total()),
		logging.Duration("elapsed", time.Since(start)))
	s.commit("autocount")
	return counts, nil
}
