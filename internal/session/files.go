package session

import (
	"fmt"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/project"
)

// LoadResult reports what a load restored.
type LoadResult struct {
	Path    string            `json:"path"`
	Counts  annotation.Counts `json:"counts"`
	Skipped int               `json:"skipped"`
}

// OpenProject restores a saved project: image, calibration, adjustments,
// marker size and annotations. History starts empty and the view is fitted.
//
// Everything is validated before the session is touched, so a failed open
// leaves the session unchanged.
func (s *Session) OpenProject(path string) (LoadResult, error) {
	p, err := project.Read(path)
	if err != nil {
		return LoadResult{}, err
	}
	if p.VersionMismatch() {
		s.log.Warn("project version mismatch",
			logging.String("path", path),
			logging.String("version", p.Version),
			logging.String("expected", project.Version))
	}
	if err := checkCalibration(p.CalibrationScale); err != nil {
		return LoadResult{}, err
	}
	adj, err := p.Adjustments()
	if err != nil {
		return LoadResult{}, err
	}
	if p.MarkerSize < 1 {
		return LoadResult{}, fmt.Errorf("invalid marker size %d", p.MarkerSize)
	}
	points, skipped := p.Points()

	imagePath := p.ResolveImagePath(path)
	if imagePath == "" {
		return LoadResult{}, fmt.Errorf("project %s has no image path", path)
	}
	img, err := s.cache.Load(imagePath)
	if err != nil {
		return LoadResult{}, err
	}

	s.setImage(imagePath, img)
	s.adjust = adj
	s.calibration = p.CalibrationScale
	s.style.Size = p.MarkerSize
	s.projectID = p.ID
	s.projectName = p.Name
	s.projectPath = path

	s.clearMarkers()
	s.insertAll(points)
	s.fit()
	s.addRecent(path)

	if skipped > 0 {
		s.log.Warn("skipped invalid annotation records",
			logging.String("path", path),
			logging.Int("skipped", skipped))
	}
	s.log.Info("project opened",
		logging.String("path", path),
		logging.String("image", imagePath),
		logging.Int("annotations", len(points)))
	s.commit("load")
	return LoadResult{Path: path, Counts: s.store.Counts(), Skipped: skipped}, nil
}

// insertAll adds points without recording history.
func (s *Session) insertAll(points []annotation.Point) {
	for _, p := range points {
		s.store.Add(p.Class, p.X, p.Y)
	}
}

// Project returns the current state as a project record.
func (s *Session) Project() *project.Project {
	p := project.New(s.imagePath)
	p.ID = s.projectID
	p.Name = s.projectName
	p.CalibrationScale = s.calibration
	p.MarkerSize = s.style.Size
	p.SetAdjustments(s.adjust)
	p.SetPoints(s.store.All())
	return p
}

// SaveProject writes the project to path. An empty path reuses the path the
// project was opened from or last saved to, then falls back to the image
// path with the project extension. It returns the path written.
func (s *Session) SaveProject(path string) (string, error) {
	if err := s.requireImage(); err != nil {
		return "", err
	}
	if path == "" {
		path = s.projectPath
	}
	if path == "" {
		path = project.PathForImage(s.imagePath)
	}
	if err := project.Write(path, s.Project()); err != nil {
		return "", err
	}
	s.projectPath = path
	s.addRecent(path)
	s.log.Info("project saved",
		logging.String("path", path),
		logging.Int("annotations", s.store.CountAll()))
	return path, nil
}

// LoadAnnotations replaces the annotations with those in an annotation file.
// History is cleared. Points outside the image are kept.
func (s *Session) LoadAnnotations(path string) (LoadResult, error) {
	if err := s.requireImage(); err != nil {
		return LoadResult{}, err
	}
	points, skipped, err := project.ReadAnnotations(path)
	if err != nil {
		return LoadResult{}, err
	}

	s.clearMarkers()
	s.insertAll(points)
	s.addRecent(path)

	if skipped > 0 {
		s.log.Warn("skipped invalid annotation records",
			logging.String("path", path),
			logging.Int("skipped", skipped))
	}
	s.log.Info("annotations loaded", logging.String("path", path), logging.Int("annotations", len(points)))
	s.commit("load")
	return LoadResult{Path: path, Counts: s.store.Counts(), Skipped: skipped}, nil
}

// SaveAnnotations writes the annotations to an annotation file.
func (s *Session) SaveAnnotations(path string) error {
	if err := project.WriteAnnotations(path, s.store.All()); err != nil {
		return err
	}
	s.addRecent(path)
	s.log.Info("annotations saved", logging.String("path", path), logging.Int("annotations", s.store.CountAll()))
	return nil
}
