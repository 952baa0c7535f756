package session

import (
	"errors"
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/config"
	"github.com/ironsheep/histopath-mcp/internal/detection"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/metrics"
	"github.com/ironsheep/histopath-mcp/internal/project"
	"github.com/ironsheep/histopath-mcp/internal/viewport"
)

var (
	// ErrInvalidCoordinate is returned for a point outside the image.
	ErrInvalidCoordinate = errors.New("session: coordinate outside image")
	// ErrCalibrationNonPositive is returned for a scale that is not a
	// positive finite number.
	ErrCalibrationNonPositive = errors.New("session: calibration must be positive")
	// ErrNoImage is returned by operations that need an open image.
	ErrNoImage = errors.New("session: no image loaded")
)

// Snapshot is what a Renderer receives after annotations change.
type Snapshot struct {
	Counts  annotation.Counts `json:"counts"`
	Quick   analysis.Basic    `json:"quick_metrics"`
	CanUndo bool              `json:"can_undo"`
	CanRedo bool              `json:"can_redo"`
}

// Renderer is notified once after every operation that changed annotations.
type Renderer interface {
	MarkersChanged(Snapshot)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Snapshot)

// MarkersChanged calls f.
func (f RendererFunc) MarkersChanged(s Snapshot) { f(s) }

// Options are the collaborators of a Session. Zero values get defaults:
// config.Default, a mock detector, a no-op logger, no metrics, an in-memory
// recent list and a fresh image cache.
type Options struct {
	Config   config.SessionConfig
	Detector detection.Detector
	Logger   logging.Logger
	Metrics  *metrics.Recorder
	Recent   *project.RecentList
	Cache    *imaging.ImageCache
	Renderer Renderer
	// DetectorSeed seeds the default mock detector.
	DetectorSeed int64
}

// Session is one annotation session.
type Session struct {
	id  uuid.UUID
	cfg config.SessionConfig

	store   *annotation.Store
	history *annotation.History

	window       geometry.Size
	view         viewport.State
	calibration  float64
	adjust       imaging.Adjustments
	style        imaging.MarkerStyle
	showScaleBar bool

	source    image.Image
	display   image.Image
	imagePath string

	projectID   uuid.UUID
	projectName string
	projectPath string

	cache    *imaging.ImageCache
	detector detection.Detector
	log      logging.Logger
	rec      *metrics.Recorder
	recent   *project.RecentList
	renderer Renderer

	// pending counts store changes since the last commit.
	pending int
}

// New creates a session with no image.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == (config.SessionConfig{}) {
		cfg = config.Default().Session
	}
	if opts.Detector == nil {
		opts.Detector = detection.NewMockDetector(opts.DetectorSeed)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Recent == nil {
		opts.Recent = project.NewRecentList("")
	}
	if opts.Cache == nil {
		opts.Cache = imaging.NewImageCache()
	}

	id := uuid.New()
	s := &Session{
		id:       id,
		cfg:      cfg,
		store:    annotation.NewStore(),
		history:  annotation.NewHistory(),
		window:   geometry.NewSize(cfg.WindowWidth, cfg.WindowHeight),
		cache:    opts.Cache,
		detector: opts.Detector,
		log:      opts.Logger.Named("session").With(logging.String("session_id", id.String())),
		rec:      opts.Metrics,
		recent:   opts.Recent,
		renderer: opts.Renderer,
	}
	s.store.OnChange(func(annotation.Change) { s.pending++ })
	s.resetState()
	s.pending = 0
	return s
}

// resetState returns everything but the collaborators to a fresh session.
func (s *Session) resetState() {
	s.store.Clear()
	s.history.Clear()

	s.calibration = s.cfg.CalibrationScale
	s.adjust = imaging.DefaultAdjustments()
	s.style = imaging.DefaultMarkerStyle()
	s.style.Size = s.cfg.MarkerSize
	for class, hex := range map[annotation.MarkerClass]string{
		annotation.Positive: s.cfg.PositiveColor,
		annotation.Other:    s.cfg.OtherColor,
		annotation.Negative: s.cfg.NegativeColor,
	} {
		if hex == "" {
			continue
		}
		if err := s.style.SetColor(class, hex); err != nil {
			s.log.Warn("ignoring configured marker color", logging.Any("class", class), logging.Err(err))
		}
	}
	s.showScaleBar = s.cfg.ShowScaleBar

	if s.imagePath != "" {
		s.cache.Evict(s.imagePath)
	}
	s.source = nil
	s.display = nil
	s.imagePath = ""

	s.projectID = uuid.New()
	s.projectName = project.DefaultName
	s.projectPath = ""
	s.view = viewport.Identity()
}

// Reset discards the image, annotations and settings, like starting a new
// project. The renderer is notified if annotations were discarded.
func (s *Session) Reset() {
	s.resetState()
	s.log.Info("session reset")
	s.commit("clear")
}

// SetRenderer replaces the renderer. A nil r disables notifications.
func (s *Session) SetRenderer(r Renderer) { s.renderer = r }

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// HasImage reports whether an image is open.
func (s *Session) HasImage() bool { return s.source != nil }

// ImagePath returns the path of the open image, or "".
func (s *Session) ImagePath() string { return s.imagePath }

// ProjectName returns the current project name.
func (s *Session) ProjectName() string { return s.projectName }

// SetProjectName renames the project. An empty name means DefaultName.
func (s *Session) SetProjectName(name string) {
	if name == "" {
		name = project.DefaultName
	}
	s.projectName = name
}

// ProjectID returns the identifier saved with the project.
func (s *Session) ProjectID() uuid.UUID { return s.projectID }

// Recent returns the recent-files list.
func (s *Session) Recent() []project.RecentEntry { return s.recent.Entries() }

// sourceSize returns the size of the unoriented image.
func (s *Session) sourceSize() geometry.Size {
	if s.source == nil {
		return geometry.Size{}
	}
	b := s.source.Bounds()
	return geometry.NewSize(b.Dx(), b.Dy())
}

// displaySize returns the size of the image as shown, after rotation.
func (s *Session) displaySize() geometry.Size {
	return s.adjust.Orientation.DisplaySize(s.sourceSize())
}

func (s *Session) requireImage() error {
	if s.source == nil {
		return ErrNoImage
	}
	return nil
}

// Snapshot captures the counts, quick metrics and undo state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Counts:  s.store.Counts(),
		Quick:   s.QuickMetrics(),
		CanUndo: s.history.CanUndo(),
		CanRedo: s.history.CanRedo(),
	}
}

// commit ends a mutating operation: when the store changed it records the
// edit metric, publishes the counts and notifies the renderer once.
func (s *Session) commit(kind string) {
	if s.pending == 0 {
		return
	}
	s.pending = 0

	s.rec.Edit(kind)
	counts := s.store.Counts()
	for _, c := range annotation.Classes {
		s.rec.SetAnnotations(c.String(), counts.Of(c))
	}
	if s.renderer != nil {
		s.renderer.MarkersChanged(s.Snapshot())
	}
}

// addRecent records path in the recent list. Failures to persist the list
// are logged, never returned.
func (s *Session) addRecent(path string) {
	if err := s.recent.Add(path); err != nil {
		s.log.Warn("failed to update recent files", logging.String("path", path), logging.Err(err))
	}
}
