package project

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
)

const (
	// Version is written to every saved project.
	Version = "1.3"
	// Extension is the project file extension.
	Extension = ".hpa"
	// DefaultName is used when a project has no name.
	DefaultName = "Untitled"

	defaultCalibration = 0.25
	defaultMarkerSize  = 8
)

// Project is the on-disk project record.
type Project struct {
	Version          string    `json:"version"`
	ID               uuid.UUID `json:"project_id"`
	Name             string    `json:"project_name"`
	ImagePath        string    `json:"image_path"`
	CalibrationScale float64   `json:"calibration_scale"`
	Rotation         int       `json:"rotation"`
	FlipH            bool      `json:"flip_h"`
	FlipV            bool      `json:"flip_v"`
	Brightness       float64   `json:"brightness"`
	Contrast         float64   `json:"contrast"`
	Gamma            float64   `json:"gamma"`
	Filter           string    `json:"filter"`
	MarkerSize       int       `json:"marker_size"`
	Annotations      []Record  `json:"annotations"`
	// Timestamp is the save time in RFC 3339. Older files may carry a
	// timestamp without zone, so it is kept as text.
	Timestamp string `json:"timestamp"`
}

// New returns a project with default settings for imagePath. The name
// defaults to the image base name without extension.
func New(imagePath string) *Project {
	p := defaults()
	p.ID = uuid.New()
	p.ImagePath = imagePath
	if imagePath != "" {
		base := filepath.Base(imagePath)
		p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return p
}

func defaults() *Project {
	return &Project{
		Version:          Version,
		Name:             DefaultName,
		CalibrationScale: defaultCalibration,
		Brightness:       1,
		Contrast:         1,
		Gamma:            1,
		Filter:           string(imaging.FilterNone),
		MarkerSize:       defaultMarkerSize,
	}
}

// VersionMismatch reports whether the record was written by another version.
func (p *Project) VersionMismatch() bool {
	return p.Version != Version
}

// Adjustments returns the display pipeline stored in the project.
func (p *Project) Adjustments() (imaging.Adjustments, error) {
	rotation, err := geometry.NormalizeRotation(p.Rotation)
	if err != nil {
		return imaging.Adjustments{}, fmt.Errorf("%w: %v", imaging.ErrInvalidAdjustment, err)
	}
	filter, err := imaging.ParseFilter(p.Filter)
	if err != nil {
		return imaging.Adjustments{}, err
	}
	a := imaging.Adjustments{
		Orientation: geometry.Orientation{Rotation: rotation, FlipH: p.FlipH, FlipV: p.FlipV},
		Brightness:  p.Brightness,
		Contrast:    p.Contrast,
		Gamma:       p.Gamma,
		Filter:      filter,
	}
	if err := a.Validate(); err != nil {
		return imaging.Adjustments{}, err
	}
	return a, nil
}

// SetAdjustments stores a display pipeline in the project.
func (p *Project) SetAdjustments(a imaging.Adjustments) {
	p.Rotation = a.Orientation.Rotation
	p.FlipH = a.Orientation.FlipH
	p.FlipV = a.Orientation.FlipV
	p.Brightness = a.Brightness
	p.Contrast = a.Contrast
	p.Gamma = a.Gamma
	p.Filter = string(a.Filter)
}

// Points returns the stored annotations and the number of records skipped.
func (p *Project) Points() ([]annotation.Point, int) {
	return Points(p.Annotations)
}

// SetPoints replaces the stored annotations.
func (p *Project) SetPoints(points []annotation.Point) {
	p.Annotations = Records(points)
}

// ResolveImagePath returns the image path, resolving a relative path against
// the directory of the project file.
func (p *Project) ResolveImagePath(projectPath string) string {
	if p.ImagePath == "" || filepath.IsAbs(p.ImagePath) {
		return p.ImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), p.ImagePath)
}

// PathForImage returns the default project path for an image: the image
// path with its extension replaced by .hpa.
func PathForImage(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + Extension
}

// Decode reads a project record. Absent fields keep their defaults and a
// missing project id is generated.
func Decode(r io.Reader) (*Project, error) {
	p := defaults()
	p.Version = ""
	if err := json.NewDecoder(r).Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	if p.Version == "" {
		// Records without a version predate versioning.
		p.Version = "1.0"
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Name == "" {
		p.Name = DefaultName
	}
	return p, nil
}

// Encode writes p as indented JSON, stamping the current version and time.
func Encode(w io.Writer, p *Project) error {
	out := *p
	out.Version = Version
	out.Timestamp = time.Now().Format(time.RFC3339)
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.Annotations == nil {
		out.Annotations = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(&out)
}

// Read loads a project file.
func Read(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Write saves p to path.
func Write(path string, p *Project) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	if err := Encode(f, p); err != nil {
		f.Close()
		return fmt.Errorf("failed to write project: %w", err)
	}
	return f.Close()
}
