package detection

import (
	"context"
	"errors"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
)

// ErrUnknownModel is returned for a model kind the detector does not provide.
var ErrUnknownModel = errors.New("detection: unknown model")

// Request describes one detection run.
type Request struct {
	// Model selects the detector model, for example "ki67".
	Model  string
	Width  int
	Height int
}

// Detection is a single proposed point in source-image pixels.
type Detection struct {
	X     float64                `json:"x"`
	Y     float64                `json:"y"`
	Class annotation.MarkerClass `json:"class"`
}

// Detector proposes annotation points for an image.
type Detector interface {
	Detect(ctx context.Context, req Request) ([]Detection, error)
	Models() []string
}
