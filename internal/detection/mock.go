package detection

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
)

// countRange is a half-open [Min, Max) range of point counts.
type countRange struct {
	Min, Max int
}

func (r countRange) draw(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min)
}

type mockModel struct {
	positive, negative, other countRange
}

var mockModels = map[string]mockModel{
	"ki67": {
		positive: countRange{80, 200},
		negative: countRange{200, 400},
		other:    countRange{3, 8},
	},
	"mitosis": {
		positive: countRange{30, 80},
		negative: countRange{60, 150},
		other:    countRange{15, 40},
	},
}

// Points are kept within this fraction of each edge.
const mockMargin = 0.05

// MockDetector generates random detections. It is safe for concurrent use.
type MockDetector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockDetector creates a mock detector. A zero seed seeds from the clock.
func NewMockDetector(seed int64) *MockDetector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockDetector{rng: rand.New(rand.NewSource(seed))}
}

// Models lists the supported model kinds in sorted order.
func (d *MockDetector) Models() []string {
	names := make([]string, 0, len(mockModels))
	for name := range mockModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns random positive, negative and other points, in that order.
// Coordinates are whole pixels in [5%, 95%) of each dimension.
func (d *MockDetector) Detect(ctx context.Context, req Request) ([]Detection, error) {
	model, ok := mockModels[req.Model]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, req.Model)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("detection: invalid image size %dx%d", req.Width, req.Height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	x0, x1 := marginRange(req.Width)
	y0, y1 := marginRange(req.Height)

	var out []Detection
	for _, group := range []struct {
		class annotation.MarkerClass
		count countRange
	}{
		{annotation.Positive, model.positive},
		{annotation.Negative, model.negative},
		{annotation.Other, model.other},
	} {
		n := group.count.draw(d.rng)
		for i := 0; i < n; i++ {
			out = append(out, Detection{
				X:     float64(x0 + d.rng.Intn(x1-x0)),
				Y:     float64(y0 + d.rng.Intn(y1-y0)),
				Class: group.class,
			})
		}
	}
	return out, nil
}

// marginRange returns the half-open pixel range [lo, hi) inside the margins,
// always at least one pixel wide.
func marginRange(size int) (int, int) {
	lo := int(float64(size) * mockMargin)
	hi := int(float64(size) * (1 - mockMargin))
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}
