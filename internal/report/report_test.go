package report

import (
	"bytes"
	"encoding/csv"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
)

func sampleSummary() analysis.Summary {
	return analysis.Summarize(analysis.Input{
		Positive:           []geometry.Point2D{{X: 0, Y: 0}, {X: 3, Y: 4}},
		Negative:           []geometry.Point2D{{X: 100, Y: 100}},
		Width:              1000,
		Height:             1000,
		Scale:              1,
		ClusterThresholdUM: 10,
	})
}

func solid() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 250, G: 5, B: 5, A: 255}}, image.Point{}, draw.Src)
	return img
}

func TestSections(t *testing.T) {
	secs := Sections(sampleSummary())
	require.Len(t, secs, 4)
	assert.Equal(t, "Basic Metrics", secs[0].Title)

	values := map[string]string{}
	for _, sec := range secs {
		for _, r := range sec.Rows {
			values[r.Label] = r.Value
		}
	}
	assert.Equal(t, "2", values["Positive nuclei"])
	assert.Equal(t, "66.67%", values["Proliferation index"])
	assert.Equal(t, "1.00 mm²", values["Analysed area"])
	assert.Equal(t, "1000 × 1000 px", values["Resolution"])
	assert.Equal(t, "5.00 µm", values["Min Distance"])
	assert.Equal(t, "1", values["Num Clusters"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSummary()))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Metric,Value", lines[0])
	assert.Contains(t, buf.String(), "\n\nDistribution Metrics,\n")
	assert.Contains(t, buf.String(), "\n\nClustering Metrics,\n")

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	found := false
	for _, rec := range records {
		if rec[0] == "Total nuclei" {
			found = true
			assert.Equal(t, "3", rec[1])
		}
	}
	assert.True(t, found)
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, SaveCSV(path, sampleSummary()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Metric,Value\n"))

	assert.Error(t, SaveCSV(filepath.Join(t.TempDir(), "missing", "m.csv"), sampleSummary()))
}

func TestText(t *testing.T) {
	text := Text(sampleSummary())
	assert.True(t, strings.HasPrefix(text, "Metric\tValue\n"))
	assert.Contains(t, text, "Total nuclei\t3\n")
	assert.NotContains(t, text, "Distribution Metrics")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	meta := Meta{
		ProjectName:        "case-7",
		ImagePath:          "/slides/case-7.tif",
		Generated:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ClusterThresholdUM: 50,
		Style:              imaging.DefaultMarkerStyle(),
	}
	require.NoError(t, WritePDF(&buf, meta, sampleSummary()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestWritePDF_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Meta{}, analysis.Summarize(analysis.Input{Scale: 0.25})))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestSavePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, SavePDF(path, Meta{ProjectName: "x"}, sampleSummary()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteColorText(t *testing.T) {
	img := imaging.Apply(solid(), imaging.DefaultAdjustments())
	ca := imaging.AnalyzeColor(img)

	var buf bytes.Buffer
	require.NoError(t, WriteColorText(&buf, Meta{ProjectName: "case-7"}, ca))
	out := buf.String()
	assert.Contains(t, out, "RGB STATISTICS:")
	assert.Contains(t, out, "HSV STATISTICS:")
	assert.Contains(t, out, "Color 1: #F00000")
	assert.Contains(t, out, "Project: case-7")

	path := filepath.Join(t.TempDir(), "color.txt")
	require.NoError(t, SaveColorText(path, Meta{}, ca))
}
