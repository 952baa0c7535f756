package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
)

// Meta identifies what a report is about.
type Meta struct {
	ProjectName string
	ImagePath   string
	Generated   time.Time
	// ClusterThresholdUM is printed next to the clustering section.
	ClusterThresholdUM float64
	// Style supplies the class colours for the distribution chart.
	Style imaging.MarkerStyle
}

const (
	pageMargin  = 15.0
	labelWidth  = 80.0
	valueWidth  = 90.0
	rowHeight   = 6.0
	chartHeight = 50.0
	barWidth    = 30.0
)

// WritePDF renders an A4 report: header, class distribution chart and one
// table per metric section.
func WritePDF(w io.Writer, meta Meta, s analysis.Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("HistoPath analysis report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "HistoPath Analysis Report", "", 1, "L", false, 0, "")

	generated := meta.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		"Project: " + meta.ProjectName,
		"Image: " + meta.ImagePath,
		"Generated: " + generated.Format("2006-01-02 15:04:05"),
	} {
		pdf.CellFormat(0, rowHeight, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	drawDistribution(pdf, meta.Style, s.Basic)

	for _, sec := range Sections(s) {
		title := sec.Title
		if title == "Clustering Metrics" {
			title = fmt.Sprintf("%s (threshold %g µm)", title, meta.ClusterThresholdUM)
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetFillColor(240, 240, 240)
		for i, r := range sec.Rows {
			fill := i%2 == 0
			pdf.CellFormat(labelWidth, rowHeight, tr(r.Label), "1", 0, "L", fill, 0, "")
			pdf.CellFormat(valueWidth, rowHeight, tr(r.Value), "1", 1, "R", fill, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build PDF: %w", err)
	}
	return pdf.Output(w)
}

// drawDistribution draws one bar per class, scaled to the largest count.
func drawDistribution(pdf *gofpdf.Fpdf, style imaging.MarkerStyle, b analysis.Basic) {
	counts := [...]struct {
		class annotation.MarkerClass
		label string
		n     int
	}{
		{annotation.Positive, "Positive", b.PositiveCount},
		{annotation.Negative, "Negative", b.NegativeCount},
		{annotation.Other, "Other", b.OtherCount},
	}
	maxCount := 0
	for _, c := range counts {
		if c.n > maxCount {
			maxCount = c.n
		}
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Nuclei Distribution", "", 1, "L", false, 0, "")
	_, top := pdf.GetXY()
	baseline := top + chartHeight

	pdf.SetFont("Helvetica", "", 9)
	for i, c := range counts {
		x := pageMargin + 10 + float64(i)*(barWidth+20)
		h := 0.0
		if maxCount > 0 {
			h = chartHeight * float64(c.n) / float64(maxCount)
		}
		col := style.Colors[c.class]
		pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		if h > 0 {
			pdf.Rect(x, baseline-h, barWidth, h, "F")
		}
		pdf.SetXY(x, baseline+1)
		pdf.CellFormat(barWidth, 5, fmt.Sprintf("%s (%d)", c.label, c.n), "", 0, "C", false, 0, "")
	}
	pdf.Line(pageMargin, baseline, pageMargin+3*(barWidth+20)+10, baseline)
	pdf.SetXY(pageMargin, baseline+8)
}

// SavePDF writes the report to path.
func SavePDF(path string, meta Meta, s analysis.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDF: %w", err)
	}
	if err := WritePDF(f, meta, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
