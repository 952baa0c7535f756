package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ironsheep/histopath-mcp/internal/imaging"
)

// WriteColorText writes a colour analysis as a plain-text report.
func WriteColorText(w io.Writer, meta Meta, ca *imaging.ColorAnalysis) error {
	generated := meta.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	b.WriteString("COLOR ANALYSIS REPORT - HistoPath\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Image: %d x %d px (analysed at %d x %d, %d samples)\n\n",
		ca.OriginalWidth, ca.OriginalHeight, ca.AnalysisWidth, ca.AnalysisHeight, ca.Samples)

	b.WriteString("RGB STATISTICS:\n")
	fmt.Fprintf(&b, "- Red:   mean %.2f, std %.2f\n", ca.Red.Mean, ca.Red.StdDev)
	fmt.Fprintf(&b, "- Green: mean %.2f, std %.2f\n", ca.Green.Mean, ca.Green.StdDev)
	fmt.Fprintf(&b, "- Blue:  mean %.2f, std %.2f\n\n", ca.Blue.Mean, ca.Blue.StdDev)

	b.WriteString("HSV STATISTICS:\n")
	fmt.Fprintf(&b, "- Hue:        mean %.2f°, std %.2f°\n", ca.Hue.Mean, ca.Hue.StdDev)
	fmt.Fprintf(&b, "- Saturation: mean %.2f%%, std %.2f%%\n", ca.Saturation.Mean, ca.Saturation.StdDev)
	fmt.Fprintf(&b, "- Value:      mean %.2f%%, std %.2f%%\n\n", ca.Value.Mean, ca.Value.StdDev)

	if len(ca.ExplainedVariance) > 0 {
		b.WriteString("PRINCIPAL COMPONENTS:\n")
		total := 0.0
		for i, v := range ca.ExplainedVariance {
			fmt.Fprintf(&b, "- PC%d: %.2f%%\n", i+1, v*100)
			total += v
		}
		fmt.Fprintf(&b, "- Total explained variance: %.2f%%\n\n", total*100)
	}

	b.WriteString("DOMINANT COLORS:\n")
	for i, c := range ca.Dominant {
		fmt.Fprintf(&b, "Color %d: %s R=%d, G=%d, B=%d (%.2f%%)\n", i+1, c.Hex, c.RGB.R, c.RGB.G, c.RGB.B, c.Percentage)
	}

	fmt.Fprintf(&b, "\nGenerated: %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Project: %s\n", meta.ProjectName)

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveColorText writes the colour report to path.
func SaveColorText(path string, meta Meta, ca *imaging.ColorAnalysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create color report: %w", err)
	}
	if err := WriteColorText(f, meta, ca); err != nil {
		f.Close()
		return fmt.Errorf("failed to write color report: %w", err)
	}
	return f.Close()
}
