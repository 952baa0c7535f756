package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ironsheep/histopath-mcp/internal/analysis"
)

// WriteCSV writes a "Metric,Value" sheet. Sections after the first are
// preceded by a blank line and a title row.
func WriteCSV(w io.Writer, s analysis.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	for i, sec := range Sections(s) {
		if i > 0 {
			if err := cw.Write(nil); err != nil {
				return err
			}
			if err := cw.Write([]string{sec.Title, ""}); err != nil {
				return err
			}
		}
		for _, r := range sec.Rows {
			if err := cw.Write([]string{r.Label, r.Value}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the sheet to path.
func SaveCSV(path string, s analysis.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV: %w", err)
	}
	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return f.Close()
}

// Text renders the summary as tab-separated lines for pasting elsewhere.
func Text(s analysis.Summary) string {
	var b strings.Builder
	b.WriteString("Metric\tValue\n")
	for _, sec := range Sections(s) {
		for _, r := range sec.Rows {
			fmt.Fprintf(&b, "%s\t%s\n", r.Label, r.Value)
		}
	}
	return b.String()
}
