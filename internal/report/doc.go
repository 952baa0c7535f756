// Package report renders a metrics summary for people: a two-column CSV
// sheet, tab-separated text for pasting, a PDF report, and a plain-text
// colour analysis report.
package report
