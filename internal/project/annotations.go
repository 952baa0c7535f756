package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
)

// ErrNotAList is returned when an annotation file is valid JSON but not an array.
var ErrNotAList = errors.New("project: annotation file must contain a list")

// Record is one entry of an annotation file.
type Record struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	LabelID int     `json:"label_id"`

	// incomplete marks a decoded record whose coordinates or label were
	// absent or not numeric.
	incomplete bool
}

type rawRecord struct {
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	LabelID *float64 `json:"label_id"`
}

// UnmarshalJSON accepts records with missing or null fields and flags them
// instead of failing the whole file.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		// A non-object entry is skipped like any other unusable record.
		*r = Record{incomplete: true}
		return nil
	}
	*r = Record{}
	if raw.X == nil || raw.Y == nil || raw.LabelID == nil || *raw.LabelID != math.Trunc(*raw.LabelID) {
		r.incomplete = true
		return nil
	}
	r.X, r.Y, r.LabelID = *raw.X, *raw.Y, int(*raw.LabelID)
	return nil
}

// Records converts points to file records ordered by label id. Within a
// class the store order is kept.
func Records(points []annotation.Point) []Record {
	out := make([]Record, 0, len(points))
	for _, p := range points {
		if !p.Class.Valid() {
			continue
		}
		out = append(out, Record{X: p.X, Y: p.Y, LabelID: p.Class.LabelID()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LabelID < out[j].LabelID })
	return out
}

// Points converts records back to points (with zero IDs). The second result
// is the number of records skipped.
func Points(records []Record) ([]annotation.Point, int) {
	points := make([]annotation.Point, 0, len(records))
	skipped := 0
	for _, r := range records {
		if r.incomplete {
			skipped++
			continue
		}
		class, err := annotation.ClassFromLabelID(r.LabelID)
		if err != nil {
			skipped++
			continue
		}
		points = append(points, annotation.Point{X: r.X, Y: r.Y, Class: class})
	}
	return points, skipped
}

// DecodeAnnotations reads an annotation list from r.
func DecodeAnnotations(r io.Reader) ([]annotation.Point, int, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("failed to parse annotation file: %w", err)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, ErrNotAList
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to parse annotation file: %w", err)
	}
	points, skipped := Points(records)
	return points, skipped, nil
}

// EncodeAnnotations writes points as an indented annotation list.
func EncodeAnnotations(w io.Writer, points []annotation.Point) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(Records(points))
}

// ReadAnnotations loads an annotation file.
func ReadAnnotations(path string) ([]annotation.Point, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer f.Close()
	return DecodeAnnotations(f)
}

// WriteAnnotations saves points to path, replacing any existing file.
func WriteAnnotations(path string, points []annotation.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create annotation file: %w", err)
	}
	if err := EncodeAnnotations(f, points); err != nil {
		f.Close()
		return fmt.Errorf("failed to write annotation file: %w", err)
	}
	return f.Close()
}
