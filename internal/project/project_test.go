package project

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
)

func samplePoints() []annotation.Point {
	return []annotation.Point{
		{X: 1, Y: 2, Class: annotation.Positive},
		{X: 3.5, Y: 4.25, Class: annotation.Other},
		{X: 5, Y: 6, Class: annotation.Negative},
		{X: 7, Y: 8, Class: annotation.Positive},
	}
}

func TestRecords_LabelOrder(t *testing.T) {
	records := Records(samplePoints())
	require.Len(t, records, 4)

	var labels []int
	for _, r := range records {
		labels = append(labels, r.LabelID)
	}
	assert.Equal(t, []int{1, 1, 2, 3}, labels)
	assert.Equal(t, 1.0, records[0].X, "store order kept within a class")
	assert.Equal(t, 7.0, records[1].X)
}

func TestAnnotations_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.json")
	require.NoError(t, WriteAnnotations(path, samplePoints()))

	points, skipped, err := ReadAnnotations(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, points, 4)

	byClass := map[annotation.MarkerClass]int{}
	for _, p := range points {
		byClass[p.Class]++
	}
	assert.Equal(t, 2, byClass[annotation.Positive])
	assert.Equal(t, 1, byClass[annotation.Other])
	assert.Equal(t, 1, byClass[annotation.Negative])

	// Fractional coordinates survive.
	assert.Contains(t, points, annotation.Point{X: 3.5, Y: 4.25, Class: annotation.Other})
}

func TestDecodeAnnotations_SkipsBadRecords(t *testing.T) {
	input := `[
		{"x": 10, "y": 20, "label_id": 1},
		{"x": 10, "label_id": 2},
		{"x": 1, "y": 1, "label_id": 7},
		{"x": null, "y": 1, "label_id": 3},
		{"x": 1, "y": 1, "label_id": 1.5},
		"garbage",
		{"x": 30, "y": 40, "label_id": 3}
	]`
	points, skipped, err := DecodeAnnotations(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 5, skipped)
	assert.Equal(t, []annotation.Point{
		{X: 10, Y: 20, Class: annotation.Positive},
		{X: 30, Y: 40, Class: annotation.Other},
	}, points)
}

func TestDecodeAnnotations_Errors(t *testing.T) {
	_, _, err := DecodeAnnotations(strings.NewReader(`{"x": 1}`))
	assert.ErrorIs(t, err, ErrNotAList)

	_, _, err = DecodeAnnotations(strings.NewReader(`not json`))
	assert.Error(t, err)

	_, _, err = ReadAnnotations(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	p := New("/slides/case-12.tif")
	assert.Equal(t, Version, p.Version)
	assert.Equal(t, "case-12", p.Name)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, 0.25, p.CalibrationScale)
	assert.Equal(t, 8, p.MarkerSize)

	adj, err := p.Adjustments()
	require.NoError(t, err)
	assert.True(t, adj.IsNeutral())

	assert.Equal(t, DefaultName, New("").Name)
}

func TestProject_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.hpa")

	p := New(filepath.Join(dir, "case.png"))
	p.CalibrationScale = 0.5
	p.MarkerSize = 12
	adj := imaging.DefaultAdjustments()
	adj.Orientation.Rotation = 270
	adj.Orientation.FlipV = true
	adj.Gamma = 1.5
	adj.Filter = imaging.FilterSharpen
	p.SetAdjustments(adj)
	p.SetPoints(samplePoints())

	require.NoError(t, Write(path, p))

	loaded, err := Read(path)
	require.NoError(t, err)
	assert.False(t, loaded.VersionMismatch())
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, p.Name, loaded.Name)
	assert.Equal(t, 0.5, loaded.CalibrationScale)
	assert.Equal(t, 12, loaded.MarkerSize)

	_, err = time.Parse(time.RFC3339, loaded.Timestamp)
	assert.NoError(t, err)

	gotAdj, err := loaded.Adjustments()
	require.NoError(t, err)
	assert.Equal(t, adj, gotAdj)

	points, skipped := loaded.Points()
	assert.Zero(t, skipped)
	assert.Len(t, points, 4)
}

func TestDecode_LegacyRecord(t *testing.T) {
	// Written by an older version: no id, naive timestamp, integer
	// coordinates, cumulative rotation, several fields absent.
	input := `{
		"version": "1.2",
		"image_path": "slide.tif",
		"rotation": -90,
		"annotations": [{"x": 5, "y": 6, "label_id": 2}],
		"timestamp": "2024-03-01T10:20:30.123456"
	}`
	p, err := Decode(strings.NewReader(input))
	require.NoError(t, err)

	assert.True(t, p.VersionMismatch())
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, 0.25, p.CalibrationScale)
	assert.Equal(t, 1.0, p.Brightness)
	assert.Equal(t, 8, p.MarkerSize)

	adj, err := p.Adjustments()
	require.NoError(t, err)
	assert.Equal(t, 270, adj.Orientation.Rotation)

	points, _ := p.Points()
	assert.Equal(t, []annotation.Point{{X: 5, Y: 6, Class: annotation.Negative}}, points)

	assert.Equal(t, filepath.Join("/data/cases", "slide.tif"), p.ResolveImagePath("/data/cases/a.hpa"))
}

func TestDecode_MissingVersion(t *testing.T) {
	p, err := Decode(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "1.0", p.Version)
	assert.True(t, p.VersionMismatch())
}

func TestProject_InvalidAdjustments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Project)
	}{
		{"rotation", func(p *Project) { p.Rotation = 45 }},
		{"brightness", func(p *Project) { p.Brightness = 5 }},
		{"filter", func(p *Project) { p.Filter = "EMBOSS" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("x.png")
			tt.mutate(p)
			_, err := p.Adjustments()
			assert.ErrorIs(t, err, imaging.ErrInvalidAdjustment)
		})
	}
}

func TestEncode_EmptyAnnotations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, New("a.png")))
	assert.Contains(t, buf.String(), `"annotations": []`)
	assert.Contains(t, buf.String(), `"version": "1.3"`)
}

func TestPathForImage(t *testing.T) {
	assert.Equal(t, "/slides/case.hpa", PathForImage("/slides/case.tiff"))
	assert.Equal(t, "noext.hpa", PathForImage("noext"))
}

func TestResolveImagePath_Absolute(t *testing.T) {
	p := New("/abs/img.png")
	assert.Equal(t, "/abs/img.png", p.ResolveImagePath("/elsewhere/p.hpa"))
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.hpa"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
