package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxRecent is the number of entries kept in the recent-files list.
const MaxRecent = 10

// FileType classifies a recent entry.
type FileType string

const (
	TypeImage      FileType = "image"
	TypeProject    FileType = "project"
	TypeAnnotation FileType = "annotation"
)

// TypeOf derives the file type from the extension.
func TypeOf(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case Extension:
		return TypeProject
	case ".json":
		return TypeAnnotation
	default:
		return TypeImage
	}
}

// RecentEntry is one line of the recent-files list.
type RecentEntry struct {
	Path      string   `json:"path"`
	Type      FileType `json:"type"`
	Timestamp string   `json:"timestamp"`
}

// RecentList is the most-recently-used file list, newest first. It is saved
// after every change when it has a backing file.
type RecentList struct {
	path    string
	entries []RecentEntry
	now     func() time.Time
}

// NewRecentList returns an empty list persisted at path. An empty path keeps
// the list in memory only.
func NewRecentList(path string) *RecentList {
	return &RecentList{path: path, entries: []RecentEntry{}, now: time.Now}
}

// LoadRecent reads the list at path. A missing file is an empty list. A
// corrupt file also yields an empty, usable list along with the error.
func LoadRecent(path string) (*RecentList, error) {
	l := NewRecentList(path)
	if path == "" {
		return l, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return l, fmt.Errorf("failed to read recent files: %w", err)
	}
	var entries []RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return l, fmt.Errorf("failed to parse recent files: %w", err)
	}
	for _, e := range entries {
		if e.Path == "" || l.index(e.Path) >= 0 {
			continue
		}
		if e.Type == "" {
			e.Type = TypeOf(e.Path)
		}
		l.entries = append(l.entries, e)
		if len(l.entries) == MaxRecent {
			break
		}
	}
	return l, nil
}

func (l *RecentList) index(path string) int {
	for i, e := range l.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}

// Add moves path to the front of the list and saves it.
func (l *RecentList) Add(path string) error {
	if i := l.index(path); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
	entry := RecentEntry{
		Path:      path,
		Type:      TypeOf(path),
		Timestamp: l.now().Format(time.RFC3339),
	}
	l.entries = append([]RecentEntry{entry}, l.entries...)
	if len(l.entries) > MaxRecent {
		l.entries = l.entries[:MaxRecent]
	}
	return l.save()
}

// Remove drops path from the list, for files that failed to open.
func (l *RecentList) Remove(path string) error {
	i := l.index(path)
	if i < 0 {
		return nil
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return l.save()
}

// Entries returns a copy of the list, newest first.
func (l *RecentList) Entries() []RecentEntry {
	out := make([]RecentEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *RecentList) Len() int {
	return len(l.entries)
}

func (l *RecentList) save() error {
	if l.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create recent files directory: %w", err)
	}
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recent files: %w", err)
	}
	return nil
}
