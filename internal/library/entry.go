package library

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// ReadingStatus enumerates the user's reading state for a source entry.
type ReadingStatus string

const (
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
	StatusOnHold     ReadingStatus = "on_hold"
	StatusDropped    ReadingStatus = "dropped"
	StatusPlanToRead ReadingStatus = "plan_to_read"
)

// Valid reports whether the status is one of the known reading states.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusReading, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToRead:
		return true
	}
	return false
}

// SourceEntry is one row of the exported source library. Entries are
// immutable once imported; the matching and sync engines only read them.
type SourceEntry struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Status       ReadingStatus `json:"status"`
	ChaptersRead int           `json:"chapters_read"`
	VolumesRead  int           `json:"volumes_read"`
	Score        float64       `json:"score"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Optional metadata some exports carry; used for match corroboration
	// when present, neutral when absent.
	Genres []string `json:"genres,omitempty"`
	Year   int      `json:"year,omitempty"`
}

// Validate reports the first structural problem with the entry, if any.
func (e SourceEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("entry %q: title must not be empty", e.ID)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("entry %q: unknown reading status %q", e.ID, e.Status)
	}
	if e.ChaptersRead < 0 || e.VolumesRead < 0 {
		return fmt.Errorf("entry %q: progress must not be negative", e.ID)
	}
	if e.Score < 0 || e.Score > 10 {
		return fmt.Errorf("entry %q: score must be between 0 and 10", e.ID)
	}
	return nil
}

// LoadEntries reads already-parsed source entries from a JSON export file.
// Entries missing an ID are assigned a positional one so downstream stages
// can always address them.
func LoadEntries(path string) ([]SourceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	var entries []SourceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	for i := range entries {
		if strings.TrimSpace(entries[i].ID) == "" {
			entries[i].ID = fmt.Sprintf("entry-%d", i+1)
		}
		if err := entries[i].Validate(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
