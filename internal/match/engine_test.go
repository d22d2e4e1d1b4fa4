package match

import (
	"context"
	"sync"
	"testing"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
	"mangasync/internal/services"
)

// flakySearcher fails lookups for specific titles and answers the rest.
type flakySearcher struct {
	mu      sync.Mutex
	fail    map[string]bool
	results map[string][]catalog.Candidate
}

func (s *flakySearcher) Search(_ context.Context, title string) ([]catalog.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[title] {
		return nil, services.Wrap(services.ErrLookup, "catalog", "search", "unreachable", nil)
	}
	return s.results[title], nil
}

func TestEngineRunPreservesSourceOrder(t *testing.T) {
	searcher := &flakySearcher{results: map[string][]catalog.Candidate{
		"Berserk": {{ID: 1, Title: "Berserk", Chapters: 364, Format: catalog.FormatManga}},
		"berserk": {{ID: 1, Title: "Berserk", Chapters: 364, Format: catalog.FormatManga}},
		"Monster": {{ID: 2, Title: "Monster", Chapters: 162, Format: catalog.FormatManga}},
		"monster": {{ID: 2, Title: "Monster", Chapters: 162, Format: catalog.FormatManga}},
	}}
	engine := NewEngine(searcher, DefaultPolicy(), nil)

	entries := []library.SourceEntry{
		{ID: "e1", Title: "Berserk", Status: library.StatusReading, ChaptersRead: 100},
		{ID: "e2", Title: "Monster", Status: library.StatusCompleted, ChaptersRead: 162},
	}
	results, err := engine.Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Entry.ID != "e1" || results[1].Entry.ID != "e2" {
		t.Errorf("results out of source order: %s, %s", results[0].Entry.ID, results[1].Entry.ID)
	}
	for i, want := range []int64{1, 2} {
		if results[i].SelectedID != want {
			t.Errorf("result %d selected %d, want %d", i, results[i].SelectedID, want)
		}
	}
}

func TestEngineLookupFailureDoesNotAbortRun(t *testing.T) {
	searcher := &flakySearcher{
		fail: map[string]bool{"Cursed Title": true, "cursed title": true},
		results: map[string][]catalog.Candidate{
			"Berserk": {{ID: 1, Title: "Berserk", Chapters: 364, Format: catalog.FormatManga}},
			"berserk": {{ID: 1, Title: "Berserk", Chapters: 364, Format: catalog.FormatManga}},
		},
	}
	engine := NewEngine(searcher, DefaultPolicy(), nil)

	entries := []library.SourceEntry{
		{ID: "e1", Title: "Cursed Title", Status: library.StatusReading},
		{ID: "e2", Title: "Berserk", Status: library.StatusReading, ChaptersRead: 100},
	}
	results, err := engine.Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("Run should tolerate per-entry lookup failures: %v", err)
	}
	if results[0].Status != StatusUnmatched {
		t.Errorf("failed lookup entry status = %v, want unmatched", results[0].Status)
	}
	if results[1].Status != StatusMatched {
		t.Errorf("healthy entry status = %v, want matched", results[1].Status)
	}
}

func TestEngineRunCancelled(t *testing.T) {
	searcher := &flakySearcher{results: map[string][]catalog.Candidate{}}
	engine := NewEngine(searcher, DefaultPolicy(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := make([]library.SourceEntry, 50)
	for i := range entries {
		entries[i] = library.SourceEntry{ID: "e", Title: "t", Status: library.StatusReading}
	}
	results, err := engine.Run(ctx, entries)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(results) != len(entries) {
		t.Fatalf("result slice must stay aligned with input: %d != %d", len(results), len(entries))
	}
	for i, r := range results {
		if r.Status == "" {
			t.Errorf("result %d has empty status", i)
		}
	}
}
