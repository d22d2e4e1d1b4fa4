package match

import (
	"math"
	"testing"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
)

func defaultWeights() Weights {
	return DefaultPolicy().Weights
}

func TestScoreDeterministic(t *testing.T) {
	entry := library.SourceEntry{ID: "1", Title: "Berserk", Status: library.StatusReading, ChaptersRead: 100}
	candidate := catalog.Candidate{ID: 30002, Title: "Berserk", Format: catalog.FormatManga, Chapters: 364, Genres: []string{"Action", "Horror"}}

	first := Score(entry, candidate, defaultWeights())
	for i := 0; i < 10; i++ {
		again := Score(entry, candidate, defaultWeights())
		if again != first {
			t.Fatalf("Score not deterministic: %+v != %+v", again, first)
		}
	}
}

func TestScoreBreakdownSumsToValue(t *testing.T) {
	entry := library.SourceEntry{Title: "One Piece", ChaptersRead: 1000, Genres: []string{"adventure"}, Year: 1997}
	candidate := catalog.Candidate{ID: 1, Title: "One Piece", Format: catalog.FormatManga, Chapters: 1100, Genres: []string{"Adventure", "Action"}, Year: 1997}

	score := Score(entry, candidate, defaultWeights())
	sum := score.Breakdown.Title + score.Breakdown.Format + score.Breakdown.Progress + score.Breakdown.Genre + score.Breakdown.Year
	if math.Abs(sum-score.Value) > 1e-9 {
		t.Errorf("breakdown sum %v != value %v", sum, score.Value)
	}
}

func TestScoreExactTitleGetsFullTitleWeight(t *testing.T) {
	entry := library.SourceEntry{Title: "Vinland Saga"}
	candidate := catalog.Candidate{ID: 1, Title: "Vinland Saga", Format: catalog.FormatManga}

	score := Score(entry, candidate, defaultWeights())
	if score.Breakdown.Title != defaultWeights().Title {
		t.Errorf("title contribution = %v, want %v", score.Breakdown.Title, defaultWeights().Title)
	}
	if score.MatchedTitle != "Vinland Saga" {
		t.Errorf("matched title = %q", score.MatchedTitle)
	}
}

func TestScoreUsesBestAlternateTitle(t *testing.T) {
	entry := library.SourceEntry{Title: "Shingeki no Kyojin"}
	candidate := catalog.Candidate{
		ID:              1,
		Title:           "Attack on Titan",
		AlternateTitles: []string{"Shingeki no Kyojin"},
	}

	score := Score(entry, candidate, defaultWeights())
	if score.MatchedTitle != "Shingeki no Kyojin" {
		t.Errorf("matched title = %q, want alternate", score.MatchedTitle)
	}
	if score.Breakdown.Title != defaultWeights().Title {
		t.Errorf("title contribution = %v, want full weight", score.Breakdown.Title)
	}
}

func TestScoreUnrelatedTitlesScoreLow(t *testing.T) {
	entry := library.SourceEntry{Title: "Berserk"}
	candidate := catalog.Candidate{ID: 1, Title: "Yotsuba to!"}

	score := Score(entry, candidate, defaultWeights())
	if score.Breakdown.Title > defaultWeights().Title*0.3 {
		t.Errorf("unrelated titles scored %v title points", score.Breakdown.Title)
	}
}

func TestProgressPlausibility(t *testing.T) {
	tests := []struct {
		name      string
		read      int
		chapters  int
		pubStatus catalog.PublicationStatus
		want      float64
	}{
		{"unknown count", 500, 0, catalog.PubReleasing, 1},
		{"within count", 100, 364, catalog.PubReleasing, 1},
		{"exactly at count", 364, 364, catalog.PubFinished, 1},
		{"slight overshoot", 150, 100, catalog.PubFinished, 0.5},
		{"double overshoot", 200, 100, catalog.PubFinished, 0},
		{"way past", 500, 100, catalog.PubFinished, 0},
		{"unreleased with progress", 10, 0, catalog.PubNotYetReleased, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := library.SourceEntry{ChaptersRead: tt.read}
			candidate := catalog.Candidate{Chapters: tt.chapters, Status: tt.pubStatus}
			got := progressPlausibility(entry, candidate)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("progressPlausibility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatAgreement(t *testing.T) {
	tests := []struct {
		name   string
		read   int
		format catalog.Format
		want   float64
	}{
		{"serialized", 100, catalog.FormatManga, 1},
		{"manhwa", 50, catalog.FormatManhwa, 1},
		{"unknown format", 100, catalog.FormatUnknown, 0.5},
		{"one-shot single chapter", 1, catalog.FormatOneShot, 1},
		{"one-shot few chapters", 3, catalog.FormatOneShot, 0.5},
		{"one-shot many chapters", 40, catalog.FormatOneShot, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := library.SourceEntry{ChaptersRead: tt.read}
			got := formatAgreement(entry, catalog.Candidate{Format: tt.format})
			if got != tt.want {
				t.Errorf("formatAgreement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenreOverlap(t *testing.T) {
	if got := genreOverlap(nil, []string{"action"}); got != 0.5 {
		t.Errorf("missing source genres should be neutral, got %v", got)
	}
	if got := genreOverlap([]string{"Action"}, []string{"action"}); got != 1 {
		t.Errorf("case-insensitive identical sets = %v, want 1", got)
	}
	got := genreOverlap([]string{"action", "drama"}, []string{"action", "horror"})
	want := 1.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("partial overlap = %v, want %v", got, want)
	}
}

func TestYearProximity(t *testing.T) {
	tests := []struct {
		source, target int
		want           float64
	}{
		{1997, 1997, 1},
		{1997, 1998, 0.7},
		{1997, 1999, 0.4},
		{1997, 2005, 0},
		{0, 1997, 0.5},
		{1997, 0, 0.5},
	}
	for _, tt := range tests {
		if got := yearProximity(tt.source, tt.target); got != tt.want {
			t.Errorf("yearProximity(%d, %d) = %v, want %v", tt.source, tt.target, got, tt.want)
		}
	}
}

func TestDisplayRounding(t *testing.T) {
	score := MatchScore{Value: 87.4567}
	if got := score.Display(); got != 87.5 {
		t.Errorf("Display() = %v, want 87.5", got)
	}
}
