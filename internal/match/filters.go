package match

import (
	"strings"

	"mangasync/internal/catalog"
)

// Filters is a view-only predicate over match results: confidence range,
// allowed formats, genres (OR semantics), and publication statuses. Empty
// sets allow everything. Filtering never mutates or reorders results.
type Filters struct {
	MinConfidence float64
	MaxConfidence float64
	Formats       []catalog.Format
	Genres        []string
	Statuses      []catalog.PublicationStatus
}

// NewFilters returns the identity filter: full confidence range, no set
// restrictions.
func NewFilters() Filters {
	return Filters{MinConfidence: 0, MaxConfidence: 100}
}

// Empty reports whether the filter admits every result.
func (f Filters) Empty() bool {
	return f.MinConfidence <= 0 && f.MaxConfidence >= 100 &&
		len(f.Formats) == 0 && len(f.Genres) == 0 && len(f.Statuses) == 0
}

// Apply returns the order-preserving subset of results admitted by the
// filter. Results without a selected candidate (unmatched, skipped) pass
// only the identity filter.
func Apply(results []Result, f Filters) []Result {
	if f.Empty() {
		out := make([]Result, len(results))
		copy(out, results)
		return out
	}
	out := make([]Result, 0, len(results))
	for _, result := range results {
		if f.admits(result) {
			out = append(out, result)
		}
	}
	return out
}

func (f Filters) admits(result Result) bool {
	selected, ok := result.Selected()
	if !ok {
		return false
	}
	confidence := selected.Score.Value
	if confidence < f.MinConfidence || confidence > f.MaxConfidence {
		return false
	}
	if len(f.Formats) > 0 && !containsFormat(f.Formats, selected.Candidate.Format) {
		return false
	}
	if len(f.Genres) > 0 && !genresIntersect(f.Genres, selected.Candidate.Genres) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, selected.Candidate.Status) {
		return false
	}
	return true
}

func containsFormat(set []catalog.Format, format catalog.Format) bool {
	for _, f := range set {
		if f == format {
			return true
		}
	}
	return false
}

func containsStatus(set []catalog.PublicationStatus, status catalog.PublicationStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func genresIntersect(filter, genres []string) bool {
	for _, want := range filter {
		want = strings.ToLower(strings.TrimSpace(want))
		for _, have := range genres {
			if want == strings.ToLower(strings.TrimSpace(have)) {
				return true
			}
		}
	}
	return false
}
