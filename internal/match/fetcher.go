package match

import (
	"context"
	"sync"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
	"mangasync/internal/services"
	"mangasync/internal/textutil"
)

// Fetcher retrieves a bounded set of catalog candidates per source entry.
// Lookups for the raw and normalized titles are merged and deduplicated by
// target ID. Results are memoized per run keyed on the normalized title so
// re-imports of the same series do not repeat network calls.
type Fetcher struct {
	searcher catalog.Searcher
	limit    int

	mu   sync.Mutex
	memo map[string][]catalog.Candidate
}

// NewFetcher creates a fetcher capping candidate lists at limit.
func NewFetcher(searcher catalog.Searcher, limit int) *Fetcher {
	if limit <= 0 {
		limit = DefaultPolicy().MaxCandidates
	}
	return &Fetcher{
		searcher: searcher,
		limit:    limit,
		memo:     make(map[string][]catalog.Candidate),
	}
}

// FetchCandidates returns candidates for the entry's title. An error is
// returned only when every query fails; the caller treats it as an empty
// candidate set rather than aborting the run.
func (f *Fetcher) FetchCandidates(ctx context.Context, entry library.SourceEntry) ([]catalog.Candidate, error) {
	normalized := textutil.NormalizeTitle(entry.Title)

	f.mu.Lock()
	if cached, ok := f.memo[normalized]; ok {
		f.mu.Unlock()
		return cached, nil
	}
	f.mu.Unlock()

	queries := []string{entry.Title}
	if normalized != "" && normalized != entry.Title {
		queries = append(queries, normalized)
	}

	seen := make(map[int64]struct{})
	merged := make([]catalog.Candidate, 0, f.limit)
	var lastErr error
	succeeded := false

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrCancelled, "fetcher", "search", "", err)
		}
		results, err := f.searcher.Search(ctx, query)
		if err != nil {
			if services.IsCancellation(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		succeeded = true
		for _, candidate := range results {
			if _, ok := seen[candidate.ID]; ok {
				continue
			}
			seen[candidate.ID] = struct{}{}
			merged = append(merged, candidate)
		}
	}

	if !succeeded {
		if lastErr == nil {
			lastErr = services.Wrap(services.ErrLookup, "fetcher", "search", "no queries issued", nil)
		}
		return nil, lastErr
	}

	if len(merged) > f.limit {
		merged = merged[:f.limit]
	}

	f.mu.Lock()
	f.memo[normalized] = merged
	f.mu.Unlock()

	return merged, nil
}
