package match

import (
	"context"
	"log/slog"
	"sync"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
	"mangasync/internal/logging"
	"mangasync/internal/services"
)

// Engine drives candidate fetching and resolution across a bounded worker
// pool. Scoring and resolution are pure per entry; the only shared state is
// the fetcher's memo cache. Results keep source order regardless of worker
// completion order.
type Engine struct {
	fetcher *Fetcher
	policy  Policy
	logger  *slog.Logger
}

// NewEngine constructs a match engine over the given searcher.
func NewEngine(searcher catalog.Searcher, policy Policy, logger *slog.Logger) *Engine {
	policy = policy.normalized()
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		fetcher: NewFetcher(searcher, policy.MaxCandidates),
		policy:  policy,
		logger:  logger,
	}
}

// Run matches every entry against the catalog. Lookup failures degrade the
// affected entry to zero candidates and never abort the run; cancellation
// stops dispatching new entries and returns the context error alongside the
// results produced so far (unprocessed slots are unmatched).
func (e *Engine) Run(ctx context.Context, entries []library.SourceEntry) ([]Result, error) {
	results := make([]Result, len(entries))
	jobs := make(chan int)

	workers := e.policy.Workers
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = e.matchEntry(ctx, entries[idx])
			}
		}()
	}

	var runErr error
dispatch:
	for idx := range entries {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	// Entries never dispatched resolve as unmatched with no candidates so
	// the result slice stays aligned with the input.
	for idx := range results {
		if results[idx].Status == "" {
			results[idx] = Result{Entry: entries[idx], Status: StatusUnmatched, Weights: e.policy.Weights}
		}
	}
	return results, runErr
}

func (e *Engine) matchEntry(ctx context.Context, entry library.SourceEntry) Result {
	entryCtx := services.WithEntry(ctx, entry.ID)
	logger := logging.WithContext(entryCtx, e.logger)

	candidates, err := e.fetcher.FetchCandidates(entryCtx, entry)
	if err != nil {
		if services.IsCancellation(err) {
			return Result{Entry: entry, Status: StatusUnmatched, Weights: e.policy.Weights}
		}
		// Lookup failure is non-fatal: resolve with zero candidates.
		logger.Warn("candidate lookup failed, treating as no candidates",
			slog.String("title", entry.Title),
			slog.String("error", err.Error()),
		)
		candidates = nil
	}

	result := Resolve(entry, candidates, e.policy)
	if selected, ok := result.Selected(); ok {
		logger.Debug("entry resolved",
			slog.String("status", string(result.Status)),
			slog.Int64(logging.FieldTargetID, selected.Candidate.ID),
			slog.Float64("confidence", selected.Score.Display()),
		)
	} else {
		logger.Debug("entry resolved", slog.String("status", string(result.Status)))
	}
	return result
}
