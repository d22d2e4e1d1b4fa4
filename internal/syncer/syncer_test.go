package syncer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mangasync/internal/catalog"
	"mangasync/internal/library"
	"mangasync/internal/logging"
	"mangasync/internal/match"
	"mangasync/internal/services"
	"mangasync/internal/stats"
	"mangasync/internal/testsupport"
)

type fakeUpdater struct {
	mu        sync.Mutex
	calls     map[int64]int
	failWith  map[int64]error
	failTimes map[int64]int
	onCall    func(targetID int64)
}

func newFakeUpdater() *fakeUpdater {
	return &fakeUpdater{
		calls:     make(map[int64]int),
		failWith:  make(map[int64]error),
		failTimes: make(map[int64]int),
	}
}

func (f *fakeUpdater) UpdateEntry(ctx context.Context, targetID int64, update catalog.EntryUpdate) error {
	f.mu.Lock()
	f.calls[targetID]++
	count := f.calls[targetID]
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(targetID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.failWith[targetID]; ok {
		return err
	}
	if remaining, ok := f.failTimes[targetID]; ok && count <= remaining {
		return services.Wrap(services.ErrTransient, "catalog", "update entry", "503 service unavailable", nil)
	}
	return nil
}

func (f *fakeUpdater) callCount(targetID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[targetID]
}

func eligibleResult(entryID string, targetID int64) match.Result {
	return match.Result{
		Entry: library.SourceEntry{
			ID:           entryID,
			Title:        "Berserk",
			Status:       library.StatusReading,
			ChaptersRead: 120,
		},
		Candidates: []match.ScoredCandidate{
			{Candidate: catalog.Candidate{ID: targetID, Title: "Berserk"}},
		},
		SelectedID: targetID,
		Status:     match.StatusMatched,
	}
}

func fastOptions() Options {
	return Options{BatchSize: 10, MaxAttempts: 3}
}

func TestRunSyncsAllAndCountsPermanentFailure(t *testing.T) {
	updater := newFakeUpdater()
	updater.failWith[103] = services.Wrap(services.ErrValidation, "catalog", "update entry", "invalid progress", nil)

	results := []match.Result{
		eligibleResult("entry-1", 101),
		eligibleResult("entry-2", 102),
		eligibleResult("entry-3", 103),
		eligibleResult("entry-4", 104),
		eligibleResult("entry-5", 105),
	}
	engine := NewEngine(updater, fastOptions(), logging.NewNop())
	outcome := engine.Run(context.Background(), results)

	if outcome.Synced != 4 {
		t.Errorf("Synced = %d, want 4", outcome.Synced)
	}
	if outcome.Failed != 1 {
		t.Errorf("Failed = %d, want 1", outcome.Failed)
	}
	if updater.callCount(103) != 1 {
		t.Errorf("permanent failure was retried: %d calls", updater.callCount(103))
	}
	for _, eo := range outcome.Entries {
		if eo.State == StateSynced && eo.Attempts != 1 {
			t.Errorf("entry %s took %d attempts, want 1", eo.EntryID, eo.Attempts)
		}
	}
}

func TestRunRetriesTransientUpToCeiling(t *testing.T) {
	updater := newFakeUpdater()
	updater.failWith[101] = services.Wrap(services.ErrTransient, "catalog", "update entry", "rate limited", nil)

	engine := NewEngine(updater, fastOptions(), logging.NewNop())
	outcome := engine.Run(context.Background(), []match.Result{eligibleResult("entry-1", 101)})

	if outcome.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", outcome.Failed)
	}
	if got := updater.callCount(101); got != 3 {
		t.Errorf("call count = %d, want exactly 3 attempts", got)
	}
	eo := outcome.Entries[0]
	if eo.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", eo.Attempts)
	}
	if !services.IsRetriable(eo.Err) {
		t.Errorf("expected transient marker on final error, got %v", eo.Err)
	}
}

func TestRunRecoversAfterTransientFailures(t *testing.T) {
	updater := newFakeUpdater()
	updater.failTimes[101] = 2

	engine := NewEngine(updater, fastOptions(), logging.NewNop())
	outcome := engine.Run(context.Background(), []match.Result{eligibleResult("entry-1", 101)})

	if outcome.Synced != 1 {
		t.Fatalf("Synced = %d, want 1", outcome.Synced)
	}
	if outcome.Entries[0].Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", outcome.Entries[0].Attempts)
	}
}

func TestRunRejectsDuplicateTargetIDs(t *testing.T) {
	updater := newFakeUpdater()

	results := []match.Result{
		eligibleResult("entry-1", 101),
		eligibleResult("entry-2", 101),
	}
	engine := NewEngine(updater, fastOptions(), logging.NewNop())
	outcome := engine.Run(context.Background(), results)

	if outcome.Synced != 1 || outcome.Failed != 1 {
		t.Fatalf("Synced/Failed = %d/%d, want 1/1", outcome.Synced, outcome.Failed)
	}
	if got := updater.callCount(101); got != 1 {
		t.Errorf("duplicate reached the network: %d calls, want 1", got)
	}
	second := outcome.Entries[1]
	if second.EntryID != "entry-2" || second.State != StateFailed {
		t.Errorf("second entry = %+v, want entry-2 failed", second)
	}
	if !errors.Is(second.Err, services.ErrValidation) {
		t.Errorf("duplicate rejection should be permanent, got %v", second.Err)
	}
}

func TestRunStopsOnCancellationWithoutCountingFailures(t *testing.T) {
	updater := newFakeUpdater()
	ctx, cancel := context.WithCancel(context.Background())
	updater.onCall = func(targetID int64) {
		if targetID == 102 {
			cancel()
		}
	}

	results := []match.Result{
		eligibleResult("entry-1", 101),
		eligibleResult("entry-2", 102),
		eligibleResult("entry-3", 103),
		eligibleResult("entry-4", 104),
	}
	engine := NewEngine(updater, fastOptions(), logging.NewNop())
	outcome := engine.Run(ctx, results)

	if outcome.Synced != 1 {
		t.Errorf("Synced = %d, want 1", outcome.Synced)
	}
	if outcome.Failed != 0 {
		t.Errorf("Failed = %d, want 0; cancellation is not failure", outcome.Failed)
	}
	if outcome.Cancelled != 3 {
		t.Errorf("Cancelled = %d, want 3", outcome.Cancelled)
	}
	if updater.callCount(103) != 0 || updater.callCount(104) != 0 {
		t.Error("entries after cancellation were still attempted")
	}
}

func TestRunCarriesCancellationCauseToSkippedEntries(t *testing.T) {
	updater := newFakeUpdater()
	cause := services.Wrap(services.ErrCancelled, "catalog", "update entry", "request aborted", nil)
	updater.failWith[101] = cause

	// The updater reports cancellation while the parent context stays live,
	// so the skipped entries cannot learn the cause from the context.
	results := []match.Result{
		eligibleResult("entry-1", 101),
		eligibleResult("entry-2", 102),
	}
	engine := NewEngine(updater, fastOptions(), logging.NewNop())
	outcome := engine.Run(context.Background(), results)

	if outcome.Cancelled != 2 {
		t.Fatalf("Cancelled = %d, want 2", outcome.Cancelled)
	}
	skipped := outcome.Entries[1]
	if skipped.EntryID != "entry-2" || skipped.State != StateCancelled {
		t.Fatalf("second entry = %+v, want entry-2 cancelled", skipped)
	}
	if skipped.Err == nil {
		t.Fatal("skipped entry should carry the error that aborted the run")
	}
	if !services.IsCancellation(skipped.Err) {
		t.Errorf("skipped entry error = %v, want a cancellation", skipped.Err)
	}
	if updater.callCount(102) != 0 {
		t.Error("entry after the abort was still attempted")
	}
}

func TestRunExcludesIneligibleResults(t *testing.T) {
	updater := newFakeUpdater()

	skipped := eligibleResult("entry-2", 102)
	skipped.Skip()
	unmatched := match.Result{
		Entry:  library.SourceEntry{ID: "entry-3", Title: "Unknown"},
		Status: match.StatusUnmatched,
	}

	results := []match.Result{eligibleResult("entry-1", 101), skipped, unmatched}
	engine := NewEngine(updater, fastOptions(), logging.NewNop())
	outcome := engine.Run(context.Background(), results)

	if len(outcome.Entries) != 1 {
		t.Fatalf("got %d entry outcomes, want 1", len(outcome.Entries))
	}
	if outcome.Entries[0].EntryID != "entry-1" {
		t.Errorf("synced entry = %s, want entry-1", outcome.Entries[0].EntryID)
	}
	if updater.callCount(102) != 0 {
		t.Error("skipped entry reached the network")
	}
}

func TestRunBatchesSequentially(t *testing.T) {
	updater := newFakeUpdater()
	var order []int64
	var mu sync.Mutex
	updater.onCall = func(targetID int64) {
		mu.Lock()
		order = append(order, targetID)
		mu.Unlock()
	}

	results := []match.Result{
		eligibleResult("entry-1", 101),
		eligibleResult("entry-2", 102),
		eligibleResult("entry-3", 103),
	}
	opts := fastOptions()
	opts.BatchSize = 2
	engine := NewEngine(updater, opts, logging.NewNop())
	outcome := engine.Run(context.Background(), results)

	if outcome.Synced != 3 {
		t.Fatalf("Synced = %d, want 3", outcome.Synced)
	}
	want := []int64{101, 102, 103}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("call order = %v, want %v", order, want)
		}
	}
}

func TestRunRetriesThroughCatalogClient(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		current := attempts
		mu.Unlock()
		if current < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithCatalogBaseURL(server.URL),
		testsupport.WithToken("integration-token"))
	client, err := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.Token, time.Second)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	engine := NewEngine(client, OptionsFromConfig(cfg.Sync), logging.NewNop())
	outcome := engine.Run(context.Background(), []match.Result{eligibleResult("entry-1", 101)})

	if outcome.Synced != 1 {
		t.Fatalf("Synced = %d, want 1 after transient 503s; outcome %+v", outcome.Synced, outcome.Entries[0])
	}
	if outcome.Entries[0].Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", outcome.Entries[0].Attempts)
	}
}

func TestOptionsFromConfigZeroedDelays(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	opts := OptionsFromConfig(cfg.Sync)
	if opts.RetryInitial != 0 || opts.RetryMax != 0 || opts.MinInterval != 0 {
		t.Errorf("test config should zero retry and pacing delays, got %+v", opts)
	}
	if opts.BatchSize != 10 || opts.MaxAttempts != 3 {
		t.Errorf("batching defaults = %d/%d, want 10/3", opts.BatchSize, opts.MaxAttempts)
	}
}

func TestOutcomePersistsThroughStatsStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStats(t, cfg)
	ctx := context.Background()

	now := time.Date(2026, 6, 2, 8, 30, 0, 0, time.UTC)
	current, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.Save(ctx, ApplyStats(current, Outcome{Synced: 5, Failed: 2}, now)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	persisted, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if persisted.EntriesSynced != 5 || persisted.FailedSyncs != 2 || persisted.TotalSyncs != 1 {
		t.Errorf("persisted counters = %+v, want 5/2/1", persisted)
	}
	if persisted.LastSyncTime == nil || !persisted.LastSyncTime.Equal(now) {
		t.Errorf("LastSyncTime = %v, want %v", persisted.LastSyncTime, now)
	}
}

func TestApplyStats(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("successful run advances last sync time", func(t *testing.T) {
		next := ApplyStats(stats.Stats{EntriesSynced: 10, TotalSyncs: 4}, Outcome{Synced: 3, Failed: 1}, now)
		if next.EntriesSynced != 13 || next.FailedSyncs != 1 || next.TotalSyncs != 5 {
			t.Errorf("counters = %+v, want 13/1/5", next)
		}
		if next.LastSyncTime == nil || !next.LastSyncTime.Equal(now) {
			t.Errorf("LastSyncTime = %v, want %v", next.LastSyncTime, now)
		}
	})

	t.Run("run with no successes keeps last sync time", func(t *testing.T) {
		next := ApplyStats(stats.Stats{}, Outcome{Failed: 2}, now)
		if next.LastSyncTime != nil {
			t.Errorf("LastSyncTime = %v, want nil", next.LastSyncTime)
		}
		if next.TotalSyncs != 1 {
			t.Errorf("TotalSyncs = %d, want 1; every run counts", next.TotalSyncs)
		}
	})
}
