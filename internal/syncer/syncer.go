package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mangasync/internal/catalog"
	"mangasync/internal/config"
	"mangasync/internal/logging"
	"mangasync/internal/match"
	"mangasync/internal/services"
	"mangasync/internal/stats"
)

// EntryState classifies what happened to a single entry during a sync run.
type EntryState string

const (
	// StateSynced means the target accepted the update.
	StateSynced EntryState = "synced"
	// StateFailed means the update failed permanently or exhausted retries.
	StateFailed EntryState = "failed"
	// StateCancelled means the run was aborted before or during this entry.
	// Cancelled entries are not failures.
	StateCancelled EntryState = "cancelled"
)

// EntryOutcome records the final disposition of one entry in a run.
type EntryOutcome struct {
	EntryID  string
	TargetID int64
	State    EntryState
	Attempts int
	Err      error
}

// Outcome aggregates a full sync run.
type Outcome struct {
	Entries   []EntryOutcome
	Synced    int
	Failed    int
	Cancelled int
}

// Options tunes batching and retry behavior. Zero durations disable the
// corresponding waits, which tests rely on.
type Options struct {
	BatchSize      int
	MaxAttempts    int
	RetryInitial   time.Duration
	RetryMax       time.Duration
	RequestTimeout time.Duration
	MinInterval    time.Duration
}

// OptionsFromConfig converts the sync config section into Options.
func OptionsFromConfig(cfg config.Sync) Options {
	return Options{
		BatchSize:      cfg.BatchSize,
		MaxAttempts:    cfg.MaxAttempts,
		RetryInitial:   time.Duration(cfg.RetryInitialSeconds) * time.Second,
		RetryMax:       time.Duration(cfg.RetryMaxSeconds) * time.Second,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		MinInterval:    time.Duration(cfg.MinIntervalMillis) * time.Millisecond,
	}
}

func (o Options) normalized() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryMax < o.RetryInitial {
		o.RetryMax = o.RetryInitial
	}
	return o
}

// Engine pushes resolved matches to the target catalog in batches, retrying
// transient failures per entry up to the attempt ceiling.
type Engine struct {
	updater catalog.Updater
	opts    Options
	logger  *slog.Logger
}

// NewEngine creates a synchronization engine.
func NewEngine(updater catalog.Updater, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		updater: updater,
		opts:    opts.normalized(),
		logger:  logger.With(logging.FieldComponent, "syncer"),
	}
}

// Run synchronizes every sync-eligible result. Ineligible results are
// silently excluded; the caller filters them for reporting. Entries mapping
// to a target ID already claimed earlier in the run fail permanently without
// touching the network, so one remote entry is never written twice.
//
// A cancelled context stops the run after the in-flight entry; entries never
// attempted are reported as cancelled, not failed.
func (e *Engine) Run(ctx context.Context, results []match.Result) Outcome {
	eligible := make([]match.Result, 0, len(results))
	for _, r := range results {
		if r.SyncEligible() {
			eligible = append(eligible, r)
		}
	}

	outcome := Outcome{Entries: make([]EntryOutcome, 0, len(eligible))}
	claimed := make(map[int64]string, len(eligible))
	cancelled := false
	// The error that aborted the run. Entries skipped after the abort carry
	// it even when the parent context itself is still live, as it is when
	// the updater reports cancellation.
	var abortCause error

	for batchIdx := 0; batchIdx < len(eligible); batchIdx += e.opts.BatchSize {
		end := min(batchIdx+e.opts.BatchSize, len(eligible))
		batch := eligible[batchIdx:end]
		batchNum := batchIdx/e.opts.BatchSize + 1
		transientFailures := 0

		for i, result := range batch {
			entryCtx := services.WithEntry(ctx, result.Entry.ID)
			if cancelled || entryCtx.Err() != nil {
				cancelled = true
				if abortCause == nil {
					abortCause = context.Cause(ctx)
				}
				outcome.Entries = append(outcome.Entries, EntryOutcome{
					EntryID: result.Entry.ID,
					State:   StateCancelled,
					Err:     abortCause,
				})
				continue
			}
			if i > 0 || batchIdx > 0 {
				if err := services.SleepWithContext(entryCtx, e.opts.MinInterval); err != nil {
					cancelled = true
					abortCause = err
					outcome.Entries = append(outcome.Entries, EntryOutcome{
						EntryID: result.Entry.ID,
						State:   StateCancelled,
						Err:     err,
					})
					continue
				}
			}

			selected, _ := result.Selected()
			targetID := selected.Candidate.ID
			if prior, dup := claimed[targetID]; dup {
				err := services.Wrap(services.ErrValidation, "syncer", "sync",
					fmt.Sprintf("target %d already claimed by entry %q", targetID, prior), nil)
				e.logger.Error("duplicate target rejected",
					logging.FieldEntryID, result.Entry.ID,
					logging.FieldTargetID, targetID,
					"claimed_by", prior)
				outcome.Entries = append(outcome.Entries, EntryOutcome{
					EntryID:  result.Entry.ID,
					TargetID: targetID,
					State:    StateFailed,
					Err:      err,
				})
				continue
			}

			entryOutcome := e.syncEntry(entryCtx, result, targetID)
			switch entryOutcome.State {
			case StateSynced:
				claimed[targetID] = result.Entry.ID
			case StateCancelled:
				cancelled = true
				abortCause = entryOutcome.Err
			case StateFailed:
				if services.IsRetriable(entryOutcome.Err) {
					transientFailures++
				}
			}
			outcome.Entries = append(outcome.Entries, entryOutcome)
		}

		if len(batch) > 0 && transientFailures == len(batch) {
			e.logger.Warn("entire batch failed transiently; target may be degraded",
				logging.FieldBatch, batchNum,
				"size", len(batch))
		}
	}

	for _, eo := range outcome.Entries {
		switch eo.State {
		case StateSynced:
			outcome.Synced++
		case StateFailed:
			outcome.Failed++
		case StateCancelled:
			outcome.Cancelled++
		}
	}
	return outcome
}

func (e *Engine) syncEntry(ctx context.Context, result match.Result, targetID int64) EntryOutcome {
	update := buildUpdate(result)
	outcome := EntryOutcome{EntryID: result.Entry.ID, TargetID: targetID}

	for attempt := 1; attempt <= e.opts.MaxAttempts; attempt++ {
		outcome.Attempts = attempt

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if e.opts.RequestTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, e.opts.RequestTimeout)
		}
		err := e.updater.UpdateEntry(attemptCtx, targetID, update)
		cancel()

		if err == nil {
			e.logger.Info("entry synced",
				logging.FieldEntryID, result.Entry.ID,
				logging.FieldTargetID, targetID,
				"attempts", attempt)
			outcome.State = StateSynced
			return outcome
		}
		if ctx.Err() != nil || services.IsCancellation(err) {
			outcome.State = StateCancelled
			outcome.Err = err
			return outcome
		}
		if !services.IsRetriable(err) {
			e.logger.Error("entry failed permanently",
				logging.FieldEntryID, result.Entry.ID,
				logging.FieldTargetID, targetID,
				"error", err)
			outcome.State = StateFailed
			outcome.Err = err
			return outcome
		}
		outcome.Err = err
		if attempt == e.opts.MaxAttempts {
			break
		}

		delay := services.Backoff(attempt, e.opts.RetryInitial, e.opts.RetryMax)
		e.logger.Warn("transient failure; retrying",
			logging.FieldEntryID, result.Entry.ID,
			logging.FieldTargetID, targetID,
			"attempt", attempt,
			"delay", delay,
			"error", err)
		if sleepErr := services.SleepWithContext(ctx, delay); sleepErr != nil {
			outcome.State = StateCancelled
			outcome.Err = sleepErr
			return outcome
		}
	}

	e.logger.Error("entry failed after retry ceiling",
		logging.FieldEntryID, result.Entry.ID,
		logging.FieldTargetID, targetID,
		"attempts", outcome.Attempts,
		"error", outcome.Err)
	outcome.State = StateFailed
	return outcome
}

func buildUpdate(result match.Result) catalog.EntryUpdate {
	return catalog.EntryUpdate{
		Status:       string(result.Entry.Status),
		ChaptersRead: result.Entry.ChaptersRead,
		VolumesRead:  result.Entry.VolumesRead,
		Score:        result.Entry.Score,
	}
}

// ApplyStats folds a run outcome into persisted counters. The last sync time
// only advances when at least one entry was written; total runs always count.
func ApplyStats(current stats.Stats, outcome Outcome, now time.Time) stats.Stats {
	next := current
	next.EntriesSynced += int64(outcome.Synced)
	next.FailedSyncs += int64(outcome.Failed)
	next.TotalSyncs++
	if outcome.Synced > 0 {
		t := now
		next.LastSyncTime = &t
	}
	return next
}
