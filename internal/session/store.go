package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mangasync/internal/match"
)

// SyncState tracks what the syncer has done with a stored result, separate
// from the match status the resolver assigned.
type SyncState string

const (
	// SyncPending means the result has not been submitted yet.
	SyncPending SyncState = "pending"
	// SyncDone means the target accepted the update.
	SyncDone SyncState = "synced"
	// SyncFailed means the last sync attempt failed permanently or
	// exhausted retries.
	SyncFailed SyncState = "failed"
)

// Record is one persisted match result within a run.
type Record struct {
	ID        int64
	RunID     string
	Result    match.Result
	SyncState SyncState
	SyncError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrNotFound is returned when no record matches the requested entry.
var ErrNotFound = errors.New("session record not found")

// Store persists match runs in SQLite so review and sync can happen in
// separate invocations.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS match_results (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            entry_id TEXT NOT NULL,
            result_json TEXT NOT NULL,
            status TEXT NOT NULL,
            sync_state TEXT NOT NULL DEFAULT 'pending',
            sync_error TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            UNIQUE (run_id, entry_id)
        )`)
	if err != nil {
		return fmt.Errorf("create match_results table: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_match_results_run ON match_results (run_id, id)`)
	if err != nil {
		return fmt.Errorf("create run index: %w", err)
	}
	return nil
}

// SaveRun persists a complete match run under a fresh run ID. Results are
// stored in slice order so listing preserves the source export order.
func (s *Store) SaveRun(ctx context.Context, results []match.Result) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO match_results (run_id, entry_id, result_json, status, sync_state, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		payload, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			return "", fmt.Errorf("marshal result for entry %q: %w", result.Entry.ID, marshalErr)
		}
		if _, execErr := stmt.ExecContext(ctx, runID, result.Entry.ID, string(payload),
			string(result.Status), string(SyncPending), now, now); execErr != nil {
			return "", fmt.Errorf("insert result for entry %q: %w", result.Entry.ID, execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save run: %w", err)
	}
	return runID, nil
}

// LatestRunID returns the run ID of the most recently saved run.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM match_results ORDER BY id DESC LIMIT 1`)
	var runID string
	if err := row.Scan(&runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("no match runs saved yet: %w", ErrNotFound)
		}
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return runID, nil
}

// ListResults returns every record of a run in source order. An empty runID
// selects the latest run.
func (s *Store) ListResults(ctx context.Context, runID string) ([]Record, error) {
	if runID == "" {
		latest, err := s.LatestRunID(ctx)
		if err != nil {
			return nil, err
		}
		runID = latest
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, run_id, result_json, sync_state, sync_error, created_at, updated_at
        FROM match_results WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return records, nil
}

// Get returns a single record by entry ID. An empty runID selects the
// latest run.
func (s *Store) Get(ctx context.Context, runID, entryID string) (Record, error) {
	if runID == "" {
		latest, err := s.LatestRunID(ctx)
		if err != nil {
			return Record{}, err
		}
		runID = latest
	}

	row := s.db.QueryRowContext(ctx, `
        SELECT id, run_id, result_json, sync_state, sync_error, created_at, updated_at
        FROM match_results WHERE run_id = ? AND entry_id = ?`, runID, entryID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("entry %q in run %q: %w", entryID, runID, ErrNotFound)
		}
		return Record{}, err
	}
	return record, nil
}

// Select applies a manual candidate override and persists the transition.
func (s *Store) Select(ctx context.Context, runID, entryID string, targetID int64) (Record, error) {
	record, err := s.Get(ctx, runID, entryID)
	if err != nil {
		return Record{}, err
	}
	if err := record.Result.Override(targetID); err != nil {
		return Record{}, err
	}
	if err := s.updateResult(ctx, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Skip excludes an entry from sync and persists the transition.
func (s *Store) Skip(ctx context.Context, runID, entryID string) (Record, error) {
	record, err := s.Get(ctx, runID, entryID)
	if err != nil {
		return Record{}, err
	}
	record.Result.Skip()
	if err := s.updateResult(ctx, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// MarkSynced records a successful sync for an entry.
func (s *Store) MarkSynced(ctx context.Context, runID, entryID string) error {
	return s.setSyncState(ctx, runID, entryID, SyncDone, "")
}

// MarkSyncFailed records a permanent sync failure with its reason.
func (s *Store) MarkSyncFailed(ctx context.Context, runID, entryID, reason string) error {
	return s.setSyncState(ctx, runID, entryID, SyncFailed, reason)
}

func (s *Store) updateResult(ctx context.Context, record *Record) error {
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal result for entry %q: %w", record.Result.Entry.ID, err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
        UPDATE match_results SET result_json = ?, status = ?, updated_at = ?
        WHERE run_id = ? AND entry_id = ?`,
		string(payload), string(record.Result.Status), now.Format(time.RFC3339Nano),
		record.RunID, record.Result.Entry.ID)
	if err != nil {
		return fmt.Errorf("update result for entry %q: %w", record.Result.Entry.ID, err)
	}
	record.UpdatedAt = now
	return nil
}

func (s *Store) setSyncState(ctx context.Context, runID, entryID string, state SyncState, reason string) error {
	if runID == "" {
		latest, err := s.LatestRunID(ctx)
		if err != nil {
			return err
		}
		runID = latest
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE match_results SET sync_state = ?, sync_error = ?, updated_at = ?
        WHERE run_id = ? AND entry_id = ?`,
		string(state), reason, time.Now().UTC().Format(time.RFC3339Nano), runID, entryID)
	if err != nil {
		return fmt.Errorf("set sync state for entry %q: %w", entryID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %q in run %q: %w", entryID, runID, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var resultJSON, syncState, createdAt, updatedAt string
	if err := row.Scan(&record.ID, &record.RunID, &resultJSON, &syncState,
		&record.SyncError, &createdAt, &updatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(resultJSON), &record.Result); err != nil {
		return Record{}, fmt.Errorf("decode stored result: %w", err)
	}
	record.SyncState = SyncState(syncState)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		record.UpdatedAt = t
	}
	return record, nil
}
