package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Stats holds the process-lifetime sync counters. All counters are
// monotonically non-decreasing; only LastSyncTime moves freely, and only
// forward when a sync succeeds for at least one entry.
type Stats struct {
	LastSyncTime  *time.Time
	EntriesSynced int64
	FailedSyncs   int64
	TotalSyncs    int64
}

// Store persists Stats in SQLite so counters survive process restarts.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the stats database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "stats.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(context.Background()); err != nil {
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

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS sync_stats (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            last_sync_time TEXT,
            entries_synced INTEGER NOT NULL DEFAULT 0,
            failed_syncs INTEGER NOT NULL DEFAULT 0,
            total_syncs INTEGER NOT NULL DEFAULT 0
        )`)
	if err != nil {
		return fmt.Errorf("create sync_stats table: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sync_stats (id, entries_synced, failed_syncs, total_syncs)
        VALUES (1, 0, 0, 0)
        ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("seed sync_stats row: %w", err)
	}
	return nil
}

// Load reads the persisted counters.
func (s *Store) Load(ctx context.Context) (Stats, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT last_sync_time, entries_synced, failed_syncs, total_syncs
        FROM sync_stats WHERE id = 1`)

	var lastSync sql.NullString
	var stats Stats
	if err := row.Scan(&lastSync, &stats.EntriesSynced, &stats.FailedSyncs, &stats.TotalSyncs); err != nil {
		return Stats{}, fmt.Errorf("load sync stats: %w", err)
	}
	if lastSync.Valid && lastSync.String != "" {
		parsed, err := time.Parse(time.RFC3339Nano, lastSync.String)
		if err != nil {
			return Stats{}, fmt.Errorf("parse last sync time %q: %w", lastSync.String, err)
		}
		stats.LastSyncTime = &parsed
	}
	return stats, nil
}

// Save writes the counters. Counter regressions are rejected so a stale
// in-memory copy cannot roll persisted totals backwards.
func (s *Store) Save(ctx context.Context, stats Stats) error {
	current, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if stats.EntriesSynced < current.EntriesSynced ||
		stats.FailedSyncs < current.FailedSyncs ||
		stats.TotalSyncs < current.TotalSyncs {
		return errors.New("sync stats counters must not decrease")
	}

	var lastSync any
	if stats.LastSyncTime != nil {
		lastSync = stats.LastSyncTime.UTC().Format(time.RFC3339Nano)
	}
	_, err = s.db.ExecContext(ctx, `
        UPDATE sync_stats
        SET last_sync_time = ?, entries_synced = ?, failed_syncs = ?, total_syncs = ?
        WHERE id = 1`,
		lastSync, stats.EntriesSynced, stats.FailedSyncs, stats.TotalSyncs)
	if err != nil {
		return fmt.Errorf("save sync stats: %w", err)
	}
	return nil
}

// AcquireLock takes the cross-process sync lock under dataDir. It returns a
// release func, or an error when another sync already holds the lock.
func AcquireLock(dataDir string) (func() error, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	lock := flock.New(filepath.Join(dataDir, "sync.lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !acquired {
		return nil, errors.New("another sync is already running")
	}
	return lock.Unlock, nil
}
