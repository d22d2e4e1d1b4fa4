package testsupport

import (
	"testing"

	"mangasync/internal/config"
	"mangasync/internal/session"
	"mangasync/internal/stats"
)

// MustOpenSession opens a session.Store for tests and registers cleanup.
func MustOpenSession(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg.Paths.DataDir)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenStats opens a stats.Store for tests and registers cleanup.
func MustOpenStats(t testing.TB, cfg *config.Config) *stats.Store {
	t.Helper()

	store, err := stats.Open(cfg.Paths.DataDir)
	if err != nil {
		t.Fatalf("stats.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
