package testsupport

import (
	"path/filepath"
	"testing"

	"mangasync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Retry and pacing delays are zeroed so sync tests run instantly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.BaseURL = "http://127.0.0.1:0"
	cfg.Catalog.Token = "test"
	cfg.Sync.RetryInitialSeconds = 0
	cfg.Sync.RetryMaxSeconds = 0
	cfg.Sync.MinIntervalMillis = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCatalogBaseURL points the test config at a specific catalog server,
// usually an httptest server URL.
func WithCatalogBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.BaseURL = url
	}
}

// WithToken overrides the catalog API token on the test config.
func WithToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.Token = token
	}
}
