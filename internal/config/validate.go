package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		return errors.New("catalog.base_url must be set")
	}
	if c.Catalog.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/mangasync/config.toml"
		}
		return fmt.Errorf("catalog.token is required. Set MANGASYNC_CATALOG_TOKEN env var or edit %s (create with 'mangasync config init')", defaultPath)
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return errors.New("catalog.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.FloorThreshold < 0 || m.FloorThreshold > 100 {
		return errors.New("matching.floor_threshold must be between 0 and 100")
	}
	if m.AcceptThreshold < 0 || m.AcceptThreshold > 100 {
		return errors.New("matching.accept_threshold must be between 0 and 100")
	}
	if m.AcceptThreshold < m.FloorThreshold {
		return errors.New("matching.accept_threshold must not be below matching.floor_threshold")
	}
	if m.ClosenessMargin < 0 || m.ClosenessMargin > 100 {
		return errors.New("matching.closeness_margin must be between 0 and 100")
	}
	if m.MaxCandidates <= 0 {
		return errors.New("matching.max_candidates must be positive")
	}
	if m.Workers <= 0 {
		return errors.New("matching.workers must be positive")
	}
	sum := m.TitleWeight + m.FormatWeight + m.ProgressWeight + m.GenreWeight + m.YearWeight
	if math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("matching signal weights must sum to 100, got %v", sum)
	}
	weights := []struct {
		name  string
		value float64
	}{
		{"title_weight", m.TitleWeight},
		{"format_weight", m.FormatWeight},
		{"progress_weight", m.ProgressWeight},
		{"genre_weight", m.GenreWeight},
		{"year_weight", m.YearWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("matching.%s must not be negative", w.name)
		}
	}
	return nil
}

func (c *Config) validateSync() error {
	s := c.Sync
	if s.BatchSize <= 0 {
		return errors.New("sync.batch_size must be positive")
	}
	if s.MaxAttempts <= 0 {
		return errors.New("sync.max_attempts must be positive")
	}
	if s.RetryInitialSeconds <= 0 {
		return errors.New("sync.retry_initial_seconds must be positive")
	}
	if s.RetryMaxSeconds < s.RetryInitialSeconds {
		return errors.New("sync.retry_max_seconds must not be below sync.retry_initial_seconds")
	}
	if s.RequestTimeoutSeconds <= 0 {
		return errors.New("sync.request_timeout_seconds must be positive")
	}
	if s.MinIntervalMillis < 0 {
		return errors.New("sync.min_interval_millis must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
