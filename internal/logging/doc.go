// Package logging assembles the structured slog loggers used across
// mangasync components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine code can
// automatically tag log lines with run IDs, entry IDs, and component names.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
