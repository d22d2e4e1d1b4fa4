package logging

import (
	"context"
	"log/slog"

	"mangasync/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldEntryID is the standardized structured logging key for source entry identifiers.
	FieldEntryID = "entry_id"
	// FieldTargetID is the standardized structured logging key for target catalog identifiers.
	FieldTargetID = "target_id"
	// FieldBatch is the standardized structured logging key for sync batch indexes.
	FieldBatch = "batch"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := services.EntryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEntryID, id))
	}
	if name, ok := services.ComponentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldComponent, name))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, attr := range fields {
		args = append(args, attr)
	}
	return logger.With(args...)
}
