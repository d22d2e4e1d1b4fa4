package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mangasync/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mangasync.log")
	logger, err := New(Options{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("sync complete", slog.Int("entries", 4))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("unmarshal log line %q: %v", line, err)
	}
	if payload["msg"] != "sync complete" {
		t.Errorf("msg = %v, want %q", payload["msg"], "sync complete")
	}
	if payload["level"] != "info" {
		t.Errorf("level = %v, want info", payload["level"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithComponent(ctx, "syncer")

	fields := ContextFields(ctx)
	keys := make(map[string]string, len(fields))
	for _, attr := range fields {
		keys[attr.Key] = attr.Value.String()
	}
	if keys[FieldRunID] != "run-42" {
		t.Errorf("run_id field = %q, want run-42", keys[FieldRunID])
	}
	if keys[FieldComponent] != "syncer" {
		t.Errorf("component field = %q, want syncer", keys[FieldComponent])
	}
}

func TestWithContextNilLoggerReturnsUsable(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("WithContext returned nil logger")
	}
	logger.Info("must not panic")
}
