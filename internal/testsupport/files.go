package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mangasync/internal/library"
)

// WriteExport writes a library export JSON file containing the provided
// entries and returns its path.
func WriteExport(t testing.TB, dir string, entries []library.SourceEntry) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for export: %v", err)
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}
	path := filepath.Join(dir, "export.json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write export %s: %v", path, err)
	}
	return path
}
