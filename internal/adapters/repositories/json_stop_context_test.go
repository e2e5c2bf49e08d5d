package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stop_context.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestJSONStopContextSource(t *testing.T) {
	path := writeTempJSON(t, `[
		{"match": "1901 W Madison St, Phoenix, AZ 85009", "service_minutes": 35, "notes": ["Gate code 4417"], "window_start": "09:00", "window_end": "15:00"},
		{"match": "4747 N 7th Ave, Phoenix, AZ 85013"}
	]`)

	source, err := NewJSONStopContextSource(path)
	if err != nil {
		t.Fatalf("NewJSONStopContextSource: %v", err)
	}

	entries, err := source.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	first := entries[0]
	if first.Match != "1901 W Madison St, Phoenix, AZ 85009" {
		t.Errorf("match = %q", first.Match)
	}
	if first.ServiceMinutes != 35 {
		t.Errorf("service_minutes = %d", first.ServiceMinutes)
	}
	if len(first.Notes) != 1 || first.Notes[0] != "Gate code 4417" {
		t.Errorf("notes = %v", first.Notes)
	}
	if first.WindowStart != "09:00" || first.WindowEnd != "15:00" {
		t.Errorf("window = %q - %q", first.WindowStart, first.WindowEnd)
	}
}

func TestJSONStopContextSourceMissingFile(t *testing.T) {
	if _, err := NewJSONStopContextSource(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestJSONStopContextSourceMalformed(t *testing.T) {
	path := writeTempJSON(t, `{"not": "an array"}`)
	if _, err := NewJSONStopContextSource(path); err == nil {
		t.Fatal("want error for malformed content")
	}
}
