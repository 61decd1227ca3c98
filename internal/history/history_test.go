package history_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"starsync/internal/history"
)

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	s, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open on missing file: %v", err)
	}
	defer s.Close()

	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected log file to be created: %v", err)
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.log")
	s, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open with missing parents: %v", err)
	}
	s.Close()
}

func TestRecordAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")

	s, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"101", "102", "103"} {
		if err := s.Record(id); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reloaded.Close()

	if reloaded.Len() != 3 {
		t.Fatalf("Len after reload = %d, want 3", reloaded.Len())
	}
	for _, id := range []string{"101", "102", "103"} {
		if !reloaded.Contains(id) {
			t.Errorf("Contains(%s) = false after reload", id)
		}
	}
	if reloaded.Contains("104") {
		t.Error("Contains(104) = true, want false")
	}
}

func TestRecordIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	s, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Record("42"); err != nil {
		t.Fatal(err)
	}
	if err := s.Record("42"); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "42"); n != 1 {
		t.Errorf("log contains id %d times, want 1", n)
	}
}

func TestLoadDeduplicatesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	content := "7\t2026-01-02T03:04:05Z\n7\t2026-01-02T03:04:05Z\n8\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if !s.Contains("7") || !s.Contains("8") {
		t.Error("expected both ids after deduplicating load")
	}
	if got := len(s.Entries()); got != 2 {
		t.Errorf("len(Entries) = %d, want 2", got)
	}
}

func TestLoadToleratesEntriesWithoutTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	if err := os.WriteFile(path, []byte("a\n\nb\t2026-05-06T07:08:09Z\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(entries))
	}
	if entries[0].ID != "a" || !entries[0].SyncedAt.IsZero() {
		t.Errorf("entry 0 = %+v, want id a without timestamp", entries[0])
	}
	if entries[1].ID != "b" || entries[1].SyncedAt.IsZero() {
		t.Errorf("entry 1 = %+v, want id b with timestamp", entries[1])
	}
}

func TestOpenCorruptLog(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too many fields", "1\tfoo\tbar\n"},
		{"bad timestamp", "1\tnot-a-date\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history.log")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			_, err := history.Open(path)
			if err == nil {
				t.Fatal("expected error for corrupt log, got nil")
			}
			if !errors.Is(err, history.ErrCorrupt) {
				t.Errorf("error = %v, want ErrCorrupt", err)
			}

			// The corrupt log must be left untouched.
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.content {
				t.Error("corrupt log was modified by Open")
			}
		})
	}
}

func TestRecordPreservesExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	if err := os.WriteFile(path, []byte("old\t2025-12-31T00:00:00Z\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record("new"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "old\t2025-12-31T00:00:00Z\n") {
		t.Error("existing entry was not preserved on append")
	}
	if !strings.Contains(string(data), "new\t") {
		t.Error("new entry missing from log")
	}
}
