// Package history persists the set of already-synced item IDs as a
// line-oriented, append-only log file.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrCorrupt indicates the history log contains a line that cannot be parsed.
// A corrupt log is fatal rather than silently discarded so that history is
// never accidentally wiped.
var ErrCorrupt = errors.New("history: log is corrupt")

// Entry is one record of the history log.
type Entry struct {
	// ID is the server-assigned identifier of the synced item.
	ID string
	// SyncedAt is when the item was recorded. Zero for records written
	// without a timestamp.
	SyncedAt time.Time
}

// Store is the set of previously synced item IDs, loaded from an append-only
// log file. Records are never removed or rewritten; the on-disk log tolerates
// duplicate lines, which are deduplicated on load. A Store is not safe for
// concurrent use.
type Store struct {
	path    string
	file    *os.File
	ids     map[string]struct{}
	entries []Entry
}

// Open loads the history log at path, creating an empty one (and its parent
// directories) if absent. The returned store keeps an append handle open;
// call Close when done.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("history: creating directory for %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}

	s := &Store{
		path: path,
		file: file,
		ids:  make(map[string]struct{}),
	}
	if err := s.load(); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// load reads all records from the log file. Blank lines are skipped and
// duplicate IDs collapse to their first occurrence.
func (s *Store) load() error {
	scanner := bufio.NewScanner(s.file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		entry, ok, err := parseLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("history: %s line %d: %w", s.path, lineno, err)
		}
		if !ok {
			continue
		}
		if _, seen := s.ids[entry.ID]; seen {
			continue
		}
		s.ids[entry.ID] = struct{}{}
		s.entries = append(s.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("history: reading %s: %w", s.path, err)
	}
	return nil
}

// parseLine parses a single log line of the form "<id>" or
// "<id>\t<RFC3339 timestamp>". It returns ok=false for blank lines.
func parseLine(line string) (Entry, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{}, false, nil
	}
	fields := strings.Split(line, "\t")
	switch len(fields) {
	case 1:
		return Entry{ID: fields[0]}, true, nil
	case 2:
		ts, err := time.Parse(time.RFC3339, fields[1])
		if err != nil {
			return Entry{}, false, fmt.Errorf("%w: bad timestamp %q", ErrCorrupt, fields[1])
		}
		return Entry{ID: fields[0], SyncedAt: ts}, true, nil
	default:
		return Entry{}, false, fmt.Errorf("%w: %d fields in line %q", ErrCorrupt, len(fields), line)
	}
}

// Contains reports whether id has already been recorded.
func (s *Store) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Record appends id to the log and to the in-memory set. Recording an
// already-present id is a no-op, so duplicate downloads are harmless.
func (s *Store) Record(id string) error {
	if s.Contains(id) {
		return nil
	}
	entry := Entry{ID: id, SyncedAt: time.Now().UTC().Truncate(time.Second)}
	line := fmt.Sprintf("%s\t%s\n", entry.ID, entry.SyncedAt.Format(time.RFC3339))
	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("history: appending to %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("history: syncing %s: %w", s.path, err)
	}
	s.ids[id] = struct{}{}
	s.entries = append(s.entries, entry)
	return nil
}

// Len returns the number of distinct recorded IDs.
func (s *Store) Len() int {
	return len(s.ids)
}

// Entries returns the loaded records in log order, first occurrence first.
// The returned slice must not be modified.
func (s *Store) Entries() []Entry {
	return s.entries
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.file.Close()
}
