package model

import "time"

// StarredItem is a single starred song as reported by the Subsonic server.
// The client only ever reads these; they are created and removed on the
// server side.
type StarredItem struct {
	// ID is the opaque server-assigned identifier, stable across requests.
	ID string
	// Path is the server-relative file path (slash-separated), used as the
	// local filename under the download directory.
	Path string
	// Title and Artist are informational, used for progress output.
	Title  string
	Artist string
	// StarredAt is the time the item was starred. Zero when the server
	// reported no date or one that could not be parsed.
	StarredAt time.Time
}

// StarredSince reports whether the item was starred at or after t.
// A zero t disables the filter; an item with an unknown starred date is
// only included when the filter is disabled.
func (s StarredItem) StarredSince(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if s.StarredAt.IsZero() {
		return false
	}
	return !s.StarredAt.Before(t)
}
