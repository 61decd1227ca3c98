package model

import "time"

// starredLayouts are the date formats Subsonic servers have been observed to
// use for the starred attribute. Older servers emit fractional seconds with a
// Z suffix, newer ones plain RFC3339.
var starredLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
}

// ParseStarredTime parses a starred date string from the server.
// It returns the zero time for an empty or unparseable value; callers treat
// such items as having an unknown starred date.
func ParseStarredTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range starredLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
