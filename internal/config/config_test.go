package config_test

import (
	"strings"
	"testing"
	"time"

	"starsync/internal/config"
)

func validOptions() *config.Options {
	return &config.Options{
		ServerURL: "https://music.example.org",
		Username:  "alice",
		Token:     "deadbeef",
		Salt:      "abc123",
		TargetDir: "/music/starred",
	}
}

func TestValidateComplete(t *testing.T) {
	if err := validOptions().Validate(); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	opts := &config.Options{}
	err := opts.Validate()
	if err == nil {
		t.Fatal("expected error for empty options")
	}
	for _, flag := range []string{"--uri", "--user", "--token", "--salt", "--path"} {
		if !strings.Contains(err.Error(), flag) {
			t.Errorf("error %q does not mention %s", err, flag)
		}
	}
}

func TestValidateSingleMissing(t *testing.T) {
	opts := validOptions()
	opts.Salt = ""
	err := opts.Validate()
	if err == nil {
		t.Fatal("expected error for missing salt")
	}
	if !strings.Contains(err.Error(), "--salt") {
		t.Errorf("error %q does not mention --salt", err)
	}
	if strings.Contains(err.Error(), "--uri") {
		t.Errorf("error %q mentions a present flag", err)
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)},
		{"2026-03-01 13:45:00", time.Date(2026, 3, 1, 13, 45, 0, 0, time.Local)},
		{"2026-03-01T13:45:00", time.Date(2026, 3, 1, 13, 45, 0, 0, time.Local)},
		{"2026-03-01T13:45:00Z", time.Date(2026, 3, 1, 13, 45, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := config.ParseSince(tt.in)
		if err != nil {
			t.Errorf("ParseSince(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseSince(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSinceInvalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "03/01/2026"} {
		if _, err := config.ParseSince(in); err == nil {
			t.Errorf("ParseSince(%q) = nil error, want failure", in)
		}
	}
}
