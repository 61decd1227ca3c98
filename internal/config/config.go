// Package config builds the validated sync options from config file,
// environment, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Options is the full configuration for a sync run, built once at startup
// and passed by reference into the client and engine. Flags override values
// from the config file and environment.
type Options struct {
	// ServerURL is the base URI of the Subsonic server.
	ServerURL string `mapstructure:"uri"`
	// Username on the server.
	Username string `mapstructure:"user"`
	// Token is the salted MD5 API token (see the token command).
	Token string `mapstructure:"token"`
	// Salt used when the token was generated.
	Salt string `mapstructure:"salt"`
	// TargetDir is the directory songs are downloaded into.
	TargetDir string `mapstructure:"path"`
	// Insecure disables TLS certificate verification.
	Insecure bool `mapstructure:"insecure"`
	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`

	// Since restricts the run to items starred at or after this time.
	// Zero means no restriction. Set from the --since flag only.
	Since time.Time `mapstructure:"-"`
}

// Load reads defaults from starsync.yaml (current directory or
// ~/.config/starsync) and STARSYNC_* environment variables. A missing
// config file is not an error; flags applied by the caller afterwards take
// precedence over anything loaded here.
func Load() (*Options, error) {
	v := viper.New()
	v.SetConfigName("starsync")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "starsync"))
	}
	v.SetEnvPrefix("starsync")
	v.AutomaticEnv()

	// Register every key so AutomaticEnv picks it up during Unmarshal.
	for _, key := range []string{"uri", "user", "token", "salt", "path"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("insecure", false)
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &opts, nil
}

// Validate checks that all required fields are present, reporting every
// missing one at once. It must pass before any network call is made.
func (o *Options) Validate() error {
	var missing []string
	if o.ServerURL == "" {
		missing = append(missing, "--uri")
	}
	if o.Username == "" {
		missing = append(missing, "--user")
	}
	if o.Token == "" {
		missing = append(missing, "--token")
	}
	if o.Salt == "" {
		missing = append(missing, "--salt")
	}
	if o.TargetDir == "" {
		missing = append(missing, "--path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required options: %s", strings.Join(missing, ", "))
	}
	return nil
}

// sinceLayouts are the accepted formats for the --since flag.
var sinceLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseSince parses a --since value. Date-only values mean midnight local
// time of that day.
func ParseSince(s string) (time.Time, error) {
	for _, layout := range sinceLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q (accepted formats: YYYY-MM-DD, YYYY-MM-DD HH:MM:SS, RFC3339)", s)
}
