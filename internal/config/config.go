// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultAPIURL         = "api"
	defaultRequestTimeout = 30 * time.Second
	defaultPageSize       = 20
	defaultLogLevel       = "info"
	appDirName            = "go-szuru"
)

// ClientConfig is the top-level configuration container for the szuru
// client. It is populated by merging flags, environment variables and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
//
// Every variable is additionally prefixed with SZURU_.
type ClientConfig struct {
	// API holds the server location and credentials.
	API API `envPrefix:"API_"`

	// Search holds defaults for paginated listing.
	Search Search `envPrefix:"SEARCH_"`

	// Storage holds the location of the saved-profile database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Mirror holds the destination used by the mirror command.
	Mirror Mirror `envPrefix:"MIRROR_"`

	// Log controls where client diagnostics are written.
	Log Log `envPrefix:"LOG_"`

	// Profile names a saved connection profile to load API settings from.
	// Env: SZURU_PROFILE
	Profile string `env:"PROFILE"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Env: SZURU_CONFIG
	JSONFilePath string `env:"CONFIG"`
}

// API holds the parameters required to construct the HTTP transport.
type API struct {
	// BaseURL is the public URL of the booru, e.g. "https://example.com/booru/".
	// Env: SZURU_API_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// URL is the API location: an absolute URL or a path relative to BaseURL.
	// Env: SZURU_API_URL
	URL string `env:"URL"`

	// Username is required whenever Password or Token is set.
	// Env: SZURU_API_USERNAME
	Username string `env:"USERNAME"`

	// Password enables HTTP basic authentication.
	// Env: SZURU_API_PASSWORD
	Password string `env:"PASSWORD"`

	// Token enables szurubooru token authentication.
	// Env: SZURU_API_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout bounds a single HTTP round trip (e.g. "30s").
	// Env: SZURU_API_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AskPassword makes the CLI prompt for the password on the terminal.
	// Flag only.
	AskPassword bool `env:"-"`
}

// Search holds listing defaults.
type Search struct {
	// PageSize is the number of items requested per listing call.
	// Env: SZURU_SEARCH_PAGE_SIZE
	PageSize int `env:"PAGE_SIZE"`

	// Progress renders a progress bar on stderr while searching.
	// Env: SZURU_SEARCH_PROGRESS
	Progress bool `env:"PROGRESS"`
}

// Storage holds the saved-profile database location and the passphrase
// protecting stored secrets.
type Storage struct {
	// ProfilesDSN is a SQLite file path or a postgres:// URL.
	// Env: SZURU_STORAGE_PROFILES_DSN
	ProfilesDSN string `env:"PROFILES_DSN"`

	// ProfileKey is the passphrase that seals saved passwords and tokens.
	// When empty it is asked for on the terminal.
	// Env: SZURU_STORAGE_PROFILE_KEY
	ProfileKey string `env:"PROFILE_KEY"`
}

// Mirror describes where mirrored post content is written. Exactly one of
// Dir and S3Bucket may be set.
type Mirror struct {
	// Dir is a local directory.
	// Env: SZURU_MIRROR_DIR
	Dir string `env:"DIR"`

	// S3Bucket is the target bucket name.
	// Env: SZURU_MIRROR_S3_BUCKET
	S3Bucket string `env:"S3_BUCKET"`

	// S3Prefix is prepended to every object key.
	// Env: SZURU_MIRROR_S3_PREFIX
	S3Prefix string `env:"S3_PREFIX"`

	// S3Region is the bucket region.
	// Env: SZURU_MIRROR_S3_REGION
	S3Region string `env:"S3_REGION"`

	// S3Endpoint overrides the AWS endpoint (MinIO and friends).
	// Env: SZURU_MIRROR_S3_ENDPOINT
	S3Endpoint string `env:"S3_ENDPOINT"`

	// S3AccessKey and S3SecretKey are static credentials. When empty the
	// default AWS credential chain is used.
	// Env: SZURU_MIRROR_S3_ACCESS_KEY, SZURU_MIRROR_S3_SECRET_KEY
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
}

// Log controls client logging.
type Log struct {
	// File is the log file path; empty means stderr.
	// Env: SZURU_LOG_FILE
	File string `env:"FILE"`

	// Level is a zerolog level name ("debug", "info", ...).
	// Env: SZURU_LOG_LEVEL
	Level string `env:"LEVEL"`
}

// GetClientConfig loads, merges, and validates the client configuration.
// args are the command-line arguments without the program name; the
// arguments left after flag parsing (the command and its operands) are
// returned alongside the config.
func GetClientConfig(args []string) (*ClientConfig, []string, error) {
	b := newConfigBuilder().
		withFlags(args).
		withEnv().
		withJSON().
		withDefaults()

	cfg, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	return cfg, b.rest, nil
}

func defaults() *ClientConfig {
	return &ClientConfig{
		API: API{
			URL:            defaultAPIURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Search: Search{
			PageSize: defaultPageSize,
		},
		Storage: Storage{
			ProfilesDSN: defaultProfilesDSN(),
		},
		Log: Log{
			Level: defaultLogLevel,
		},
	}
}

// defaultProfilesDSN places the profile database in the per-user config
// directory, falling back to the working directory.
func defaultProfilesDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appDirName, "profiles.db")
	}

	return filepath.Join(dir, appDirName, "profiles.db")
}

// String renders the config without secrets, for debug logging.
func (cfg *ClientConfig) String() string {
	return fmt.Sprintf("base=%q api=%q user=%q timeout=%s page=%d profile=%q",
		cfg.API.BaseURL, cfg.API.URL, cfg.API.Username, cfg.API.RequestTimeout, cfg.Search.PageSize, cfg.Profile)
}
