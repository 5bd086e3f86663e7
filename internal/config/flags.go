// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"fmt"
	"io"
)

// ParseFlags parses the global flags that precede the command name and
// returns them as a [ClientConfig] together with the remaining arguments.
//
// Flags:
//
//	-profile saved connection profile name
//	-base-url booru base URL
//	-api-url API URL, absolute or relative to the base URL
//	-user username
//	-password password (basic auth)
//	-token login token (token auth)
//	-ask-password prompt for the password on the terminal
//	-timeout request timeout (e.g., "30s", "1m")
//	-page-size listing page size
//	-progress show a progress bar while searching
//	-profiles-dsn saved-profile database (SQLite path or postgres:// URL)
//	-log-file log file path
//	-log-level log level
//	-c/-config json file path with configs
func ParseFlags(args []string) (*ClientConfig, []string, error) {
	var cfg ClientConfig
	var jsonConfigPath string

	fs := newFlagSet(&cfg, &jsonConfigPath)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("error parsing flags: %w", err)
	}

	cfg.JSONFilePath = jsonConfigPath
	return &cfg, fs.Args(), nil
}

// Usage renders the global flag help.
func Usage(w io.Writer) {
	var cfg ClientConfig
	var jsonConfigPath string

	fs := newFlagSet(&cfg, &jsonConfigPath)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func newFlagSet(cfg *ClientConfig, jsonConfigPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet("szuru", flag.ContinueOnError)

	fs.StringVar(&cfg.Profile, "profile", "", "Saved connection profile")
	fs.StringVar(&cfg.API.BaseURL, "base-url", "", "Booru base URL")
	fs.StringVar(&cfg.API.URL, "api-url", "", "API URL (absolute or relative to base URL)")
	fs.StringVar(&cfg.API.Username, "user", "", "Username")
	fs.StringVar(&cfg.API.Password, "password", "", "Password")
	fs.StringVar(&cfg.API.Token, "token", "", "Login token")
	fs.BoolVar(&cfg.API.AskPassword, "ask-password", false, "Prompt for the password")
	fs.DurationVar(&cfg.API.RequestTimeout, "timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.IntVar(&cfg.Search.PageSize, "page-size", 0, "Listing page size")
	fs.BoolVar(&cfg.Search.Progress, "progress", false, "Show search progress")
	fs.StringVar(&cfg.Storage.ProfilesDSN, "profiles-dsn", "", "Saved-profile database")
	fs.StringVar(&cfg.Log.File, "log-file", "", "Log file path")
	fs.StringVar(&cfg.Log.Level, "log-level", "", "Log level")
	fs.StringVar(jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(jsonConfigPath, "config", "", "JSON config file path (alias)")

	return fs
}
