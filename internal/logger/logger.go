// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout the
// go-szuru client.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
// The resource engine and the search driver obtain a logger from the request
// context via FromContext, so callers decide where engine diagnostics go.
// Long-lived components such as the HTTP transport receive one at
// construction.
package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
// Embedding zerolog.Logger exposes the full zerolog API while allowing the
// application to add helper methods without modifying the upstream type.
type Logger struct {
	zerolog.Logger
}

// NewLogger constructs a *Logger for the given role label (e.g. "szuru").
//
// The logger is configured with:
//   - global log level set to Debug (all levels are emitted);
//   - a "role" field set to role;
//   - a "time" timestamp field added to every log entry;
//   - a "func" caller field that records the fully-qualified function name
//     instead of the default file:line format.
//
// Output is written to os.Stderr in JSON format so that it never mixes with
// command output printed to stdout.
func NewLogger(role string) *Logger {
	configureGlobals(zerolog.DebugLevel)
	return newWithWriter(os.Stderr, role)
}

// NewClientLogger constructs a *Logger that appends to the file at path,
// creating parent directories when needed. If path is empty or the file
// cannot be opened, output falls back to os.Stderr.
//
// level is parsed with zerolog.ParseLevel; an empty or unknown value keeps
// the Info level.
func NewClientLogger(role, path, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	configureGlobals(lvl)

	var out io.Writer = os.Stderr
	if path != "" {
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if logFile, openErr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); openErr == nil {
				out = logFile
			}
		}
	}

	return newWithWriter(out, role)
}

func configureGlobals(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"
}

func newWithWriter(w io.Writer, role string) *Logger {
	logger := zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop returns a *Logger that discards all log output.
// It is intended for use in tests and other contexts where logging is
// undesirable or would produce noise.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver. The child logger can be enriched with additional context fields
// without affecting the parent logger.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithContext returns a copy of ctx carrying l, so that FromContext called
// anywhere below (engine, transport, search) logs through it.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext extracts the zerolog.Logger stored in ctx by WithContext and
// returns it as a *Logger.
//
// If no logger has been attached to ctx, zerolog returns a disabled logger
// (or zerolog.DefaultContextLogger when set), so this function never returns
// nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
