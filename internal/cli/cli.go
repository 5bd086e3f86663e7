// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli implements the szuru command-line front end. Each command
// maps onto one or two client operations and prints a plain-text summary
// of the result.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/MKhiriev/go-szuru/internal/config"
	"github.com/MKhiriev/go-szuru/internal/crypto"
	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/models"
)

const usageText = `usage: szuru [global flags] <command> [args]

commands:
  post show <id>
  post create <file> [-safety s] [-tags a,b]
  post tag <id> +add -remove ...
  post safety <id> <safe|sketchy|unsafe>
  post flag <id> <loop|sound> <on|off>
  tag show <name>
  tag create <name> [-category c]
  tag rename <old> <new>
  tag merge <source> <target> [-alias]
  pool show <id>
  pool create <name> [-category c]
  pool add <id> <postID>...
  search posts|tags|pools [query] [-page-size n] [-eager] [-progress] [-limit n]
  search image <file>
  url <postID> [-thumbnail] [-copy]
  mirror [query] [-dir d | -s3-bucket b] [-overwrite]
  profile save|show|rm <name>
  profile list
  version

global flags:
`

type command func(ctx context.Context, s *session, args []string) error

// App runs one command line.
type App struct {
	build  models.AppBuildInfo
	stdout io.Writer
	stderr io.Writer

	readPassword   func() ([]byte, error)
	writeClipboard func(string) error
	progressInput  io.Reader
	keychain       crypto.Keychain

	commands map[string]command
}

// New returns an App printing to stdout and stderr.
func New(build models.AppBuildInfo, stdout, stderr io.Writer) *App {
	a := &App{
		build:          build,
		stdout:         stdout,
		stderr:         stderr,
		readPassword:   readTerminalPassword,
		writeClipboard: clipboard.WriteAll,
		keychain:       crypto.NewKeychain(),
	}
	a.commands = map[string]command{
		"post":    a.runPost,
		"tag":     a.runTag,
		"pool":    a.runPool,
		"search":  a.runSearch,
		"url":     a.runURL,
		"mirror":  a.runMirror,
		"profile": a.runProfile,
		"version": a.runVersion,
	}
	// the progress bar listens for q/ctrl+c only on an interactive stdin
	if term.IsTerminal(int(os.Stdin.Fd())) {
		a.progressInput = os.Stdin
	}
	return a
}

func readTerminalPassword() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// Run executes args (without the program name) and returns the process exit
// status.
func (a *App) Run(ctx context.Context, args []string) int {
	cfg, rest, err := config.GetClientConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			a.usage()
			return 0
		}
		fmt.Fprintf(a.stderr, "szuru: %v\n", err)
		return 2
	}
	if len(rest) == 0 {
		a.usage()
		return 2
	}

	log := logger.NewClientLogger("szuru", cfg.Log.File, cfg.Log.Level)
	ctx = log.WithContext(ctx)
	log.Debug().Str("config", cfg.String()).Strs("args", rest).Msg("starting")

	s := &session{app: a, cfg: cfg, log: log}
	defer s.close()

	if err = a.dispatch(ctx, s, rest); err != nil {
		log.Debug().Err(err).Msg("command failed")
		fmt.Fprintf(a.stderr, "szuru: %v\n", err)
		if errors.Is(err, ErrUsage) || errors.Is(err, ErrUnknownCommand) {
			a.usage()
			return 2
		}
		return 1
	}

	return 0
}

func (a *App) dispatch(ctx context.Context, s *session, args []string) error {
	cmd, ok := a.commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	return cmd(ctx, s, args[1:])
}

func (a *App) usage() {
	fmt.Fprint(a.stderr, usageText)
	config.Usage(a.stderr)
}

func (a *App) runVersion(_ context.Context, _ *session, _ []string) error {
	_, err := fmt.Fprint(a.stdout, a.build.String())
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

// newFlagSet returns a flag set for a subcommand. Errors are reported by
// Run, so the set itself stays quiet.
func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs parses fs flags wherever they appear among args and returns
// the positional arguments in order. Everything after "--" is positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var tail []string
	if i := slices.Index(args, "--"); i >= 0 {
		args, tail = args[:i], args[i+1:]
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return append(positional, tail...), nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func needArgs(args []string, n int, what string) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %s", ErrUsage, what)
	}
	return nil
}
