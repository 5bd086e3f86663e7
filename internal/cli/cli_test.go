// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-szuru/internal/crypto"
	"github.com/MKhiriev/go-szuru/internal/fakebooru"
	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/internal/store"
	"github.com/MKhiriev/go-szuru/models"
)

type harness struct {
	t       *testing.T
	booru   *fakebooru.Server
	baseURL string
	dsn     string

	password  string
	clipboard string
}

type result struct {
	code   int
	stdout string
	stderr string
}

func newHarness(t *testing.T, opts ...fakebooru.Option) *harness {
	t.Helper()

	booru := fakebooru.New(opts...)
	srv := httptest.NewServer(booru.Handler())
	t.Cleanup(srv.Close)

	return &harness{
		t:       t,
		booru:   booru,
		baseURL: srv.URL + "/",
		dsn:     filepath.Join(t.TempDir(), "profiles.db"),
	}
}

// run executes a command line with the server and profile store preset.
func (h *harness) run(args ...string) result {
	h.t.Helper()
	return h.runRaw(append([]string{"-base-url", h.baseURL, "-profiles-dsn", h.dsn}, args...)...)
}

func (h *harness) runRaw(args ...string) result {
	h.t.Helper()

	var stdout, stderr bytes.Buffer
	app := New(models.NewAppBuildInfo("v1.2.3", "2026-10-01", "abc123"), &stdout, &stderr)
	app.readPassword = func() ([]byte, error) { return []byte(h.password), nil }
	app.keychain = crypto.NewKeychain(crypto.WithArgonParams(1, 64, 1))
	app.writeClipboard = func(s string) error {
		h.clipboard = s
		return nil
	}

	code := app.Run(context.Background(), args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	res := h.run(args...)
	require.Equal(h.t, 0, res.code, "stderr: %s", res.stderr)
	return res.stdout
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("version")
	assert.Equal(t, "Build version: v1.2.3\nBuild date: 2026-10-01\nBuild commit: abc123\n", out)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no command", args: nil, code: 2},
		{name: "unknown command", args: []string{"frobnicate"}, code: 2},
		{name: "unknown subcommand", args: []string{"post", "burn", "1"}, code: 2},
		{name: "bad id", args: []string{"post", "show", "abc"}, code: 2},
		{name: "bad flag state", args: []string{"post", "flag", "1", "loop", "maybe"}, code: 2},
		{name: "unknown flag name", args: []string{"post", "flag", "1", "foo", "on"}, code: 2},
		{name: "missing post", args: []string{"post", "show", "42"}, code: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.run(tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
		})
	}
}

func TestHelpFlag(t *testing.T) {
	h := newHarness(t)
	res := h.runRaw("-h")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stderr, "usage: szuru")
	assert.Contains(t, res.stderr, "-base-url")
}

func TestMissingBaseURL(t *testing.T) {
	h := newHarness(t)
	t.Setenv("SZURU_API_BASE_URL", "")

	res := h.runRaw("-profiles-dsn", h.dsn, "post", "show", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "base URL is required")
}

func TestPostCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("post", "create", writeFile(t, "hello there"), "-safety", "sketchy", "-tags", "sky, cloud")
	assert.Equal(t, "Post #1\n", out)

	out = h.mustRun("post", "show", "1")
	assert.Contains(t, out, "Post #1\n")
	assert.Contains(t, out, "  safety:    sketchy\n")
	assert.Contains(t, out, "  tags:      sky cloud\n")
	assert.Contains(t, out, "/data/posts/1")

	out = h.mustRun("post", "tag", "1", "+sea", "-sky", "cloud")
	assert.Equal(t, "Post #1: cloud sea\n", out)

	out = h.mustRun("post", "safety", "1", "unsafe")
	assert.Equal(t, "Post #1: unsafe\n", out)

	out = h.mustRun("post", "flag", "1", "loop", "on")
	assert.Equal(t, "Post #1: flags loop\n", out)
	out = h.mustRun("post", "flag", "1", "loop", "off")
	assert.Equal(t, "Post #1: flags \n", out)

	res := h.run("post", "safety", "1", "spicy")
	assert.Equal(t, 1, res.code)
}

func TestTagCommands(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "created tag sky\n", h.mustRun("tag", "create", "sky"))
	assert.Equal(t, "created tag alice\n", h.mustRun("tag", "create", "alice", "-category", "character"))

	out := h.mustRun("tag", "show", "alice")
	assert.Contains(t, out, "  category:     character\n")
	assert.Contains(t, out, "  usages:       0\n")

	assert.Equal(t, "renamed sky to heaven\n", h.mustRun("tag", "rename", "sky", "heaven"))
	res := h.run("tag", "show", "sky")
	assert.Equal(t, 1, res.code)

	h.booru.AddTag("", "heavens", "firmament")
	out = h.mustRun("tag", "merge", "heavens", "heaven", "-alias")
	assert.Equal(t, "merged heavens into heaven: heaven heavens firmament\n", out)
}

func TestPoolCommands(t *testing.T) {
	h := newHarness(t)
	h.booru.AddPost([]byte("one"), models.SafetySafe)
	h.booru.AddPost([]byte("two"), models.SafetySafe)

	assert.Equal(t, "created Pool #1 trip\n", h.mustRun("pool", "create", "trip", "-category", "series"))
	assert.Equal(t, "trip: 2 posts\n", h.mustRun("pool", "add", "1", "2", "1", "2"))

	out := h.mustRun("pool", "show", "1")
	assert.Contains(t, out, "Pool #1 trip\n")
	assert.Contains(t, out, "  category: series\n")
	assert.Contains(t, out, "  posts:    Post #2 Post #1\n")
}

func TestSearchCommands(t *testing.T) {
	h := newHarness(t)
	for range 5 {
		h.booru.AddPost([]byte("x"), models.SafetySafe, "sky")
	}
	h.booru.AddPost([]byte("y"), models.SafetyUnsafe, "sea")

	out := h.mustRun("search", "posts", "sky", "-page-size", "2")
	assert.Equal(t,
		"Post #5\tsafe\tsky\nPost #4\tsafe\tsky\nPost #3\tsafe\tsky\nPost #2\tsafe\tsky\nPost #1\tsafe\tsky\n", out)

	out = h.mustRun("search", "posts", "-limit", "1", "-eager")
	assert.Equal(t, "Post #6\tunsafe\tsea\n", out)

	out = h.mustRun("search", "tags", "s*")
	assert.Equal(t, "sea\tdefault\t1\nsky\tdefault\t5\n", out)

	h.booru.AddPool("album", 1, 2)
	out = h.mustRun("search", "pools")
	assert.Equal(t, "Pool #1\talbum\t2\n", out)

	res := h.run("search", "posts", "sky", "-progress")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "5/5")
}

func TestSearchImage(t *testing.T) {
	h := newHarness(t)
	h.booru.AddPost([]byte("exact bytes"), models.SafetySafe)

	out := h.mustRun("search", "image", writeFile(t, "exact bytes"))
	assert.Equal(t, "exact\tPost #1\n", out)

	out = h.mustRun("search", "image", writeFile(t, "something else entirely, much much longer"))
	assert.Equal(t, "no similar posts\n", out)
}

func TestURLCommand(t *testing.T) {
	h := newHarness(t)
	h.booru.AddPost([]byte("body"), models.SafetySafe)

	out := h.mustRun("url", "1")
	assert.Contains(t, out, h.baseURL+"data/posts/1")
	assert.Empty(t, h.clipboard)

	out = h.mustRun("url", "1", "-thumbnail", "-copy")
	assert.Contains(t, out, h.baseURL+"data/generated-thumbnails/1")
	assert.Equal(t, out, h.clipboard+"\n")
}

func TestURLCommand_ClipboardError(t *testing.T) {
	h := newHarness(t)
	h.booru.AddPost([]byte("body"), models.SafetySafe)

	var stdout, stderr bytes.Buffer
	app := New(models.AppBuildInfo{}, &stdout, &stderr)
	app.writeClipboard = func(string) error { return errors.New("no clipboard") }

	code := app.Run(context.Background(), []string{"-base-url", h.baseURL, "-profiles-dsn", h.dsn, "url", "1", "-copy"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "copy to clipboard: no clipboard")
}

func TestMirrorCommand(t *testing.T) {
	h := newHarness(t)
	h.booru.AddPost([]byte("abc"), models.SafetySafe, "sky")
	h.booru.AddPost([]byte("defg"), models.SafetySafe, "sky")
	dir := t.TempDir()

	assert.Equal(t, "copied 2, skipped 0, 7 bytes\n", h.mustRun("mirror", "sky", "-dir", dir))
	assert.Equal(t, "copied 0, skipped 2, 0 bytes\n", h.mustRun("mirror", "sky", "-dir", dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	res := h.run("mirror", "-dir", dir, "-s3-bucket", "b")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid mirror configuration")
}

func TestProfileCommands(t *testing.T) {
	h := newHarness(t, fakebooru.WithUser("admin", "", "7c5f9d6e-1a2b-4c3d-8e9f-0a1b2c3d4e5f"))
	h.booru.AddPost([]byte("body"), models.SafetySafe)
	h.password = "profile passphrase"

	out := h.mustRun("-user", "admin", "-token", "7c5f9d6e-1a2b-4c3d-8e9f-0a1b2c3d4e5f", "profile", "save", "home")
	assert.Equal(t, "saved profile home ("+h.baseURL+")\n", out)

	out = h.mustRun("profile", "list")
	assert.Equal(t, "home\t"+h.baseURL+"\n", out)

	out = h.mustRun("profile", "show", "home")
	assert.Contains(t, out, "  user:     admin\n")
	assert.Contains(t, out, "  token:    ********\n")

	// connect through the saved profile only
	res := h.runRaw("-profiles-dsn", h.dsn, "-profile", "home", "post", "show", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Post #1")

	res = h.run("profile", "save", "not valid")
	assert.Equal(t, 1, res.code)

	assert.Equal(t, "removed profile home\n", h.mustRun("profile", "rm", "home"))
	res = h.run("profile", "rm", "home")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "profile not found")

	res = h.runRaw("-profiles-dsn", h.dsn, "-profile", "home", "post", "show", "1")
	assert.Equal(t, 1, res.code)
}

// storedProfile reads a profile straight from the harness database.
func (h *harness) storedProfile(name string) models.Profile {
	h.t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, h.dsn, logger.Nop())
	require.NoError(h.t, err)
	defer db.Close()

	p, err := store.NewProfileRepository(db).Get(ctx, name)
	require.NoError(h.t, err)
	return p
}

func TestProfileSecretsSealed(t *testing.T) {
	const token = "7c5f9d6e-1a2b-4c3d-8e9f-0a1b2c3d4e5f"
	h := newHarness(t, fakebooru.WithUser("admin", "", token))
	h.booru.AddPost([]byte("body"), models.SafetySafe)
	h.password = "open sesame"

	h.mustRun("-user", "admin", "-token", token, "profile", "save", "home")

	stored := h.storedProfile("home")
	assert.True(t, crypto.IsSealed(stored.Token))
	assert.NotContains(t, stored.Token, token)
	assert.Empty(t, stored.Password)

	res := h.runRaw("-profiles-dsn", h.dsn, "-profile", "home", "post", "show", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Profile passphrase: ")

	h.password = "wrong"
	res = h.runRaw("-profiles-dsn", h.dsn, "-profile", "home", "post", "show", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, crypto.ErrWrongPassphrase.Error())

	// the configured key is used without a prompt
	h.password = ""
	t.Setenv("SZURU_STORAGE_PROFILE_KEY", "open sesame")
	res = h.runRaw("-profiles-dsn", h.dsn, "-profile", "home", "post", "show", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "Profile passphrase: ")
}

func TestProfileWithoutSecretsNeverPrompts(t *testing.T) {
	h := newHarness(t)
	h.booru.AddPost([]byte("body"), models.SafetySafe)

	res := h.run("profile", "save", "public")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "Profile passphrase")

	res = h.runRaw("-profiles-dsn", h.dsn, "-profile", "public", "post", "show", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "Profile passphrase")
}

func TestProfilePlaintextSecretsStillLoad(t *testing.T) {
	h := newHarness(t, fakebooru.WithUser("admin", "secret", ""))
	h.booru.AddPost([]byte("body"), models.SafetySafe)

	ctx := context.Background()
	db, err := store.Open(ctx, h.dsn, logger.Nop())
	require.NoError(t, err)
	_, err = store.NewProfileRepository(db).Create(ctx, models.Profile{
		Name: "legacy", BaseURL: h.baseURL, APIURL: "api", Username: "admin", Password: "secret",
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	res := h.runRaw("-profiles-dsn", h.dsn, "-profile", "legacy", "post", "show", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "Profile passphrase")
}

func TestAskPassword(t *testing.T) {
	h := newHarness(t, fakebooru.WithUser("admin", "secret", ""))
	h.booru.AddPost([]byte("body"), models.SafetySafe)

	h.password = "wrong"
	res := h.run("-user", "admin", "-ask-password", "post", "show", "1")
	assert.Equal(t, 1, res.code)

	h.password = "secret\n"
	res = h.run("-user", "admin", "-ask-password", "post", "show", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Password: ")
}

func TestParseArgs(t *testing.T) {
	app := New(models.AppBuildInfo{}, &bytes.Buffer{}, &bytes.Buffer{})
	fs := app.newFlagSet("x")
	flagA := fs.Bool("a", false, "")
	flagN := fs.Int("n", 0, "")

	positional, err := parseArgs(fs, []string{"one", "-a", "two", "-n", "3", "--", "-three"})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "-three"}, positional)
	assert.True(t, *flagA)
	assert.Equal(t, 3, *flagN)

	_, err = parseArgs(app.newFlagSet("y"), []string{"-nope"})
	assert.ErrorIs(t, err, ErrUsage)
}
