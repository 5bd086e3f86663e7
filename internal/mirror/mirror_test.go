// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package mirror

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/config"
	"github.com/MKhiriev/go-szuru/internal/fakebooru"
	"github.com/MKhiriev/go-szuru/internal/service"
	"github.com/MKhiriev/go-szuru/models"
)

func newBooru(t *testing.T) (*service.Client, *fakebooru.Server) {
	t.Helper()

	booru := fakebooru.New()
	srv := httptest.NewServer(booru.Handler())
	t.Cleanup(srv.Close)

	tr, err := adapter.NewHTTPTransport(adapter.Options{BaseURL: srv.URL + "/"}, nil)
	require.NoError(t, err)
	return service.New(tr), booru
}

func TestMirrorer_FileSink(t *testing.T) {
	ctx := context.Background()
	client, booru := newBooru(t)

	first := booru.AddPost([]byte("first post body"), models.SafetySafe, "sky")
	second := booru.AddPost([]byte("second post body"), models.SafetySafe, "sky")
	booru.AddPost([]byte("unrelated"), models.SafetySafe, "sea")

	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)

	res, err := New(client, sink).Run(ctx, "sky", service.WithPageSize(1))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Copied)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, int64(len("first post body")+len("second post body")), res.Bytes)

	for id, want := range map[int]string{first: "first post body", second: "second post body"} {
		data, readErr := os.ReadFile(filepath.Join(dir, Key(id, "data/posts/x.dat")))
		require.NoError(t, readErr)
		assert.Equal(t, want, string(data))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMirrorer_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	client, booru := newBooru(t)
	booru.AddPost([]byte("body"), models.SafetySafe, "sky")

	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	_, err = New(client, sink).Run(ctx, "sky")
	require.NoError(t, err)

	res, err := New(client, sink).Run(ctx, "sky")
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)

	res, err = New(client, sink, WithOverwrite()).Run(ctx, "sky")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Copied)
}

func TestMirrorer_EagerSearch(t *testing.T) {
	ctx := context.Background()
	client, booru := newBooru(t)
	booru.AddPost([]byte("body"), models.SafetySafe)

	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	booru.ResetRequests()
	_, err = New(client, sink).Run(ctx, "")
	require.NoError(t, err)

	for _, req := range booru.Requests() {
		p := strings.TrimSuffix(req.Path, "/")
		assert.NotEqual(t, "/api/post/1", p)
		if p == "/api/posts" {
			assert.Empty(t, req.Query.Get("fields"))
		}
	}
}

type failingSink struct{ err error }

func (s failingSink) Exists(context.Context, string) (bool, error)      { return false, nil }
func (s failingSink) Put(context.Context, string, []byte, string) error { return s.err }

func TestMirrorer_SinkError(t *testing.T) {
	ctx := context.Background()
	client, booru := newBooru(t)
	booru.AddPost([]byte("body"), models.SafetySafe)

	boom := errors.New("disk full")
	res, err := New(client, failingSink{err: boom}).Run(ctx, "")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Post #1")
	assert.Equal(t, Result{}, res)
}

func TestKey(t *testing.T) {
	tests := []struct {
		id   int
		url  string
		want string
	}{
		{id: 1, url: "https://example.com/booru/data/posts/1_abc.png", want: "1.png"},
		{id: 7, url: "http://h/data/posts/7.webm?x=1", want: "7.webm"},
		{id: 3, url: "http://h/data/posts/3", want: "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.id, tt.url))
	}
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()

	sink, err := NewSink(ctx, config.Mirror{Dir: filepath.Join(t.TempDir(), "out")})
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, sink)

	_, err = NewSink(ctx, config.Mirror{})
	assert.ErrorIs(t, err, ErrNoDestination)
}
