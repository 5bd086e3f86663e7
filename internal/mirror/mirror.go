// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package mirror

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/internal/service"
)

// Result summarizes one mirror run.
type Result struct {
	Copied  int
	Skipped int
	Bytes   int64
}

// Mirrorer copies the content of every post matching a query into a Sink.
// Objects are keyed by post id and the content file extension, so a repeated
// run only transfers posts it has not seen.
type Mirrorer struct {
	client    *service.Client
	sink      Sink
	overwrite bool
}

// Option configures a Mirrorer.
type Option func(*Mirrorer)

// WithOverwrite re-copies posts already present in the sink.
func WithOverwrite() Option {
	return func(m *Mirrorer) { m.overwrite = true }
}

// New returns a Mirrorer writing to sink.
func New(client *service.Client, sink Sink, opts ...Option) *Mirrorer {
	m := &Mirrorer{client: client, sink: sink}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run mirrors every post matching query. It stops at the first error and
// returns the counts accumulated so far.
func (m *Mirrorer) Run(ctx context.Context, query string, opts ...service.SearchOption) (Result, error) {
	log := logger.FromContext(ctx)

	var res Result
	opts = append(opts, service.WithEagerLoad())
	for post, err := range m.client.SearchPosts(ctx, query, opts...) {
		if err != nil {
			return res, err
		}

		copied, n, err := m.copyPost(ctx, post)
		if err != nil {
			return res, fmt.Errorf("mirror %s: %w", post, err)
		}
		if copied {
			res.Copied++
			res.Bytes += n
		} else {
			res.Skipped++
		}
	}

	log.Debug().
		Int("copied", res.Copied).
		Int("skipped", res.Skipped).
		Int64("bytes", res.Bytes).
		Msg("mirror finished")

	return res, nil
}

func (m *Mirrorer) copyPost(ctx context.Context, post *service.Post) (bool, int64, error) {
	id, err := post.ID(ctx)
	if err != nil {
		return false, 0, err
	}
	contentURL, err := post.ContentURL(ctx)
	if err != nil {
		return false, 0, err
	}

	key := Key(id, contentURL)
	if !m.overwrite {
		exists, existsErr := m.sink.Exists(ctx, key)
		if existsErr != nil {
			return false, 0, existsErr
		}
		if exists {
			return false, 0, nil
		}
	}

	mimeType, err := post.MimeType(ctx)
	if err != nil {
		return false, 0, err
	}

	var buf bytes.Buffer
	n, err := m.client.Transport().Download(ctx, contentURL, &buf)
	if err != nil {
		return false, 0, err
	}
	if err = m.sink.Put(ctx, key, buf.Bytes(), mimeType); err != nil {
		return false, 0, err
	}

	return true, n, nil
}

// Key names the mirrored object for post id: the id followed by the
// extension of the content URL.
func Key(id int, contentURL string) string {
	ext := ""
	if u, err := url.Parse(contentURL); err == nil {
		ext = path.Ext(u.Path)
	}
	return fmt.Sprintf("%d%s", id, ext)
}
