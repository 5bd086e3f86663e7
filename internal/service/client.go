// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service exposes szurubooru posts, tags and pools on top of the
// resource engine.
//
// [Client] is the entry point: it fetches objects by identity, creates new
// ones, runs paginated and reverse-image searches and uploads content. The
// returned [Post], [Tag] and [Pool] values load missing fields on demand and
// stage edits locally until Push.
package service

import (
	"context"
	"io"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/resource"
	"github.com/MKhiriev/go-szuru/models"
)

// Client binds the resource kinds to one transport.
type Client struct {
	transport adapter.Transport
}

// New returns a Client talking through t.
func New(t adapter.Transport) *Client {
	return &Client{transport: t}
}

// Transport returns the transport the client was built with.
func (c *Client) Transport() adapter.Transport {
	return c.transport
}

// Post fetches the post with the given id.
func (c *Client) Post(ctx context.Context, id int) (*Post, error) {
	p := c.PostRef(id)
	if err := p.Pull(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// PostRef returns a post that only knows its id. Fields are fetched on first
// access.
func (c *Client) PostRef(id int) *Post {
	return newPost(c.transport, map[string]any{"id": idNumber(id)})
}

// NewPost creates a post from uploaded content. The post starts without tags.
func (c *Client) NewPost(ctx context.Context, content models.FileToken, safety models.Safety) (*Post, error) {
	if err := validateSafety(safety); err != nil {
		return nil, err
	}

	p := newPost(c.transport, nil)
	p.res.SetRaw("tags", []any{})
	p.res.SetRaw("safety", string(safety))
	p.res.SetRaw("contentToken", content.Token)

	if err := p.Push(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Tag fetches the tag with the given name.
func (c *Client) Tag(ctx context.Context, name string) (*Tag, error) {
	t := c.TagRef(name)
	if err := t.Pull(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// TagRef returns a tag that only knows its name.
func (c *Client) TagRef(name string) *Tag {
	return newTag(c.transport, map[string]any{"names": []any{name}})
}

// NewTag creates a tag in the server's default tag category.
func (c *Client) NewTag(ctx context.Context, name string) (*Tag, error) {
	category, err := c.DefaultTagCategory(ctx)
	if err != nil {
		return nil, err
	}

	t := newTag(c.transport, nil)
	t.res.SetRaw("names", []any{name})
	t.res.SetRaw("category", category)

	if err = t.Push(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Pool fetches the pool with the given id.
func (c *Client) Pool(ctx context.Context, id int) (*Pool, error) {
	p := c.PoolRef(id)
	if err := p.Pull(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// PoolRef returns a pool that only knows its id.
func (c *Client) PoolRef(id int) *Pool {
	return newPool(c.transport, map[string]any{"id": idNumber(id)})
}

// NewPool creates an empty pool named name in the default pool category.
func (c *Client) NewPool(ctx context.Context, name string) (*Pool, error) {
	return c.NewPoolNames(ctx, []string{name})
}

// NewPoolNames creates an empty pool with several names; the first one is
// primary.
func (c *Client) NewPoolNames(ctx context.Context, names []string) (*Pool, error) {
	if len(names) == 0 {
		return nil, &resource.FieldError{Field: "names", Err: resource.ErrInvalidArgument}
	}

	category, err := c.DefaultPoolCategory(ctx)
	if err != nil {
		return nil, err
	}

	p := newPool(c.transport, nil)
	p.res.SetRaw("names", stringsToAny(names))
	p.res.SetRaw("category", category)
	p.res.SetRaw("posts", []any{})

	if err = p.Push(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// UploadFile uploads the file at path for later use as post content or
// as a reverse-search query.
func (c *Client) UploadFile(ctx context.Context, path string) (models.FileToken, error) {
	return c.transport.UploadFile(ctx, path)
}

// Upload uploads the content of r under the given file name.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (models.FileToken, error) {
	return c.transport.Upload(ctx, name, r)
}
