// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/resource"
)

// Pool is an ordered, named collection of posts.
type Pool struct {
	res *resource.Resource
}

func newPool(t adapter.Transport, committed map[string]any) *Pool {
	return &Pool{res: resource.New(poolKind, t, committed)}
}

// Resource exposes the underlying engine object.
func (p *Pool) Resource() *resource.Resource { return p.res }

func (p *Pool) Pull(ctx context.Context) error        { return p.res.Pull(ctx) }
func (p *Pool) PullChecked(ctx context.Context) error { return p.res.PullChecked(ctx) }
func (p *Pool) Push(ctx context.Context) error        { return p.res.Push(ctx) }
func (p *Pool) Synchronized() bool                    { return p.res.Synchronized() }
func (p *Pool) Version() any                          { return p.res.Version() }

func (p *Pool) ID(ctx context.Context) (int, error) {
	v, err := p.res.Get(ctx, "id")
	if err != nil {
		return 0, err
	}
	return asInt("id", v)
}

func (p *Pool) Names(ctx context.Context) ([]string, error) {
	v, err := p.res.Get(ctx, "names")
	if err != nil {
		return nil, err
	}
	return asStrings(v), nil
}

func (p *Pool) SetNames(ctx context.Context, names []string) error {
	return p.res.Set(ctx, "names", names)
}

func (p *Pool) PrimaryName(ctx context.Context) (string, error) {
	names, err := p.Names(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", &resource.FieldError{Field: "names", Err: resource.ErrFieldNotPresent}
	}
	return names[0], nil
}

// SetPrimaryName behaves like [Tag.SetPrimaryName].
func (p *Pool) SetPrimaryName(ctx context.Context, name string) error {
	names, err := p.Names(ctx)
	if err != nil {
		return err
	}
	return p.SetNames(ctx, reorderPrimary(names, name))
}

func (p *Pool) Category(ctx context.Context) (string, error) {
	v, err := p.res.Get(ctx, "category")
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

func (p *Pool) SetCategory(ctx context.Context, category string) error {
	return p.res.Set(ctx, "category", category)
}

func (p *Pool) Description(ctx context.Context) (string, error) {
	v, err := p.res.Get(ctx, "description")
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

func (p *Pool) SetDescription(ctx context.Context, description string) error {
	return p.res.Set(ctx, "description", description)
}

func (p *Pool) Posts(ctx context.Context) ([]*Post, error) {
	return getList[*Post](ctx, p.res, "posts")
}

func (p *Pool) SetPosts(ctx context.Context, posts []*Post) error {
	return p.res.Set(ctx, "posts", posts)
}

// SetPostIDs replaces the pool's posts by id.
func (p *Pool) SetPostIDs(ctx context.Context, ids []int) error {
	return p.res.Set(ctx, "posts", ids)
}

func (p *Pool) PostCount(ctx context.Context) (int, error) {
	v, err := p.res.Get(ctx, "postCount")
	if err != nil {
		return 0, err
	}
	return asInt("postCount", v)
}

// String returns the primary name from local state without a network call.
func (p *Pool) String() string {
	v, ok := p.res.Pending("names")
	if !ok {
		v, _ = p.res.Committed("names")
	}
	if names := asStrings(v); len(names) > 0 {
		return names[0]
	}
	return ""
}
