// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/resource"
	"github.com/MKhiriev/go-szuru/models"
)

const (
	FlagLoop  = "loop"
	FlagSound = "sound"
)

// Post is a szurubooru post. Accessors that take a context may fetch the
// full post once when the field has not been loaded yet.
type Post struct {
	res *resource.Resource
}

func newPost(t adapter.Transport, committed map[string]any) *Post {
	return &Post{res: resource.New(postKind, t, committed)}
}

// Resource exposes the underlying engine object.
func (p *Post) Resource() *resource.Resource { return p.res }

func (p *Post) Pull(ctx context.Context) error        { return p.res.Pull(ctx) }
func (p *Post) PullChecked(ctx context.Context) error { return p.res.PullChecked(ctx) }
func (p *Post) Push(ctx context.Context) error        { return p.res.Push(ctx) }
func (p *Post) Synchronized() bool                    { return p.res.Synchronized() }
func (p *Post) Version() any                          { return p.res.Version() }

func (p *Post) ID(ctx context.Context) (int, error) {
	v, err := p.res.Get(ctx, "id")
	if err != nil {
		return 0, err
	}
	return asInt("id", v)
}

func (p *Post) Safety(ctx context.Context) (models.Safety, error) {
	v, err := p.res.Get(ctx, "safety")
	if err != nil {
		return "", err
	}
	return models.Safety(asString(v)), nil
}

// SetSafety rejects values outside safe, sketchy and unsafe before touching
// the post.
func (p *Post) SetSafety(ctx context.Context, safety models.Safety) error {
	if err := validateSafety(safety); err != nil {
		return err
	}
	return p.res.Set(ctx, "safety", string(safety))
}

// Source returns the source field split into lines. A missing or empty
// source yields an empty slice.
func (p *Post) Source(ctx context.Context) ([]string, error) {
	v, err := p.res.Get(ctx, "source")
	if err != nil {
		return nil, err
	}
	return splitLines(asString(v)), nil
}

func (p *Post) SetSource(ctx context.Context, lines []string) error {
	return p.res.Set(ctx, "source", strings.Join(lines, "\n"))
}

func (p *Post) Tags(ctx context.Context) ([]*Tag, error) {
	return getList[*Tag](ctx, p.res, "tags")
}

func (p *Post) SetTags(ctx context.Context, tags []*Tag) error {
	return p.res.Set(ctx, "tags", tags)
}

// SetTagNames replaces the tags by name. Unknown names are created by the
// server on push.
func (p *Post) SetTagNames(ctx context.Context, names []string) error {
	return p.res.Set(ctx, "tags", names)
}

func (p *Post) Relations(ctx context.Context) ([]*Post, error) {
	return getList[*Post](ctx, p.res, "relations")
}

func (p *Post) SetRelations(ctx context.Context, posts []*Post) error {
	return p.res.Set(ctx, "relations", posts)
}

func (p *Post) Notes(ctx context.Context) ([]models.PostNote, error) {
	return getList[models.PostNote](ctx, p.res, "notes")
}

func (p *Post) SetNotes(ctx context.Context, notes []models.PostNote) error {
	return p.res.Set(ctx, "notes", notes)
}

func (p *Post) Flags(ctx context.Context) ([]string, error) {
	v, err := p.res.Get(ctx, "flags")
	if err != nil {
		return nil, err
	}
	return asStrings(v), nil
}

// Flag reports whether name is present in the post's flag list.
func (p *Post) Flag(ctx context.Context, name string) (bool, error) {
	flags, err := p.Flags(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(flags, name), nil
}

// SetFlag adds or removes name from the flag list and stages the whole
// list. Setting a flag to its current state changes nothing.
func (p *Post) SetFlag(ctx context.Context, name string, on bool) error {
	flags, err := p.Flags(ctx)
	if err != nil {
		return err
	}

	present := slices.Contains(flags, name)
	switch {
	case on && !present:
		flags = append(flags, name)
	case !on && present:
		flags = slices.DeleteFunc(flags, func(f string) bool { return f == name })
	default:
		return nil
	}

	return p.res.Set(ctx, "flags", flags)
}

func (p *Post) Loop(ctx context.Context) (bool, error)      { return p.Flag(ctx, FlagLoop) }
func (p *Post) SetLoop(ctx context.Context, on bool) error  { return p.SetFlag(ctx, FlagLoop, on) }
func (p *Post) Sound(ctx context.Context) (bool, error)     { return p.Flag(ctx, FlagSound) }
func (p *Post) SetSound(ctx context.Context, on bool) error { return p.SetFlag(ctx, FlagSound, on) }

// ContentURL returns the absolute URL of the post's media.
func (p *Post) ContentURL(ctx context.Context) (string, error) {
	return p.res.FileURL(ctx, "content")
}

// ThumbnailURL returns the absolute URL of the post's thumbnail.
func (p *Post) ThumbnailURL(ctx context.Context) (string, error) {
	return p.res.FileURL(ctx, "thumbnail")
}

// SetContent replaces the post's media with previously uploaded content.
func (p *Post) SetContent(token models.FileToken) {
	p.res.SetRaw("contentToken", token.Token)
}

// SetThumbnail replaces the post's custom thumbnail.
func (p *Post) SetThumbnail(token models.FileToken) {
	p.res.SetRaw("thumbnailToken", token.Token)
}

func (p *Post) Type(ctx context.Context) (string, error)     { return p.stringField(ctx, "type") }
func (p *Post) MimeType(ctx context.Context) (string, error) { return p.stringField(ctx, "mimeType") }
func (p *Post) Checksum(ctx context.Context) (string, error) { return p.stringField(ctx, "checksum") }
func (p *Post) Width(ctx context.Context) (int, error)       { return p.intField(ctx, "canvasWidth") }
func (p *Post) Height(ctx context.Context) (int, error)      { return p.intField(ctx, "canvasHeight") }

func (p *Post) String() string {
	id, ok := p.res.Committed("id")
	if !ok {
		return "Post (unsaved)"
	}
	return fmt.Sprintf("Post #%s", asString(id))
}

func (p *Post) stringField(ctx context.Context, key string) (string, error) {
	v, err := p.res.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

func (p *Post) intField(ctx context.Context, key string) (int, error) {
	v, err := p.res.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return asInt(key, v)
}

func validateSafety(safety models.Safety) error {
	if !safety.Valid() {
		return &resource.FieldError{
			Field: "safety",
			Err:   fmt.Errorf("%w: %q is not one of safe, sketchy, unsafe", resource.ErrInvalidArgument, safety),
		}
	}
	return nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// getList reads a list field and asserts every element to T.
func getList[T any](ctx context.Context, res *resource.Resource, key string) ([]T, error) {
	v, err := res.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	list, _ := v.([]any)
	out := make([]T, 0, len(list))
	for _, elem := range list {
		typed, ok := elem.(T)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected element %T: %w", key, elem, resource.ErrInvalidArgument)
		}
		out = append(out, typed)
	}
	return out, nil
}
