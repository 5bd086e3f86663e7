// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/internal/resource"
	"github.com/MKhiriev/go-szuru/models"
)

// Tag is a szurubooru tag, addressed by its primary name.
type Tag struct {
	res *resource.Resource
}

func newTag(t adapter.Transport, committed map[string]any) *Tag {
	return &Tag{res: resource.New(tagKind, t, committed)}
}

// Resource exposes the underlying engine object.
func (t *Tag) Resource() *resource.Resource { return t.res }

func (t *Tag) Pull(ctx context.Context) error        { return t.res.Pull(ctx) }
func (t *Tag) PullChecked(ctx context.Context) error { return t.res.PullChecked(ctx) }
func (t *Tag) Push(ctx context.Context) error        { return t.res.Push(ctx) }
func (t *Tag) Synchronized() bool                    { return t.res.Synchronized() }
func (t *Tag) Version() any                          { return t.res.Version() }

func (t *Tag) Names(ctx context.Context) ([]string, error) {
	v, err := t.res.Get(ctx, "names")
	if err != nil {
		return nil, err
	}
	return asStrings(v), nil
}

func (t *Tag) SetNames(ctx context.Context, names []string) error {
	return t.res.Set(ctx, "names", names)
}

// PrimaryName is the first of the tag's names.
func (t *Tag) PrimaryName(ctx context.Context) (string, error) {
	names, err := t.Names(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", &resource.FieldError{Field: "names", Err: resource.ErrFieldNotPresent}
	}
	return names[0], nil
}

// SetPrimaryName moves name to the front of the name list, adding it when
// the tag does not have it yet.
func (t *Tag) SetPrimaryName(ctx context.Context, name string) error {
	names, err := t.Names(ctx)
	if err != nil {
		return err
	}
	return t.SetNames(ctx, reorderPrimary(names, name))
}

func (t *Tag) Category(ctx context.Context) (string, error) {
	v, err := t.res.Get(ctx, "category")
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

func (t *Tag) SetCategory(ctx context.Context, category string) error {
	return t.res.Set(ctx, "category", category)
}

func (t *Tag) Description(ctx context.Context) (string, error) {
	v, err := t.res.Get(ctx, "description")
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

func (t *Tag) SetDescription(ctx context.Context, description string) error {
	return t.res.Set(ctx, "description", description)
}

func (t *Tag) Implications(ctx context.Context) ([]*Tag, error) {
	return getList[*Tag](ctx, t.res, "implications")
}

func (t *Tag) SetImplications(ctx context.Context, tags []*Tag) error {
	return t.res.Set(ctx, "implications", tags)
}

func (t *Tag) Suggestions(ctx context.Context) ([]*Tag, error) {
	return getList[*Tag](ctx, t.res, "suggestions")
}

func (t *Tag) SetSuggestions(ctx context.Context, tags []*Tag) error {
	return t.res.Set(ctx, "suggestions", tags)
}

func (t *Tag) Usages(ctx context.Context) (int, error) {
	v, err := t.res.Get(ctx, "usages")
	if err != nil {
		return 0, err
	}
	return asInt("usages", v)
}

// MergeFrom absorbs source into t on the server. Both tags must be
// synchronized and carry a version, otherwise ErrNotSynchronized is returned
// before any call is made.
//
// On success t holds the merged state and source is cleared. With
// addAsAlias the names source had are appended to t's names (skipping
// duplicates) and pushed right away; if that push fails source keeps its
// state and t keeps the names as a pending edit.
func (t *Tag) MergeFrom(ctx context.Context, source *Tag, addAsAlias bool) error {
	if !source.res.HasVersion() || !source.res.Synchronized() {
		return fmt.Errorf("merge source tag: %w", resource.ErrNotSynchronized)
	}
	if !t.res.HasVersion() || !t.res.Synchronized() {
		return fmt.Errorf("merge target tag: %w", resource.ErrNotSynchronized)
	}

	remove, err := source.PrimaryName(ctx)
	if err != nil {
		return err
	}
	mergeTo, err := t.PrimaryName(ctx)
	if err != nil {
		return err
	}
	sourceNames, err := source.Names(ctx)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Debug().
		Str("remove", remove).
		Str("merge_to", mergeTo).
		Bool("alias", addAsAlias).
		Msg("merging tags")

	data, err := t.res.Transport().Call(ctx, http.MethodPost, []string{"tag-merge"}, nil, models.TagMergeRequest{
		RemoveVersion:  source.res.Version(),
		Remove:         remove,
		MergeToVersion: t.res.Version(),
		MergeTo:        mergeTo,
	})
	if err != nil {
		return err
	}

	if err = t.res.Update(data, true); err != nil {
		return err
	}

	if !addAsAlias {
		source.res.Clear()
		return nil
	}

	names, err := t.Names(ctx)
	if err != nil {
		return err
	}
	for _, n := range sourceNames {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	if err = t.SetNames(ctx, names); err != nil {
		return err
	}
	if err = t.Push(ctx); err != nil {
		return err
	}

	source.res.Clear()
	return nil
}

// String returns the primary name from local state without a network call.
func (t *Tag) String() string {
	v, ok := t.res.Pending("names")
	if !ok {
		v, _ = t.res.Committed("names")
	}
	if names := asStrings(v); len(names) > 0 {
		return names[0]
	}
	return ""
}
