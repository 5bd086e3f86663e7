// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-szuru/internal/resource"
	"github.com/MKhiriev/go-szuru/models"
)

var (
	postKind *resource.Kind
	tagKind  *resource.Kind
	poolKind *resource.Kind
)

// The kinds refer to each other through their transforms, so they are
// assembled in init rather than in var initializers.
func init() {
	tagRef := resource.Field{Multi: true, Read: readTag, Write: writeTag}
	postRef := resource.Field{Multi: true, Read: readPost, Write: writePost}

	postKind = &resource.Kind{
		Name:           "post",
		InstancePath:   idPath("post"),
		CollectionPath: []string{"posts"},
		LazyFields: []string{
			"id", "thumbnailUrl", "type", "safety", "score",
			"favoriteCount", "commentCount", "tags", "version",
		},
		Fields: map[string]resource.Field{
			"tags":      withKey(tagRef, "tags"),
			"relations": withKey(postRef, "relations"),
			"notes":     {Key: "notes", Multi: true, Read: readNote, Write: writeNote},
			"flags":     {Key: "flags", Multi: true},
		},
		Serializable: []string{
			"tags", "safety", "source", "relations", "notes",
			"flags", "contentToken", "thumbnailToken",
		},
		Collapse: map[string]func(any) any{
			"tags":      firstName,
			"relations": idOf,
		},
	}

	tagKind = &resource.Kind{
		Name:           "tag",
		InstancePath:   tagPath,
		CollectionPath: []string{"tags"},
		LazyFields:     []string{"names", "category", "usages"},
		Fields: map[string]resource.Field{
			"names":        {Key: "names", Multi: true},
			"implications": withKey(tagRef, "implications"),
			"suggestions":  withKey(tagRef, "suggestions"),
		},
		Serializable: []string{"names", "category", "description", "implications", "suggestions"},
		Collapse: map[string]func(any) any{
			"implications": firstName,
			"suggestions":  firstName,
		},
	}

	poolKind = &resource.Kind{
		Name:           "pool",
		InstancePath:   idPath("pool"),
		CollectionPath: []string{"pools"},
		// the server creates pools at /pool, not at the listing endpoint
		CreatePath: []string{"pool"},
		LazyFields: []string{"id", "names", "category", "description", "postCount"},
		Fields: map[string]resource.Field{
			"names": {Key: "names", Multi: true},
			"posts": withKey(postRef, "posts"),
		},
		Serializable: []string{"names", "category", "description", "posts"},
		Collapse: map[string]func(any) any{
			"posts": idOf,
		},
	}
}

func withKey(f resource.Field, key string) resource.Field {
	f.Key = key
	return f
}

func idPath(segment string) func(map[string]any) ([]string, error) {
	return func(committed map[string]any) ([]string, error) {
		id, ok := committed["id"]
		if !ok || id == nil {
			return nil, &resource.FieldError{Field: "id", Err: resource.ErrFieldNotPresent}
		}
		return []string{segment, asString(id)}, nil
	}
}

func tagPath(committed map[string]any) ([]string, error) {
	name := firstName(committed)
	if name == nil {
		return nil, &resource.FieldError{Field: "names", Err: resource.ErrFieldNotPresent}
	}
	return []string{"tag", asString(name)}, nil
}

func readTag(owner *resource.Resource, wire any) any {
	return newTag(owner.Transport(), asMap(wire))
}

// writeTag accepts a *Tag or a bare tag name.
func writeTag(ctx context.Context, _ *resource.Resource, v any) (any, error) {
	switch tag := v.(type) {
	case *Tag:
		names, err := tag.Names(ctx)
		if err != nil {
			return nil, err
		}
		category, err := tag.Category(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"names": stringsToAny(names), "category": category}, nil
	case string:
		if tag == "" {
			return nil, &resource.FieldError{Field: "names", Err: resource.ErrInvalidArgument}
		}
		return map[string]any{"names": []any{tag}}, nil
	default:
		return nil, fmt.Errorf("tag reference of type %T: %w", v, resource.ErrInvalidArgument)
	}
}

func readPost(owner *resource.Resource, wire any) any {
	return newPost(owner.Transport(), asMap(wire))
}

// writePost accepts a *Post or a bare post id.
func writePost(ctx context.Context, _ *resource.Resource, v any) (any, error) {
	switch post := v.(type) {
	case *Post:
		id, err := post.res.Get(ctx, "id")
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id}, nil
	case int:
		return map[string]any{"id": idNumber(post)}, nil
	default:
		return nil, fmt.Errorf("post reference of type %T: %w", v, resource.ErrInvalidArgument)
	}
}

func readNote(_ *resource.Resource, wire any) any {
	m := asMap(wire)
	note := models.PostNote{Text: asString(m["text"])}

	polygon, _ := m["polygon"].([]any)
	note.Polygon = make([]models.Point, 0, len(polygon))
	for _, raw := range polygon {
		xy, _ := raw.([]any)
		if len(xy) != 2 {
			continue
		}
		x, _ := asFloat(xy[0])
		y, _ := asFloat(xy[1])
		note.Polygon = append(note.Polygon, models.Point{X: x, Y: y})
	}

	return note
}

func writeNote(_ context.Context, _ *resource.Resource, v any) (any, error) {
	note, ok := v.(models.PostNote)
	if !ok {
		return nil, fmt.Errorf("note of type %T: %w", v, resource.ErrInvalidArgument)
	}

	polygon := make([]any, len(note.Polygon))
	for i, p := range note.Polygon {
		polygon[i] = []any{p.X, p.Y}
	}

	return map[string]any{"polygon": polygon, "text": note.Text}, nil
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
