// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"context"
	"reflect"
)

// present applies the read transform of key to v, per element for lists.
func (r *Resource) present(key string, v any) any {
	f := r.kind.field(key)

	var walk func(any) any
	walk = func(v any) any {
		switch val := v.(type) {
		case nil:
			return nil
		case []any:
			out := make([]any, len(val))
			for i, elem := range val {
				out[i] = walk(elem)
			}
			return out
		default:
			if f.Read != nil {
				return f.Read(r, val)
			}
			return cloneValue(val)
		}
	}

	return walk(v)
}

func (r *Resource) applyWrite(ctx context.Context, f Field, v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			wire, err := r.applyWrite(ctx, f, elem)
			if err != nil {
				return nil, err
			}
			out[i] = wire
		}
		return out, nil
	default:
		if f.Write != nil {
			return f.Write(ctx, r, val)
		}
		return val, nil
	}
}

func (r *Resource) collapse(key string, v any) any {
	fn, ok := r.kind.Collapse[key]
	if !ok {
		return v
	}

	if list, isList := v.([]any); isList {
		out := make([]any, len(list))
		for i, elem := range list {
			if elem == nil {
				continue
			}
			out[i] = fn(elem)
		}
		return out
	}
	if v == nil {
		return nil
	}
	return fn(v)
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

// toList copies any slice or array into a []any, keeping order. Strings and
// other scalars are rejected.
func toList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return append([]any(nil), list...), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// cloneValue deep-copies the JSON containers of v so callers cannot reach
// into engine state.
func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
