// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package resource implements the synchronization engine shared by every
// szurubooru object kind.
//
// A [Resource] keeps two maps keyed by wire field name: committed, the last
// state confirmed by the server, and pending, local edits not yet sent.
// Reads prefer pending over committed and fetch the object once when a field
// is missing from both. [Resource.Push] sends pending edits with the known
// version token; [Resource.Pull] replaces everything with server truth.
//
// Per-kind behavior (paths, lazy field sets, value transforms, the request
// body projection) is declared as data in a [Kind].
package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/logger"
)

const versionKey = "version"

// Resource is a local proxy for one server-side object. It is not safe for
// concurrent use.
type Resource struct {
	kind      *Kind
	transport adapter.Transport

	committed map[string]any
	pending   map[string]any
}

// New returns a resource of kind k seeded with a copy of committed, which
// may be partial (for example just {"id": 7}) or nil for a new object.
func New(k *Kind, t adapter.Transport, committed map[string]any) *Resource {
	seed := make(map[string]any, len(committed))
	for key, v := range committed {
		seed[key] = cloneValue(v)
	}

	return &Resource{
		kind:      k,
		transport: t,
		committed: seed,
		pending:   make(map[string]any),
	}
}

// Kind returns the kind descriptor of r.
func (r *Resource) Kind() *Kind {
	return r.kind
}

// Transport returns the transport r talks through.
func (r *Resource) Transport() adapter.Transport {
	return r.transport
}

// Get returns the presentation value of key. Pending edits win over
// committed state. A key missing from both triggers one Pull; if it is
// still missing the result is ErrFieldNotPresent.
//
// Lists are returned as fresh slices: mutating them does not change r.
func (r *Resource) Get(ctx context.Context, key string) (any, error) {
	return r.get(ctx, key, true)
}

func (r *Resource) get(ctx context.Context, key string, refresh bool) (any, error) {
	if v, ok := r.pending[key]; ok {
		return r.present(key, v), nil
	}
	if v, ok := r.committed[key]; ok {
		return r.present(key, v), nil
	}
	if !refresh {
		return nil, fieldErr(key, ErrFieldNotPresent)
	}

	if err := r.Pull(ctx); err != nil {
		return nil, err
	}
	return r.get(ctx, key, false)
}

// Set stages value as a pending edit of key. When the field is list-valued
// value must be a slice or array; its elements are copied in order. An
// unknown key triggers one Pull; if it is still unknown the result is
// ErrFieldNotPresent. The field's write transform is applied before the
// value is stored, and a failing transform leaves r unchanged.
func (r *Resource) Set(ctx context.Context, key string, value any) error {
	return r.set(ctx, key, value, true)
}

func (r *Resource) set(ctx context.Context, key string, value any, refresh bool) error {
	f := r.kind.field(key)
	if f.Multi {
		if _, ok := toList(value); !ok {
			return fieldErr(key, ErrInvalidArgument)
		}
	}

	current, known := r.committed[key]
	if !known {
		if !refresh {
			return fieldErr(key, ErrFieldNotPresent)
		}
		if err := r.Pull(ctx); err != nil {
			return err
		}
		return r.set(ctx, key, value, false)
	}

	if f.Multi || isList(current) {
		list, ok := toList(value)
		if !ok {
			return fieldErr(key, ErrInvalidArgument)
		}
		value = list
	}

	wire, err := r.applyWrite(ctx, f, value)
	if err != nil {
		return err
	}

	r.pending[key] = wire
	return nil
}

// SetRaw stages a wire value without a presence check or transform. It is
// used for write-only keys such as upload tokens.
func (r *Resource) SetRaw(key string, value any) {
	r.pending[key] = value
}

// FileURL resolves the "<name>Url" field of r to an absolute content URL.
// A missing field triggers one Pull.
func (r *Resource) FileURL(ctx context.Context, name string) (string, error) {
	return r.fileURL(ctx, name+"Url", true)
}

func (r *Resource) fileURL(ctx context.Context, key string, refresh bool) (string, error) {
	if v, ok := r.committed[key]; ok {
		rel, isString := v.(string)
		if !isString || rel == "" {
			return "", fieldErr(key, ErrFieldNotPresent)
		}
		return r.transport.DataURL(rel), nil
	}
	if !refresh {
		return "", fieldErr(key, ErrFieldNotPresent)
	}

	if err := r.Pull(ctx); err != nil {
		return "", err
	}
	return r.fileURL(ctx, key, false)
}

// Pull fetches the full object and replaces the committed state with it.
// Pending edits are discarded.
func (r *Resource) Pull(ctx context.Context) error {
	data, err := r.fetch(ctx)
	if err != nil {
		return err
	}

	return r.Update(data, true)
}

// PullChecked fetches the full object like Pull but refuses to drop a
// pending edit that the server state neither confirms nor leaves untouched.
// See [Resource.Update].
func (r *Resource) PullChecked(ctx context.Context) error {
	data, err := r.fetch(ctx)
	if err != nil {
		return err
	}

	return r.Update(data, false)
}

func (r *Resource) fetch(ctx context.Context) (map[string]any, error) {
	parts, err := r.kind.InstancePath(r.committed)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug().
		Str("kind", r.kind.Name).
		Strs("path", parts).
		Msg("pulling resource")

	return r.transport.Call(ctx, http.MethodGet, parts, nil, nil)
}

// Update replaces the committed state with data and clears pending edits.
//
// Unless force is set, every key of data that has a pending edit is checked
// first: the edit may be dropped only if it equals the prior committed value
// or the incoming value. Relational fields are compared by the identifiers
// their Collapse yields. Otherwise a FieldError wrapping ErrNotSynchronized
// is returned and r is left unchanged.
func (r *Resource) Update(data map[string]any, force bool) error {
	if !force {
		keys := make([]string, 0, len(data))
		for key := range data {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			pending, ok := r.pending[key]
			if !ok {
				continue
			}
			pending = r.collapse(key, pending)
			if valuesEqual(r.collapse(key, r.committed[key]), pending) {
				continue
			}
			if valuesEqual(r.collapse(key, data[key]), pending) {
				continue
			}
			return fieldErr(key, ErrNotSynchronized)
		}
	}

	if data == nil {
		data = make(map[string]any)
	}
	r.committed = data
	r.pending = make(map[string]any)
	return nil
}

// Push sends the pending edits. With a known version the object is updated
// in place and the version is attached; without one it is created. The
// server response becomes the committed state.
//
// Only keys listed in Kind.Serializable are sent. Other pending edits are
// discarded along with the rest once the call succeeds.
func (r *Resource) Push(ctx context.Context) error {
	body := make(map[string]any, len(r.kind.Serializable)+1)
	for _, key := range r.kind.Serializable {
		if v, ok := r.pending[key]; ok {
			body[key] = r.collapse(key, v)
		}
	}

	var (
		method string
		parts  []string
	)
	if r.HasVersion() {
		var err error
		if parts, err = r.kind.InstancePath(r.committed); err != nil {
			return err
		}
		method = http.MethodPut
		body[versionKey] = r.committed[versionKey]
	} else {
		method = http.MethodPost
		parts = r.kind.createPath()
	}

	logger.FromContext(ctx).Debug().
		Str("kind", r.kind.Name).
		Str("method", method).
		Strs("path", parts).
		Int("fields", len(body)).
		Msg("pushing resource")

	data, err := r.transport.Call(ctx, method, parts, nil, body)
	if err != nil {
		return err
	}

	return r.Update(data, true)
}

// Synchronized reports whether r has no pending edits.
func (r *Resource) Synchronized() bool {
	return len(r.pending) == 0
}

// Version returns the committed version token, or nil.
func (r *Resource) Version() any {
	return r.committed[versionKey]
}

// HasVersion reports whether r has been fetched from or created on the
// server.
func (r *Resource) HasVersion() bool {
	switch v := r.committed[versionKey].(type) {
	case nil:
		return false
	case json.Number:
		return v != ""
	case string:
		return v != ""
	default:
		return true
	}
}

// Committed returns the raw committed wire value of key without a refresh.
func (r *Resource) Committed(key string) (any, bool) {
	v, ok := r.committed[key]
	return cloneValue(v), ok
}

// Pending returns the raw pending wire value of key.
func (r *Resource) Pending(key string) (any, bool) {
	v, ok := r.pending[key]
	return cloneValue(v), ok
}

// Clear drops all local state. A cleared resource has no identity and can
// only be reused by seeding it again through a Pull on a new resource.
func (r *Resource) Clear() {
	r.committed = make(map[string]any)
	r.pending = make(map[string]any)
}
