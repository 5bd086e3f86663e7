// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"context"
	"strings"
)

// ReadFunc converts one wire value into its presentation form.
type ReadFunc func(owner *Resource, wire any) any

// WriteFunc converts one presentation value into its wire form. It may touch
// the network (for example to read the name of a related tag).
type WriteFunc func(ctx context.Context, owner *Resource, value any) (any, error)

// Field describes how one wire key is presented. Transforms are applied per
// element when the value is a list; nil never reaches them.
type Field struct {
	Key string

	// Multi marks the field as list-valued even when the committed value is
	// null.
	Multi bool

	Read  ReadFunc
	Write WriteFunc
}

// Kind parameterizes the engine for one resource type. It carries no logic
// of its own beyond path construction.
type Kind struct {
	Name string

	// InstancePath builds the path of one object from its committed state.
	InstancePath func(committed map[string]any) ([]string, error)

	// CollectionPath is the listing endpoint.
	CollectionPath []string

	// CreatePath overrides CollectionPath for creation. Only needed where
	// the server's create endpoint is not the listing endpoint.
	CreatePath []string

	// LazyFields is the reduced field set requested during bulk listing.
	LazyFields []string

	// Fields registers transforms by wire key. Unregistered keys pass
	// through unchanged.
	Fields map[string]Field

	// Serializable lists the pending keys that are sent by Push.
	Serializable []string

	// Collapse reduces relational values to their wire identifiers in the
	// request body, per element for lists.
	Collapse map[string]func(any) any
}

// LazyFieldsParam renders LazyFields for the "fields" query parameter.
func (k *Kind) LazyFieldsParam() string {
	return strings.Join(k.LazyFields, ",")
}

func (k *Kind) createPath() []string {
	if len(k.CreatePath) > 0 {
		return k.CreatePath
	}
	return k.CollectionPath
}

func (k *Kind) field(key string) Field {
	if f, ok := k.Fields[key]; ok {
		return f
	}
	return Field{Key: key}
}
