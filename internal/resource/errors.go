// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldNotPresent is returned when a field is absent from both the
	// pending and committed state even after a refresh.
	ErrFieldNotPresent = errors.New("field is not present")
	// ErrInvalidArgument is returned for values of the wrong shape or outside
	// a field's domain. No network call is made.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotSynchronized is returned when local edits or a missing version
	// prevent an operation that needs server-confirmed state.
	ErrNotSynchronized = errors.New("resource not synchronized")
)

// FieldError ties one of the sentinels above to the wire key it concerns.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
