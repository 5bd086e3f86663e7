// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrProfileNotFound is returned when no profile has the requested name.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileAlreadyExists is returned by Create when the name is taken.
	ErrProfileAlreadyExists = errors.New("profile already exists")

	// ErrInvalidProfileName is returned for empty names and names containing
	// anything but letters and digits.
	ErrInvalidProfileName = errors.New("profile name must be alphanumeric")
)

// Low-level database operation errors, wrapped together with the driver
// error.
var (
	ErrBuildingSQLQuery = errors.New("error building sql query")
	ErrExecutingQuery   = errors.New("error executing sql query")
	ErrScanningRow      = errors.New("failed to scan profile row")
)
