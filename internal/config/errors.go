// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned when configuration groups are incomplete or
// contradictory.
var (
	// ErrInvalidAPIConfigs indicates missing or invalid API settings
	// (for example, no base URL or a negative request timeout).
	ErrInvalidAPIConfigs = errors.New("invalid api configuration")
	// ErrInvalidMirrorConfigs indicates that both a mirror directory and an
	// S3 bucket were configured.
	ErrInvalidMirrorConfigs = errors.New("invalid mirror configuration")
)
