// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	ErrNoDefaultCategory        = errors.New("no default category")
	ErrAmbiguousDefaultCategory = errors.New("more than one default category")
)
