// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import "errors"

var (
	// ErrUsage marks malformed command lines. Run prints the usage text and
	// exits with status 2.
	ErrUsage = errors.New("usage error")

	ErrUnknownCommand = errors.New("unknown command")
)
