// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

var (
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted secret")
	ErrMalformedSecret = errors.New("malformed sealed secret")
	ErrEmptyPassphrase = errors.New("empty passphrase")
)
