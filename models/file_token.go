// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// FileToken is a server-issued handle for content previously sent to the
// uploads endpoint. It is consumed by a single create or update call.
type FileToken struct {
	// Token is the opaque upload token returned by the server.
	Token string `json:"token"`

	// FilePath is the local path the content was read from. It is empty when
	// the upload came from an anonymous reader.
	FilePath string `json:"-"`
}

// String implements fmt.Stringer.
func (t FileToken) String() string {
	return fmt.Sprintf("<Upload token for file at %s>", t.FilePath)
}
