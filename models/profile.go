// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Profile is a named, persisted set of connection parameters. It lets the
// CLI reconnect to a server without repeating URLs and credentials.
type Profile struct {
	// Name identifies the profile. Only letters and digits are allowed.
	Name string `json:"name"`

	// BaseURL is the public URL of the booru (e.g. "https://example.com/booru/").
	BaseURL string `json:"base_url"`

	// APIURL is either an absolute URL or a path relative to BaseURL.
	APIURL string `json:"api_url"`

	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
