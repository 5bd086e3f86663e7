// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// Category is a tag or pool category as listed by /tag-categories and
// /pool-categories. Exactly one category per listing is expected to carry
// Default.
type Category struct {
	Name    string      `json:"name"`
	Color   string      `json:"color"`
	Usages  int         `json:"usages"`
	Order   int         `json:"order,omitempty"`
	Default bool        `json:"default"`
	Version json.Number `json:"version,omitempty"`
}

// CategoryList is the response of a category listing endpoint.
type CategoryList struct {
	Results []Category `json:"results"`
}
