// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Safety is the content rating of a post.
type Safety string

const (
	SafetySafe    Safety = "safe"
	SafetySketchy Safety = "sketchy"
	SafetyUnsafe  Safety = "unsafe"
)

// Valid reports whether s is one of the ratings the server accepts.
func (s Safety) Valid() bool {
	switch s {
	case SafetySafe, SafetySketchy, SafetyUnsafe:
		return true
	}
	return false
}
