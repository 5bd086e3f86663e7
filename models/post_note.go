// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Point is a single polygon vertex of a post note. Coordinates are relative
// to the post canvas (0..1).
type Point struct {
	X float64
	Y float64
}

// PostNote is a text annotation attached to a region of a post.
// It has no identity of its own; it lives inside the owning post's notes list.
type PostNote struct {
	Polygon []Point
	Text    string
}
