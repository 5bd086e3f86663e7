// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// ErrorResponse is the body szurubooru sends with every non-2xx status.
type ErrorResponse struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// UploadResponse is returned by POST /uploads.
type UploadResponse struct {
	Token string `json:"token"`
}

// Page is one page of a listing endpoint (/posts/, /tags/, /pools/).
// Results are kept as raw field maps so the resource engine can own them.
type Page struct {
	Query   string           `json:"query"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	Total   int              `json:"total"`
	Results []map[string]any `json:"results"`
}

// SimilarPost is one approximate match of a reverse image search.
type SimilarPost struct {
	Distance json.Number    `json:"distance"`
	Post     map[string]any `json:"post"`
}

// ReverseSearchResponse is returned by POST /posts/reverse-search.
type ReverseSearchResponse struct {
	ExactPost    map[string]any `json:"exactPost"`
	SimilarPosts []SimilarPost  `json:"similarPosts"`
}

// TagMergeRequest is the body of POST /tag-merge. Versions are the opaque
// tokens last seen for each tag.
type TagMergeRequest struct {
	RemoveVersion  any    `json:"removeVersion"`
	Remove         string `json:"remove"`
	MergeToVersion any    `json:"mergeToVersion"`
	MergeTo        string `json:"mergeTo"`
}

// ReverseSearchRequest is the body of POST /posts/reverse-search.
type ReverseSearchRequest struct {
	ContentToken string `json:"contentToken"`
}
