// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"net/http"
)

var (
	// ErrConfiguration is returned by NewHTTPTransport for malformed URLs and
	// inconsistent credentials.
	ErrConfiguration = errors.New("invalid transport configuration")

	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
)

var statusSentinels = map[int]error{
	http.StatusBadRequest:          ErrBadRequest,
	http.StatusUnauthorized:        ErrUnauthorized,
	http.StatusForbidden:           ErrForbidden,
	http.StatusNotFound:            ErrNotFound,
	http.StatusConflict:            ErrConflict,
	http.StatusInternalServerError: ErrInternalServerError,
}

// HTTPError is a non-2xx answer from the server. Name and Description come
// from the szurubooru error body when it could be decoded; Body always holds
// the raw text.
type HTTPError struct {
	StatusCode  int
	Name        string
	Description string
	Body        string
}

func (e *HTTPError) Error() string {
	if e.Name != "" {
		return e.Name + ": " + e.Description
	}
	if e.Body != "" {
		return e.Body
	}

	return http.StatusText(e.StatusCode)
}

// Is reports whether target is the status sentinel for e.StatusCode.
func (e *HTTPError) Is(target error) bool {
	sentinel, ok := statusSentinels[e.StatusCode]
	return ok && sentinel == target
}
