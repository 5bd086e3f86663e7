// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer used to talk to a
// szurubooru server.
//
// The primary abstraction is [Transport], which decouples the resource
// engine from HTTP. The package ships a resty-based implementation
// ([NewHTTPTransport]) that builds API URLs, attaches authentication
// headers and decodes JSON responses.
//
// Non-2xx responses are returned as [*HTTPError]. The status sentinels in
// errors.go match it through [errors.Is] (e.g. [ErrConflict] for a 409
// version mismatch, [ErrNotFound] for 404).
package adapter

import (
	"context"
	"io"

	"github.com/MKhiriev/go-szuru/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport performs single round trips against the szurubooru API.
// Implementations must not retry and must leave callers' data untouched on
// failure.
type Transport interface {
	// Call issues method against the API path built from parts. Each part is
	// escaped as a single path segment. A non-empty query is url-encoded and
	// adds a trailing slash to the path. body, when non-nil, is sent as JSON.
	// The decoded JSON object is returned; numbers are kept as json.Number.
	Call(ctx context.Context, method string, parts []string, query map[string]string, body any) (map[string]any, error)

	// Upload sends r to the uploads endpoint under the given file name and
	// returns the token the server issued for it.
	Upload(ctx context.Context, name string, r io.Reader) (models.FileToken, error)

	// UploadFile opens the file at path and uploads it.
	UploadFile(ctx context.Context, path string) (models.FileToken, error)

	// DataURL resolves a server-relative content URL (e.g. a post's
	// contentUrl) against the public base URL.
	DataURL(rel string) string

	// Download streams the content at url into w and returns the number of
	// bytes written.
	Download(ctx context.Context, url string, w io.Writer) (int64, error)

	// Username returns the user the transport authenticates as, or "" for
	// anonymous access.
	Username() string
}
