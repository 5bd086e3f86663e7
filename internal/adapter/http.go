// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/models"
)

// maxErrorBody caps how much of a failed download is read for the error.
const maxErrorBody = 64 << 10

type httpTransport struct {
	client *resty.Client
	ep     endpoint

	logger *logger.Logger
}

// NewHTTPTransport constructs the resty implementation of [Transport].
// It resolves the base and API URLs from opts, picks the authentication
// scheme and configures the request timeout. Retries are not enabled.
//
// Returns an error wrapping [ErrConfiguration] if the URLs are malformed or
// the credentials are inconsistent.
func NewHTTPTransport(opts Options, log *logger.Logger) (Transport, error) {
	ep, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if ep.authHeader != "" {
		client.SetHeader("Authorization", ep.authHeader)
	}

	return &httpTransport{client: client, ep: ep, logger: log}, nil
}

// Call implements [Transport].
func (h *httpTransport) Call(ctx context.Context, method string, parts []string, query map[string]string, body any) (map[string]any, error) {
	target := h.ep.apiURL(parts, query)

	req := h.client.R().SetContext(ctx)
	if hasBody(body) {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, target)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	h.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode()).
		Dur("elapsed", resp.Time()).
		Msg("api call")

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	data, err := decodeObject(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", method, target, err)
	}

	return data, nil
}

// Upload implements [Transport]. The content is sent as the multipart
// field "content".
func (h *httpTransport) Upload(ctx context.Context, name string, r io.Reader) (models.FileToken, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetFileReader("content", filepath.Base(name), r).
		Post(h.ep.apiURL([]string{"uploads"}, nil))
	if err != nil {
		return models.FileToken{}, fmt.Errorf("upload request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.FileToken{}, err
	}

	var uploaded models.UploadResponse
	if err = json.Unmarshal(resp.Body(), &uploaded); err != nil {
		return models.FileToken{}, fmt.Errorf("decode upload response: %w", err)
	}

	h.logger.Debug().Str("file", name).Msg("content uploaded")

	return models.FileToken{Token: uploaded.Token, FilePath: name}, nil
}

// UploadFile implements [Transport].
func (h *httpTransport) UploadFile(ctx context.Context, path string) (models.FileToken, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.FileToken{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return h.Upload(ctx, path, f)
}

// DataURL implements [Transport].
func (h *httpTransport) DataURL(rel string) string {
	return h.ep.dataURL(rel)
}

// Download implements [Transport].
func (h *httpTransport) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return 0, fmt.Errorf("download request: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
		return 0, newHTTPError(resp.StatusCode(), raw)
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", url, err)
	}

	return n, nil
}

// Username implements [Transport].
func (h *httpTransport) Username() string {
	return h.ep.username
}

func (h *httpTransport) String() string {
	user := h.ep.username
	if user == "" {
		user = "anonymous"
	}
	return fmt.Sprintf("Szurubooru API for %s at %s", user, h.ep.apiHost)
}

// hasBody reports whether body should be sent. Nil values and empty maps are
// omitted so that bodiless calls carry no payload.
func hasBody(body any) bool {
	switch b := body.(type) {
	case nil:
		return false
	case map[string]any:
		return len(b) > 0
	default:
		return true
	}
}

func decodeObject(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}

	return out, nil
}
