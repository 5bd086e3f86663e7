// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MKhiriev/go-szuru/models"
)

// apiError is rendered as the szurubooru error body.
type apiError struct {
	status      int
	name        string
	description string
}

func (e *apiError) Error() string {
	return e.name + ": " + e.description
}

var (
	errAuth      = &apiError{http.StatusUnauthorized, "AuthError", "Invalid authentication."}
	errIntegrity = &apiError{http.StatusConflict, "IntegrityError", "Someone else modified this in the meantime. Please try again."}
	errNoVersion = &apiError{http.StatusBadRequest, "ValidationError", "Version is required."}
)

func notFound(name, format string, args ...any) *apiError {
	return &apiError{http.StatusNotFound, name, fmt.Sprintf(format, args...)}
}

func badRequest(name, format string, args ...any) *apiError {
	return &apiError{http.StatusBadRequest, name, fmt.Sprintf(format, args...)}
}

func writeError(w http.ResponseWriter, err error) {
	var ae *apiError
	if !errors.As(err, &ae) {
		ae = &apiError{http.StatusInternalServerError, "InternalError", err.Error()}
	}

	writeJSON(w, ae.status, models.ErrorResponse{
		Name:        ae.name,
		Title:       http.StatusText(ae.status),
		Description: ae.description,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON object. An empty body is an empty object.
func decodeBody(r *http.Request) (map[string]any, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, badRequest("ValidationError", "cannot read body: %v", err)
	}

	body := make(map[string]any)
	if len(raw) == 0 {
		return body, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err = dec.Decode(&body); err != nil {
		return nil, badRequest("ValidationError", "malformed JSON: %v", err)
	}
	return body, nil
}
