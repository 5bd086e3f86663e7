// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-szuru/models"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	return newHTTPError(resp.StatusCode(), resp.Body())
}

func newHTTPError(status int, body []byte) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Name != "" {
		httpErr.Name = errResp.Name
		httpErr.Description = errResp.Description
	}

	return httpErr
}
