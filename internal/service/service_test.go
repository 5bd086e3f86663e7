// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"encoding/json"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-szuru/internal/mock"
)

func newTestClient(t *testing.T) (*Client, *mock.MockTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tr := mock.NewMockTransport(ctrl)
	return New(tr), tr
}

func postData(id int) map[string]any {
	return map[string]any{
		"id":       idNumber(id),
		"version":  json.Number("1"),
		"safety":   "safe",
		"type":     "image",
		"mimeType": "image/png",
		"checksum": "abc123",
		"source":   "https://example.com/a\r\nhttps://example.com/b\n",
		"tags": []any{
			map[string]any{"names": []any{"sky", "blue_sky"}, "category": "default", "usages": json.Number("4")},
			map[string]any{"names": []any{"cloud"}, "category": "default", "usages": json.Number("2")},
		},
		"relations":    []any{map[string]any{"id": json.Number("9"), "thumbnailUrl": "data/generated-thumbnails/9.jpg"}},
		"notes":        []any{map[string]any{"polygon": []any{[]any{json.Number("0.1"), json.Number("0.2")}, []any{json.Number("0.5"), json.Number("0.6")}}, "text": "hi"}},
		"flags":        []any{"loop"},
		"contentUrl":   "data/posts/1.png",
		"thumbnailUrl": "data/generated-thumbnails/1.jpg",
		"canvasWidth":  json.Number("640"),
		"canvasHeight": json.Number("480"),
	}
}

func tagData(names ...string) map[string]any {
	list := make([]any, len(names))
	for i, n := range names {
		list[i] = n
	}
	return map[string]any{
		"names":        list,
		"category":     "default",
		"description":  "",
		"implications": []any{},
		"suggestions":  []any{},
		"usages":       json.Number("3"),
		"version":      json.Number("2"),
	}
}

func poolData(id int) map[string]any {
	return map[string]any{
		"id":          idNumber(id),
		"names":       []any{"trip", "vacation"},
		"category":    "default",
		"description": "summer",
		"posts":       []any{map[string]any{"id": json.Number("1")}, map[string]any{"id": json.Number("2")}},
		"postCount":   json.Number("2"),
		"version":     json.Number("5"),
	}
}
