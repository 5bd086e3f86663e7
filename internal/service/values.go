// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-szuru/internal/resource"
)

func asInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return i, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%s: unexpected %T: %w", key, v, resource.ErrInvalidArgument)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

func asStrings(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, elem := range list {
		out = append(out, asString(elem))
	}
	return out
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func idNumber(id int) json.Number {
	return json.Number(strconv.Itoa(id))
}

// reorderPrimary moves name to the front of names, dropping an earlier
// occurrence.
func reorderPrimary(names []string, name string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, name)
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// firstName collapses a {names, category} value to its primary name.
func firstName(v any) any {
	names, _ := asMap(v)["names"].([]any)
	if len(names) == 0 {
		return nil
	}
	return names[0]
}

// idOf collapses a {id} value to the id.
func idOf(v any) any {
	return asMap(v)["id"]
}
