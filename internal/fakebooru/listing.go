// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

// writePage slices items by the offset and limit query parameters and trims
// every result to the requested fields.
func writePage(w http.ResponseWriter, r *http.Request, items []map[string]any) {
	q := r.URL.Query()

	offset, err := queryInt(q, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(q, "limit", defaultLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	limit = min(max(limit, 0), maxLimit)

	var fields []string
	if raw := q.Get("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}

	start := min(offset, len(items))
	end := min(start+limit, len(items))
	results := make([]map[string]any, 0, end-start)
	for _, item := range items[start:end] {
		results = append(results, project(item, fields))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q.Get("query"),
		"offset":  offset,
		"limit":   limit,
		"total":   len(items),
		"results": results,
	})
}

func queryInt(q url.Values, key string, fallback int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("ValidationError", "%s must be a non-negative integer", key)
	}
	return n, nil
}

func project(item map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return item
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := item[f]; ok {
			out[f] = v
		}
	}
	return out
}

// term is one token of a search query.
type term struct {
	negated bool
	key     string
	pattern *regexp.Regexp
}

func parseQuery(query string) []term {
	fields := strings.Fields(query)
	terms := make([]term, 0, len(fields))
	for _, f := range fields {
		t := term{}
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			t.negated = true
			f = f[1:]
		}
		if key, value, ok := strings.Cut(f, ":"); ok && value != "" {
			t.key = strings.ToLower(key)
			f = value
		}
		t.pattern = wildcard(f)
		terms = append(terms, t)
	}
	return terms
}

// matchAll reports whether every term agrees with match, honoring negation.
func matchAll(terms []term, match func(term) bool) bool {
	for _, t := range terms {
		if match(t) == t.negated {
			return false
		}
	}
	return true
}

func (t term) matchAny(values ...string) bool {
	for _, v := range values {
		if t.pattern.MatchString(strings.ToLower(v)) {
			return true
		}
	}
	return false
}

func wildcard(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(strings.ToLower(pattern))
	return regexp.MustCompile("^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$")
}

// pathParam returns the unescaped URL parameter. Names may contain "/",
// which clients send as %2F.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, badRequest("ValidationError", "invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

func bodyInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func bodyString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func bodyStrings(key string, v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok && v != nil {
		return nil, badRequest("ValidationError", "%s must be a list", key)
	}
	out := make([]string, 0, len(list))
	for _, elem := range list {
		s, isString := elem.(string)
		if !isString {
			return nil, badRequest("ValidationError", "%s must be a list of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func bodyInts(key string, v any) ([]int, error) {
	list, ok := v.([]any)
	if !ok && v != nil {
		return nil, badRequest("ValidationError", "%s must be a list", key)
	}
	out := make([]int, 0, len(list))
	for _, elem := range list {
		n, isInt := bodyInt(elem)
		if !isInt {
			return nil, badRequest("ValidationError", "%s must be a list of ids", key)
		}
		out = append(out, n)
	}
	return out, nil
}

// checkVersion compares the version of a modification request with the
// stored one.
func checkVersion(body map[string]any, key string, current int) error {
	v, ok := body[key]
	if !ok {
		return errNoVersion
	}
	n, ok := bodyInt(v)
	if !ok {
		return errNoVersion
	}
	if n != current {
		return errIntegrity
	}
	return nil
}
