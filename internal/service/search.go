// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-szuru/internal/adapter"
	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/internal/resource"
	"github.com/MKhiriev/go-szuru/models"
)

const defaultPageSize = 20

// Progress receives search progress. It never affects what is yielded.
type Progress interface {
	// SetTotal is called whenever the server reports a new total.
	SetTotal(total int)
	// Add is called once per yielded item.
	Add(n int)
}

type searchOptions struct {
	pageSize int
	eager    bool
	progress Progress
}

// SearchOption tunes a paginated search.
type SearchOption func(*searchOptions)

// WithPageSize sets the number of items requested per call. The value is
// passed to the server unchecked.
func WithPageSize(n int) SearchOption {
	return func(o *searchOptions) { o.pageSize = n }
}

// WithEagerLoad requests full objects instead of the kind's lazy field set.
func WithEagerLoad() SearchOption {
	return func(o *searchOptions) { o.eager = true }
}

// WithProgress reports progress to p.
func WithProgress(p Progress) SearchOption {
	return func(o *searchOptions) { o.progress = p }
}

// SearchPosts lazily iterates the posts matching query.
func (c *Client) SearchPosts(ctx context.Context, query string, opts ...SearchOption) iter.Seq2[*Post, error] {
	return search(ctx, c.transport, postKind, query, newPost, opts)
}

// SearchTags lazily iterates the tags matching query.
func (c *Client) SearchTags(ctx context.Context, query string, opts ...SearchOption) iter.Seq2[*Tag, error] {
	return search(ctx, c.transport, tagKind, query, newTag, opts)
}

// SearchPools lazily iterates the pools matching query.
func (c *Client) SearchPools(ctx context.Context, query string, opts ...SearchOption) iter.Seq2[*Pool, error] {
	return search(ctx, c.transport, poolKind, query, newPool, opts)
}

// search pages through the listing endpoint of kind. The sequence ends when
// the cumulative count reaches the reported total, when a page comes back
// empty, when the consumer stops, or after yielding the first error.
func search[T any](
	ctx context.Context,
	t adapter.Transport,
	kind *resource.Kind,
	query string,
	wrap func(adapter.Transport, map[string]any) *T,
	opts []SearchOption,
) iter.Seq2[*T, error] {
	o := searchOptions{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(*T, error) bool) {
		log := logger.FromContext(ctx)
		offset, total := 0, -1

		for {
			q := map[string]string{
				"offset": strconv.Itoa(offset),
				"limit":  strconv.Itoa(o.pageSize),
				"query":  query,
			}
			if !o.eager {
				q["fields"] = kind.LazyFieldsParam()
			}

			data, err := t.Call(ctx, http.MethodGet, kind.CollectionPath, q, nil)
			if err != nil {
				yield(nil, err)
				return
			}

			results, pageTotal, err := decodePage(data)
			if err != nil {
				yield(nil, fmt.Errorf("%s search: %w", kind.Name, err))
				return
			}

			log.Debug().
				Str("kind", kind.Name).
				Int("offset", offset).
				Int("results", len(results)).
				Int("total", pageTotal).
				Msg("search page")

			offset += len(results)
			if pageTotal != total {
				total = pageTotal
				if o.progress != nil {
					o.progress.SetTotal(total)
				}
			}

			for _, item := range results {
				if o.progress != nil {
					o.progress.Add(1)
				}
				if !yield(wrap(t, item), nil) {
					return
				}
			}

			if offset >= total || len(results) == 0 {
				return
			}
		}
	}
}

func decodePage(data map[string]any) ([]map[string]any, int, error) {
	total, err := asInt("total", data["total"])
	if err != nil {
		return nil, 0, err
	}

	rawResults, ok := data["results"].([]any)
	if !ok && data["results"] != nil {
		return nil, 0, fmt.Errorf("results: unexpected %T: %w", data["results"], resource.ErrInvalidArgument)
	}

	results := make([]map[string]any, 0, len(rawResults))
	for _, item := range rawResults {
		m, isMap := item.(map[string]any)
		if !isMap {
			return nil, 0, fmt.Errorf("result: unexpected %T: %w", item, resource.ErrInvalidArgument)
		}
		results = append(results, m)
	}

	return results, total, nil
}

// SearchResult is one reverse-image search hit. Distance is nil for the
// exact match.
type SearchResult struct {
	Post     *Post
	Distance *float64
	Exact    bool
}

// SearchByImage finds posts similar to previously uploaded content. An
// exact match, when there is one, comes first; similar posts follow in
// server order.
func (c *Client) SearchByImage(ctx context.Context, content models.FileToken) ([]SearchResult, error) {
	data, err := c.transport.Call(ctx, http.MethodPost, []string{"posts", "reverse-search"}, nil,
		models.ReverseSearchRequest{ContentToken: content.Token})
	if err != nil {
		return nil, err
	}

	similar, _ := data["similarPosts"].([]any)
	results := make([]SearchResult, 0, len(similar)+1)

	if exact := asMap(data["exactPost"]); exact != nil {
		results = append(results, SearchResult{Post: newPost(c.transport, exact), Exact: true})
	}

	for _, raw := range similar {
		entry := asMap(raw)
		result := SearchResult{Post: newPost(c.transport, asMap(entry["post"]))}
		if d, ok := asFloat(entry["distance"]); ok {
			result.Distance = &d
		}
		results = append(results, result)
	}

	return results, nil
}
