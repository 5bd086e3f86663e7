// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-szuru/models"
)

// TagCategories lists the server's tag categories.
func (c *Client) TagCategories(ctx context.Context) ([]models.Category, error) {
	return c.categories(ctx, "tag-categories")
}

// PoolCategories lists the server's pool categories.
func (c *Client) PoolCategories(ctx context.Context) ([]models.Category, error) {
	return c.categories(ctx, "pool-categories")
}

// DefaultTagCategory returns the name of the single tag category flagged as
// default.
func (c *Client) DefaultTagCategory(ctx context.Context) (string, error) {
	cats, err := c.TagCategories(ctx)
	if err != nil {
		return "", err
	}
	return defaultCategory(cats)
}

// DefaultPoolCategory returns the name of the single pool category flagged
// as default.
func (c *Client) DefaultPoolCategory(ctx context.Context) (string, error) {
	cats, err := c.PoolCategories(ctx)
	if err != nil {
		return "", err
	}
	return defaultCategory(cats)
}

func (c *Client) categories(ctx context.Context, segment string) ([]models.Category, error) {
	data, err := c.transport.Call(ctx, http.MethodGet, []string{segment}, nil, nil)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", segment, err)
	}

	var list models.CategoryList
	if err = json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", segment, err)
	}

	return list.Results, nil
}

func defaultCategory(cats []models.Category) (string, error) {
	var found []string
	for _, cat := range cats {
		if cat.Default {
			found = append(found, cat.Name)
		}
	}

	switch len(found) {
	case 0:
		return "", ErrNoDefaultCategory
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %v", ErrAmbiguousDefaultCategory, found)
	}
}
