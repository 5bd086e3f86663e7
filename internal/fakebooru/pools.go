// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-szuru/models"
)

type poolRecord struct {
	id          int
	version     int
	names       []string
	category    string
	description string
	posts       []int
	created     time.Time
}

func (s *Server) poolJSON(p *poolRecord) map[string]any {
	posts := make([]any, 0, len(p.posts))
	for _, id := range p.posts {
		posts = append(posts, s.microPost(id))
	}

	return map[string]any{
		"id":           p.id,
		"names":        slices.Clone(p.names),
		"category":     p.category,
		"description":  p.description,
		"posts":        posts,
		"postCount":    len(p.posts),
		"version":      p.version,
		"creationTime": p.created.UTC().Format(time.RFC3339),
	}
}

func (s *Server) findPool(r *http.Request) (*poolRecord, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	p, ok := s.pools[id]
	if !ok {
		return nil, notFound("PoolNotFoundError", "Pool %d not found.", id)
	}
	return p, nil
}

func (s *Server) listPools(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	terms := parseQuery(r.URL.Query().Get("query"))
	ids := make([]int, 0, len(s.pools))
	for id := range s.pools {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		p := s.pools[id]
		match := func(t term) bool {
			switch t.key {
			case "":
				return t.matchAny(p.names...)
			case "id":
				return t.matchAny(strconv.Itoa(p.id))
			case "category":
				return t.matchAny(p.category)
			default:
				return false
			}
		}
		if matchAll(terms, match) {
			items = append(items, s.poolJSON(p))
		}
	}
	writePage(w, r, items)
}

func (s *Server) getPool(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findPool(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.poolJSON(p))
}

func (s *Server) createPool(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, ok := body["names"]; !ok {
		writeError(w, badRequest("InvalidPoolNameError", "At least one name must be specified."))
		return
	}

	p := &poolRecord{
		category: defaultCategoryName(s.poolCategories),
		version:  1,
		created:  s.now(),
	}
	if err = s.applyPoolFields(p, body); err != nil {
		writeError(w, err)
		return
	}
	p.id = s.nextPoolID
	s.nextPoolID++
	s.pools[p.id] = p

	writeJSON(w, http.StatusOK, s.poolJSON(p))
}

func (s *Server) updatePool(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findPool(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err = checkVersion(body, "version", p.version); err != nil {
		writeError(w, err)
		return
	}

	staged := *p
	if err = s.applyPoolFields(&staged, body); err != nil {
		writeError(w, err)
		return
	}
	staged.version++
	*p = staged

	writeJSON(w, http.StatusOK, s.poolJSON(p))
}

func (s *Server) deletePool(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findPool(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err = checkVersion(body, "version", p.version); err != nil {
		writeError(w, err)
		return
	}

	delete(s.pools, p.id)
	writeJSON(w, http.StatusOK, map[string]any{})
}

// applyPoolFields has no side effects outside p, so callers stage edits on
// a copy.
func (s *Server) applyPoolFields(p *poolRecord, body map[string]any) error {
	if v, ok := body["names"]; ok {
		names, err := bodyStrings("names", v)
		if err != nil {
			return err
		}
		if len(names) == 0 || slices.Contains(names, "") {
			return badRequest("InvalidPoolNameError", "At least one name must be specified.")
		}
		for _, other := range s.pools {
			if other.id == p.id {
				continue
			}
			for _, name := range names {
				if slices.ContainsFunc(other.names, func(n string) bool { return strings.EqualFold(n, name) }) {
					return badRequest("PoolAlreadyExistsError", "Pool %q already exists.", name)
				}
			}
		}
		p.names = names
	}
	if v, ok := body["category"]; ok {
		category, _ := bodyString(v)
		if !slices.ContainsFunc(s.poolCategories, func(c models.Category) bool { return c.Name == category }) {
			return notFound("PoolCategoryNotFoundError", "Pool category %q not found.", category)
		}
		p.category = category
	}
	if v, ok := body["description"]; ok {
		p.description, _ = bodyString(v)
	}
	if v, ok := body["posts"]; ok {
		ids, err := bodyInts("posts", v)
		if err != nil {
			return err
		}
		posts := make([]int, 0, len(ids))
		for _, id := range ids {
			if _, exists := s.posts[id]; !exists {
				return badRequest("InvalidPoolRelationError", "Post %d not found.", id)
			}
			if slices.Contains(posts, id) {
				return badRequest("InvalidPoolDuplicateError", "Duplicate post %d in pool.", id)
			}
			posts = append(posts, id)
		}
		p.posts = posts
	}
	return nil
}
