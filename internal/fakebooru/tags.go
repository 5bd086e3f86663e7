// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/MKhiriev/go-szuru/models"
)

type tagRecord struct {
	names        []string
	category     string
	description  string
	implications []*tagRecord
	suggestions  []*tagRecord
	version      int
	created      time.Time
}

func (t *tagRecord) hasName(name string) bool {
	for _, n := range t.names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (s *Server) findTagByName(name string) *tagRecord {
	for _, t := range s.tags {
		if t.hasName(name) {
			return t
		}
	}
	return nil
}

// ensureTag returns the tag called name, creating it in the default
// category when it does not exist.
func (s *Server) ensureTag(name string) *tagRecord {
	if t := s.findTagByName(name); t != nil {
		return t
	}
	t := &tagRecord{
		names:    []string{name},
		category: defaultCategoryName(s.tagCategories),
		version:  1,
		created:  s.now(),
	}
	s.tags = append(s.tags, t)
	return t
}

func (s *Server) usages(t *tagRecord) int {
	n := 0
	for _, p := range s.posts {
		if slices.Contains(p.tags, t) {
			n++
		}
	}
	return n
}

func (s *Server) microTag(t *tagRecord) map[string]any {
	return map[string]any{
		"names":    slices.Clone(t.names),
		"category": t.category,
		"usages":   s.usages(t),
	}
}

func (s *Server) tagJSON(t *tagRecord) map[string]any {
	implications := make([]any, 0, len(t.implications))
	for _, rel := range t.implications {
		implications = append(implications, s.microTag(rel))
	}
	suggestions := make([]any, 0, len(t.suggestions))
	for _, rel := range t.suggestions {
		suggestions = append(suggestions, s.microTag(rel))
	}

	return map[string]any{
		"names":        slices.Clone(t.names),
		"category":     t.category,
		"description":  t.description,
		"implications": implications,
		"suggestions":  suggestions,
		"usages":       s.usages(t),
		"version":      t.version,
		"creationTime": t.created.UTC().Format(time.RFC3339),
	}
}

func (s *Server) findTag(r *http.Request) (*tagRecord, error) {
	name := pathParam(r, "name")
	t := s.findTagByName(name)
	if t == nil {
		return nil, notFound("TagNotFoundError", "Tag %q not found.", name)
	}
	return t, nil
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	terms := parseQuery(r.URL.Query().Get("query"))
	matched := make([]*tagRecord, 0, len(s.tags))
	for _, t := range s.tags {
		if matchAll(terms, func(tm term) bool { return s.tagMatches(t, tm) }) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].names[0]) < strings.ToLower(matched[j].names[0])
	})

	items := make([]map[string]any, 0, len(matched))
	for _, t := range matched {
		items = append(items, s.tagJSON(t))
	}
	writePage(w, r, items)
}

func (s *Server) tagMatches(t *tagRecord, tm term) bool {
	switch tm.key {
	case "":
		return tm.matchAny(t.names...)
	case "category":
		return tm.matchAny(t.category)
	default:
		return false
	}
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findTag(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tagJSON(t))
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	t := &tagRecord{
		category: defaultCategoryName(s.tagCategories),
		version:  1,
		created:  s.now(),
	}
	if _, ok := body["names"]; !ok {
		writeError(w, badRequest("InvalidTagNameError", "At least one name must be specified."))
		return
	}
	if err = s.applyTagFields(t, body, false); err != nil {
		writeError(w, err)
		return
	}
	_ = s.applyTagFields(t, body, true)
	s.tags = append(s.tags, t)

	writeJSON(w, http.StatusOK, s.tagJSON(t))
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findTag(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err = checkVersion(body, "version", t.version); err != nil {
		writeError(w, err)
		return
	}
	if err = s.applyTagFields(t, body, false); err != nil {
		writeError(w, err)
		return
	}
	_ = s.applyTagFields(t, body, true)
	t.version++

	writeJSON(w, http.StatusOK, s.tagJSON(t))
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findTag(r)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err = checkVersion(body, "version", t.version); err != nil {
		writeError(w, err)
		return
	}

	s.replaceTag(t, nil)
	writeJSON(w, http.StatusOK, map[string]any{})
}

// applyTagFields validates the editable keys of body and, with commit,
// copies them onto t.
func (s *Server) applyTagFields(t *tagRecord, body map[string]any, commit bool) error {
	var newNames []string
	if v, ok := body["names"]; ok {
		names, err := bodyStrings("names", v)
		if err != nil {
			return err
		}
		newNames = names
		if len(names) == 0 || slices.Contains(names, "") {
			return badRequest("InvalidTagNameError", "At least one name must be specified.")
		}
		for _, name := range names {
			if other := s.findTagByName(name); other != nil && other != t {
				return badRequest("TagAlreadyExistsError", "Tag %q already exists.", name)
			}
		}
		if commit {
			t.names = names
		}
	}
	if v, ok := body["category"]; ok {
		category, _ := bodyString(v)
		if !slices.ContainsFunc(s.tagCategories, func(c models.Category) bool { return c.Name == category }) {
			return notFound("TagCategoryNotFoundError", "Tag category %q not found.", category)
		}
		if commit {
			t.category = category
		}
	}
	if v, ok := body["description"]; ok {
		if commit {
			t.description, _ = bodyString(v)
		}
	}
	for _, key := range []string{"implications", "suggestions"} {
		v, ok := body[key]
		if !ok {
			continue
		}
		names, err := bodyStrings(key, v)
		if err != nil {
			return err
		}
		for _, name := range names {
			if t.hasName(name) || slices.ContainsFunc(newNames, func(n string) bool { return strings.EqualFold(n, name) }) {
				return badRequest("InvalidTagRelationError", "Tag cannot imply or suggest itself.")
			}
		}
		if !commit {
			continue
		}
		related := make([]*tagRecord, 0, len(names))
		for _, name := range names {
			related = appendTag(related, s.ensureTag(name))
		}
		if key == "implications" {
			t.implications = related
		} else {
			t.suggestions = related
		}
	}
	return nil
}

func (s *Server) mergeTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	removeName, _ := bodyString(body["remove"])
	mergeToName, _ := bodyString(body["mergeTo"])
	source := s.findTagByName(removeName)
	if source == nil {
		writeError(w, notFound("TagNotFoundError", "Tag %q not found.", removeName))
		return
	}
	target := s.findTagByName(mergeToName)
	if target == nil {
		writeError(w, notFound("TagNotFoundError", "Tag %q not found.", mergeToName))
		return
	}
	if source == target {
		writeError(w, badRequest("InvalidTagRelationError", "Cannot merge tag with itself."))
		return
	}
	if err = checkVersion(body, "removeVersion", source.version); err != nil {
		writeError(w, err)
		return
	}
	if err = checkVersion(body, "mergeToVersion", target.version); err != nil {
		writeError(w, err)
		return
	}

	for _, rel := range source.implications {
		if rel != target {
			target.implications = appendTag(target.implications, rel)
		}
	}
	for _, rel := range source.suggestions {
		if rel != target {
			target.suggestions = appendTag(target.suggestions, rel)
		}
	}
	s.replaceTag(source, target)
	target.version++

	writeJSON(w, http.StatusOK, s.tagJSON(target))
}

// replaceTag removes old everywhere, substituting with when it is not nil.
func (s *Server) replaceTag(old, with *tagRecord) {
	swap := func(list []*tagRecord, self *tagRecord) []*tagRecord {
		if !slices.Contains(list, old) {
			return list
		}
		out := make([]*tagRecord, 0, len(list))
		for _, t := range list {
			switch {
			case t != old:
				out = appendTag(out, t)
			case with != nil && with != self:
				out = appendTag(out, with)
			}
		}
		return out
	}

	for _, p := range s.posts {
		p.tags = swap(p.tags, nil)
	}
	for _, t := range s.tags {
		t.implications = swap(t.implications, t)
		t.suggestions = swap(t.suggestions, t)
	}
	s.tags = slices.DeleteFunc(s.tags, func(t *tagRecord) bool { return t == old })
}
