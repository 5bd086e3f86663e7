// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"net/http"
	"slices"

	"github.com/MKhiriev/go-szuru/models"
)

func (s *Server) listTagCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := slices.Clone(s.tagCategories)
	for i := range cats {
		for _, t := range s.tags {
			if t.category == cats[i].Name {
				cats[i].Usages++
			}
		}
	}
	writeJSON(w, http.StatusOK, models.CategoryList{Results: cats})
}

func (s *Server) listPoolCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := slices.Clone(s.poolCategories)
	for i := range cats {
		for _, p := range s.pools {
			if p.category == cats[i].Name {
				cats[i].Usages++
			}
		}
	}
	writeJSON(w, http.StatusOK, models.CategoryList{Results: cats})
}

// SetDefaultTagCategory flags name as the only default tag category. An
// empty name leaves no default at all.
func (s *Server) SetDefaultTagCategory(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tagCategories {
		s.tagCategories[i].Default = s.tagCategories[i].Name == name
	}
}
