// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-szuru/models"
)

const maxUploadSize = 32 << 20

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, badRequest("ValidationError", "expected multipart form: %v", err))
		return
	}
	file, _, err := r.FormFile("content")
	if err != nil {
		writeError(w, badRequest("MissingRequiredFileError", "Content is required."))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, err)
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.uploads[token] = content
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.UploadResponse{Token: token})
}

// reverseSearch finds the post with identical content and ranks the others
// by relative size difference, a crude stand-in for image signatures.
func (s *Server) reverseSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	token, _ := bodyString(body["contentToken"])
	content, ok := s.uploads[token]
	if !ok {
		writeError(w, badRequest("MissingRequiredFileError", "Content is required."))
		return
	}

	var exact map[string]any
	type candidate struct {
		distance float64
		post     *postRecord
	}
	var similar []candidate
	for _, p := range s.posts {
		if bytes.Equal(p.content, content) {
			exact = s.postJSON(p)
			continue
		}
		if d := sizeDistance(len(p.content), len(content)); d < 0.5 {
			similar = append(similar, candidate{distance: d, post: p})
		}
	}
	sort.Slice(similar, func(i, j int) bool {
		if similar[i].distance != similar[j].distance {
			return similar[i].distance < similar[j].distance
		}
		return similar[i].post.id < similar[j].post.id
	})

	similarJSON := make([]any, 0, len(similar))
	for _, c := range similar {
		similarJSON = append(similarJSON, map[string]any{"distance": c.distance, "post": s.postJSON(c.post)})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exactPost":    exact,
		"similarPosts": similarJSON,
	})
}

func sizeDistance(a, b int) float64 {
	if a == b {
		return 0
	}
	return float64(max(a, b)-min(a, b)) / float64(max(a, b))
}

func (s *Server) serveContent(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, func(p *postRecord) []byte { return p.content })
}

func (s *Server) serveThumbnail(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, func(p *postRecord) []byte {
		if p.thumbnail != nil {
			return p.thumbnail
		}
		return p.content
	})
}

// serveFile resolves "<id>.<ext>" to a post and writes the chosen bytes.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, pick func(*postRecord) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := pathParam(r, "file")
	stem, _, _ := strings.Cut(file, ".")
	id, err := strconv.Atoi(stem)
	p, ok := s.posts[id]
	if err != nil || !ok {
		http.NotFound(w, r)
		return
	}

	data := pick(p)
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
