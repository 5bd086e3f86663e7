// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-szuru/models"
)

type postRecord struct {
	id      int
	version int
	created time.Time

	safety    string
	source    string
	mimeType  string
	checksum  string
	width     int
	height    int
	content   []byte
	thumbnail []byte

	tags      []*tagRecord
	relations []int
	notes     []any
	flags     []string
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"video/webm": ".webm",
	"video/mp4":  ".mp4",
}

func (s *Server) newPostRecord(content []byte, safety string) *postRecord {
	p := &postRecord{
		id:      s.nextPostID,
		version: 1,
		created: s.now(),
		safety:  safety,
		flags:   []string{},
	}
	p.setContent(content)
	s.nextPostID++
	s.posts[p.id] = p
	return p
}

func (p *postRecord) setContent(content []byte) {
	sum := sha1.Sum(content)
	p.content = content
	p.checksum = hex.EncodeToString(sum[:])
	p.mimeType = http.DetectContentType(content)
	p.width, p.height = 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(content)); err == nil {
		p.width, p.height = cfg.Width, cfg.Height
	}
}

func (p *postRecord) postType() string {
	switch {
	case p.mimeType == "image/gif":
		return "animation"
	case strings.HasPrefix(p.mimeType, "image/"):
		return "image"
	case strings.HasPrefix(p.mimeType, "video/"):
		return "video"
	default:
		return "unknown"
	}
}

func (p *postRecord) contentURL() string {
	ext, ok := extensions[p.mimeType]
	if !ok {
		ext = ".dat"
	}
	return fmt.Sprintf("data/posts/%d%s", p.id, ext)
}

func (p *postRecord) thumbnailURL() string {
	return fmt.Sprintf("data/generated-thumbnails/%d.jpg", p.id)
}

func (s *Server) microPost(id int) map[string]any {
	out := map[string]any{"id": id}
	if p, ok := s.posts[id]; ok {
		out["thumbnailUrl"] = p.thumbnailURL()
	}
	return out
}

func (s *Server) postJSON(p *postRecord) map[string]any {
	tags := make([]any, 0, len(p.tags))
	for _, t := range p.tags {
		tags = append(tags, s.microTag(t))
	}
	relations := make([]any, 0, len(p.relations))
	for _, id := range p.relations {
		relations = append(relations, s.microPost(id))
	}

	var source any
	if p.source != "" {
		source = p.source
	}

	return map[string]any{
		"id":            p.id,
		"version":       p.version,
		"creationTime":  p.created.UTC().Format(time.RFC3339),
		"safety":        p.safety,
		"source":        source,
		"type":          p.postType(),
		"mimeType":      p.mimeType,
		"checksum":      p.checksum,
		"fileSize":      len(p.content),
		"canvasWidth":   p.width,
		"canvasHeight":  p.height,
		"contentUrl":    p.contentURL(),
		"thumbnailUrl":  p.thumbnailURL(),
		"flags":         slices.Clone(p.flags),
		"tags":          tags,
		"relations":     relations,
		"notes":         slices.Clone(p.notes),
		"score":         0,
		"favoriteCount": 0,
		"commentCount":  0,
		"tagCount":      len(p.tags),
		"relationCount": len(p.relations),
		"noteCount":     len(p.notes),
	}
}

func (s *Server) findPost(r *http.Request) (*postRecord, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, notFound("PostNotFoundError", "Post %d not found.", id)
	}
	return p, nil
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	terms := parseQuery(r.URL.Query().Get("query"))
	ids := make([]int, 0, len(s.posts))
	for id := range s.posts {
		ids = append(ids, id)
	}
	// newest first, like the real listing
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		p := s.posts[id]
		if matchAll(terms, p.matches) {
			items = append(items, s.postJSON(p))
		}
	}

	writePage(w, r, items)
}

func (p *postRecord) matches(t term) bool {
	switch t.key {
	case "id":
		return t.matchAny(strconv.Itoa(p.id))
	case "safety", "rating":
		return t.matchAny(p.safety)
	case "type":
		return t.matchAny(p.postType())
	case "":
		for _, tag := range p.tags {
			if t.matchAny(tag.names...) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findPost(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.postJSON(p))
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
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
	safety, _ := bodyString(body["safety"])
	if !models.Safety(safety).Valid() {
		writeError(w, badRequest("InvalidPostSafetyError", "Safety can be either of %q, %q or %q.", "safe", "sketchy", "unsafe"))
		return
	}
	for _, other := range s.posts {
		if bytes.Equal(other.content, content) {
			writeError(w, badRequest("PostAlreadyUploadedError", "Post already uploaded (%d)", other.id))
			return
		}
	}

	if err = s.applyPostFields(&postRecord{}, body, false); err != nil {
		writeError(w, err)
		return
	}

	p := s.newPostRecord(content, safety)
	_ = s.applyPostFields(p, body, true)

	writeJSON(w, http.StatusOK, s.postJSON(p))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findPost(r)
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

	if err = s.applyPostFields(&postRecord{id: p.id}, body, false); err != nil {
		writeError(w, err)
		return
	}
	_ = s.applyPostFields(p, body, true)
	p.version++

	writeJSON(w, http.StatusOK, s.postJSON(p))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findPost(r)
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

	delete(s.posts, p.id)
	for _, other := range s.posts {
		other.relations = slices.DeleteFunc(other.relations, func(id int) bool { return id == p.id })
	}
	for _, pool := range s.pools {
		pool.posts = slices.DeleteFunc(pool.posts, func(id int) bool { return id == p.id })
	}

	writeJSON(w, http.StatusOK, map[string]any{})
}

// applyPostFields copies the editable keys of body onto p. Without commit
// it only validates, so a rejected request leaves no trace; with commit it
// also creates tags, links relations and consumes upload tokens.
func (s *Server) applyPostFields(p *postRecord, body map[string]any, commit bool) error {
	if v, ok := body["safety"]; ok {
		safety, _ := bodyString(v)
		if !models.Safety(safety).Valid() {
			return badRequest("InvalidPostSafetyError", "Safety can be either of %q, %q or %q.", "safe", "sketchy", "unsafe")
		}
		p.safety = safety
	}
	if v, ok := body["source"]; ok {
		source, _ := bodyString(v)
		p.source = source
	}
	if v, ok := body["tags"]; ok {
		names, err := bodyStrings("tags", v)
		if err != nil {
			return err
		}
		if slices.Contains(names, "") {
			return badRequest("InvalidTagNameError", "Name must not be empty.")
		}
		if commit {
			p.tags = p.tags[:0]
			for _, name := range names {
				p.tags = appendTag(p.tags, s.ensureTag(name))
			}
		}
	}
	if v, ok := body["relations"]; ok {
		ids, err := bodyInts("relations", v)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, exists := s.posts[id]; !exists || id == p.id {
				return badRequest("InvalidPostRelationError", "Relation %d is not a valid post.", id)
			}
		}
		if commit {
			s.relate(p, ids)
		}
	}
	if v, ok := body["notes"]; ok {
		notes, isList := v.([]any)
		if !isList && v != nil {
			return badRequest("InvalidPostNoteError", "Notes must be a list.")
		}
		for _, n := range notes {
			note, isMap := n.(map[string]any)
			if !isMap {
				return badRequest("InvalidPostNoteError", "Note must be an object.")
			}
			if _, hasPolygon := note["polygon"].([]any); !hasPolygon {
				return badRequest("InvalidPostNoteError", "Note must have a polygon.")
			}
		}
		p.notes = notes
	}
	if v, ok := body["flags"]; ok {
		flags, err := bodyStrings("flags", v)
		if err != nil {
			return err
		}
		for _, f := range flags {
			if f != "loop" && f != "sound" {
				return badRequest("InvalidPostFlagError", "Flag must be one of %q, %q.", "loop", "sound")
			}
		}
		p.flags = flags
	}
	if v, ok := body["contentToken"]; ok {
		token, _ := bodyString(v)
		content, exists := s.uploads[token]
		if !exists {
			return badRequest("MissingRequiredFileError", "Upload token %q not found.", token)
		}
		if commit {
			p.setContent(content)
			delete(s.uploads, token)
		}
	}
	if v, ok := body["thumbnailToken"]; ok {
		token, _ := bodyString(v)
		thumb, exists := s.uploads[token]
		if !exists {
			return badRequest("MissingRequiredFileError", "Upload token %q not found.", token)
		}
		if commit {
			p.thumbnail = thumb
			delete(s.uploads, token)
		}
	}
	return nil
}

// relate replaces the relations of p, keeping both sides in sync.
func (s *Server) relate(p *postRecord, ids []int) {
	for _, old := range p.relations {
		if other, ok := s.posts[old]; ok {
			other.relations = slices.DeleteFunc(other.relations, func(id int) bool { return id == p.id })
		}
	}
	p.relations = p.relations[:0]
	for _, id := range ids {
		if slices.Contains(p.relations, id) {
			continue
		}
		p.relations = append(p.relations, id)
		other := s.posts[id]
		if !slices.Contains(other.relations, p.id) {
			other.relations = append(other.relations, p.id)
		}
	}
}

func appendTag(tags []*tagRecord, t *tagRecord) []*tagRecord {
	if slices.Contains(tags, t) {
		return tags
	}
	return append(tags, t)
}
