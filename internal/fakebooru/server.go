// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package fakebooru implements an in-memory HTTP server that speaks enough
// of the szurubooru REST API for integration tests: posts, tags, pools,
// uploads, reverse image search, tag merging, categories and media files.
//
// Every mutation checks the version token the way the real server does and
// answers 409 IntegrityError on mismatch. Search queries understand a small
// subset of the real grammar: space-separated terms, "-" negation, "*"
// wildcards and a few named filters.
package fakebooru

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-szuru/internal/logger"
	"github.com/MKhiriev/go-szuru/models"
)

// Request is one entry of the request log.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Status int
}

// Server holds the whole booru state behind one mutex.
type Server struct {
	mu sync.Mutex

	posts      map[int]*postRecord
	tags       []*tagRecord
	pools      map[int]*poolRecord
	uploads    map[string][]byte
	nextPostID int
	nextPoolID int

	tagCategories  []models.Category
	poolCategories []models.Category

	username string
	password string
	token    string

	requests []Request
	now      func() time.Time
	logger   *logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithUser makes the API require credentials. Either the password (Basic
// auth) or the token (Token auth) is accepted; an empty one is not.
func WithUser(username, password, token string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
		s.token = token
	}
}

// WithLogger sets the logger used for access logs.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns an empty booru with the stock categories: tag categories
// default, character and meta; pool categories default and series.
func New(opts ...Option) *Server {
	s := &Server{
		posts:      make(map[int]*postRecord),
		pools:      make(map[int]*poolRecord),
		uploads:    make(map[string][]byte),
		nextPostID: 1,
		nextPoolID: 1,
		tagCategories: []models.Category{
			{Name: "default", Color: "default", Default: true, Order: 1, Version: "1"},
			{Name: "character", Color: "#00aa00", Order: 2, Version: "1"},
			{Name: "meta", Color: "#888888", Order: 3, Version: "1"},
		},
		poolCategories: []models.Category{
			{Name: "default", Color: "default", Default: true, Version: "1"},
			{Name: "series", Color: "#aa00aa", Version: "1"},
		},
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router. The API lives under /api and media under
// /data, so a client configured with the server root as base URL and the
// default API path reaches both.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(s.withTraceID)
	router.Use(s.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Use(withGzip)
		r.Use(s.withAuth)

		r.Get("/posts", s.listPosts)
		r.Post("/posts", s.createPost)
		r.Post("/posts/reverse-search", s.reverseSearch)
		r.Get("/post/{id}", s.getPost)
		r.Put("/post/{id}", s.updatePost)
		r.Delete("/post/{id}", s.deletePost)

		r.Get("/tags", s.listTags)
		r.Post("/tags", s.createTag)
		r.Get("/tag/{name}", s.getTag)
		r.Put("/tag/{name}", s.updateTag)
		r.Delete("/tag/{name}", s.deleteTag)
		r.Post("/tag-merge", s.mergeTags)

		r.Get("/pools", s.listPools)
		r.Post("/pool", s.createPool)
		r.Get("/pool/{id}", s.getPool)
		r.Put("/pool/{id}", s.updatePool)
		r.Delete("/pool/{id}", s.deletePool)

		r.Get("/tag-categories", s.listTagCategories)
		r.Get("/pool-categories", s.listPoolCategories)

		r.Post("/uploads", s.upload)
	})

	router.Get("/data/posts/{file}", s.serveContent)
	router.Get("/data/generated-thumbnails/{file}", s.serveThumbnail)

	return router
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// ResetRequests empties the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
}

func (s *Server) record(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
}

// AddPost stores a post directly, creating missing tags in the default
// category, and returns its id.
func (s *Server) AddPost(content []byte, safety models.Safety, tags ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.newPostRecord(content, string(safety))
	for _, name := range tags {
		p.tags = appendTag(p.tags, s.ensureTag(name))
	}
	return p.id
}

// AddTag stores a tag directly. An empty category means the default one.
func (s *Server) AddTag(category string, names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == "" {
		category = defaultCategoryName(s.tagCategories)
	}
	s.tags = append(s.tags, &tagRecord{names: names, category: category, version: 1, created: s.now()})
}

// AddPool stores a pool directly and returns its id.
func (s *Server) AddPool(name string, postIDs ...int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &poolRecord{
		id:       s.nextPoolID,
		version:  1,
		names:    []string{name},
		category: defaultCategoryName(s.poolCategories),
		posts:    append([]int(nil), postIDs...),
		created:  s.now(),
	}
	s.nextPoolID++
	s.pools[p.id] = p
	return p.id
}

// Content returns the stored media of a post.
func (s *Server) Content(id int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, false
	}
	return p.content, true
}

func defaultCategoryName(cats []models.Category) string {
	for _, c := range cats {
		if c.Default {
			return c.Name
		}
	}
	return ""
}
