// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package mirror copies post content from a booru to a local directory or
// an S3 bucket.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-szuru/internal/config"
)

// ErrNoDestination is returned by NewSink when the mirror config names
// neither a directory nor a bucket.
var ErrNoDestination = errors.New("mirror destination is not configured")

// Sink stores mirrored objects under a key.
type Sink interface {
	// Exists reports whether key is already stored.
	Exists(ctx context.Context, key string) (bool, error)
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// NewSink builds the sink described by cfg.
func NewSink(ctx context.Context, cfg config.Mirror) (Sink, error) {
	switch {
	case cfg.Dir != "":
		return NewFileSink(cfg.Dir)
	case cfg.S3Bucket != "":
		return NewS3Sink(ctx, cfg)
	default:
		return nil, ErrNoDestination
	}
}

// FileSink writes objects as files below a root directory.
type FileSink struct {
	root string
}

// NewFileSink creates root when needed.
func NewFileSink(root string) (*FileSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create mirror dir: %w", err)
	}
	return &FileSink{root: root}, nil
}

func (s *FileSink) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Exists implements [Sink].
func (s *FileSink) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Put implements [Sink]. The file is written next to its final name and
// renamed into place so readers never observe partial content.
func (s *FileSink) Put(_ context.Context, key string, data []byte, _ string) error {
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mirror-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dst)
}
