// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fakebooru

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// withGzip decodes gzip request bodies and compresses responses for
// clients that accept it, the way a reverse proxy in front of the booru
// would.
func withGzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") && r.Body != nil {
			gz := gzipReaderPool.Get().(*gzip.Reader)
			if err := gz.Reset(r.Body); err != nil {
				gzipReaderPool.Put(gz)
				writeError(w, badRequest("ValidationError", "invalid gzip body"))
				return
			}

			r.Body = &pooledReadCloser{Reader: gz, onClose: func() {
				_ = gz.Close()
				gzipReaderPool.Put(gz)
			}}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer gzipWriterPool.Put(gz)

		grw := &gzipResponseWriter{ResponseWriter: w, gz: gz}
		next.ServeHTTP(grw, r)

		_ = gz.Close()
	})
}

type pooledReadCloser struct {
	io.Reader
	onClose func()
}

func (p *pooledReadCloser) Close() error {
	if p.onClose != nil {
		p.onClose()
		p.onClose = nil
	}
	return nil
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Add("Vary", "Accept-Encoding")
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.gz.Write(data)
}
