package api

import (
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstdResponseWriter picks compression once the handler has set its headers
type zstdResponseWriter struct {
	http.ResponseWriter
	encoder *zstd.Encoder
	decided bool
}

func (w *zstdResponseWriter) WriteHeader(status int) {
	if !w.decided {
		w.decide(status)
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *zstdResponseWriter) Write(b []byte) (int, error) {
	if !w.decided {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.encoder == nil {
		return w.ResponseWriter.Write(b)
	}
	return w.encoder.Write(b)
}

func (w *zstdResponseWriter) decide(status int) {
	w.decided = true
	h := w.Header()
	if status == http.StatusNoContent || status == http.StatusNotModified ||
		h.Get("Content-Encoding") != "" || !compressible(h.Get("Content-Type")) {
		return
	}
	encoder, err := zstd.NewWriter(w.ResponseWriter)
	if err != nil {
		return
	}
	w.encoder = encoder
	h.Set("Content-Encoding", "zstd")
	h.Del("Content-Length")
}

func (w *zstdResponseWriter) Close() error {
	if w.encoder == nil {
		return nil
	}
	return w.encoder.Close()
}

// compressible reports whether a body of this type shrinks under zstd.
// Raster images are already compressed; SVG is text.
func compressible(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/svg+xml"):
		return true
	case strings.HasPrefix(ct, "image/"),
		strings.HasPrefix(ct, "video/"),
		strings.HasPrefix(ct, "audio/"),
		strings.HasPrefix(ct, "application/zstd"),
		strings.HasPrefix(ct, "application/gzip"),
		strings.HasPrefix(ct, "application/zip"):
		return false
	}
	return true
}

// ZstdMiddleware compresses responses for clients that accept zstd.
// Responses whose content type is already compressed are passed through.
func ZstdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")

		// Only compress if client explicitly accepts zstd
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "zstd") {
			next.ServeHTTP(w, r)
			return
		}

		zw := &zstdResponseWriter{ResponseWriter: w}
		defer zw.Close()

		next.ServeHTTP(zw, r)
	})
}
