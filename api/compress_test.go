package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressible(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"text/html; charset=utf-8", true},
		{"image/svg+xml", true},
		{"image/png", false},
		{"IMAGE/JPEG", false},
		{"application/gzip", false},
		{"", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compressible(tt.contentType), tt.contentType)
	}
}

func serveZstd(t *testing.T, h http.HandlerFunc) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	rec := httptest.NewRecorder()
	ZstdMiddleware(h).ServeHTTP(rec, req)
	return rec.Result()
}

func TestZstdMiddleware_CompressesText(t *testing.T) {
	resp := serveZstd(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"ok"}`)
	})
	assert.Equal(t, "zstd", resp.Header.Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", resp.Header.Get("Vary"))

	dec, err := zstd.NewReader(resp.Body)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok"}`, string(plain))
}

func TestZstdMiddleware_SkipsPNG(t *testing.T) {
	body := "\x89PNG\r\n\x1a\nnot really an image"
	resp := serveZstd(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	})
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestZstdMiddleware_SniffsUntypedBody(t *testing.T) {
	resp := serveZstd(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	})
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
}
