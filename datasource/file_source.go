package datasource

import (
	"context"
	"io"
	"os"
	"strings"
)

// FileSource reads a forecast file from the local filesystem
type FileSource struct {
	path string
}

// NewFileSource creates a source for a local file path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path
func (s *FileSource) Name() string {
	return s.path
}

// FetchSeries opens the file
func (s *FileSource) FetchSeries(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(s.Name(), KindCanceled, err)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Source: s.Name(), Err: err}
	}
	return f, nil
}

// NewSource picks an HTTPSource for http(s) locations and a FileSource for anything else
func NewSource(location string, opts ...SourceOption) SeriesSource {
	o := sourceOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var src SeriesSource
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		src = NewHTTPSource(location, o.timeout)
	} else {
		src = NewFileSource(strings.TrimPrefix(location, "file://"))
	}

	if o.rps > 0 {
		src = NewRateLimitedSource(src, o.rps, o.burst)
	}
	return src
}

var _ SeriesSource = (*FileSource)(nil)
