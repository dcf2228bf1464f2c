package datasource

import (
	"context"
	"io"
)

// SeriesSource is a readable forecast resource
type SeriesSource interface {
	// FetchSeries performs one read of the resource. The caller closes the returned body.
	FetchSeries(ctx context.Context) (io.ReadCloser, error)

	// Name returns the source's name
	Name() string
}
