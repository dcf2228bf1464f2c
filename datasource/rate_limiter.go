package datasource

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedSource wraps a SeriesSource with rate limiting
type RateLimitedSource struct {
	source  SeriesSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedSource creates a new rate limited source
// rps is the maximum reads per second allowed (can be fractional for less than 1 read per second)
// burst is the maximum burst size allowed
func NewRateLimitedSource(source SeriesSource, rps float64, burst int) *RateLimitedSource {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchSeries reads the resource, respecting rate limits
func (r *RateLimitedSource) FetchSeries(ctx context.Context) (io.ReadCloser, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, classify(r.source.Name(), KindCanceled, fmt.Errorf("rate limit wait canceled: %w", err))
	}

	// Forward to the underlying source
	return r.source.FetchSeries(ctx)
}

// Name returns the source name
func (r *RateLimitedSource) Name() string {
	return r.name
}

var _ SeriesSource = (*RateLimitedSource)(nil)
