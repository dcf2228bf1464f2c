package datasource

import "time"

type sourceOptions struct {
	timeout time.Duration
	rps     float64
	burst   int
}

// SourceOption configures a source built by NewSource
type SourceOption func(*sourceOptions)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) SourceOption {
	return func(o *sourceOptions) {
		o.timeout = d
	}
}

// WithRateLimit wraps the source in a RateLimitedSource.
// rps is the maximum reads per second allowed, a value <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) SourceOption {
	return func(o *sourceOptions) {
		o.rps = rps
		o.burst = burst
	}
}
