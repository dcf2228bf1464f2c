package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody caps how much of a failed response is kept in the error
const maxErrorBody = 512

// HTTPSource reads a forecast file with a single HTTP GET
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates a new HTTP source for the given URL
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the source URL
func (s *HTTPSource) Name() string {
	return s.url
}

// FetchSeries issues the GET request and returns the response body
func (s *HTTPSource) FetchSeries(ctx context.Context) (io.ReadCloser, error) {
	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Source: s.Name(), Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	// Execute request
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classify(s.Name(), KindTransport, fmt.Errorf("failed to execute request: %w", err))
	}

	// Check for error status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &LoadError{
			Kind:       KindStatus,
			Source:     s.Name(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %q", string(body)),
		}
	}

	return resp.Body, nil
}

var _ SeriesSource = (*HTTPSource)(nil)
