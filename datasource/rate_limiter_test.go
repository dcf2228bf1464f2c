package datasource

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	calls int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchSeries(context.Context) (io.ReadCloser, error) {
	s.calls++
	return io.NopCloser(strings.NewReader(sampleCSV)), nil
}

func TestRateLimitedSource(t *testing.T) {
	stub := &stubSource{}
	src := NewRateLimitedSource(stub, 0.01, 1)
	assert.Equal(t, "stub [Rate Limited]", src.Name())

	body, err := src.FetchSeries(context.Background())
	require.NoError(t, err)
	body.Close()

	// The burst is spent, the next read has to wait far longer than the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = src.FetchSeries(ctx)
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindCanceled, le.Kind)
	assert.Equal(t, 1, stub.calls)
}

func TestNewSource(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, NewSource("https://example.com/forecast.csv"))
	assert.IsType(t, &HTTPSource{}, NewSource("HTTP://example.com/forecast.csv"))
	assert.IsType(t, &FileSource{}, NewSource("data/forecast_lstm.csv"))
	assert.Equal(t, "/tmp/f.csv", NewSource("file:///tmp/f.csv").Name())
	assert.IsType(t, &RateLimitedSource{}, NewSource("data/forecast_lstm.csv", WithRateLimit(1, 2)))
}
