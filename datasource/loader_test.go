package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCSV = "date,y_true,y_pred\n2024-01-01,10,11\n2024-01-02,12,13\n"

func TestLoader_HTTPSource(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/data/forecast_lstm.csv", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, sampleCSV)
	}))
	defer srv.Close()

	loader := NewLoader(NewSource(srv.URL+"/data/forecast_lstm.csv"), zap.NewNop())
	result, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, result.Series.Timestamps)
	assert.Equal(t, []float64{10, 12}, []float64(result.Series.Actual))
	assert.Equal(t, []float64{11, 13}, []float64(result.Series.Predicted))
	assert.Equal(t, 2, result.Accuracy.Points)
	assert.InDelta(t, 1.0, result.Accuracy.MAE, 1e-9)
	assert.Equal(t, srv.URL+"/data/forecast_lstm.csv", result.Source)
	assert.False(t, result.LoadedAt.IsZero())
}

func TestLoader_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	result, err := NewLoader(NewSource(path), nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Series.Len())
}

func TestLoader_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLoader(NewSource(srv.URL), zap.NewNop()).Load(context.Background())
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindStatus, le.Kind)
	assert.Equal(t, http.StatusNotFound, le.StatusCode)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoader_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLoader(NewSource(url), zap.NewNop()).Load(context.Background())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindTransport, le.Kind)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(NewSource(filepath.Join(t.TempDir(), "nope.csv")), zap.NewNop()).Load(context.Background())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindTransport, le.Kind)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoader_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewLoader(NewSource(srv.URL), zap.NewNop()).Load(ctx)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindCanceled, le.Kind)
}

type errBodySource struct{}

func (errBodySource) Name() string { return "broken" }

func (errBodySource) FetchSeries(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(failingReader{}), nil
}

func TestLoader_ReadError(t *testing.T) {
	_, err := NewLoader(errBodySource{}, zap.NewNop()).Load(context.Background())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindRead, le.Kind)
	assert.Equal(t, "broken", le.Source)
}
