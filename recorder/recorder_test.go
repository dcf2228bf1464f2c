package recorder

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forecast-viewer/datasource"
	"forecast-viewer/models"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "loads.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec := openTestRecorder(t)
	mae := 1.5
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, rec.RecordLoad(&LoadEvent{
		Timestamp: base,
		Source:    "data/forecast_lstm.csv",
		Duration:  25 * time.Millisecond,
		Rows:      2,
		Warnings:  1,
		MAE:       &mae,
	}))
	failed := &LoadEvent{
		Timestamp: base.Add(time.Minute),
		Source:    "http://x/forecast.csv",
		ErrorKind: "status",
		Error:     "load http://x/forecast.csv: status (status 404)",
	}
	require.NoError(t, rec.RecordLoad(failed))
	assert.NotZero(t, failed.ID)

	events, err := rec.RecentLoads(10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// newest first
	assert.Equal(t, "status", events[0].ErrorKind)
	assert.Nil(t, events[0].MAE)
	assert.Equal(t, "data/forecast_lstm.csv", events[1].Source)
	assert.Equal(t, 2, events[1].Rows)
	assert.Equal(t, 1, events[1].Warnings)
	assert.Equal(t, 25*time.Millisecond, events[1].Duration)
	require.NotNil(t, events[1].MAE)
	assert.Equal(t, 1.5, *events[1].MAE)
	assert.Nil(t, events[1].RMSE)
	assert.True(t, events[1].Timestamp.Equal(base))

	limited, err := rec.RecentLoads(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestNoopRecorder(t *testing.T) {
	rec := NewNoopRecorder()
	assert.NoError(t, rec.RecordLoad(&LoadEvent{}))
	events, err := rec.RecentLoads(5)
	assert.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, rec.Close())
}

type stubLoader struct {
	result models.LoadResult
	err    error
}

func (s stubLoader) Load(context.Context) (models.LoadResult, error) {
	return s.result, s.err
}

func TestRecordingLoader(t *testing.T) {
	rec := openTestRecorder(t)

	ok := stubLoader{result: models.LoadResult{
		Source: "file.csv",
		Series: models.ForecastSeries{
			Timestamps: []string{"a", "b"},
			Actual:     models.Values{1, 2},
			Predicted:  models.Values{1, 3},
		},
		Warnings: []models.ParseWarning{{Line: 2}},
		Accuracy: models.Accuracy{Points: 2, MAE: 0.5, RMSE: math.NaN()},
	}}
	_, err := NewRecordingLoader(ok, rec, "file.csv", nil).Load(context.Background())
	require.NoError(t, err)

	loadErr := &datasource.LoadError{Kind: datasource.KindTransport, Source: "file.csv", Err: errors.New("no such file")}
	_, err = NewRecordingLoader(stubLoader{err: loadErr}, rec, "file.csv", nil).Load(context.Background())
	require.ErrorIs(t, err, loadErr)

	events, err := rec.RecentLoads(10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	var success, failure LoadEvent
	for _, e := range events {
		if e.Error == "" {
			success = e
		} else {
			failure = e
		}
	}
	assert.Equal(t, 2, success.Rows)
	assert.Equal(t, 1, success.Warnings)
	require.NotNil(t, success.MAE)
	assert.Equal(t, 0.5, *success.MAE)
	assert.Nil(t, success.RMSE)
	assert.Equal(t, "transport", failure.ErrorKind)
	assert.Contains(t, failure.Error, "no such file")
}

type failingRecorder struct{ NoopRecorder }

func (failingRecorder) RecordLoad(*LoadEvent) error { return errors.New("disk full") }

func TestRecordingLoader_RecorderFailureIsNotFatal(t *testing.T) {
	l := NewRecordingLoader(stubLoader{result: models.LoadResult{Source: "x"}}, &failingRecorder{}, "x", zap.NewNop())
	res, err := l.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "x", res.Source)
}
