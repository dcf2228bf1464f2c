package recorder

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"forecast-viewer/datasource"
	"forecast-viewer/models"
)

// Loader is anything that loads a forecast
type Loader interface {
	Load(ctx context.Context) (models.LoadResult, error)
}

// RecordingLoader wraps a Loader and records every load outcome
type RecordingLoader struct {
	loader   Loader
	recorder Recorder
	source   string
	logger   *zap.Logger
}

// NewRecordingLoader creates a loader that records to rec. source names the resource in failed events.
func NewRecordingLoader(loader Loader, rec Recorder, source string, logger *zap.Logger) *RecordingLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingLoader{loader: loader, recorder: rec, source: source, logger: logger.Named("recorder")}
}

// Load forwards to the wrapped loader and records the outcome.
// A recording failure is logged, never returned.
func (l *RecordingLoader) Load(ctx context.Context) (models.LoadResult, error) {
	start := time.Now()
	result, err := l.loader.Load(ctx)

	evt := NewLoadEvent(l.source, start, time.Since(start), result, err)
	if recErr := l.recorder.RecordLoad(evt); recErr != nil {
		l.logger.Warn("failed to record load event", zap.Error(recErr))
	}
	return result, err
}

// NewLoadEvent describes a load outcome
func NewLoadEvent(source string, start time.Time, elapsed time.Duration, result models.LoadResult, err error) *LoadEvent {
	evt := &LoadEvent{
		Timestamp: start,
		Source:    source,
		Duration:  elapsed,
	}
	if err != nil {
		evt.Error = err.Error()
		evt.ErrorKind = "unknown"
		var le *datasource.LoadError
		if errors.As(err, &le) {
			evt.ErrorKind = string(le.Kind)
		}
		return evt
	}

	if result.Source != "" {
		evt.Source = result.Source
	}
	evt.Rows = result.Series.Len()
	evt.Warnings = len(result.Warnings)
	evt.MAE = finite(result.Accuracy.MAE)
	evt.RMSE = finite(result.Accuracy.RMSE)
	return evt
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
