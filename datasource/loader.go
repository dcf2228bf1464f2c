package datasource

import (
	"context"
	"time"

	"go.uber.org/zap"

	"forecast-viewer/evaluate"
	"forecast-viewer/models"
)

// Loader reads a forecast resource once per call and parses it
type Loader struct {
	source SeriesSource
	logger *zap.Logger
	now    func() time.Time
}

// NewLoader creates a loader over the given source
func NewLoader(source SeriesSource, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source: source,
		logger: logger.Named("loader"),
		now:    time.Now,
	}
}

// Source returns the source the loader reads from
func (l *Loader) Source() SeriesSource {
	return l.source
}

// Load performs a single read of the source and parses the result.
// Failures are returned as *LoadError.
func (l *Loader) Load(ctx context.Context) (models.LoadResult, error) {
	start := l.now()

	body, err := l.source.FetchSeries(ctx)
	if err != nil {
		err = classify(l.source.Name(), KindTransport, err)
		l.logger.Warn("forecast load failed", zap.String("source", l.source.Name()), zap.Error(err))
		return models.LoadResult{}, err
	}
	defer body.Close()

	series, warnings, err := ParseSeries(body)
	if err != nil {
		err = classify(l.source.Name(), KindRead, err)
		l.logger.Warn("forecast read failed", zap.String("source", l.source.Name()), zap.Error(err))
		return models.LoadResult{}, err
	}

	result := models.LoadResult{
		Series:   series,
		Warnings: warnings,
		Accuracy: evaluate.Summarize(series),
		Source:   l.source.Name(),
		LoadedAt: l.now(),
	}

	l.logger.Info("forecast loaded",
		zap.String("source", result.Source),
		zap.Int("rows", series.Len()),
		zap.Int("warnings", len(warnings)),
		zap.Duration("elapsed", result.LoadedAt.Sub(start)),
	)
	for _, w := range warnings {
		l.logger.Debug("forecast row warning",
			zap.Int("line", w.Line),
			zap.String("field", w.Field),
			zap.String("value", w.Value),
			zap.String("reason", w.Reason),
		)
	}

	return result, nil
}
