package api

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"forecast-viewer/view"
)

// ViewFactory creates a fresh, unmounted chart view
type ViewFactory func() *view.ChartView

// ViewStore holds the chart view currently served
type ViewStore struct {
	ctx        context.Context
	factory    ViewFactory
	logger     *zap.Logger
	current    *view.ChartView
	generation int
	mutex      sync.RWMutex
}

// NewViewStore creates a store and mounts its first view.
// Views are mounted under ctx, canceling it aborts their loads.
func NewViewStore(ctx context.Context, factory ViewFactory, logger *zap.Logger) *ViewStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ViewStore{
		ctx:     ctx,
		factory: factory,
		logger:  logger.Named("views"),
	}
	s.Reload()
	return s
}

// Current returns the view being served
func (s *ViewStore) Current() *view.ChartView {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current
}

// Generation returns how many views have been mounted
func (s *ViewStore) Generation() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.generation
}

// Reload mounts a new view, which starts a new load, and disposes the previous one
func (s *ViewStore) Reload() *view.ChartView {
	next := s.factory()
	next.Mount(s.ctx)

	s.mutex.Lock()
	prev := s.current
	s.current = next
	s.generation++
	gen := s.generation
	s.mutex.Unlock()

	if prev != nil {
		prev.Dispose()
	}
	s.logger.Info("mounted forecast view", zap.Int("generation", gen))
	return next
}

// Close disposes the current view
func (s *ViewStore) Close() {
	s.mutex.Lock()
	cur := s.current
	s.mutex.Unlock()
	if cur != nil {
		cur.Dispose()
	}
}
