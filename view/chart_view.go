package view

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"forecast-viewer/models"
)

// ErrNotReady is returned by Draw when there is no chart to draw yet
var ErrNotReady = errors.New("forecast chart not ready")

// Messages shown in place of the chart
const (
	LoadingMessage = "Loading forecast data..."
	EmptyMessage   = "The forecast file contains no data."
)

// State is the lifecycle state of a ChartView
type State int

const (
	StateLoading   State = iota // series absent, load in flight or not started
	StatePopulated              // series loaded
	StateFailed                 // load failed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loader produces one forecast per call
type Loader interface {
	Load(ctx context.Context) (models.LoadResult, error)
}

// ChartDrawer draws a chart configuration
type ChartDrawer interface {
	Draw(w io.Writer, cfg models.ChartConfig) error
}

// ChartView owns one forecast load and the state derived from it.
// The load starts on the first Mount and never repeats for the same view.
type ChartView struct {
	loader Loader
	logger *zap.Logger

	mountOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}
	loads     atomic.Int32

	mutex    sync.RWMutex
	state    State
	result   models.LoadResult
	err      error
	disposed bool
	cancel   context.CancelFunc
}

// NewChartView creates an unmounted view
func NewChartView(loader Loader, logger *zap.Logger) *ChartView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartView{
		loader: loader,
		logger: logger.Named("view"),
		done:   make(chan struct{}),
		state:  StateLoading,
	}
}

// Mount starts the view's single load in the background. Calls after the first do nothing.
func (v *ChartView) Mount(ctx context.Context) {
	v.mountOnce.Do(func() {
		v.mutex.Lock()
		if v.disposed {
			v.mutex.Unlock()
			return
		}
		loadCtx, cancel := context.WithCancel(ctx)
		v.cancel = cancel
		v.mutex.Unlock()

		v.loads.Add(1)
		go v.load(loadCtx, cancel)
	})
}

func (v *ChartView) load(ctx context.Context, cancel context.CancelFunc) {
	defer v.finish()
	defer cancel()

	result, err := v.loader.Load(ctx)

	v.mutex.Lock()
	defer v.mutex.Unlock()
	if v.disposed {
		v.logger.Debug("discarding forecast load that completed after dispose")
		return
	}
	if err != nil {
		v.state = StateFailed
		v.err = err
		v.logger.Warn("forecast view load failed", zap.Error(err))
		return
	}
	v.state = StatePopulated
	v.result = result
}

func (v *ChartView) finish() {
	v.doneOnce.Do(func() { close(v.done) })
}

// Dispose cancels an in-flight load. A result arriving afterwards is discarded.
func (v *ChartView) Dispose() {
	v.mutex.Lock()
	v.disposed = true
	cancel := v.cancel
	v.mutex.Unlock()

	if cancel != nil {
		cancel()
	} else {
		// never mounted, nothing will close done
		v.finish()
	}
}

// Done is closed once the load has settled or the view has been disposed
func (v *ChartView) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until Done is closed or ctx ends
func (v *ChartView) Wait(ctx context.Context) error {
	select {
	case <-v.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loads returns how many loads this view has started (0 or 1)
func (v *ChartView) Loads() int {
	return int(v.loads.Load())
}

// State returns the current lifecycle state
func (v *ChartView) State() State {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.state
}

// Result returns the loaded forecast and the load error, if any
func (v *ChartView) Result() (models.LoadResult, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.result, v.err
}

// Render returns what the view should currently show
func (v *ChartView) Render() Frame {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	switch v.state {
	case StateFailed:
		return Frame{Kind: FrameError, Message: v.err.Error(), Err: v.err}
	case StatePopulated:
		res := v.result
		frame := Frame{
			Warnings: res.Warnings,
			Accuracy: res.Accuracy,
			Source:   res.Source,
			LoadedAt: res.LoadedAt,
		}
		if res.Series.Empty() {
			frame.Kind = FrameEmpty
			frame.Message = EmptyMessage
			return frame
		}
		cfg := BuildChartConfig(res.Series)
		frame.Kind = FrameChart
		frame.Chart = &cfg
		return frame
	default:
		return Frame{Kind: FrameLoading, Message: LoadingMessage}
	}
}

// Draw renders the view and hands the chart configuration to d.
// It returns ErrNotReady with the frame when the view has no chart to show.
func (v *ChartView) Draw(w io.Writer, d ChartDrawer) (Frame, error) {
	frame := v.Render()
	if frame.Kind != FrameChart {
		return frame, ErrNotReady
	}
	return frame, d.Draw(w, *frame.Chart)
}

// FrameKind tells which of the view's presentations a Frame holds
type FrameKind string

const (
	FrameLoading FrameKind = "loading"
	FrameEmpty   FrameKind = "empty"
	FrameError   FrameKind = "error"
	FrameChart   FrameKind = "chart"
)

// Frame is one rendering of a ChartView
type Frame struct {
	Kind     FrameKind             `json:"kind"`
	Message  string                `json:"message,omitempty"`
	Chart    *models.ChartConfig   `json:"chart,omitempty"`
	Warnings []models.ParseWarning `json:"warnings,omitempty"`
	Accuracy models.Accuracy       `json:"accuracy"`
	Source   string                `json:"source,omitempty"`
	LoadedAt time.Time             `json:"loadedAt"`
	Err      error                 `json:"-"`
}
