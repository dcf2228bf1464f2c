package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"forecast-viewer/datasource"
	"forecast-viewer/recorder"
	"forecast-viewer/render"
	"forecast-viewer/view"
)

// Options configures the API server
type Options struct {
	Port     int
	Title    string
	Compress bool
}

// Server represents the API server
type Server struct {
	store    *ViewStore
	renderer *render.Renderer
	recorder recorder.Recorder
	title    string
	logger   *zap.Logger
	server   *http.Server
}

type apiRoute struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// NewServer creates a new API server
func NewServer(store *ViewStore, renderer *render.Renderer, rec recorder.Recorder, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}

	s := &Server{
		store:    store,
		renderer: renderer,
		recorder: rec,
		title:    opts.Title,
		logger:   logger.Named("api"),
	}

	r := mux.NewRouter()
	for _, route := range s.routes() {
		r.HandleFunc(route.Path, route.Handler).Methods(route.Method)
	}

	var handler http.Handler = r
	if opts.Compress {
		handler = ZstdMiddleware(handler)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() []apiRoute {
	return []apiRoute{
		{Path: "/", Method: http.MethodGet, Handler: s.handlePage},
		{Path: "/chart.{format:png|svg}", Method: http.MethodGet, Handler: s.handleChartImage},
		{Path: "/api/forecast", Method: http.MethodGet, Handler: s.handleGetForecast},
		{Path: "/api/chart", Method: http.MethodGet, Handler: s.handleGetChartConfig},
		{Path: "/api/loads", Method: http.MethodGet, Handler: s.handleGetLoads},
		{Path: "/api/reload", Method: http.MethodPost, Handler: s.handleReload},
		{Path: "/api/health", Method: http.MethodGet, Handler: s.handleHealthCheck},
	}
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeFrameError answers for views that have nothing to show yet or failed
func writeFrameError(w http.ResponseWriter, frame view.Frame) {
	switch frame.Kind {
	case view.FrameLoading:
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":  string(frame.Kind),
			"message": frame.Message,
		})
	case view.FrameError:
		body := map[string]string{"error": frame.Message}
		var le *datasource.LoadError
		if errors.As(frame.Err, &le) {
			body["kind"] = string(le.Kind)
		}
		writeJSON(w, http.StatusBadGateway, body)
	}
}

// handlePage serves the HTML page with the title and the chart area
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	frame := s.store.Current().Render()

	var buf bytes.Buffer
	if err := render.WritePage(&buf, render.PageData{Title: s.title, Frame: frame, ImageURL: "/chart.svg"}); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleChartImage draws the chart as PNG or SVG
func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	frame, err := s.store.Current().Draw(&buf, s.renderer.WithFormat(format))
	switch {
	case errors.Is(err, view.ErrNotReady) && frame.Kind == view.FrameEmpty,
		errors.Is(err, render.ErrNoData):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No forecast data to chart"})
		return
	case errors.Is(err, view.ErrNotReady):
		writeFrameError(w, frame)
		return
	case err != nil:
		s.logger.Error("render chart", zap.String("format", string(format)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleGetForecast returns the loaded series with its warnings and accuracy
func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	v := s.store.Current()
	frame := v.Render()
	if frame.Kind == view.FrameLoading || frame.Kind == view.FrameError {
		writeFrameError(w, frame)
		return
	}

	result, _ := v.Result()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"source":    result.Source,
		"data":      result,
		"timestamp": time.Now(),
	})
}

// handleGetChartConfig returns the chart configuration handed to the charting library
func (s *Server) handleGetChartConfig(w http.ResponseWriter, r *http.Request) {
	v := s.store.Current()
	frame := v.Render()
	switch frame.Kind {
	case view.FrameLoading, view.FrameError:
		writeFrameError(w, frame)
	case view.FrameEmpty:
		result, _ := v.Result()
		writeJSON(w, http.StatusOK, view.BuildChartConfig(result.Series))
	default:
		writeJSON(w, http.StatusOK, frame.Chart)
	}
}

// handleGetLoads returns the recent load history
func (s *Server) handleGetLoads(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
			if limit > 500 {
				limit = 500 // Cap to keep responses small
			}
		}
	}

	events, err := s.recorder.RecentLoads(limit)
	if err != nil {
		s.logger.Error("query load history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"loads": events,
		"count": len(events),
	})
}

// handleReload mounts a fresh view, starting a new load cycle
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.store.Reload()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":     "reloading",
		"generation": s.store.Generation(),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"view":      s.store.Current().State().String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
