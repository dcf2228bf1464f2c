package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forecast-viewer/api"
	"forecast-viewer/scheduler"
	"forecast-viewer/view"
)

var servePort int

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast chart over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec, err := openRecorder(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	loader := buildLoader(cfg, rec)
	store := api.NewViewStore(ctx, func() *view.ChartView {
		return view.NewChartView(loader, logger)
	}, logger)
	defer store.Close()

	server := api.NewServer(store, newRenderer(cfg), rec, api.Options{
		Port:     cfg.Server.Port,
		Title:    cfg.Title,
		Compress: cfg.Server.Compress,
	}, logger)

	sched, err := scheduler.NewScheduler(cfg.Schedule.RefreshCron, func() { store.Reload() }, logger)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	logger.Info("serving forecast",
		zap.String("source", cfg.Source.Location),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("scheduled_refresh", sched.Enabled()))

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
