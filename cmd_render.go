package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forecast-viewer/render"
	"forecast-viewer/view"
)

var (
	renderOut    string
	renderFormat string
)

// renderTimeoutSlack is added to the source timeout to bound the whole load
const renderTimeoutSlack = 5 * time.Second

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Load the forecast once and write the chart to a file",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	cmd.Flags().StringVarP(&renderOut, "out", "o", "forecast.png", "Output file")
	cmd.Flags().StringVarP(&renderFormat, "format", "f", "", "Image format, png or svg (default: from --out extension)")
	return cmd
}

// outputFormat picks the explicit format, else the one named by the file extension
func outputFormat(explicit, out string) (render.Format, error) {
	if explicit != "" {
		return render.ParseFormat(explicit)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	if ext == "" {
		return render.FormatPNG, nil
	}
	return render.ParseFormat(ext)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat(renderFormat, renderOut)
	if err != nil {
		return err
	}

	rec, err := openRecorder(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.Timeout+renderTimeoutSlack)
	defer cancel()

	v := view.NewChartView(buildLoader(cfg, rec), logger)
	v.Mount(ctx)
	defer v.Dispose()
	if err := v.Wait(ctx); err != nil {
		return fmt.Errorf("wait for forecast: %w", err)
	}

	renderer := newRenderer(cfg).WithFormat(format)

	var buf bytes.Buffer
	frame, err := v.Draw(&buf, renderer)
	if errors.Is(err, view.ErrNotReady) {
		if frame.Err != nil {
			return frame.Err
		}
		return errors.New(frame.Message)
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	if err := os.WriteFile(renderOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	logger.Info("chart written",
		zap.String("path", renderOut),
		zap.String("format", string(format)),
		zap.Int("points", len(frame.Chart.Labels)),
		zap.Int("warnings", len(frame.Warnings)))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d points, %d warnings)\n", renderOut, len(frame.Chart.Labels), len(frame.Warnings))
	return nil
}
