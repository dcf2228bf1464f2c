package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"forecast-viewer/config"
	"forecast-viewer/datasource"
	"forecast-viewer/recorder"
	"forecast-viewer/render"
	"forecast-viewer/view"
)

var (
	// Global flags
	verbose    bool
	configPath string
	envPath    string
	sourceFlag string

	logger *zap.Logger
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "forecast-viewer",
		Short: "Chart a forecast CSV against its actual values",
		Long: `forecast-viewer loads a forecast file with actual and predicted values
per timestamp and shows them as two overlaid line series.

The file may be local or served over HTTP. Non-numeric cells are charted as gaps.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zapCfg := zap.NewProductionConfig()
			if verbose {
				zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zapCfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&envPath, "env", ".env", "Path to a .env file (ignored if missing)")
	root.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "Forecast file path or URL (overrides config)")

	root.AddCommand(newServeCmd(), newRenderCmd(), newInspectCmd())
	return root
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env, the YAML file and the --source override
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if sourceFlag != "" {
		cfg.Source.Location = sourceFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openRecorder opens the load history store, or a no-op one when no path is configured
func openRecorder(cfg *config.Config) (recorder.Recorder, error) {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
}

// buildLoader wires the source, its rate limit and the load recorder together
func buildLoader(cfg *config.Config, rec recorder.Recorder) view.Loader {
	opts := []datasource.SourceOption{datasource.WithTimeout(cfg.Source.Timeout)}
	if cfg.Source.RateLimit > 0 {
		opts = append(opts, datasource.WithRateLimit(cfg.Source.RateLimit, cfg.Source.Burst))
	}
	source := datasource.NewSource(cfg.Source.Location, opts...)
	loader := datasource.NewLoader(source, logger)
	return recorder.NewRecordingLoader(loader, rec, source.Name(), logger)
}

// newRenderer builds the chart renderer shared by serve and render
func newRenderer(cfg *config.Config) *render.Renderer {
	return render.NewRenderer(render.Options{
		Width:    cfg.Chart.Width,
		Height:   cfg.Chart.Height,
		MaxTicks: cfg.Chart.MaxTicks,
		Title:    cfg.Title,
	})
}
