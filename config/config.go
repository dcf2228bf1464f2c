package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Title  string `yaml:"title"`
	Source struct {
		Location  string        `yaml:"location"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit float64       `yaml:"rate_limit"` // reads per second, 0 disables limiting
		Burst     int           `yaml:"burst"`
	} `yaml:"source"`
	Server struct {
		Port     int  `yaml:"port"`
		Compress bool `yaml:"compress"`
	} `yaml:"server"`
	Chart struct {
		Width    int `yaml:"width"`
		Height   int `yaml:"height"`
		MaxTicks int `yaml:"max_ticks"`
	} `yaml:"chart"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// LoadDotEnv loads variables from a .env file into the environment.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// Default returns the configuration used when no file and no environment is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FORECAST_SOURCE"); v != "" {
		c.Source.Location = v
	}
	if v := os.Getenv("FORECAST_TITLE"); v != "" {
		c.Title = v
	}
	if v := os.Getenv("FORECAST_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORECAST_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("FORECAST_COMPRESS"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FORECAST_COMPRESS: %w", err)
		}
		c.Server.Compress = on
	}
	if v := os.Getenv("FORECAST_REFRESH_CRON"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("FORECAST_SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "LSTM Forecast"
	}
	if c.Source.Location == "" {
		c.Source.Location = "data/forecast_lstm.csv"
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 10 * time.Second
	}
	if c.Source.RateLimit > 0 && c.Source.Burst == 0 {
		c.Source.Burst = 1
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1024
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 480
	}
	if c.Chart.MaxTicks == 0 {
		c.Chart.MaxTicks = 10
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.Location) == "" {
		return fmt.Errorf("source.location is required")
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if c.Source.RateLimit < 0 {
		return fmt.Errorf("source.rate_limit must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Chart.Width < 100 || c.Chart.Height < 100 {
		return fmt.Errorf("chart.width and chart.height must be at least 100")
	}
	if c.Chart.MaxTicks < 2 {
		return fmt.Errorf("chart.max_ticks must be at least 2")
	}
	return nil
}
