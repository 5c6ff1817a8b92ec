package store

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"farm-yield/internal/yield"
)

type Config struct {
	ServiceName string `yaml:"service_name"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Source struct {
		Kind string `yaml:"kind"`
		HTTP struct {
			BaseURL        string        `yaml:"base_url"`
			LogsPath       string        `yaml:"logs_path"`
			TokenEnv       string        `yaml:"token_env"`
			Timeout        time.Duration `yaml:"timeout"`
			RequestsPerSec float64       `yaml:"requests_per_sec"`
			Burst          int           `yaml:"burst"`
			MaxAttempts    int           `yaml:"max_attempts"`
			// Headers are sent with every request, e.g. a farm API key.
			Headers map[string]string `yaml:"headers"`
		} `yaml:"http"`
		Postgres struct {
			DSNEnv   string `yaml:"dsn_env"`
			MaxConns int32  `yaml:"max_conns"`
		} `yaml:"postgres"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		File struct {
			Dir string `yaml:"dir"`
		} `yaml:"file"`
	} `yaml:"source"`
	Yield struct {
		Markers []string `yaml:"markers"`
		Trend   struct {
			DailyMaxDays  int `yaml:"daily_max_days"`
			WeeklyMaxDays int `yaml:"weekly_max_days"`
		} `yaml:"trend"`
		DefaultPeriod  string `yaml:"default_period"`
		Timezone       string `yaml:"timezone"`
		MaxConcurrency int    `yaml:"max_concurrency"`
		MaxTrees       int    `yaml:"max_trees"`
	} `yaml:"yield"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

var validSourceKinds = map[string]bool{
	"http":     true,
	"postgres": true,
	"sqlite":   true,
	"file":     true,
}

func (c *Config) Validate() error {
	if !validSourceKinds[c.Source.Kind] {
		return fmt.Errorf("invalid source.kind '%s': must be 'http', 'postgres', 'sqlite' or 'file'", c.Source.Kind)
	}
	switch c.Source.Kind {
	case "http":
		if c.Source.HTTP.BaseURL == "" {
			return errors.New("source.http.base_url cannot be empty")
		}
		if c.Source.HTTP.RequestsPerSec < 0 {
			return fmt.Errorf("source.http.requests_per_sec must be >= 0, got %.2f", c.Source.HTTP.RequestsPerSec)
		}
	case "postgres":
		if c.Source.Postgres.DSNEnv == "" {
			return errors.New("source.postgres.dsn_env cannot be empty")
		}
	case "sqlite":
		if c.Source.SQLite.Path == "" {
			return errors.New("source.sqlite.path cannot be empty")
		}
	case "file":
		if c.Source.File.Dir == "" {
			return errors.New("source.file.dir cannot be empty")
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	if c.Yield.Trend.DailyMaxDays <= 0 {
		return fmt.Errorf("yield.trend.daily_max_days must be positive, got %d", c.Yield.Trend.DailyMaxDays)
	}
	if c.Yield.Trend.WeeklyMaxDays < c.Yield.Trend.DailyMaxDays {
		return fmt.Errorf("yield.trend.weekly_max_days (%d) must be >= daily_max_days (%d)",
			c.Yield.Trend.WeeklyMaxDays, c.Yield.Trend.DailyMaxDays)
	}
	if keys := yield.PeriodKeys(); !slices.Contains(keys, c.Yield.DefaultPeriod) {
		return fmt.Errorf("invalid yield.default_period '%s': must be one of %s",
			c.Yield.DefaultPeriod, strings.Join(keys, ", "))
	}
	if _, err := time.LoadLocation(c.Yield.Timezone); err != nil {
		return fmt.Errorf("invalid yield.timezone '%s': %w", c.Yield.Timezone, err)
	}
	if c.Yield.MaxConcurrency <= 0 {
		return fmt.Errorf("yield.max_concurrency must be positive, got %d", c.Yield.MaxConcurrency)
	}
	return nil
}

// Location returns the configured timezone used for date-only query bounds.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Yield.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML, applies defaults and environment overrides, and
// validates the result.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)
	applyEnvOverrides(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.ServiceName == "" {
		c.ServiceName = "farm-yield"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Source.Kind == "" {
		c.Source.Kind = "file"
	}
	c.Source.Kind = strings.ToLower(c.Source.Kind)
	if c.Source.HTTP.LogsPath == "" {
		c.Source.HTTP.LogsPath = "/api/trees/%s/activity-logs"
	}
	if c.Source.HTTP.TokenEnv == "" {
		c.Source.HTTP.TokenEnv = "FARM_API_TOKEN"
	}
	if c.Source.HTTP.Timeout == 0 {
		c.Source.HTTP.Timeout = 15 * time.Second
	}
	if c.Source.HTTP.Burst == 0 {
		c.Source.HTTP.Burst = 1
	}
	if c.Source.HTTP.MaxAttempts == 0 {
		c.Source.HTTP.MaxAttempts = 3
	}
	if c.Source.Postgres.DSNEnv == "" {
		c.Source.Postgres.DSNEnv = "FARM_DB_DSN"
	}
	if c.Source.Postgres.MaxConns == 0 {
		c.Source.Postgres.MaxConns = 4
	}
	if c.Source.File.Dir == "" {
		c.Source.File.Dir = "data/activity-logs"
	}
	if c.Yield.Trend.DailyMaxDays == 0 {
		c.Yield.Trend.DailyMaxDays = 31
	}
	if c.Yield.Trend.WeeklyMaxDays == 0 {
		c.Yield.Trend.WeeklyMaxDays = 92
	}
	if c.Yield.DefaultPeriod == "" {
		c.Yield.DefaultPeriod = yield.DefaultPeriodKey
	}
	if c.Yield.Timezone == "" {
		c.Yield.Timezone = "Asia/Bangkok"
	}
	if c.Yield.MaxConcurrency == 0 {
		c.Yield.MaxConcurrency = 4
	}
	if c.Yield.MaxTrees == 0 {
		c.Yield.MaxTrees = 200
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("FARM_SOURCE_KIND"); v != "" {
		c.Source.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("FARM_API_BASE_URL"); v != "" {
		c.Source.HTTP.BaseURL = v
	}
	if v := os.Getenv("FARM_SQLITE_PATH"); v != "" {
		c.Source.SQLite.Path = v
	}
	if v := os.Getenv("FARM_LOG_DIR"); v != "" {
		c.Source.File.Dir = v
	}
}
