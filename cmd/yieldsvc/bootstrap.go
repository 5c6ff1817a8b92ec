package main

import (
	"context"
	"fmt"
	"os"

	"farm-yield/internal/activitylog"
	"farm-yield/internal/history"
	"farm-yield/internal/interfaces"
	"farm-yield/internal/logger"
	"farm-yield/internal/store"
	"farm-yield/internal/trace"
	"farm-yield/internal/yield"
	"farm-yield/internal/yield/yieldobs"

	"github.com/joho/godotenv"
)

// initializeSystem loads .env and sets up the logger
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initializeTracer starts the tracer under the configured service name
func initializeTracer(cfg *store.Config) {
	tcfg := trace.LoadConfigFromEnv()
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		tcfg.ServiceName = cfg.ServiceName
	}
	if err := trace.InitWithConfig(tcfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
}

// loadConfig loads the YAML config named by FARM_CONFIG (default config.yaml)
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("FARM_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeSource opens the configured activity log source
func initializeSource(ctx context.Context, cfg *store.Config) (interfaces.ActivityLogSource, error) {
	src, err := activitylog.New(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open activity log source", err, "kind", cfg.Source.Kind)
		return nil, err
	}
	logger.Info(ctx, "Activity log source ready", "kind", src.Name())
	return src, nil
}

// initializeAnalyzer builds the yield engine with observability
func initializeAnalyzer(cfg *store.Config) interfaces.YieldAnalyzer {
	engine := yield.NewEngine(
		yield.WithMarkers(cfg.Yield.Markers...),
		yield.WithTrendThresholds(cfg.Yield.Trend.DailyMaxDays, cfg.Yield.Trend.WeeklyMaxDays),
		yield.WithLocation(cfg.Location()),
	)
	return yieldobs.Wrap(engine)
}

// initializeHistory assembles the history service
func initializeHistory(cfg *store.Config, src interfaces.ActivityLogSource, analyzer interfaces.YieldAnalyzer) *history.Service {
	return history.NewService(src, analyzer,
		history.WithDefaultPeriod(cfg.Yield.DefaultPeriod),
		history.WithMaxConcurrency(cfg.Yield.MaxConcurrency),
		history.WithMaxTrees(cfg.Yield.MaxTrees),
	)
}
