package main

import (
	"context"
	"fmt"
	"io"
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

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	tracing    bool

	out io.Writer
	cfg *store.Config
	src interfaces.ActivityLogSource
	svc *history.Service
}

// setup loads config and opens the source. Logs go to stderr so that
// reports on stdout stay clean.
func (a *app) setup(ctx context.Context) error {
	_ = godotenv.Load()

	lc := logger.LoadConfigFromEnv()
	lc.Output = os.Stderr
	if err := logger.InitWithConfig(lc); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := store.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", a.configPath, err)
	}
	a.cfg = cfg

	tcfg := trace.LoadConfigFromEnv()
	tcfg.Enabled = a.tracing
	tcfg.ServiceName = cfg.ServiceName + "-report"
	if err := trace.InitWithConfig(tcfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	src, err := activitylog.New(ctx, cfg)
	if err != nil {
		return err
	}
	a.src = src

	var analyzer interfaces.YieldAnalyzer = yield.NewEngine(
		yield.WithMarkers(cfg.Yield.Markers...),
		yield.WithTrendThresholds(cfg.Yield.Trend.DailyMaxDays, cfg.Yield.Trend.WeeklyMaxDays),
		yield.WithLocation(cfg.Location()),
	)
	a.svc = history.NewService(src, yieldobs.Wrap(analyzer),
		history.WithDefaultPeriod(cfg.Yield.DefaultPeriod),
		history.WithMaxConcurrency(cfg.Yield.MaxConcurrency),
		history.WithMaxTrees(cfg.Yield.MaxTrees),
	)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.tracing {
		_ = trace.Shutdown(ctx)
	}
	if a.src == nil {
		return nil
	}
	return a.src.Close()
}

// rangeFromFlags prefers explicit --start/--end over --period.
func (a *app) rangeFromFlags(period, start, end string) (history.Range, error) {
	if start == "" && end == "" {
		return history.PresetRange(period), nil
	}
	return history.DayRange(start, end, a.cfg.Location())
}
