package yieldobs

import (
	"context"
	"time"

	"farm-yield/internal/interfaces"
	"farm-yield/internal/logger"
	"farm-yield/internal/metrics"
	"farm-yield/internal/trace"
	"farm-yield/internal/types"
	"farm-yield/internal/yield"
)

type observableAnalyzer struct {
	analyzer interfaces.YieldAnalyzer
}

var _ interfaces.YieldAnalyzer = (*observableAnalyzer)(nil)

func Wrap(analyzer interfaces.YieldAnalyzer) interfaces.YieldAnalyzer {
	return &observableAnalyzer{
		analyzer: analyzer,
	}
}

func (oa *observableAnalyzer) Extract(logs []types.ActivityLogRecord) yield.ExtractResult {
	ctx := context.Background()
	ctx, span := trace.StartSpan(ctx, "yield.Extract")
	defer span.End()

	res := oa.analyzer.Extract(logs)

	metrics.RecordsScanned.Add(float64(len(logs)))
	metrics.EventsExtracted.Add(float64(len(res.Events)))

	treeID := ""
	if len(logs) > 0 {
		treeID = logs[0].TreeID
	}
	for _, s := range res.Skipped {
		metrics.RecordsSkipped.WithLabelValues(string(s.Reason)).Inc()
		logger.SkippedRecord(ctx, treeID, s.ID, string(s.Reason))
	}
	if logger.IsDebugEnabled() {
		for _, ev := range res.Events {
			logger.YieldEvent(ctx, ev.TreeID, ev.ID, ev.PreviousYield, ev.NewYield,
				"date", ev.Date.Format(time.RFC3339),
			)
		}
	}

	logger.DebugSkip(ctx, 1, "Yield events extracted",
		"records", len(logs),
		"events", len(res.Events),
		"skipped", len(res.Skipped),
	)
	return res
}

func (oa *observableAnalyzer) GenerateYieldTrendData(events []yield.YieldEvent, start, end time.Time) []yield.TrendPoint {
	ctx := context.Background()
	ctx, span := trace.StartSpan(ctx, "yield.GenerateYieldTrendData")
	defer span.End()

	points := oa.analyzer.GenerateYieldTrendData(events, start, end)

	logger.DebugSkip(ctx, 1, "Yield trend generated",
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"granularity", string(oa.analyzer.Granularity(start, end)),
		"points", len(points),
	)
	return points
}

func (oa *observableAnalyzer) CalculateYieldAnalytics(events []yield.YieldEvent, start, end time.Time) yield.AnalyticsSummary {
	ctx := context.Background()
	ctx, span := trace.StartSpan(ctx, "yield.CalculateYieldAnalytics")
	defer span.End()

	summary := oa.analyzer.CalculateYieldAnalytics(events, start, end)

	logger.DebugSkip(ctx, 1, "Yield analytics calculated",
		"event_count", summary.EventCount,
		"total_change", summary.TotalChange,
	)
	return summary
}

func (oa *observableAnalyzer) Granularity(start, end time.Time) yield.Granularity {
	return oa.analyzer.Granularity(start, end)
}

func (oa *observableAnalyzer) GetTimePeriods() map[string]yield.Period {
	return oa.analyzer.GetTimePeriods()
}

func (oa *observableAnalyzer) ResolvePeriod(key string) (yield.Period, error) {
	p, err := oa.analyzer.ResolvePeriod(key)
	if err != nil {
		logger.Warn(context.Background(), "Unknown period requested", "period", key)
	}
	return p, err
}
