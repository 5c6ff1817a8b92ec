package interfaces

import (
	"time"

	"farm-yield/internal/types"
	"farm-yield/internal/yield"
)

// YieldAnalyzer reconstructs yield events and computes trend analytics.
// *yield.Engine is the implementation; yieldobs wraps it.
type YieldAnalyzer interface {
	Extract(logs []types.ActivityLogRecord) yield.ExtractResult
	GenerateYieldTrendData(events []yield.YieldEvent, start, end time.Time) []yield.TrendPoint
	CalculateYieldAnalytics(events []yield.YieldEvent, start, end time.Time) yield.AnalyticsSummary
	Granularity(start, end time.Time) yield.Granularity
	GetTimePeriods() map[string]yield.Period
	ResolvePeriod(key string) (yield.Period, error)
}
