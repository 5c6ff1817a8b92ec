package yieldobs

import (
	"testing"
	"time"

	"farm-yield/internal/metrics"
	"farm-yield/internal/types"
	"farm-yield/internal/yield"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_DelegatesAndCounts(t *testing.T) {
	engine := yield.NewEngine()
	wrapped := Wrap(engine)

	logs := []types.ActivityLogRecord{
		{ID: "1", TreeID: "t", Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), ActivityType: "yield_update", Notes: "จาก 12 ลูก เป็น 20 ลูก"},
		{ID: "2", TreeID: "t", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ActivityType: "yield_update", NewYield: types.IntPtr(12)},
		{ID: "3", TreeID: "t", ActivityType: "yield_update", NewYield: types.IntPtr(5)},
		{ID: "4", TreeID: "t", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ActivityType: "pruning"},
	}

	scannedBefore := testutil.ToFloat64(metrics.RecordsScanned)
	extractedBefore := testutil.ToFloat64(metrics.EventsExtracted)
	skippedBefore := testutil.ToFloat64(metrics.RecordsSkipped.WithLabelValues(string(yield.SkipMissingDate)))

	res := wrapped.Extract(logs)
	assert.Equal(t, engine.Extract(logs), res)
	require.Len(t, res.Events, 2)
	require.Len(t, res.Skipped, 1)

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.RecordsScanned)-scannedBefore)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EventsExtracted)-extractedBefore)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RecordsSkipped.WithLabelValues(string(yield.SkipMissingDate)))-skippedBefore)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, engine.GenerateYieldTrendData(res.Events, start, end), wrapped.GenerateYieldTrendData(res.Events, start, end))
	assert.Equal(t, engine.CalculateYieldAnalytics(res.Events, start, end), wrapped.CalculateYieldAnalytics(res.Events, start, end))
	assert.Equal(t, yield.GranularityDay, wrapped.Granularity(start, end))
}

func TestWrap_ResolvePeriod(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	wrapped := Wrap(yield.NewEngine(yield.WithClock(func() time.Time { return now })))

	p, err := wrapped.ResolvePeriod("7days")
	require.NoError(t, err)
	assert.Equal(t, now, p.End)

	_, err = wrapped.ResolvePeriod("decade")
	assert.ErrorIs(t, err, yield.ErrUnknownPeriod)
	assert.Len(t, wrapped.GetTimePeriods(), 4)
}
