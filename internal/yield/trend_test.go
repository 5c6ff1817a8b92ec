package yield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertContiguous(t *testing.T, points []TrendPoint, start, end time.Time) {
	t.Helper()
	require.NotEmpty(t, points)
	assert.True(t, points[0].Start.Equal(start), "first bucket starts at %s, got %s", start, points[0].Start)
	assert.True(t, points[len(points)-1].End.Equal(end), "last bucket ends at %s, got %s", end, points[len(points)-1].End)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Start.Equal(points[i-1].End.Add(time.Nanosecond)),
			"gap between bucket %d and %d", i-1, i)
	}
}

func TestGenerateYieldTrendData_DailyScenario(t *testing.T) {
	events := ParseYieldEvents(scenarioLogs())
	start, end := day(time.January, 1), day(time.January, 10)

	points := GenerateYieldTrendData(events, start, end)

	require.Len(t, points, 10)
	assertContiguous(t, points, start, end)

	assert.Equal(t, "2024-01-01", points[0].Label)
	assert.Equal(t, 12, points[0].Yield)
	assert.Equal(t, 12, points[0].Change)
	assert.Equal(t, 1, points[0].EventCount)

	for _, p := range points[1:9] {
		assert.Equal(t, 12, p.Yield, "bucket %s carries the last level", p.Label)
		assert.Equal(t, 0, p.Change)
		assert.Equal(t, 0, p.EventCount)
	}

	assert.Equal(t, "2024-01-10", points[9].Label)
	assert.Equal(t, 20, points[9].Yield)
	assert.Equal(t, 8, points[9].Change)
}

func TestGenerateYieldTrendData_CarryForwardIntoEmptyRange(t *testing.T) {
	events := ParseYieldEvents(scenarioLogs())
	start, end := day(time.February, 1), day(time.February, 28)

	points := GenerateYieldTrendData(events, start, end)

	require.Len(t, points, 28)
	assertContiguous(t, points, start, end)
	for _, p := range points {
		assert.Equal(t, 20, p.Yield, "bucket %s", p.Label)
		assert.Equal(t, 0, p.Change)
		assert.Equal(t, 0, p.EventCount)
	}
}

func TestGenerateYieldTrendData_CarryForwardDefaultsToZero(t *testing.T) {
	events := ParseYieldEvents(scenarioLogs())
	start := time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC)

	points := GenerateYieldTrendData(events, start, end)

	require.Len(t, points, 7)
	for _, p := range points {
		assert.Equal(t, 0, p.Yield)
	}
}

func TestGenerateYieldTrendData_PriorEventOnlySetsLevel(t *testing.T) {
	events := []YieldEvent{
		newYieldEvent("prior", "", day(time.March, 1), 0, 30, "", ""),
		newYieldEvent("inside", "", day(time.March, 12).Add(6*time.Hour), 30, 34, "", ""),
	}
	start, end := day(time.March, 10), day(time.March, 14)

	points := GenerateYieldTrendData(events, start, end)

	require.Len(t, points, 5)
	assert.Equal(t, 30, points[0].Yield)
	assert.Equal(t, 0, points[0].Change, "events before start do not count as in-range change")
	assert.Equal(t, 34, points[2].Yield)
	assert.Equal(t, 4, points[2].Change)
	assert.Equal(t, 34, points[4].Yield)
}

func TestGenerateYieldTrendData_WeeklyBuckets(t *testing.T) {
	start, end := day(time.January, 1), day(time.March, 15)
	events := []YieldEvent{
		newYieldEvent("1", "", day(time.January, 3), 0, 10, "", ""),
		newYieldEvent("2", "", day(time.January, 5), 10, 14, "", ""),
		newYieldEvent("3", "", day(time.February, 20), 14, 9, "", ""),
	}

	points := GenerateYieldTrendData(events, start, end)

	assert.Equal(t, GranularityWeek, NewEngine().Granularity(start, end))
	require.Len(t, points, 11)
	assertContiguous(t, points, start, end)
	assert.Equal(t, "2024-01-01", points[0].Label)
	assert.Equal(t, "2024-01-08", points[1].Label)
	assert.Equal(t, 14, points[0].Yield)
	assert.Equal(t, 14, points[0].Change)
	assert.Equal(t, 2, points[0].EventCount)
	assert.Equal(t, 9, points[10].Yield)
}

func TestGenerateYieldTrendData_MonthlyBuckets(t *testing.T) {
	start := day(time.January, 15)
	end := time.Date(2024, time.December, 20, 12, 0, 0, 0, time.UTC)
	events := []YieldEvent{
		newYieldEvent("1", "", day(time.January, 20), 0, 10, "", ""),
		newYieldEvent("2", "", day(time.June, 2), 10, 25, "", ""),
	}

	points := GenerateYieldTrendData(events, start, end)

	require.Len(t, points, 12)
	assertContiguous(t, points, start, end)
	assert.Equal(t, "2024-01", points[0].Label)
	assert.Equal(t, "2024-12", points[11].Label)
	assert.Equal(t, 10, points[4].Yield)
	assert.Equal(t, 25, points[5].Yield)
	assert.Equal(t, 25, points[11].Yield)
}

func TestGenerateYieldTrendData_ConfiguredThresholds(t *testing.T) {
	engine := NewEngine(WithTrendThresholds(7, 14))
	start, end := day(time.January, 1), day(time.January, 10)

	assert.Equal(t, GranularityWeek, engine.Granularity(start, end))
	assert.Len(t, engine.GenerateYieldTrendData(nil, start, end), 2)
}

func TestGenerateYieldTrendData_InvertedRange(t *testing.T) {
	points := GenerateYieldTrendData(nil, day(time.February, 1), day(time.January, 1))
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestGenerateYieldTrendData_SameInstant(t *testing.T) {
	at := day(time.April, 4).Add(15 * time.Hour)
	events := []YieldEvent{newYieldEvent("1", "", at, 3, 6, "", "")}

	points := GenerateYieldTrendData(events, at, at)

	require.Len(t, points, 1)
	assert.Equal(t, 6, points[0].Yield)
	assert.Equal(t, 1, points[0].EventCount)
}
