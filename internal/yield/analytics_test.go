package yield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateYieldAnalytics_Scenario(t *testing.T) {
	events := ParseYieldEvents(scenarioLogs())

	summary := CalculateYieldAnalytics(events, day(time.January, 1), day(time.January, 10))

	assert.Equal(t, 20, summary.TotalChange)
	assert.Equal(t, 2, summary.EventCount)
	assert.Equal(t, 10.0, summary.AverageChange)
	require.NotNil(t, summary.MinYield)
	require.NotNil(t, summary.MaxYield)
	require.NotNil(t, summary.CurrentYield)
	assert.Equal(t, 12, *summary.MinYield)
	assert.Equal(t, 20, *summary.MaxYield)
	assert.Equal(t, 20, *summary.CurrentYield)
	assert.Equal(t, 2, summary.Increases)
	assert.Equal(t, 0, summary.Decreases)
	assert.Nil(t, summary.GrowthRate, "growth from a zero baseline is undefined")
}

func TestCalculateYieldAnalytics_Empty(t *testing.T) {
	summary := CalculateYieldAnalytics(nil, day(time.January, 1), day(time.January, 31))

	assert.Equal(t, 0, summary.TotalChange)
	assert.Equal(t, 0, summary.EventCount)
	assert.Equal(t, 0.0, summary.AverageChange)
	assert.Nil(t, summary.MinYield)
	assert.Nil(t, summary.MaxYield)
	assert.Nil(t, summary.CurrentYield)
	assert.Nil(t, summary.GrowthRate)
}

func TestCalculateYieldAnalytics_NoEventsInRange(t *testing.T) {
	events := ParseYieldEvents(scenarioLogs())

	summary := CalculateYieldAnalytics(events, day(time.February, 1), day(time.February, 28))

	assert.Equal(t, 0, summary.TotalChange)
	assert.Equal(t, 0, summary.EventCount)
	assert.Equal(t, 0.0, summary.AverageChange)
	assert.Nil(t, summary.MinYield)
	assert.Nil(t, summary.MaxYield)
}

func TestCalculateYieldAnalytics_InclusiveBounds(t *testing.T) {
	events := []YieldEvent{
		newYieldEvent("before", "", day(time.March, 31), 0, 5, "", ""),
		newYieldEvent("start", "", day(time.April, 1), 5, 9, "", ""),
		newYieldEvent("end", "", day(time.April, 30), 9, 4, "", ""),
		newYieldEvent("after", "", day(time.April, 30).Add(time.Second), 4, 50, "", ""),
	}

	summary := CalculateYieldAnalytics(events, day(time.April, 1), day(time.April, 30))

	assert.Equal(t, 2, summary.EventCount)
	assert.Equal(t, -1, summary.TotalChange)
	assert.Equal(t, -0.5, summary.AverageChange)
	assert.Equal(t, 1, summary.Increases)
	assert.Equal(t, 1, summary.Decreases)
}

func TestCalculateYieldAnalytics_MinMaxOverNewYield(t *testing.T) {
	events := []YieldEvent{
		newYieldEvent("1", "", day(time.May, 1), 100, 40, "", ""),
		newYieldEvent("2", "", day(time.May, 2), 40, 70, "", ""),
		newYieldEvent("3", "", day(time.May, 3), 70, 55, "", ""),
	}

	summary := CalculateYieldAnalytics(events, day(time.May, 1), day(time.May, 31))

	require.NotNil(t, summary.MinYield)
	require.NotNil(t, summary.MaxYield)
	assert.Equal(t, 40, *summary.MinYield)
	assert.Equal(t, 70, *summary.MaxYield)
	assert.Equal(t, 55, *summary.CurrentYield)
	require.NotNil(t, summary.GrowthRate)
	assert.InDelta(t, -45.0, *summary.GrowthRate, 1e-9)
}

func TestCalculateYieldAnalytics_ZeroSumIsNotEmpty(t *testing.T) {
	events := []YieldEvent{
		newYieldEvent("1", "", day(time.June, 1), 10, 15, "", ""),
		newYieldEvent("2", "", day(time.June, 2), 15, 10, "", ""),
	}

	summary := CalculateYieldAnalytics(events, day(time.June, 1), day(time.June, 30))

	assert.Equal(t, 0, summary.TotalChange)
	assert.Equal(t, 2, summary.EventCount)
	require.NotNil(t, summary.MinYield)
	assert.Equal(t, 10, *summary.MinYield)
}

func TestFilterByDate_UnsortedInput(t *testing.T) {
	events := []YieldEvent{
		newYieldEvent("b", "", day(time.June, 5), 0, 2, "", ""),
		newYieldEvent("a", "", day(time.June, 1), 0, 1, "", ""),
	}
	out := FilterByDate(events, day(time.June, 1), day(time.June, 30))
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", events[0].ID, "input order is preserved")
}
