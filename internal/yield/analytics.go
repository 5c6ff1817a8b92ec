package yield

import "time"

// CalculateYieldAnalytics summarizes events whose date lies in [start, end],
// both bounds inclusive. Min, max and current yield are taken over NewYield.
func (e *Engine) CalculateYieldAnalytics(events []YieldEvent, start, end time.Time) AnalyticsSummary {
	summary := AnalyticsSummary{Start: start, End: end}

	inRange := FilterByDate(events, start, end)
	if len(inRange) == 0 {
		return summary
	}

	minYield, maxYield := inRange[0].NewYield, inRange[0].NewYield
	for _, ev := range inRange {
		summary.TotalChange += ev.Change
		switch {
		case ev.Change > 0:
			summary.Increases++
		case ev.Change < 0:
			summary.Decreases++
		}
		if ev.NewYield < minYield {
			minYield = ev.NewYield
		}
		if ev.NewYield > maxYield {
			maxYield = ev.NewYield
		}
	}

	first, last := inRange[0], inRange[len(inRange)-1]
	summary.EventCount = len(inRange)
	summary.AverageChange = float64(summary.TotalChange) / float64(summary.EventCount)
	summary.MinYield = &minYield
	summary.MaxYield = &maxYield
	current := last.NewYield
	summary.CurrentYield = &current
	if first.PreviousYield > 0 {
		rate := float64(last.NewYield-first.PreviousYield) / float64(first.PreviousYield) * 100
		summary.GrowthRate = &rate
	}
	return summary
}

// FilterByDate returns the events with start <= date <= end, ordered by date.
func FilterByDate(events []YieldEvent, start, end time.Time) []YieldEvent {
	out := make([]YieldEvent, 0, len(events))
	for _, ev := range sortedByDate(events) {
		if ev.Date.Before(start) || ev.Date.After(end) {
			continue
		}
		out = append(out, ev)
	}
	return out
}
