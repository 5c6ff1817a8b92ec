package yield

import (
	"sort"
	"time"
)

// Granularity picks the bucket width for the span between start and end.
func (e *Engine) Granularity(start, end time.Time) Granularity {
	days := end.Sub(start).Hours() / 24
	switch {
	case days <= float64(e.dailyMaxDays):
		return GranularityDay
	case days <= float64(e.weeklyMaxDays):
		return GranularityWeek
	default:
		return GranularityMonth
	}
}

// GenerateYieldTrendData returns one point per bucket covering [start, end].
// Buckets are aligned to midnight of start's day (first of the month for
// monthly buckets) in start's location, and the last bucket is clipped to
// end. Each point's Yield is the NewYield of the latest event at or before
// the bucket end, including events before start, or 0 if there is none.
func (e *Engine) GenerateYieldTrendData(events []YieldEvent, start, end time.Time) []TrendPoint {
	if end.Before(start) {
		return []TrendPoint{}
	}
	g := e.Granularity(start, end)
	sorted := sortedByDate(events)

	loc := start.Location()
	end = end.In(loc)
	bucket := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	if g == GranularityMonth {
		bucket = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
	}

	points := make([]TrendPoint, 0, bucketCountHint(g, start, end))
	level, idx := 0, 0
	for !bucket.After(end) {
		next := advance(bucket, g)

		from := bucket
		if from.Before(start) {
			from = start
		}
		to := next.Add(-time.Nanosecond)
		if to.After(end) {
			to = end
		}

		p := TrendPoint{Label: bucketLabel(bucket, g), Start: from, End: to}
		for idx < len(sorted) && !sorted[idx].Date.After(to) {
			ev := sorted[idx]
			level = ev.NewYield
			if !ev.Date.Before(from) {
				p.Change += ev.Change
				p.EventCount++
			}
			idx++
		}
		p.Yield = level
		points = append(points, p)
		bucket = next
	}
	return points
}

func advance(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return t.AddDate(0, 0, 7)
	case GranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketLabel(t time.Time, g Granularity) string {
	if g == GranularityMonth {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

func bucketCountHint(g Granularity, start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	switch g {
	case GranularityWeek:
		return days/7 + 1
	case GranularityMonth:
		return days/28 + 1
	default:
		return days + 1
	}
}

// sortedByDate returns a stably sorted copy; callers' slices are not touched.
func sortedByDate(events []YieldEvent) []YieldEvent {
	out := make([]YieldEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
