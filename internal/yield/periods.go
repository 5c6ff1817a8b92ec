package yield

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrUnknownPeriod is returned for a preset key that does not exist.
	ErrUnknownPeriod = errors.New("unknown period")
	// ErrInvalidRange is returned when end precedes start.
	ErrInvalidRange = errors.New("invalid date range")
)

type periodPreset struct {
	key                 string
	label               string
	years, months, days int
}

var periodPresets = []periodPreset{
	{key: "7days", label: "Last 7 days", days: 7},
	{key: "30days", label: "Last 30 days", days: 30},
	{key: "90days", label: "Last 90 days", days: 90},
	{key: "year", label: "Last year", years: 1},
}

// DefaultPeriodKey is used when a caller names no window.
const DefaultPeriodKey = "30days"

// GetTimePeriods returns the preset windows, each ending at the engine's
// current instant.
func (e *Engine) GetTimePeriods() map[string]Period {
	now := e.currentTime()
	out := make(map[string]Period, len(periodPresets))
	for _, p := range periodPresets {
		out[p.key] = Period{
			Key:   p.key,
			Label: p.label,
			Start: now.AddDate(-p.years, -p.months, -p.days),
			End:   now,
		}
	}
	return out
}

// ResolvePeriod returns the preset window for key.
func (e *Engine) ResolvePeriod(key string) (Period, error) {
	p, ok := e.GetTimePeriods()[key]
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, key)
	}
	return p, nil
}

// PeriodKeys lists the preset keys from shortest to longest window.
func PeriodKeys() []string {
	keys := make([]string, len(periodPresets))
	for i, p := range periodPresets {
		keys[i] = p.key
	}
	return keys
}

// SortedPeriods returns periods ordered from the shortest window up.
func SortedPeriods(periods map[string]Period) []Period {
	out := make([]Period, 0, len(periods))
	for _, p := range periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// CustomPeriod validates an explicit window.
func CustomPeriod(start, end time.Time) (Period, error) {
	if end.Before(start) {
		return Period{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Period{Key: "custom", Label: "Custom range", Start: start, End: end}, nil
}
