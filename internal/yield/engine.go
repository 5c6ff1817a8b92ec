package yield

import (
	"strings"
	"time"

	"farm-yield/internal/types"
)

// Default trend thresholds, in days of span between start and end.
const (
	DefaultDailyMaxDays  = 31
	DefaultWeeklyMaxDays = 92
)

// DefaultMarkers are the activity-type labels that identify yield updates.
var DefaultMarkers = []string{ActivityTypeYieldUpdate, "อัปเดตผลผลิต"}

// Engine extracts yield events and computes trend data. It holds only
// configuration and is safe for concurrent use.
type Engine struct {
	markers       map[string]struct{}
	dailyMaxDays  int
	weeklyMaxDays int
	now           func() time.Time
	loc           *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithMarkers replaces the activity-type labels treated as yield updates.
func WithMarkers(markers ...string) Option {
	return func(e *Engine) {
		if len(markers) == 0 {
			return
		}
		e.markers = make(map[string]struct{}, len(markers))
		for _, m := range markers {
			e.markers[normalizeMarker(m)] = struct{}{}
		}
	}
}

// WithTrendThresholds sets the largest spans, in days, that still use daily
// and weekly buckets.
func WithTrendThresholds(dailyMaxDays, weeklyMaxDays int) Option {
	return func(e *Engine) {
		if dailyMaxDays > 0 {
			e.dailyMaxDays = dailyMaxDays
		}
		if weeklyMaxDays > 0 {
			e.weeklyMaxDays = weeklyMaxDays
		}
	}
}

// WithClock injects the time source used for period presets.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone preset windows are expressed in, which also
// sets where their trend buckets split. The default keeps the clock's zone.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		e.loc = loc
	}
}

// NewEngine creates an engine with the default markers and thresholds.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		dailyMaxDays:  DefaultDailyMaxDays,
		weeklyMaxDays: DefaultWeeklyMaxDays,
		now:           time.Now,
	}
	WithMarkers(DefaultMarkers...)(e)
	for _, opt := range opts {
		opt(e)
	}
	if e.weeklyMaxDays < e.dailyMaxDays {
		e.weeklyMaxDays = e.dailyMaxDays
	}
	return e
}

// IsYieldUpdate reports whether a record carries a yield-update marker.
func (e *Engine) IsYieldUpdate(rec types.ActivityLogRecord) bool {
	_, ok := e.markers[normalizeMarker(rec.ActivityType)]
	return ok
}

func (e *Engine) currentTime() time.Time {
	if e.loc != nil {
		return e.now().In(e.loc)
	}
	return e.now()
}

func normalizeMarker(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var defaultEngine = NewEngine()

// ParseYieldEvents extracts yield events with the default engine.
func ParseYieldEvents(logs []types.ActivityLogRecord) []YieldEvent {
	return defaultEngine.ParseYieldEvents(logs)
}

// GenerateYieldTrendData buckets events with the default engine.
func GenerateYieldTrendData(events []YieldEvent, start, end time.Time) []TrendPoint {
	return defaultEngine.GenerateYieldTrendData(events, start, end)
}

// CalculateYieldAnalytics summarizes events in [start, end].
func CalculateYieldAnalytics(events []YieldEvent, start, end time.Time) AnalyticsSummary {
	return defaultEngine.CalculateYieldAnalytics(events, start, end)
}

// GetTimePeriods returns the preset windows ending now.
func GetTimePeriods() map[string]Period {
	return defaultEngine.GetTimePeriods()
}
