package yield

import "time"

// ActivityTypeYieldUpdate tags every YieldEvent produced by the extractor.
const ActivityTypeYieldUpdate = "yield_update"

// YieldEvent is a change in a tree's fruit count reconstructed from one
// activity log record. It is a view over the log and is never stored.
type YieldEvent struct {
	ID            string    `json:"id"`
	TreeID        string    `json:"tree_id,omitempty"`
	Date          time.Time `json:"date"`
	ActivityType  string    `json:"activity_type"`
	PreviousYield int       `json:"previous_yield"`
	NewYield      int       `json:"new_yield"`
	Change        int       `json:"change"`
	Reason        string    `json:"reason,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

func newYieldEvent(id, treeID string, date time.Time, prev, next int, reason, notes string) YieldEvent {
	return YieldEvent{
		ID:            id,
		TreeID:        treeID,
		Date:          date,
		ActivityType:  ActivityTypeYieldUpdate,
		PreviousYield: prev,
		NewYield:      next,
		Change:        next - prev,
		Reason:        reason,
		Notes:         notes,
	}
}

// SkipReason explains why a yield-update record produced no event.
type SkipReason string

const (
	SkipMissingDate    SkipReason = "missing_date"
	SkipNoYieldValue   SkipReason = "no_yield_value"
	SkipNegativeYield  SkipReason = "negative_yield"
	SkipMalformedInput SkipReason = "malformed_record"
)

// SkippedRecord identifies a yield-update record that could not be parsed.
type SkippedRecord struct {
	ID     string     `json:"id"`
	Reason SkipReason `json:"reason"`
}

// ExtractResult is the outcome of one extraction pass.
type ExtractResult struct {
	Events  []YieldEvent    `json:"events"`
	Skipped []SkippedRecord `json:"skipped,omitempty"`
}

// Granularity is the width of a trend bucket.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// TrendPoint is one bucket of the yield trend series. Yield is the tree's
// cumulative yield level at the end of the bucket; Change and EventCount only
// cover events inside the bucket.
type TrendPoint struct {
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Yield      int       `json:"yield"`
	Change     int       `json:"change"`
	EventCount int       `json:"event_count"`
}

// AnalyticsSummary aggregates the events inside a date window. Pointer fields
// are nil when the window holds no events (or, for GrowthRate, when the rate
// is undefined).
type AnalyticsSummary struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	TotalChange   int       `json:"total_change"`
	EventCount    int       `json:"event_count"`
	AverageChange float64   `json:"average_change"`
	MinYield      *int      `json:"min_yield"`
	MaxYield      *int      `json:"max_yield"`
	CurrentYield  *int      `json:"current_yield"`
	Increases     int       `json:"increases"`
	Decreases     int       `json:"decreases"`
	GrowthRate    *float64  `json:"growth_rate"`
}

// Period is a named date window.
type Period struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
