// Package history answers yield questions for one tree or a whole plot by
// fetching activity logs from a source and running them through the yield
// analyzer.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"farm-yield/internal/interfaces"
	"farm-yield/internal/logger"
	"farm-yield/internal/metrics"
	"farm-yield/internal/yield"
)

var (
	// ErrNoTrees is returned by PlotSummary when no tree ids are given.
	ErrNoTrees = errors.New("no tree ids given")
	// ErrTooManyTrees is returned when a summary exceeds the configured limit.
	ErrTooManyTrees = errors.New("too many trees")
)

// SourceError wraps a failure to fetch a tree's activity log.
type SourceError struct {
	Source string
	TreeID string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source: tree %s: %v", e.Source, e.TreeID, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Range selects a window: either a preset key or an explicit Start/End.
// The zero Range means the service's default preset.
type Range struct {
	Period string
	Start  time.Time
	End    time.Time
}

// PresetRange selects a preset window by key.
func PresetRange(key string) Range { return Range{Period: key} }

// CustomRange selects the window [start, end].
func CustomRange(start, end time.Time) Range { return Range{Start: start, End: end} }

func (r Range) isCustom() bool { return !r.Start.IsZero() || !r.End.IsZero() }

// DayLayout is the calendar-day format accepted by DayRange.
const DayLayout = "2006-01-02"

// DayRange builds a custom range from YYYY-MM-DD bounds read in loc. The end
// bound covers its whole day.
func DayRange(start, end string, loc *time.Location) (Range, error) {
	if start == "" || end == "" {
		return Range{}, errors.New("start and end must be given together")
	}
	s, err := time.ParseInLocation(DayLayout, start, loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start date %q: want YYYY-MM-DD", start)
	}
	e, err := time.ParseInLocation(DayLayout, end, loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end date %q: want YYYY-MM-DD", end)
	}
	return CustomRange(s, e.AddDate(0, 0, 1).Add(-time.Nanosecond)), nil
}

// History is the yield picture of one tree over a window.
type History struct {
	TreeID      string                 `json:"tree_id"`
	Period      yield.Period           `json:"period"`
	Granularity yield.Granularity      `json:"granularity"`
	Events      []yield.YieldEvent     `json:"events"`
	Trend       []yield.TrendPoint     `json:"trend"`
	Summary     yield.AnalyticsSummary `json:"summary"`
	Skipped     []yield.SkippedRecord  `json:"skipped,omitempty"`
}

// TreeSummary is one tree's line in a plot summary.
type TreeSummary struct {
	TreeID string `json:"tree_id"`
	// Level is the tree's yield at the end of the window, carried forward
	// from the last event on or before it.
	Level   int                    `json:"level"`
	Summary yield.AnalyticsSummary `json:"summary"`
}

// PlotTotals adds the per-tree summaries together.
type PlotTotals struct {
	TreeCount   int `json:"tree_count"`
	Level       int `json:"level"`
	TotalChange int `json:"total_change"`
	EventCount  int `json:"event_count"`
	Increases   int `json:"increases"`
	Decreases   int `json:"decreases"`
}

// PlotSummary covers several trees over the same window.
type PlotSummary struct {
	Period yield.Period  `json:"period"`
	Trees  []TreeSummary `json:"trees"`
	Totals PlotTotals    `json:"totals"`
}

// Service combines a log source with a yield analyzer.
type Service struct {
	source         interfaces.ActivityLogSource
	analyzer       interfaces.YieldAnalyzer
	defaultPeriod  string
	maxConcurrency int
	maxTrees       int
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultPeriod sets the preset used for the zero Range.
func WithDefaultPeriod(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.defaultPeriod = key
		}
	}
}

// WithMaxConcurrency bounds concurrent source fetches in PlotSummary.
func WithMaxConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithMaxTrees bounds the number of trees a single PlotSummary may cover.
// Zero means no limit.
func WithMaxTrees(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxTrees = n
		}
	}
}

func NewService(source interfaces.ActivityLogSource, analyzer interfaces.YieldAnalyzer, opts ...Option) *Service {
	s := &Service{
		source:         source,
		analyzer:       analyzer,
		defaultPeriod:  yield.DefaultPeriodKey,
		maxConcurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Periods lists the preset windows, shortest first.
func (s *Service) Periods() []yield.Period {
	return yield.SortedPeriods(s.analyzer.GetTimePeriods())
}

// ResolveRange turns r into a concrete window.
func (s *Service) ResolveRange(r Range) (yield.Period, error) {
	if r.isCustom() {
		return yield.CustomPeriod(r.Start, r.End)
	}
	key := r.Period
	if key == "" {
		key = s.defaultPeriod
	}
	return s.analyzer.ResolvePeriod(key)
}

// TreeHistory fetches one tree's log and computes its events, trend and
// summary for the window.
func (s *Service) TreeHistory(ctx context.Context, treeID string, r Range) (*History, error) {
	period, err := s.ResolveRange(r)
	if err != nil {
		return nil, err
	}

	timer := logger.StartOperation(ctx, "history.TreeHistory",
		"tree_id", treeID,
		"period", period.Key,
	)
	ctx = timer.GetContext()

	events, skipped, err := s.treeEvents(ctx, treeID)
	if err != nil {
		timer.EndWithError(err)
		return nil, err
	}

	h := &History{
		TreeID:      treeID,
		Period:      period,
		Granularity: s.analyzer.Granularity(period.Start, period.End),
		Events:      yield.FilterByDate(events, period.Start, period.End),
		Trend:       s.analyzer.GenerateYieldTrendData(events, period.Start, period.End),
		Summary:     s.analyzer.CalculateYieldAnalytics(events, period.Start, period.End),
		Skipped:     skipped,
	}

	metrics.OperationDuration.WithLabelValues("tree_history").Observe(timer.Duration().Seconds())
	timer.End("events", len(h.Events), "trend_points", len(h.Trend), "skipped", len(skipped))
	return h, nil
}

// PlotSummary summarizes several trees over one window. Trees are fetched
// concurrently; the first failure cancels the rest and fails the call.
// Duplicate ids are summarized once, in first-seen order.
func (s *Service) PlotSummary(ctx context.Context, treeIDs []string, r Range) (*PlotSummary, error) {
	ids := dedupe(treeIDs)
	if len(ids) == 0 {
		return nil, ErrNoTrees
	}
	if s.maxTrees > 0 && len(ids) > s.maxTrees {
		return nil, fmt.Errorf("%w: %d requested, limit %d", ErrTooManyTrees, len(ids), s.maxTrees)
	}
	period, err := s.ResolveRange(r)
	if err != nil {
		return nil, err
	}

	timer := logger.StartOperation(ctx, "history.PlotSummary",
		"trees", len(ids),
		"period", period.Key,
	)
	metrics.TreesPerSummary.Observe(float64(len(ids)))

	trees := make([]TreeSummary, len(ids))
	g, gctx := errgroup.WithContext(timer.GetContext())
	g.SetLimit(s.maxConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			events, _, err := s.treeEvents(gctx, id)
			if err != nil {
				return err
			}
			trees[i] = TreeSummary{
				TreeID:  id,
				Level:   levelAt(events, period.End),
				Summary: s.analyzer.CalculateYieldAnalytics(events, period.Start, period.End),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		timer.EndWithError(err)
		return nil, err
	}

	out := &PlotSummary{Period: period, Trees: trees}
	for _, t := range trees {
		out.Totals.TreeCount++
		out.Totals.Level += t.Level
		out.Totals.TotalChange += t.Summary.TotalChange
		out.Totals.EventCount += t.Summary.EventCount
		out.Totals.Increases += t.Summary.Increases
		out.Totals.Decreases += t.Summary.Decreases
	}

	metrics.OperationDuration.WithLabelValues("plot_summary").Observe(timer.Duration().Seconds())
	timer.End("total_change", out.Totals.TotalChange, "event_count", out.Totals.EventCount)
	return out, nil
}

// CurrentLevel returns the tree's yield as of at: the NewYield of its last
// event on or before at, or 0 when it has none.
func (s *Service) CurrentLevel(ctx context.Context, treeID string, at time.Time) (int, error) {
	events, _, err := s.treeEvents(ctx, treeID)
	if err != nil {
		return 0, err
	}
	return levelAt(events, at), nil
}

func (s *Service) treeEvents(ctx context.Context, treeID string) ([]yield.YieldEvent, []yield.SkippedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	logs, err := s.source.ListActivityLogs(ctx, treeID)
	if err != nil {
		metrics.SourceErrors.WithLabelValues(s.source.Name()).Inc()
		return nil, nil, &SourceError{Source: s.source.Name(), TreeID: treeID, Err: err}
	}
	res := s.analyzer.Extract(logs)
	for i := range res.Events {
		if res.Events[i].TreeID == "" {
			res.Events[i].TreeID = treeID
		}
	}
	return res.Events, res.Skipped, nil
}

// levelAt returns the NewYield of the last event dated on or before t, or 0.
// events must be sorted by date.
func levelAt(events []yield.YieldEvent, t time.Time) int {
	level := 0
	for _, ev := range events {
		if ev.Date.After(t) {
			break
		}
		level = ev.NewYield
	}
	return level
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
