package yield

import (
	"sort"
	"strings"

	"farm-yield/internal/types"
)

// Extract scans activity logs and reconstructs yield events. Records without
// a yield-update marker are ignored; yield-update records that cannot be
// parsed are reported in Skipped. Events are ordered by date, and records
// with equal timestamps keep their input order.
func (e *Engine) Extract(logs []types.ActivityLogRecord) ExtractResult {
	result := ExtractResult{Events: make([]YieldEvent, 0, len(logs))}

	for _, rec := range logs {
		if !e.IsYieldUpdate(rec) {
			continue
		}
		ev, reason, ok := parseRecord(rec)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedRecord{ID: rec.ID, Reason: reason})
			continue
		}
		result.Events = append(result.Events, ev)
	}

	sort.SliceStable(result.Events, func(i, j int) bool {
		return result.Events[i].Date.Before(result.Events[j].Date)
	})
	return result
}

// ParseYieldEvents returns only the events of Extract.
func (e *Engine) ParseYieldEvents(logs []types.ActivityLogRecord) []YieldEvent {
	return e.Extract(logs).Events
}

func parseRecord(rec types.ActivityLogRecord) (YieldEvent, SkipReason, bool) {
	if rec.Date.IsZero() {
		return YieldEvent{}, SkipMissingDate, false
	}

	var prev, next int
	switch {
	case rec.NewYield != nil:
		next = *rec.NewYield
		if rec.PreviousYield != nil {
			prev = *rec.PreviousYield
		}
	default:
		parsed, ok := parseNotesYield(rec.Notes)
		if !ok {
			return YieldEvent{}, SkipNoYieldValue, false
		}
		next = parsed.next
		switch {
		case rec.PreviousYield != nil:
			prev = *rec.PreviousYield
		case parsed.hasPrevious:
			prev = parsed.previous
		}
	}

	if prev < 0 || next < 0 {
		return YieldEvent{}, SkipNegativeYield, false
	}

	reason := strings.TrimSpace(rec.Reason)
	if reason == "" {
		reason = parseNotesReason(rec.Notes)
	}
	return newYieldEvent(rec.ID, rec.TreeID, rec.Date, prev, next, reason, rec.Notes), "", true
}
