package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrInvalidInput is returned when a payload is not a collection of activity
// log records at all. Individual malformed records are not errors.
var ErrInvalidInput = errors.New("invalid activity log input")

// ActivityLogRecord is one timestamped entry from a tree's activity log.
// PreviousYield and NewYield are optional structured fields; when they are
// nil the yield values may still be recoverable from Notes.
type ActivityLogRecord struct {
	ID            string    `json:"id"`
	TreeID        string    `json:"tree_id"`
	Date          time.Time `json:"date"`
	ActivityType  string    `json:"activity_type"`
	Notes         string    `json:"notes,omitempty"`
	PreviousYield *int      `json:"previous_yield,omitempty"`
	NewYield      *int      `json:"new_yield,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// activityLogWire is the loosely typed shape accepted on the wire.
type activityLogWire struct {
	ID            json.RawMessage `json:"id"`
	TreeID        json.RawMessage `json:"tree_id"`
	Date          string          `json:"date"`
	ActivityDate  string          `json:"activity_date"`
	CreatedAt     string          `json:"created_at"`
	ActivityType  string          `json:"activity_type"`
	Notes         string          `json:"notes"`
	PreviousYield *int            `json:"previous_yield"`
	NewYield      *int            `json:"new_yield"`
	Reason        string          `json:"reason"`
}

// DecodeFailure describes a record dropped while decoding a batch.
type DecodeFailure struct {
	Index int
	Err   error
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// ParseDate parses the timestamp formats seen in activity log exports.
// Timestamps without a zone are read in loc; a nil loc means UTC.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DecodeActivityLogs decodes a JSON array of activity log records. The call
// fails with ErrInvalidInput only when the payload is not an array; elements
// that cannot be decoded are dropped and reported in the failure list.
// Dates without a zone are read in loc.
func DecodeActivityLogs(r io.Reader, loc *time.Location) ([]ActivityLogRecord, []DecodeFailure, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read activity logs: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidInput)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	records := make([]ActivityLogRecord, 0, len(raw))
	var failures []DecodeFailure
	for i, msg := range raw {
		rec, err := DecodeActivityLog(msg, loc)
		if err != nil {
			failures = append(failures, DecodeFailure{Index: i, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, failures, nil
}

// DecodeActivityLog decodes a single JSON object into an ActivityLogRecord.
// A missing date is not a decode error; the zero Date is left for the
// extractor to skip.
func DecodeActivityLog(msg []byte, loc *time.Location) (ActivityLogRecord, error) {
	var w activityLogWire
	if err := json.Unmarshal(msg, &w); err != nil {
		return ActivityLogRecord{}, fmt.Errorf("malformed record: %w", err)
	}

	rec := ActivityLogRecord{
		ID:            rawString(w.ID),
		TreeID:        rawString(w.TreeID),
		ActivityType:  w.ActivityType,
		Notes:         w.Notes,
		PreviousYield: w.PreviousYield,
		NewYield:      w.NewYield,
		Reason:        w.Reason,
	}

	dateStr := firstNonEmpty(w.Date, w.ActivityDate, w.CreatedAt)
	if dateStr != "" {
		t, err := ParseDate(dateStr, loc)
		if err != nil {
			return ActivityLogRecord{}, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		rec.Date = t
	}
	return rec, nil
}

// rawString accepts both string and numeric ids.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// IntPtr is a convenience for building records with structured yields.
func IntPtr(v int) *int { return &v }
