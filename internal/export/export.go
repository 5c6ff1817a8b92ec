// Package export writes yield histories and plot summaries as CSV reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"farm-yield/internal/history"
	"farm-yield/internal/yield"
)

const dateLayout = "2006-01-02"

// WriteHistoryCSV writes one row per trend bucket followed by a TOTAL row
// carrying the window summary.
func WriteHistoryCSV(w io.Writer, h *history.History) error {
	cw := csv.NewWriter(w)
	headers := []string{"label", "start", "end", "yield", "change", "event_count"}
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, p := range h.Trend {
		rec := []string{p.Label, p.Start.Format(dateLayout), p.End.Format(dateLayout), strconv.Itoa(p.Yield), strconv.Itoa(p.Change), strconv.Itoa(p.EventCount)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	s := h.Summary
	if err := cw.Write([]string{"TOTAL", s.Start.Format(dateLayout), s.End.Format(dateLayout), optInt(s.CurrentYield), strconv.Itoa(s.TotalChange), strconv.Itoa(s.EventCount)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteEventsCSV writes the reconstructed events in date order.
func WriteEventsCSV(w io.Writer, events []yield.YieldEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "tree_id", "date", "previous_yield", "new_yield", "change", "reason"}); err != nil {
		return err
	}
	for _, ev := range events {
		rec := []string{ev.ID, ev.TreeID, ev.Date.Format(dateLayout), strconv.Itoa(ev.PreviousYield), strconv.Itoa(ev.NewYield), strconv.Itoa(ev.Change), ev.Reason}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per tree and a TOTAL row.
func WriteSummaryCSV(w io.Writer, s *history.PlotSummary) error {
	cw := csv.NewWriter(w)
	headers := []string{"tree_id", "level", "total_change", "event_count", "average_change", "increases", "decreases", "min_yield", "max_yield", "growth_rate"}
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, t := range s.Trees {
		a := t.Summary
		rec := []string{t.TreeID, strconv.Itoa(t.Level), strconv.Itoa(a.TotalChange), strconv.Itoa(a.EventCount), fmt.Sprintf("%.2f", a.AverageChange), strconv.Itoa(a.Increases), strconv.Itoa(a.Decreases), optInt(a.MinYield), optInt(a.MaxYield), optFloat(a.GrowthRate)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	tot := s.Totals
	if err := cw.Write([]string{"TOTAL", strconv.Itoa(tot.Level), strconv.Itoa(tot.TotalChange), strconv.Itoa(tot.EventCount), "", strconv.Itoa(tot.Increases), strconv.Itoa(tot.Decreases), "", "", ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path (and its directory) and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
