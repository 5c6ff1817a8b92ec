package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"farm-yield/internal/history"
	"farm-yield/internal/yield"
)

const rule = "═══════════════════════════════════════════════════════════════"

func heading(w io.Writer, title string) {
	pad := (len([]rune(rule)) - len([]rune(title))) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, strings.Repeat(" ", pad)+title)
	fmt.Fprintln(w, rule)
}

func printWindow(w io.Writer, p yield.Period, loc *time.Location) {
	label := p.Label
	if label == "" {
		label = p.Key
	}
	fmt.Fprintf(w, "Window:             %s (%s to %s)\n", label,
		p.Start.In(loc).Format("2006-01-02"), p.End.In(loc).Format("2006-01-02"))
}

func printHistory(w io.Writer, h *history.History, loc *time.Location, showEvents bool) {
	heading(w, "YIELD HISTORY")
	fmt.Fprintf(w, "Tree:               %s\n", h.TreeID)
	printWindow(w, h.Period, loc)
	fmt.Fprintf(w, "Granularity:        %s\n", h.Granularity)
	fmt.Fprintln(w)
	printAnalytics(w, h.Summary)

	if len(h.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped records:    %d\n", len(h.Skipped))
	}
	fmt.Fprintln(w)

	heading(w, "TREND")
	fmt.Fprintf(w, "  %-12s %8s %8s %7s\n", "Bucket", "Yield", "Change", "Events")
	fmt.Fprintln(w, "  ─────────────────────────────────────")
	for _, p := range h.Trend {
		fmt.Fprintf(w, "  %-12s %8d %+8d %7d\n", p.Label, p.Yield, p.Change, p.EventCount)
	}
	fmt.Fprintln(w)

	if showEvents {
		heading(w, "EVENTS")
		if len(h.Events) == 0 {
			fmt.Fprintln(w, "  No yield updates in this window")
		}
		for _, ev := range h.Events {
			fmt.Fprintf(w, "  %s  %4d -> %-4d (%+d)", ev.Date.In(loc).Format("2006-01-02 15:04"), ev.PreviousYield, ev.NewYield, ev.Change)
			if ev.Reason != "" {
				fmt.Fprintf(w, "  %s", ev.Reason)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
}

func printAnalytics(w io.Writer, s yield.AnalyticsSummary) {
	if s.EventCount == 0 {
		fmt.Fprintln(w, "No yield updates in this window")
		return
	}
	fmt.Fprintf(w, "Events:             %d (%d up, %d down)\n", s.EventCount, s.Increases, s.Decreases)
	fmt.Fprintf(w, "Total change:       %+d\n", s.TotalChange)
	fmt.Fprintf(w, "Average change:     %+.2f\n", s.AverageChange)
	fmt.Fprintf(w, "Min / max yield:    %s / %s\n", fmtInt(s.MinYield), fmtInt(s.MaxYield))
	fmt.Fprintf(w, "Current yield:      %s\n", fmtInt(s.CurrentYield))
	if s.GrowthRate != nil {
		fmt.Fprintf(w, "Growth:             %+.1f%%\n", *s.GrowthRate)
	}
}

func printSummary(w io.Writer, s *history.PlotSummary, loc *time.Location) {
	heading(w, "PLOT SUMMARY")
	printWindow(w, s.Period, loc)
	fmt.Fprintf(w, "Trees:              %d\n", s.Totals.TreeCount)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-38s %7s %8s %7s\n", "Tree", "Level", "Change", "Events")
	fmt.Fprintln(w, "  ─────────────────────────────────────────────────────────────")
	for _, t := range s.Trees {
		fmt.Fprintf(w, "  %-38s %7d %+8d %7d\n", t.TreeID, t.Level, t.Summary.TotalChange, t.Summary.EventCount)
	}
	fmt.Fprintln(w, "  ─────────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "  %-38s %7d %+8d %7d\n", "TOTAL", s.Totals.Level, s.Totals.TotalChange, s.Totals.EventCount)
	fmt.Fprintln(w)
}

func printPeriods(w io.Writer, periods []yield.Period, defaultKey string, loc *time.Location) {
	heading(w, "TIME PERIODS")
	for _, p := range periods {
		marker := " "
		if p.Key == defaultKey {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %-8s %-14s %s to %s\n", marker, p.Key, p.Label,
			p.Start.In(loc).Format("2006-01-02"), p.End.In(loc).Format("2006-01-02"))
	}
}

func fmtInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
