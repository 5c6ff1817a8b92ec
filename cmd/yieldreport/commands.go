package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"farm-yield/internal/activitylog/filesource"
	"farm-yield/internal/export"
	"farm-yield/internal/types"
	"farm-yield/internal/yield"
)

type rangeFlags struct {
	period, start, end string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.period, "period", "p", "", "preset window (7days, 30days, 90days, year)")
	cmd.Flags().StringVar(&f.start, "start", "", "custom window start, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "custom window end, YYYY-MM-DD (inclusive)")
	cmd.MarkFlagsMutuallyExclusive("period", "start")
	cmd.MarkFlagsMutuallyExclusive("period", "end")
	cmd.MarkFlagsRequiredTogether("start", "end")
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		rf            rangeFlags
		asJSON        bool
		csvPath       string
		eventsCSVPath string
		showEvents    bool
	)
	cmd := &cobra.Command{
		Use:   "history <treeId>",
		Short: "Show one tree's yield trend and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.rangeFromFlags(rf.period, rf.start, rf.end)
			if err != nil {
				return err
			}
			h, err := a.svc.TreeHistory(cmd.Context(), args[0], r)
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := export.WriteFile(csvPath, func(w io.Writer) error {
					return export.WriteHistoryCSV(w, h)
				}); err != nil {
					return fmt.Errorf("failed to write CSV: %w", err)
				}
				fmt.Fprintf(a.out, "CSV written: %s\n", csvPath)
			}
			if eventsCSVPath != "" {
				if err := export.WriteFile(eventsCSVPath, func(w io.Writer) error {
					return export.WriteEventsCSV(w, h.Events)
				}); err != nil {
					return fmt.Errorf("failed to write events CSV: %w", err)
				}
				fmt.Fprintf(a.out, "Events CSV written: %s\n", eventsCSVPath)
			}
			if asJSON {
				return writeJSON(a.out, h)
			}
			printHistory(a.out, h, a.cfg.Location(), showEvents)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the trend as CSV to this path")
	cmd.Flags().StringVar(&eventsCSVPath, "events-csv", "", "also write the window's yield events as CSV to this path")
	cmd.Flags().BoolVar(&showEvents, "events", false, "list individual yield events")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var (
		rf      rangeFlags
		asJSON  bool
		csvPath string
	)
	cmd := &cobra.Command{
		Use:   "summary <treeId>...",
		Short: "Summarize yield changes across several trees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.rangeFromFlags(rf.period, rf.start, rf.end)
			if err != nil {
				return err
			}
			s, err := a.svc.PlotSummary(cmd.Context(), args, r)
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := export.WriteFile(csvPath, func(w io.Writer) error {
					return export.WriteSummaryCSV(w, s)
				}); err != nil {
					return fmt.Errorf("failed to write CSV: %w", err)
				}
				fmt.Fprintf(a.out, "CSV written: %s\n", csvPath)
			}
			if asJSON {
				return writeJSON(a.out, s)
			}
			printSummary(a.out, s, a.cfg.Location())
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the summary as CSV to this path")
	return cmd
}

func newPeriodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the preset time windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printPeriods(a.out, a.svc.Periods(), a.cfg.Yield.DefaultPeriod, a.cfg.Location())
			return nil
		},
	}
}

func newRecordCmd(a *app) *cobra.Command {
	var (
		to     int
		from   int
		reason string
		notes  string
		date   string
	)
	cmd := &cobra.Command{
		Use:   "record <treeId>",
		Short: "Append a yield update to a tree's activity log (file source only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, ok := a.src.(*filesource.Source)
			if !ok {
				return fmt.Errorf("record needs source.kind file, configured %q", a.cfg.Source.Kind)
			}
			treeID := args[0]

			at, err := recordTime(date, time.Now().In(a.cfg.Location()))
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("from") {
				level, err := a.svc.CurrentLevel(cmd.Context(), treeID, at)
				if err != nil {
					return err
				}
				from = level
			}
			if from < 0 || to < 0 {
				return errors.New("yield values must not be negative")
			}
			if notes == "" {
				notes = fmt.Sprintf("อัปเดตผลผลิตจาก %d ลูก เป็น %d ลูก", from, to)
			}

			rec := types.ActivityLogRecord{
				ID:            uuid.NewString(),
				TreeID:        treeID,
				Date:          at,
				ActivityType:  yield.ActivityTypeYieldUpdate,
				Notes:         notes,
				PreviousYield: types.IntPtr(from),
				NewYield:      types.IntPtr(to),
				Reason:        reason,
			}
			if err := fs.Append(rec); err != nil {
				return fmt.Errorf("failed to append record: %w", err)
			}
			fmt.Fprintf(a.out, "Recorded %s: %d -> %d (%+d) on %s\n", treeID, from, to, to-from, at.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().IntVar(&to, "to", 0, "new fruit count")
	cmd.Flags().IntVar(&from, "from", 0, "previous fruit count (default: the tree's current level)")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the change")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes")
	cmd.Flags().StringVar(&date, "date", "", "date of the update, YYYY-MM-DD (default: now)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// recordTime stamps a record dated day. Today keeps the current instant; a
// past day gets its last second so the record sorts after that day's
// earlier updates.
func recordTime(day string, now time.Time) (time.Time, error) {
	if day == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", day, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", day)
	}
	if y, m, dd := now.Date(); d.Year() == y && d.Month() == m && d.Day() == dd {
		return now, nil
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location()), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
