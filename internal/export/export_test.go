package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"farm-yield/internal/history"
	"farm-yield/internal/yield"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jan(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func sampleHistory() *history.History {
	events := []yield.YieldEvent{
		{ID: "1", TreeID: "t", Date: jan(1), PreviousYield: 0, NewYield: 12, Change: 12},
		{ID: "2", TreeID: "t", Date: jan(3), PreviousYield: 12, NewYield: 20, Change: 8, Reason: "ดอกบาน"},
	}
	engine := yield.NewEngine()
	return &history.History{
		TreeID:  "t",
		Events:  events,
		Trend:   engine.GenerateYieldTrendData(events, jan(1), jan(3)),
		Summary: engine.CalculateYieldAnalytics(events, jan(1), jan(3)),
	}
}

func readAll(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	rows, err := csv.NewReader(r).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, sampleHistory()))

	rows := readAll(t, &buf)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"label", "start", "end", "yield", "change", "event_count"}, rows[0])
	assert.Equal(t, []string{"2024-01-01", "2024-01-01", "2024-01-01", "12", "12", "1"}, rows[1])
	assert.Equal(t, []string{"2024-01-02", "2024-01-02", "2024-01-02", "12", "0", "0"}, rows[2])
	assert.Equal(t, []string{"TOTAL", "2024-01-01", "2024-01-03", "20", "20", "2"}, rows[4])
}

func TestWriteEventsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEventsCSV(&buf, sampleHistory().Events))

	rows := readAll(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2", "t", "2024-01-03", "12", "20", "8", "ดอกบาน"}, rows[2])
}

func TestWriteSummaryCSV(t *testing.T) {
	h := sampleHistory()
	s := &history.PlotSummary{
		Trees: []history.TreeSummary{
			{TreeID: "t", Level: 20, Summary: h.Summary},
			{TreeID: "u"},
		},
		Totals: history.PlotTotals{TreeCount: 2, Level: 20, TotalChange: 20, EventCount: 2, Increases: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, s))

	rows := readAll(t, &buf)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"t", "20", "20", "2", "10.00", "2", "0", "12", "20", ""}, rows[1])
	assert.Equal(t, []string{"u", "0", "0", "0", "0.00", "0", "0", "", "", ""}, rows[2])
	assert.Equal(t, "TOTAL", rows[3][0])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "tree.csv")
	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		return WriteHistoryCSV(w, sampleHistory())
	}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "TOTAL")
}
