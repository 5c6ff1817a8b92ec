package filesource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"farm-yield/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndList(t *testing.T) {
	src := New(t.TempDir())
	date := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, src.Append(types.ActivityLogRecord{ID: "1", TreeID: "tree-1", Date: date, ActivityType: "yield_update", PreviousYield: types.IntPtr(12), NewYield: types.IntPtr(20)}))
	require.NoError(t, src.Append(types.ActivityLogRecord{ID: "2", TreeID: "tree-1", Date: date.Add(time.Hour), ActivityType: "watering"}))

	records, err := src.ListActivityLogs(context.Background(), "tree-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.True(t, records[0].Date.Equal(date))
	require.NotNil(t, records[0].NewYield)
	assert.Equal(t, 20, *records[0].NewYield)
	assert.Equal(t, "watering", records[1].ActivityType)
}

func TestList_MissingFile(t *testing.T) {
	records, err := New(t.TempDir()).ListActivityLogs(context.Background(), "tree-none")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestList_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := `{"id":"1","date":"2024-01-01","activity_type":"yield_update","notes":"จาก 0 ลูก เป็น 12 ลูก"}
this is not json

{"id":"2","date":"yesterday","activity_type":"yield_update"}
{"id":"3","date":"2024-01-10","activity_type":"yield_update","previous_yield":12,"new_yield":20}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree-1.jsonl"), []byte(content), 0o644))

	records, err := New(dir).ListActivityLogs(context.Background(), "tree-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "tree-1", records[0].TreeID)
	assert.Equal(t, "3", records[1].ID)
}

func TestInvalidTreeIDs(t *testing.T) {
	src := New(t.TempDir())
	for _, id := range []string{"", "../etc/passwd", "a/b", ".hidden"} {
		_, err := src.ListActivityLogs(context.Background(), id)
		assert.True(t, errors.Is(err, ErrInvalidTreeID), "id %q", id)
	}
	err := src.Append(types.ActivityLogRecord{ID: "x", TreeID: "../x"})
	assert.True(t, errors.Is(err, ErrInvalidTreeID))
}

func TestAppend_Concurrent(t *testing.T) {
	src := New(t.TempDir())
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = src.Append(types.ActivityLogRecord{ID: string(rune('a' + i)), TreeID: "tree-1", Date: date, ActivityType: "yield_update", NewYield: types.IntPtr(i)})
		}(i)
	}
	wg.Wait()

	records, err := src.ListActivityLogs(context.Background(), "tree-1")
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestList_DatesWithoutZoneUseLocation(t *testing.T) {
	bkk, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	dir := t.TempDir()
	content := `{"id":"1","activity_date":"2024-01-01 23:30:00","activity_type":"yield_update","new_yield":5}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree-1.jsonl"), []byte(content), 0o644))

	records, err := New(dir, WithLocation(bkk)).ListActivityLogs(context.Background(), "tree-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.Equal(time.Date(2024, 1, 1, 23, 30, 0, 0, bkk)))
}
