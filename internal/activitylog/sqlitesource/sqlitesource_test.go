package sqlitesource

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"farm-yield/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSource(t *testing.T) *Source {
	t.Helper()
	src, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestInsertAndList(t *testing.T) {
	ctx := context.Background()
	src := openTestSource(t)

	bkk := time.FixedZone("ICT", 7*3600)
	recs := []types.ActivityLogRecord{
		{ID: "b", TreeID: "tree-1", Date: time.Date(2024, 1, 10, 9, 0, 0, 0, bkk), ActivityType: "yield_update", PreviousYield: types.IntPtr(12), NewYield: types.IntPtr(20)},
		{ID: "a", TreeID: "tree-1", Date: time.Date(2024, 1, 1, 9, 0, 0, 0, bkk), ActivityType: "yield_update", Notes: "จาก 0 ลูก เป็น 12 ลูก"},
		{ID: "c", TreeID: "tree-2", Date: time.Date(2024, 1, 3, 9, 0, 0, 0, bkk), ActivityType: "watering"},
		{ID: "d", TreeID: "tree-1", ActivityType: "yield_update", NewYield: types.IntPtr(5)},
	}
	for _, r := range recs {
		require.NoError(t, src.Insert(ctx, r))
	}

	got, err := src.ListActivityLogs(ctx, "tree-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	byID := map[string]types.ActivityLogRecord{}
	for _, r := range got {
		byID[r.ID] = r
	}
	assert.True(t, byID["a"].Date.Equal(recs[1].Date))
	assert.Nil(t, byID["a"].NewYield)
	assert.Equal(t, "จาก 0 ลูก เป็น 12 ลูก", byID["a"].Notes)
	require.NotNil(t, byID["b"].NewYield)
	assert.Equal(t, 20, *byID["b"].NewYield)
	assert.Equal(t, 12, *byID["b"].PreviousYield)
	assert.True(t, byID["d"].Date.IsZero())
}

func TestInsertReplaces(t *testing.T) {
	ctx := context.Background()
	src := openTestSource(t)

	rec := types.ActivityLogRecord{ID: "x", TreeID: "tree-1", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ActivityType: "yield_update", NewYield: types.IntPtr(3)}
	require.NoError(t, src.Insert(ctx, rec))
	rec.NewYield = types.IntPtr(4)
	require.NoError(t, src.Insert(ctx, rec))

	got, err := src.ListActivityLogs(ctx, "tree-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, *got[0].NewYield)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "farm.db")
	src, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "sqlite", src.Name())
	got, err := src.ListActivityLogs(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}
