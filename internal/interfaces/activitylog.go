package interfaces

import (
	"context"

	"farm-yield/internal/types"
)

// ActivityLogSource fetches the activity log of a single tree. Records may
// come back in any order.
type ActivityLogSource interface {
	ListActivityLogs(ctx context.Context, treeID string) ([]types.ActivityLogRecord, error)
	Name() string
	Close() error
}
