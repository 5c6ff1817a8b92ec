package sqlitesource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"farm-yield/internal/interfaces"
	"farm-yield/internal/logger"
	"farm-yield/internal/types"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity_logs (
	id             TEXT PRIMARY KEY,
	tree_id        TEXT NOT NULL,
	activity_date  TEXT,
	activity_type  TEXT NOT NULL,
	notes          TEXT,
	previous_yield INTEGER,
	new_yield      INTEGER,
	reason         TEXT
);
CREATE INDEX IF NOT EXISTS idx_activity_logs_tree_date ON activity_logs (tree_id, activity_date);
`

// Source stores activity logs in a local SQLite file. It backs offline and
// development setups where the farm database is not reachable.
type Source struct {
	db  *sql.DB
	loc *time.Location
}

var _ interfaces.ActivityLogSource = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithLocation sets the zone for stored dates that carry none. Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Source) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Open opens (and creates if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(ctx context.Context, path string, opts ...Option) (*Source, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	s := &Source{db: db, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Source) Name() string { return "sqlite" }

func (s *Source) Close() error {
	return s.db.Close()
}

// Insert stores or replaces a record.
func (s *Source) Insert(ctx context.Context, rec types.ActivityLogRecord) error {
	var date any
	if !rec.Date.IsZero() {
		date = rec.Date.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO activity_logs
			(id, tree_id, activity_date, activity_type, notes, previous_yield, new_yield, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TreeID, date, rec.ActivityType, rec.Notes,
		nullableInt(rec.PreviousYield), nullableInt(rec.NewYield), rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity log %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Source) ListActivityLogs(ctx context.Context, treeID string) ([]types.ActivityLogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tree_id, activity_date, activity_type, COALESCE(notes, ''),
		       previous_yield, new_yield, COALESCE(reason, '')
		FROM activity_logs
		WHERE tree_id = ?
		ORDER BY activity_date ASC, rowid ASC`, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs for tree %s: %w", treeID, err)
	}
	defer rows.Close()

	var records []types.ActivityLogRecord
	for rows.Next() {
		var (
			rec       types.ActivityLogRecord
			date      sql.NullString
			prev, cur sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.TreeID, &date, &rec.ActivityType, &rec.Notes, &prev, &cur, &rec.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		if date.Valid {
			t, err := types.ParseDate(date.String, s.loc)
			if err != nil {
				logger.Warn(ctx, "Activity log has unparseable date", "record_id", rec.ID, "error", err)
			}
			rec.Date = t
		}
		rec.PreviousYield = intPtr(prev)
		rec.NewYield = intPtr(cur)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity log rows: %w", err)
	}
	return records, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
