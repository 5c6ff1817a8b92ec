package pgsource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farm-yield/internal/interfaces"
	"farm-yield/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pool is the subset of *pgxpool.Pool used here; pgxmock satisfies it.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Source reads activity logs from the farm application's Postgres database.
type Source struct {
	pool pool
}

var _ interfaces.ActivityLogSource = (*Source)(nil)

const listActivityLogsQuery = `
		SELECT id::text, tree_id::text, activity_date, activity_type,
		       COALESCE(notes, ''), previous_yield, new_yield, COALESCE(reason, '')
		FROM activity_logs
		WHERE tree_id = $1
		ORDER BY activity_date ASC, created_at ASC, id ASC
	`

// Open connects a pool to dsn.
func Open(ctx context.Context, dsn string, maxConns int32) (*Source, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Source{pool: p}, nil
}

// New wraps an existing pool.
func New(p pool) *Source {
	return &Source{pool: p}
}

func (s *Source) Name() string { return "postgres" }

func (s *Source) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Source) ListActivityLogs(ctx context.Context, treeID string) ([]types.ActivityLogRecord, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("database connection pool is nil")
	}

	rows, err := s.pool.Query(ctx, listActivityLogsQuery, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs for tree %s: %w", treeID, err)
	}
	defer rows.Close()

	var records []types.ActivityLogRecord
	for rows.Next() {
		var (
			rec          types.ActivityLogRecord
			activityDate *time.Time
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.TreeID,
			&activityDate,
			&rec.ActivityType,
			&rec.Notes,
			&rec.PreviousYield,
			&rec.NewYield,
			&rec.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		if activityDate != nil {
			rec.Date = *activityDate
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity log rows: %w", err)
	}
	return records, nil
}
