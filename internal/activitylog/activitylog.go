// Package activitylog selects the store that activity log records are read
// from. The adapters live in the sub-packages.
package activitylog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"farm-yield/internal/activitylog/filesource"
	"farm-yield/internal/activitylog/httpsource"
	"farm-yield/internal/activitylog/pgsource"
	"farm-yield/internal/activitylog/sqlitesource"
	"farm-yield/internal/api"
	"farm-yield/internal/interfaces"
	"farm-yield/internal/store"
)

// ErrUnknownSource is returned for an unsupported source.kind.
var ErrUnknownSource = errors.New("unknown activity log source")

// New builds the source named by cfg.Source.Kind.
func New(ctx context.Context, cfg *store.Config) (interfaces.ActivityLogSource, error) {
	switch cfg.Source.Kind {
	case "http":
		h := cfg.Source.HTTP
		opts := []api.ClientOption{
			api.WithBaseURL(h.BaseURL),
			api.WithTimeout(h.Timeout),
			api.WithBearerToken(os.Getenv(h.TokenEnv)),
			api.WithRateLimit(h.RequestsPerSec, h.Burst),
			api.WithLogging(true),
		}
		for k, v := range h.Headers {
			opts = append(opts, api.WithHeader(k, v))
		}
		client := api.NewClient(opts...)
		retry := api.DefaultRetryConfig()
		retry.MaxAttempts = h.MaxAttempts
		return httpsource.New(client, h.LogsPath, retry, cfg.Location()), nil

	case "postgres":
		pg := cfg.Source.Postgres
		src, err := pgsource.Open(ctx, os.Getenv(pg.DSNEnv), pg.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("postgres source (dsn from %s): %w", pg.DSNEnv, err)
		}
		return src, nil

	case "sqlite":
		src, err := sqlitesource.Open(ctx, cfg.Source.SQLite.Path, sqlitesource.WithLocation(cfg.Location()))
		if err != nil {
			return nil, err
		}
		return src, nil

	case "file":
		return filesource.New(cfg.Source.File.Dir, filesource.WithLocation(cfg.Location())), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source.Kind)
	}
}
