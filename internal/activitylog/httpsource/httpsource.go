package httpsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"farm-yield/internal/api"
	"farm-yield/internal/interfaces"
	"farm-yield/internal/logger"
	"farm-yield/internal/types"
)

// Source reads activity logs from the farm web application's REST API.
type Source struct {
	client   *api.Client
	logsPath string
	retry    *api.RetryConfig
	loc      *time.Location
}

var _ interfaces.ActivityLogSource = (*Source)(nil)

// New creates a source. logsPath is a format string with one %s for the
// escaped tree id, e.g. "/api/trees/%s/activity-logs". Dates without a zone
// are read in loc; nil means UTC.
func New(client *api.Client, logsPath string, retry *api.RetryConfig, loc *time.Location) *Source {
	if !strings.Contains(logsPath, "%s") {
		logsPath = strings.TrimSuffix(logsPath, "/") + "/%s"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Source{client: client, logsPath: logsPath, retry: retry, loc: loc}
}

func (s *Source) Name() string { return "http" }

func (s *Source) Close() error { return nil }

// envelope matches responses of the form {"data": [...]}.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// ListActivityLogs fetches the tree's logs. Records that fail to decode are
// dropped with a warning; a body that is not a list fails the call.
func (s *Source) ListActivityLogs(ctx context.Context, treeID string) ([]types.ActivityLogRecord, error) {
	path := fmt.Sprintf(s.logsPath, url.PathEscape(treeID))
	req := api.NewRequest(http.MethodGet, path).WithContext(ctx)

	resp, err := s.client.DoWithRetry(req, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity logs for tree %s: %w", treeID, err)
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '{' {
		var env envelope
		if err := resp.ParseJSON(&env); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
		}
		body = env.Data
	}

	records, failures, err := types.DecodeActivityLogs(bytes.NewReader(body), s.loc)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", treeID, err)
	}
	for _, f := range failures {
		logger.Warn(ctx, "Dropped undecodable activity log record",
			"tree_id", treeID, "index", f.Index, "error", f.Err)
	}

	for i := range records {
		if records[i].TreeID == "" {
			records[i].TreeID = treeID
		}
	}
	return records, nil
}
