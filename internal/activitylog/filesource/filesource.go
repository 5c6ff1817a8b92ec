package filesource

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"farm-yield/internal/interfaces"
	"farm-yield/internal/logger"
	"farm-yield/internal/types"
)

// ErrInvalidTreeID is returned for tree ids that cannot name a log file.
var ErrInvalidTreeID = errors.New("invalid tree id")

// Source keeps one JSON-lines file per tree under dir: <dir>/<tree_id>.jsonl.
type Source struct {
	dir string
	loc *time.Location
	mu  sync.Mutex
}

var _ interfaces.ActivityLogSource = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithLocation sets the zone for dates written without one. Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Source) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(dir string, opts ...Option) *Source {
	s := &Source{dir: dir, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return "file" }

func (s *Source) Close() error { return nil }

func (s *Source) treeFile(treeID string) (string, error) {
	if treeID == "" || treeID != filepath.Base(treeID) || strings.HasPrefix(treeID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidTreeID, treeID)
	}
	return filepath.Join(s.dir, treeID+".jsonl"), nil
}

// ListActivityLogs reads the tree's log file. A missing file means the tree
// has no logs yet. Lines that fail to decode are skipped.
func (s *Source) ListActivityLogs(ctx context.Context, treeID string) ([]types.ActivityLogRecord, error) {
	p, err := s.treeFile(treeID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return []types.ActivityLogRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log file: %w", err)
	}
	defer f.Close()

	var records []types.ActivityLogRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := types.DecodeActivityLog([]byte(text), s.loc)
		if err != nil {
			logger.Warn(ctx, "Skipping malformed activity log line", "tree_id", treeID, "line", line, "error", err)
			continue
		}
		if rec.TreeID == "" {
			rec.TreeID = treeID
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity log file: %w", err)
	}
	return records, nil
}

// Append writes rec as one line at the end of its tree's file.
func (s *Source) Append(rec types.ActivityLogRecord) error {
	p, err := s.treeFile(rec.TreeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}
