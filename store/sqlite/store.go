// Package sqlite archives runs in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentlog/ontology-go/ontology"
	"github.com/agentlog/ontology-go/query"
	"github.com/agentlog/ontology-go/store"
)

//go:embed schema.sql
var schemaSQL string

const defaultLimit = 200

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the archive database at path.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite archive path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable wal: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveRun(ctx context.Context, run *ontology.Run) error {
	payload, err := ontology.EncodeRun(run)
	if err != nil {
		return err
	}
	var endTime any
	if run.EndTime != nil {
		endTime = run.EndTime.UTC().Format(time.RFC3339Nano)
	}
	complete := 0
	if run.Complete() {
		complete = 1
	}
	const q = `
INSERT INTO runs (run_id, name, start_time, end_time, step_count, complete, payload, saved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id) DO UPDATE SET
  name = excluded.name,
  start_time = excluded.start_time,
  end_time = excluded.end_time,
  step_count = excluded.step_count,
  complete = excluded.complete,
  payload = excluded.payload,
  saved_at = excluded.saved_at;
`
	_, err = s.db.ExecContext(
		ctx,
		q,
		run.ID,
		run.Name,
		run.StartTime.UTC().Format(time.RFC3339Nano),
		endTime,
		query.Counts(run)[query.MetricSteps],
		complete,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %q: %w", run.ID, err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*ontology.Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE run_id = ?;`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %q: %w", id, err)
	}
	return ontology.DecodeRun([]byte(payload))
}

func (s *Store) ListRuns(ctx context.Context, q store.ListQuery) ([]store.RunSummary, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, name, start_time, end_time, step_count, complete
FROM runs
ORDER BY start_time ASC
LIMIT ? OFFSET ?;
`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	out := make([]store.RunSummary, 0, limit)
	for rows.Next() {
		var (
			summary  store.RunSummary
			start    string
			end      sql.NullString
			complete int
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &start, &end, &summary.StepCount, &complete); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if summary.StartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
			return nil, fmt.Errorf("failed to parse stored start time %q: %w", start, err)
		}
		if end.Valid {
			t, err := time.Parse(time.RFC3339Nano, end.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse stored end time %q: %w", end.String, err)
			}
			summary.EndTime = &t
		}
		summary.Complete = complete != 0
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
