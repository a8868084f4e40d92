// Package redis archives runs in Redis, for deployments that already
// run one and want shared access to the archive.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/agentlog/ontology-go/ontology"
	"github.com/agentlog/ontology-go/query"
	"github.com/agentlog/ontology-go/store"
)

const (
	defaultPrefix = "agentlog:runs"
	defaultLimit  = 200
)

type Store struct {
	client   *goredis.Client
	addr     string
	password string
	db       int
	prefix   string
}

type Option func(*Store)

func WithClient(client *goredis.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(s *Store) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithPassword(password string) Option {
	return func(s *Store) { s.password = password }
}

func WithDB(db int) Option {
	return func(s *Store) { s.db = db }
}

func New(addr string, opts ...Option) (*Store, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	s := &Store{addr: addr, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = goredis.NewClient(&goredis.Options{Addr: s.addr, Password: s.password, DB: s.db})
	}
	if err := s.client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return s, nil
}

func (s *Store) payloadKey(id string) string { return s.prefix + ":payload:" + id }
func (s *Store) indexKey() string            { return s.prefix + ":index" }
func (s *Store) summaryKey() string          { return s.prefix + ":summary" }

func (s *Store) SaveRun(ctx context.Context, run *ontology.Run) error {
	payload, err := ontology.EncodeRun(run)
	if err != nil {
		return err
	}
	summary := store.RunSummary{
		ID:        run.ID,
		Name:      run.Name,
		StartTime: run.StartTime.UTC(),
		EndTime:   run.EndTime,
		StepCount: query.Counts(run)[query.MetricSteps],
		Complete:  run.Complete(),
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary %q: %w", run.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.payloadKey(run.ID), payload, 0)
	pipe.ZAdd(ctx, s.indexKey(), goredis.Z{Score: float64(run.StartTime.UnixNano()), Member: run.ID})
	pipe.HSet(ctx, s.summaryKey(), run.ID, summaryJSON)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run %q: %w", run.ID, err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*ontology.Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	payload, err := s.client.Get(ctx, s.payloadKey(id)).Bytes()
	if err == goredis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %q: %w", id, err)
	}
	return ontology.DecodeRun(payload)
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
	ids, err := s.client.ZRange(ctx, s.indexKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := s.client.HMGet(ctx, s.summaryKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load run summaries: %w", err)
	}
	out := make([]store.RunSummary, 0, len(raw))
	for i, entry := range raw {
		text, ok := entry.(string)
		if !ok {
			continue
		}
		var summary store.RunSummary
		if err := json.Unmarshal([]byte(text), &summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary for run %q: %w", ids[i], err)
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
