// Package store archives normalized runs in their canonical
// serialized form, the representation runs cross storage boundaries
// in. Backends live in sub-packages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/agentlog/ontology-go/ontology"
)

// ErrNotFound is returned when no archived run has the requested id.
var ErrNotFound = errors.New("run not found")

// ListQuery bounds a listing.
type ListQuery struct {
	Limit  int
	Offset int
}

// RunSummary is the listing row for an archived run.
type RunSummary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	StepCount int        `json:"step_count"`
	Complete  bool       `json:"complete"`
}

// Store archives runs. SaveRun persists the canonical form; GetRun
// returns a fully validated run decoded from it.
type Store interface {
	SaveRun(ctx context.Context, run *ontology.Run) error
	GetRun(ctx context.Context, id string) (*ontology.Run, error)
	ListRuns(ctx context.Context, query ListQuery) ([]RunSummary, error)
	Close() error
}
