// Package ontology defines the canonical representation of one agent
// execution: a Run owning an ordered tree of Steps, each carrying
// messages, tool calls, and optional per-layer state snapshots.
//
// Heterogeneous agent-framework logs are converted into this shape by
// the normalize package so that downstream tooling (timelines, metrics,
// risk filtering) can operate uniformly regardless of source format.
// Entities are value objects: they are built once, validated, and never
// mutated by readers.
package ontology

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentlog/ontology-go/ontology/layers"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one message exchanged during agent execution.
type Message struct {
	ID        string     `json:"id,omitempty"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ToolCall records one invocation of an external capability. Output is
// nil until the call completes; a completed call keeps the same record
// with Output and EndTime populated.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Input     map[string]any `json:"input,omitempty"`
	Output    map[string]any `json:"output,omitempty"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
}

// Step is one unit of agent activity. Steps nest: SubSteps hold child
// steps in execution order, forming a tree rooted at the Run. The four
// layer snapshots are optional attachments; a nil snapshot means the
// layer was not reported, not that it was empty.
type Step struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Messages  []Message  `json:"messages,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	SubSteps  []Step     `json:"sub_steps,omitempty"`

	Perception *layers.PerceptionSnapshot `json:"perception,omitempty"`
	Cognition  *layers.CognitionSnapshot  `json:"cognition,omitempty"`
	Action     *layers.ActionSnapshot     `json:"action,omitempty"`
	Oversight  *layers.OversightSnapshot  `json:"oversight,omitempty"`
}

// Run is the top-level record of one agent execution. It exclusively
// owns its step tree; no entity is shared between two parents.
type Run struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Steps     []Step         `json:"steps,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewRun builds a run with the given name starting at start. An id is
// generated when the caller does not supply one.
func NewRun(id, name string, start time.Time) *Run {
	if id == "" {
		id = uuid.NewString()
	}
	return &Run{ID: id, Name: name, StartTime: start.UTC()}
}

// NewStep builds a step starting at start, generating an id if needed.
func NewStep(id, name string, start time.Time) Step {
	if id == "" {
		id = uuid.NewString()
	}
	return Step{ID: id, Name: name, StartTime: start.UTC()}
}

// AddStep appends a top-level step to the run.
func (r *Run) AddStep(step Step) {
	r.Steps = append(r.Steps, step)
}

// AddSubStep appends a child step.
func (s *Step) AddSubStep(child Step) {
	s.SubSteps = append(s.SubSteps, child)
}

// FindStep returns the step with the given id, searching the whole
// tree in pre-order, or nil if absent.
func (r *Run) FindStep(id string) *Step {
	stack := make([]*Step, 0, len(r.Steps))
	for i := len(r.Steps) - 1; i >= 0; i-- {
		stack = append(stack, &r.Steps[i])
	}
	for len(stack) > 0 {
		step := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if step.ID == id {
			return step
		}
		for i := len(step.SubSteps) - 1; i >= 0; i-- {
			stack = append(stack, &step.SubSteps[i])
		}
	}
	return nil
}

// Complete reports whether every step in the tree has ended. This is a
// derived condition, never a stored flag.
func (r *Run) Complete() bool {
	complete := true
	walkSteps(r.Steps, func(step *Step) {
		if step.EndTime == nil {
			complete = false
		}
	})
	return complete
}

// Duration returns the run's elapsed time, or zero while the run has
// no end time.
func (r *Run) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Equal reports structural equality via the canonical encoding, so two
// runs are equal exactly when they serialize identically.
func (r *Run) Equal(other *Run) bool {
	if r == nil || other == nil {
		return r == other
	}
	a, errA := EncodeRun(r)
	b, errB := EncodeRun(other)
	if errA != nil || errB != nil {
		return false
	}
	return string(a) == string(b)
}

// walkSteps visits every step in pre-order using an explicit stack, so
// traversal depth is independent of call-stack limits.
func walkSteps(steps []Step, visit func(*Step)) {
	stack := make([]*Step, 0, len(steps))
	for i := len(steps) - 1; i >= 0; i-- {
		stack = append(stack, &steps[i])
	}
	for len(stack) > 0 {
		step := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(step)
		for i := len(step.SubSteps) - 1; i >= 0; i-- {
			stack = append(stack, &step.SubSteps[i])
		}
	}
}
