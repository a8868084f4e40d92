// Package query derives read-only views from a validated run: the
// chronological timeline of its events, aggregate counts over the
// whole step tree, and flat extractions of entities matching a
// predicate. Queries never mutate the run and never fail on a valid
// tree — nothing to report comes back as an empty result.
package query

import (
	"sort"
	"time"

	"github.com/agentlog/ontology-go/ontology"
)

// EventKind identifies what a timeline event records.
type EventKind string

const (
	EventStepStart      EventKind = "step_start"
	EventStepEnd        EventKind = "step_end"
	EventMessage        EventKind = "message"
	EventToolInvocation EventKind = "tool_invocation"
	EventToolCompletion EventKind = "tool_completion"
)

// Event is one entry in a run's timeline.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"event_kind"`
	StepID    string    `json:"step_id"`
	Summary   string    `json:"payload_summary,omitempty"`
}

const summaryLimit = 120

// Timeline flattens the run into events ordered by timestamp
// ascending. Entities without a timestamp are excluded. Events sharing
// a timestamp keep their pre-order tree position (step start, tool
// calls, messages, sub-steps, step end), which makes the output
// deterministic for coarse-grained log sources.
func Timeline(run *ontology.Run) []Event {
	var events []Event

	type frame struct {
		step  *ontology.Step
		entry bool
	}
	stack := make([]frame, 0, len(run.Steps))
	for i := len(run.Steps) - 1; i >= 0; i-- {
		stack = append(stack, frame{step: &run.Steps[i], entry: true})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		step := f.step
		if !f.entry {
			if step.EndTime != nil {
				events = append(events, Event{Timestamp: *step.EndTime, Kind: EventStepEnd, StepID: step.ID, Summary: step.Name})
			}
			continue
		}

		events = append(events, Event{Timestamp: step.StartTime, Kind: EventStepStart, StepID: step.ID, Summary: step.Name})
		for _, call := range step.ToolCalls {
			if call.StartTime != nil {
				events = append(events, Event{Timestamp: *call.StartTime, Kind: EventToolInvocation, StepID: step.ID, Summary: call.Name})
			}
			if call.EndTime != nil {
				events = append(events, Event{Timestamp: *call.EndTime, Kind: EventToolCompletion, StepID: step.ID, Summary: call.Name})
			}
		}
		for _, msg := range step.Messages {
			if msg.Timestamp != nil {
				events = append(events, Event{Timestamp: *msg.Timestamp, Kind: EventMessage, StepID: step.ID, Summary: truncate(msg.Content, summaryLimit)})
			}
		}

		// Re-push for the exit event, then children so they pop first.
		stack = append(stack, frame{step: step})
		for i := len(step.SubSteps) - 1; i >= 0; i-- {
			stack = append(stack, frame{step: &step.SubSteps[i], entry: true})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
