package ontology

import (
	"encoding/json"
	"fmt"
	"time"
)

// EncodeRun serializes a validated run to its canonical form: a nested
// JSON document with snake_case field names and every timestamp in
// RFC 3339 UTC. Timestamps carrying another offset are rewritten to
// UTC (same instant) so output is canonical regardless of how the run
// was built. Encoding fails if the run does not validate.
func EncodeRun(r *Run) ([]byte, error) {
	if r == nil {
		return nil, &ValidationError{Kind: KindMissingField, Path: "", Reason: "run is nil"}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	normalizeUTC(r)
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run %q: %w", r.ID, err)
	}
	return data, nil
}

// DecodeRun parses a canonical run document and validates it, so a
// successful decode always yields a structurally valid run satisfying
// DecodeRun(EncodeRun(x)) == x.
func DecodeRun(data []byte) (*Run, error) {
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run document: %w", err)
	}
	normalizeUTC(&run)
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return &run, nil
}

func normalizeUTC(r *Run) {
	r.StartTime = r.StartTime.UTC()
	r.EndTime = utcPtr(r.EndTime)
	walkSteps(r.Steps, func(step *Step) {
		step.StartTime = step.StartTime.UTC()
		step.EndTime = utcPtr(step.EndTime)
		for i := range step.Messages {
			step.Messages[i].Timestamp = utcPtr(step.Messages[i].Timestamp)
		}
		for i := range step.ToolCalls {
			step.ToolCalls[i].StartTime = utcPtr(step.ToolCalls[i].StartTime)
			step.ToolCalls[i].EndTime = utcPtr(step.ToolCalls[i].EndTime)
		}
		if snap := step.Perception; snap != nil {
			snap.Timestamp = utcPtr(snap.Timestamp)
			for i := range snap.Observations {
				snap.Observations[i].Timestamp = utcPtr(snap.Observations[i].Timestamp)
			}
		}
		if snap := step.Cognition; snap != nil {
			snap.Timestamp = utcPtr(snap.Timestamp)
			for i := range snap.Decisions {
				snap.Decisions[i].Timestamp = utcPtr(snap.Decisions[i].Timestamp)
			}
		}
		if snap := step.Action; snap != nil {
			snap.Timestamp = utcPtr(snap.Timestamp)
			for i := range snap.Executions {
				snap.Executions[i].StartTime = utcPtr(snap.Executions[i].StartTime)
				snap.Executions[i].EndTime = utcPtr(snap.Executions[i].EndTime)
			}
		}
		if snap := step.Oversight; snap != nil {
			snap.Timestamp = utcPtr(snap.Timestamp)
			for i := range snap.Anomalies {
				snap.Anomalies[i].DetectedAt = utcPtr(snap.Anomalies[i].DetectedAt)
			}
		}
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
