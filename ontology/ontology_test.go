package ontology

import (
	"errors"
	"testing"
	"time"

	"github.com/agentlog/ontology-go/ontology/layers"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func validRun() *Run {
	end := t0.Add(time.Minute)
	run := NewRun("run-1", "weather session", t0)
	step := NewStep("s1", "fetch-weather", t0)
	step.EndTime = &end
	step.Messages = append(step.Messages, Message{Role: RoleAssistant, Content: "It is 18°C in Paris", Timestamp: &t0})
	step.ToolCalls = append(step.ToolCalls, ToolCall{
		Name:      "get_weather",
		Input:     map[string]any{"city": "Paris"},
		Output:    map[string]any{"tempC": float64(18)},
		StartTime: &t0,
	})
	run.AddStep(step)
	return run
}

func TestValidate_OK(t *testing.T) {
	if err := validRun().Validate(); err != nil {
		t.Fatalf("valid run rejected: %v", err)
	}
}

func TestValidate_Kinds(t *testing.T) {
	end := t0.Add(-time.Minute)
	tests := []struct {
		name     string
		mutate   func(*Run)
		wantKind ValidationKind
	}{
		{"missing run id", func(r *Run) { r.ID = "" }, KindMissingField},
		{"missing run start", func(r *Run) { r.StartTime = time.Time{} }, KindMissingField},
		{"inverted run times", func(r *Run) { r.EndTime = &end }, KindStructural},
		{"missing step name", func(r *Run) { r.Steps[0].Name = "" }, KindMissingField},
		{"inverted step times", func(r *Run) { r.Steps[0].EndTime = &end }, KindStructural},
		{"bad role", func(r *Run) { r.Steps[0].Messages[0].Role = "narrator" }, KindInvalidEnum},
		{"missing tool name", func(r *Run) { r.Steps[0].ToolCalls[0].Name = "" }, KindMissingField},
		{"duplicate step id", func(r *Run) {
			dup := NewStep("s1", "again", t0)
			r.Steps[0].AddSubStep(dup)
		}, KindStructural},
		{"bad anomaly severity", func(r *Run) {
			r.Steps[0].Oversight = &layers.OversightSnapshot{
				Anomalies: []layers.Anomaly{{ID: "a1", Severity: "catastrophic"}},
			}
		}, KindInvalidEnum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := validRun()
			tt.mutate(run)
			err := run.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if verr.Kind != tt.wantKind {
				t.Fatalf("expected kind %q, got %q (%v)", tt.wantKind, verr.Kind, verr)
			}
			if verr.Path == "" {
				t.Fatalf("expected a field path in %v", verr)
			}
		})
	}
}

func TestComplete_Derived(t *testing.T) {
	run := validRun()
	if !run.Complete() {
		t.Fatalf("run with all steps ended should be complete")
	}
	child := NewStep("s2", "lookup", t0)
	run.Steps[0].AddSubStep(child)
	if run.Complete() {
		t.Fatalf("run with an unfinished nested step should not be complete")
	}
}

func TestDuration_Derived(t *testing.T) {
	run := validRun()
	if run.Duration() != 0 {
		t.Fatalf("run without an end time has no duration")
	}
	end := t0.Add(90 * time.Second)
	run.EndTime = &end
	if got := run.Duration(); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func TestFindStep_Nested(t *testing.T) {
	run := validRun()
	grandchild := NewStep("s3", "parse", t0)
	child := NewStep("s2", "lookup", t0)
	child.AddSubStep(grandchild)
	run.Steps[0].AddSubStep(child)

	found := run.FindStep("s3")
	if found == nil || found.Name != "parse" {
		t.Fatalf("expected to find nested step s3, got %+v", found)
	}
	if run.FindStep("missing") != nil {
		t.Fatalf("expected nil for unknown step id")
	}
}

func TestEqual_ValueSemantics(t *testing.T) {
	a := validRun()
	b := validRun()
	if !a.Equal(b) {
		t.Fatalf("structurally identical runs should be equal")
	}
	b.Steps[0].Messages[0].Content = "different"
	if a.Equal(b) {
		t.Fatalf("runs with different content should not be equal")
	}
}
