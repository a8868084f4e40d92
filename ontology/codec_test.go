package ontology

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agentlog/ontology-go/ontology/layers"
)

func layeredRun() *Run {
	end := t0.Add(2 * time.Minute)
	run := NewRun("run-42", "layered", t0)
	run.EndTime = &end
	run.Metadata = map[string]any{"source": "test"}

	child := NewStep("s2", "assess", t0.Add(time.Second))
	child.Cognition = &layers.CognitionSnapshot{
		Timestamp: &t0,
		Decisions: []layers.Decision{{ID: "d1", Strategy: "greedy", Confidence: 0.9, Timestamp: &t0}},
		Assessments: []layers.RiskAssessment{
			{ID: "ra1", TargetID: "d1", Level: layers.RiskMedium, Probability: 0.2, Impact: 0.5},
		},
	}
	child.Oversight = &layers.OversightSnapshot{
		Anomalies: []layers.Anomaly{
			{ID: "a1", Type: "loop", Severity: layers.RiskHigh, Description: "repeated tool call", DetectedAt: &t0},
		},
		Recommendations: []string{"halt"},
	}

	root := NewStep("s1", "plan", t0)
	root.EndTime = &end
	root.Perception = &layers.PerceptionSnapshot{
		Observations: []layers.Observation{{ID: "o1", Source: "user", Content: "forecast?", Timestamp: &t0}},
	}
	root.Action = &layers.ActionSnapshot{
		Executions: []layers.ActionExecution{{ID: "e1", Name: "call-weather-api", Status: "completed", StartTime: &t0}},
	}
	root.Messages = append(root.Messages, Message{Role: RoleUser, Content: "what's the weather", Timestamp: &t0})
	root.ToolCalls = append(root.ToolCalls, ToolCall{
		Name: "get_weather", Input: map[string]any{"city": "Paris"}, StartTime: &t0, EndTime: &end,
		Output: map[string]any{"tempC": float64(18)},
	})
	root.AddSubStep(child)
	run.AddStep(root)
	return run
}

func TestRoundTrip(t *testing.T) {
	original := layeredRun()
	data, err := EncodeRun(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("round trip changed the run (-original +decoded):\n%s", diff)
	}
	if !original.Equal(decoded) {
		t.Fatalf("round-tripped run should be structurally equal")
	}
}

func TestEncode_NormalizesToUTC(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2024, 5, 1, 12, 0, 0, 0, paris)
	run := NewRun("run-tz", "tz", local)
	step := Step{ID: "s1", Name: "only", StartTime: local}
	run.AddStep(step)

	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loc := decoded.Steps[0].StartTime.Location(); loc != time.UTC {
		t.Fatalf("expected UTC timestamps after decode, got %v", loc)
	}
	if !decoded.Steps[0].StartTime.Equal(local) {
		t.Fatalf("UTC normalization must preserve the instant")
	}
}

func TestEncode_RejectsInvalid(t *testing.T) {
	run := layeredRun()
	run.ID = ""
	if _, err := EncodeRun(run); err == nil {
		t.Fatalf("expected encode of invalid run to fail")
	}
}

func TestDecode_RejectsInvalid(t *testing.T) {
	if _, err := DecodeRun([]byte(`{"id":"","start_time":"2024-05-01T10:00:00Z"}`)); err == nil {
		t.Fatalf("expected decode of invalid run to fail")
	}
	if _, err := DecodeRun([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode of malformed document to fail")
	}
}
