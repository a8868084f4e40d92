package otel

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/agentlog/ontology-go/ontology"
	"github.com/agentlog/ontology-go/ontology/layers"
)

func newTestExporter(t *testing.T) (*Exporter, *tracetest.InMemoryExporter) {
	t.Helper()
	recorder := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewExporter(tp), recorder
}

func replayRun() *ontology.Run {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	msgTime := start.Add(2 * time.Second)
	return &ontology.Run{
		ID: "r1", Name: "weather session", StartTime: start, EndTime: &end,
		Steps: []ontology.Step{{
			ID: "s1", Name: "fetch-weather", StartTime: start, EndTime: &end,
			Messages:  []ontology.Message{{Role: ontology.RoleAssistant, Content: "It is 18°C in Paris", Timestamp: &msgTime}},
			ToolCalls: []ontology.ToolCall{{Name: "get_weather", Output: map[string]any{"tempC": 18.0}}},
			SubSteps: []ontology.Step{{
				ID: "s2", Name: "parse-response", StartTime: start.Add(time.Second),
			}},
		}},
	}
}

func TestExport_SpanTree(t *testing.T) {
	exporter, recorder := newTestExporter(t)
	run := replayRun()
	if err := exporter.Export(context.Background(), run); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	spans := recorder.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans (run + 2 steps), got %d", len(spans))
	}

	byName := map[string]tracetest.SpanStub{}
	for _, span := range spans {
		byName[span.Name] = span
	}
	runSpan, ok := byName["run.weather session"]
	if !ok {
		t.Fatalf("run span missing, got %v", names(spans))
	}
	stepSpan, ok := byName["step.fetch-weather"]
	if !ok {
		t.Fatalf("step span missing, got %v", names(spans))
	}
	subSpan, ok := byName["step.parse-response"]
	if !ok {
		t.Fatalf("sub-step span missing, got %v", names(spans))
	}

	if stepSpan.Parent.SpanID() != runSpan.SpanContext.SpanID() {
		t.Fatalf("step span not parented to run span")
	}
	if subSpan.Parent.SpanID() != stepSpan.SpanContext.SpanID() {
		t.Fatalf("sub-step span not parented to its step span")
	}

	if !stepSpan.StartTime.Equal(run.StartTime) || !stepSpan.EndTime.Equal(*run.Steps[0].EndTime) {
		t.Fatalf("span timestamps must come from the run, got %v..%v", stepSpan.StartTime, stepSpan.EndTime)
	}

	if len(stepSpan.Events) != 2 {
		t.Fatalf("expected message and tool_call events, got %+v", stepSpan.Events)
	}
	if stepSpan.Events[0].Name != "message" || stepSpan.Events[1].Name != "tool_call" {
		t.Fatalf("unexpected event names: %s, %s", stepSpan.Events[0].Name, stepSpan.Events[1].Name)
	}
}

func TestExport_FlagsOversight(t *testing.T) {
	exporter, recorder := newTestExporter(t)
	run := replayRun()
	run.Steps[0].Oversight = &layers.OversightSnapshot{
		Anomalies: []layers.Anomaly{{ID: "a1", Type: "loop", Severity: layers.RiskHigh}},
	}
	if err := exporter.Export(context.Background(), run); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	for _, span := range recorder.GetSpans() {
		if span.Name != "step.fetch-weather" {
			continue
		}
		if span.Status.Code != codes.Error {
			t.Fatalf("flagged step should export an error status, got %v", span.Status)
		}
		return
	}
	t.Fatalf("step span not found")
}

func TestExport_NilProviderIsNoop(t *testing.T) {
	exporter := NewExporter(nil)
	if err := exporter.Export(context.Background(), replayRun()); err != nil {
		t.Fatalf("noop export failed: %v", err)
	}
}

func TestExport_NilRun(t *testing.T) {
	exporter, _ := newTestExporter(t)
	if err := exporter.Export(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil run")
	}
}

func names(spans tracetest.SpanStubs) []string {
	out := make([]string, 0, len(spans))
	for _, span := range spans {
		out = append(out, span.Name)
	}
	return out
}
