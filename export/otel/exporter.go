// Package otel replays a normalized run as OpenTelemetry spans, so an
// ingested agent trace can be browsed in any OTel-compatible backend
// (Jaeger, Zipkin, Grafana, etc.) with the step tree preserved as the
// span hierarchy.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/agentlog/ontology-go/ontology"
)

const instrumentationName = "github.com/agentlog/ontology-go/export/otel"

// Exporter replays runs as spans.
type Exporter struct {
	tracer trace.Tracer
}

// NewExporter creates an exporter using the given TracerProvider. If
// tp is nil, a noop tracer provider is used.
func NewExporter(tp trace.TracerProvider) *Exporter {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Exporter{tracer: tp.Tracer(instrumentationName)}
}

// Export emits one span per step, parented along the step tree, with
// messages and tool calls attached as span events. Span timestamps
// come from the run, not the wall clock, so the replay preserves the
// original timing.
func (e *Exporter) Export(ctx context.Context, run *ontology.Run) error {
	if run == nil {
		return fmt.Errorf("run is required")
	}
	name := run.Name
	if name == "" {
		name = run.ID
	}
	attrs := []attribute.KeyValue{
		attribute.String("agent.run.id", run.ID),
		attribute.Int("agent.run.steps", len(run.Steps)),
	}
	runCtx, span := e.tracer.Start(ctx, "run."+name, trace.WithTimestamp(run.StartTime), trace.WithAttributes(attrs...))
	for i := range run.Steps {
		e.exportStep(runCtx, &run.Steps[i])
	}
	end := run.StartTime
	if run.EndTime != nil {
		end = *run.EndTime
	}
	span.End(trace.WithTimestamp(end))
	return nil
}

func (e *Exporter) exportStep(ctx context.Context, step *ontology.Step) {
	attrs := []attribute.KeyValue{
		attribute.String("agent.step.id", step.ID),
		attribute.String("agent.step.name", step.Name),
	}
	stepCtx, span := e.tracer.Start(ctx, "step."+step.Name, trace.WithTimestamp(step.StartTime), trace.WithAttributes(attrs...))

	for _, msg := range step.Messages {
		opts := []trace.EventOption{trace.WithAttributes(
			attribute.String("agent.message.role", string(msg.Role)),
			attribute.String("agent.message.content", truncate(msg.Content, 1024)),
		)}
		if msg.Timestamp != nil {
			opts = append(opts, trace.WithTimestamp(*msg.Timestamp))
		}
		span.AddEvent("message", opts...)
	}
	for _, call := range step.ToolCalls {
		opts := []trace.EventOption{trace.WithAttributes(
			attribute.String("agent.tool.name", call.Name),
			attribute.Bool("agent.tool.completed", call.Output != nil),
		)}
		if call.StartTime != nil {
			opts = append(opts, trace.WithTimestamp(*call.StartTime))
		}
		span.AddEvent("tool_call", opts...)
	}
	if step.Oversight.Flagged() {
		span.SetStatus(codes.Error, "oversight flags present")
		span.SetAttributes(
			attribute.Int("agent.oversight.anomalies", len(step.Oversight.Anomalies)),
			attribute.Int("agent.oversight.risks", len(step.Oversight.Risks)),
		)
	}

	for i := range step.SubSteps {
		e.exportStep(stepCtx, &step.SubSteps[i])
	}

	end := step.StartTime
	if step.EndTime != nil {
		end = *step.EndTime
	}
	span.End(trace.WithTimestamp(end))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
