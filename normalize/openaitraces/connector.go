// Package openaitraces normalizes the OpenAI agent-traces export: a
// flat, implicitly ordered step list where each raw step is either a
// message or a tool invocation.
package openaitraces

import (
	"fmt"

	"github.com/agentlog/ontology-go/normalize"
	"github.com/agentlog/ontology-go/ontology"
)

// Format is the registry identifier for this connector.
const Format = "openai-traces"

// Normalize converts one OpenAI trace document into a validated run.
// Tool completion uses a single record: the invocation step carries
// the output once the source has it, there is no second linked record.
func Normalize(doc map[string]any) (*ontology.Run, error) {
	id, err := normalize.RequireString(Format, doc, "id", "id")
	if err != nil {
		return nil, err
	}
	rawSteps, ok := doc["steps"].([]any)
	if !ok {
		return nil, &normalize.NormalizationError{
			Format: Format,
			Kind:   normalize.KindBadShape,
			Path:   "steps",
			Value:  doc["steps"],
			Reason: "steps must be an array",
		}
	}

	run := &ontology.Run{ID: id, Name: normalize.String(doc, "agent_name")}
	start, err := normalize.RequireTime(Format, doc, "started_at", "started_at")
	if err != nil {
		return nil, err
	}
	run.StartTime = start
	if run.EndTime, err = normalize.Time(Format, doc, "ended_at", "ended_at"); err != nil {
		return nil, err
	}

	for i, entry := range rawSteps {
		raw, _ := entry.(map[string]any)
		step, err := parseStep(raw, i)
		if err != nil {
			return nil, err
		}
		run.Steps = append(run.Steps, step)
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

func parseStep(raw map[string]any, idx int) (ontology.Step, error) {
	path := fmt.Sprintf("steps[%d]", idx)
	kind := normalize.String(raw, "type")
	if kind == "" {
		kind = "unknown"
	}
	step := ontology.Step{
		ID:   normalize.String(raw, "id"),
		Name: kind,
	}
	if step.ID == "" {
		step.ID = fmt.Sprintf("step-%d", idx)
	}
	ts, err := normalize.RequireTime(Format, raw, "timestamp", path+".timestamp")
	if err != nil {
		return ontology.Step{}, err
	}
	step.StartTime = ts

	switch kind {
	case "message":
		role := normalize.String(raw, "role")
		if role == "" {
			role = string(ontology.RoleAssistant)
		}
		msgTime := ts
		step.Messages = append(step.Messages, ontology.Message{
			ID:        step.ID,
			Role:      ontology.Role(role),
			Content:   normalize.String(raw, "content"),
			Timestamp: &msgTime,
		})
	case "tool":
		callTime := ts
		step.ToolCalls = append(step.ToolCalls, ontology.ToolCall{
			ID:        step.ID,
			Name:      normalize.String(raw, "tool_name"),
			Input:     normalize.Map(raw, "input"),
			Output:    normalize.Map(raw, "output"),
			StartTime: &callTime,
		})
	}
	return step, nil
}
