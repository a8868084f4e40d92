package ontology

import "fmt"

// Validate checks every field-level and structural invariant of the
// run: required fields present, enumerated values in range, end times
// not earlier than start times, and step ids unique across the whole
// tree. It returns the first violation as a *ValidationError.
func (r *Run) Validate() error {
	if r.ID == "" {
		return &ValidationError{Kind: KindMissingField, Path: "id", Reason: "run id is required"}
	}
	if r.StartTime.IsZero() {
		return &ValidationError{Kind: KindMissingField, Path: "start_time", Reason: "run start time is required"}
	}
	if r.EndTime != nil && r.EndTime.Before(r.StartTime) {
		return &ValidationError{Kind: KindStructural, Path: "end_time", Value: r.EndTime, Reason: "run ends before it starts"}
	}

	seen := make(map[string]string, len(r.Steps))

	type frame struct {
		step *Step
		path string
	}
	stack := make([]frame, 0, len(r.Steps))
	for i := len(r.Steps) - 1; i >= 0; i-- {
		stack = append(stack, frame{&r.Steps[i], fmt.Sprintf("steps[%d]", i)})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := validateStep(f.step, f.path, seen); err != nil {
			return err
		}
		for i := len(f.step.SubSteps) - 1; i >= 0; i-- {
			stack = append(stack, frame{&f.step.SubSteps[i], fmt.Sprintf("%s.sub_steps[%d]", f.path, i)})
		}
	}
	return nil
}

func validateStep(step *Step, path string, seen map[string]string) error {
	if step.ID == "" {
		return &ValidationError{Kind: KindMissingField, Path: path + ".id", Reason: "step id is required"}
	}
	if prev, dup := seen[step.ID]; dup {
		return &ValidationError{Kind: KindStructural, Path: path + ".id", Value: step.ID, Reason: "step id already used at " + prev}
	}
	seen[step.ID] = path
	if step.Name == "" {
		return &ValidationError{Kind: KindMissingField, Path: path + ".name", Reason: "step name is required"}
	}
	if step.StartTime.IsZero() {
		return &ValidationError{Kind: KindMissingField, Path: path + ".start_time", Reason: "step start time is required"}
	}
	if step.EndTime != nil && step.EndTime.Before(step.StartTime) {
		return &ValidationError{Kind: KindStructural, Path: path + ".end_time", Value: step.EndTime, Reason: "step ends before it starts"}
	}
	for i := range step.Messages {
		if err := validateMessage(&step.Messages[i], fmt.Sprintf("%s.messages[%d]", path, i)); err != nil {
			return err
		}
	}
	for i := range step.ToolCalls {
		if err := validateToolCall(&step.ToolCalls[i], fmt.Sprintf("%s.tool_calls[%d]", path, i)); err != nil {
			return err
		}
	}
	return validateSnapshots(step, path)
}

func validateMessage(m *Message, path string) error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
	case "":
		return &ValidationError{Kind: KindMissingField, Path: path + ".role", Reason: "message role is required"}
	default:
		return &ValidationError{Kind: KindInvalidEnum, Path: path + ".role", Value: string(m.Role), Reason: "unknown message role"}
	}
	return nil
}

func validateToolCall(c *ToolCall, path string) error {
	if c.Name == "" {
		return &ValidationError{Kind: KindMissingField, Path: path + ".name", Reason: "tool name is required"}
	}
	if c.StartTime != nil && c.EndTime != nil && c.EndTime.Before(*c.StartTime) {
		return &ValidationError{Kind: KindStructural, Path: path + ".end_time", Value: c.EndTime, Reason: "tool call ends before it starts"}
	}
	return nil
}

func validateSnapshots(step *Step, path string) error {
	if snap := step.Cognition; snap != nil {
		for i, a := range snap.Assessments {
			if !a.Level.Valid() {
				return &ValidationError{Kind: KindInvalidEnum, Path: fmt.Sprintf("%s.cognition.assessments[%d].level", path, i), Value: string(a.Level), Reason: "unknown risk level"}
			}
		}
	}
	if snap := step.Action; snap != nil {
		for i, ex := range snap.Executions {
			if ex.Name == "" {
				return &ValidationError{Kind: KindMissingField, Path: fmt.Sprintf("%s.action.executions[%d].name", path, i), Reason: "action name is required"}
			}
		}
	}
	if snap := step.Oversight; snap != nil {
		for i, a := range snap.Anomalies {
			if !a.Severity.Valid() {
				return &ValidationError{Kind: KindInvalidEnum, Path: fmt.Sprintf("%s.oversight.anomalies[%d].severity", path, i), Value: string(a.Severity), Reason: "unknown risk level"}
			}
		}
		for i, risk := range snap.Risks {
			if !risk.Level.Valid() {
				return &ValidationError{Kind: KindInvalidEnum, Path: fmt.Sprintf("%s.oversight.risks[%d].level", path, i), Value: string(risk.Level), Reason: "unknown risk level"}
			}
		}
	}
	return nil
}
