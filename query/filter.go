package query

import "github.com/agentlog/ontology-go/ontology"

// EntityKind identifies the kind of an extracted entity.
type EntityKind string

const (
	EntityMessage        EntityKind = "message"
	EntityToolCall       EntityKind = "tool_call"
	EntityObservation    EntityKind = "observation"
	EntityDecision       EntityKind = "decision"
	EntityRiskAssessment EntityKind = "risk_assessment"
	EntityAction         EntityKind = "action_execution"
	EntityAnomaly        EntityKind = "anomaly"
)

// Entity references one entity found during extraction, tagged with
// the step that owns it.
type Entity struct {
	StepID  string     `json:"step_id"`
	Kind    EntityKind `json:"entity_kind"`
	Payload any        `json:"entity_payload"`
}

// Collect walks the whole tree in pre-order and returns every entity
// matching the predicate, in discovery order.
func Collect(run *ontology.Run, match func(Entity) bool) []Entity {
	var out []Entity
	emit := func(e Entity) {
		if match == nil || match(e) {
			out = append(out, e)
		}
	}

	stack := make([]*ontology.Step, 0, len(run.Steps))
	for i := len(run.Steps) - 1; i >= 0; i-- {
		stack = append(stack, &run.Steps[i])
	}
	for len(stack) > 0 {
		step := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, msg := range step.Messages {
			emit(Entity{StepID: step.ID, Kind: EntityMessage, Payload: msg})
		}
		for _, call := range step.ToolCalls {
			emit(Entity{StepID: step.ID, Kind: EntityToolCall, Payload: call})
		}
		if snap := step.Perception; snap != nil {
			for _, obs := range snap.Observations {
				emit(Entity{StepID: step.ID, Kind: EntityObservation, Payload: obs})
			}
		}
		if snap := step.Cognition; snap != nil {
			for _, dec := range snap.Decisions {
				emit(Entity{StepID: step.ID, Kind: EntityDecision, Payload: dec})
			}
			for _, risk := range snap.Assessments {
				emit(Entity{StepID: step.ID, Kind: EntityRiskAssessment, Payload: risk})
			}
		}
		if snap := step.Action; snap != nil {
			for _, exec := range snap.Executions {
				emit(Entity{StepID: step.ID, Kind: EntityAction, Payload: exec})
			}
		}
		if snap := step.Oversight; snap != nil {
			for _, anom := range snap.Anomalies {
				emit(Entity{StepID: step.ID, Kind: EntityAnomaly, Payload: anom})
			}
			for _, risk := range snap.Risks {
				emit(Entity{StepID: step.ID, Kind: EntityRiskAssessment, Payload: risk})
			}
		}

		for i := len(step.SubSteps) - 1; i >= 0; i-- {
			stack = append(stack, &step.SubSteps[i])
		}
	}
	return out
}

// Flagged returns every anomaly and risk assessment in the tree, at
// any nesting depth, in discovery order.
func Flagged(run *ontology.Run) []Entity {
	return Collect(run, func(e Entity) bool {
		return e.Kind == EntityAnomaly || e.Kind == EntityRiskAssessment
	})
}
