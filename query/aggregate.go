package query

import "github.com/agentlog/ontology-go/ontology"

// Metric names returned by Counts. Every key is always present, so an
// empty run yields zeroes rather than missing entries.
const (
	MetricSteps        = "total_steps"
	MetricMessages     = "total_messages"
	MetricToolCalls    = "total_tool_calls"
	MetricObservations = "total_observations"
	MetricDecisions    = "total_decisions"
	MetricActions      = "total_actions"
	MetricAnomalies    = "total_anomalies"
	MetricMaxDepth     = "max_nesting_depth"
)

// Counts sums entity totals across the entire step tree with one
// pre-order pass, visiting every step exactly once regardless of
// nesting depth.
func Counts(run *ontology.Run) map[string]int {
	counts := map[string]int{
		MetricSteps:        0,
		MetricMessages:     0,
		MetricToolCalls:    0,
		MetricObservations: 0,
		MetricDecisions:    0,
		MetricActions:      0,
		MetricAnomalies:    0,
		MetricMaxDepth:     0,
	}

	type frame struct {
		step  *ontology.Step
		depth int
	}
	stack := make([]frame, 0, len(run.Steps))
	for i := len(run.Steps) - 1; i >= 0; i-- {
		stack = append(stack, frame{&run.Steps[i], 1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		step := f.step

		counts[MetricSteps]++
		counts[MetricMessages] += len(step.Messages)
		counts[MetricToolCalls] += len(step.ToolCalls)
		if step.Perception != nil {
			counts[MetricObservations] += len(step.Perception.Observations)
		}
		if step.Cognition != nil {
			counts[MetricDecisions] += len(step.Cognition.Decisions)
		}
		if step.Action != nil {
			counts[MetricActions] += len(step.Action.Executions)
		}
		if step.Oversight != nil {
			counts[MetricAnomalies] += len(step.Oversight.Anomalies)
		}
		if f.depth > counts[MetricMaxDepth] {
			counts[MetricMaxDepth] = f.depth
		}
		for i := len(step.SubSteps) - 1; i >= 0; i-- {
			stack = append(stack, frame{&step.SubSteps[i], f.depth + 1})
		}
	}
	return counts
}
