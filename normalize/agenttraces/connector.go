// Package agenttraces normalizes the reference "agent-traces" export
// format: a flat step list in execution order, where nesting is
// expressed through optional parent_id references and messages or tool
// calls may appear either embedded in their step or as detached
// records referencing a step id.
package agenttraces

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agentlog/ontology-go/normalize"
	"github.com/agentlog/ontology-go/ontology"
	"github.com/agentlog/ontology-go/ontology/layers"
)

// Format is the registry identifier for this connector.
const Format = "agent-traces"

//go:embed schema.json
var schemaJSON string

var schema = gojsonschema.NewStringLoader(schemaJSON)

type node struct {
	step     ontology.Step
	parentID string
	children []int
}

// Normalize converts one agent-traces document into a validated run.
// It is all-or-nothing: any unrecognized shape, unparseable timestamp,
// dangling reference, or cyclic parent chain fails the whole document.
func Normalize(doc map[string]any) (*ontology.Run, error) {
	if err := checkShape(doc); err != nil {
		return nil, err
	}

	run := &ontology.Run{
		ID:       normalize.String(doc, "trace_id"),
		Name:     normalize.String(doc, "name"),
		Metadata: normalize.Map(doc, "metadata"),
	}
	start, err := normalize.RequireTime(Format, doc, "started_at", "started_at")
	if err != nil {
		return nil, err
	}
	run.StartTime = start
	if run.EndTime, err = normalize.Time(Format, doc, "ended_at", "ended_at"); err != nil {
		return nil, err
	}

	nodes, byID, err := parseSteps(normalize.Slice(doc, "steps"))
	if err != nil {
		return nil, err
	}
	if err := attachDetached(doc, nodes, byID); err != nil {
		return nil, err
	}
	if err := checkParents(nodes, byID); err != nil {
		return nil, err
	}

	roots := link(nodes, byID)
	for _, i := range roots {
		run.Steps = append(run.Steps, build(nodes, i))
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

// checkShape gatekeeps the raw document against the embedded JSON
// Schema before any field mapping happens.
func checkShape(doc map[string]any) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &normalize.NormalizationError{Format: Format, Kind: normalize.KindBadShape, Path: "", Reason: err.Error()}
	}
	if result.Valid() {
		return nil
	}
	reasons := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		reasons = append(reasons, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return &normalize.NormalizationError{
		Format: Format,
		Kind:   normalize.KindBadShape,
		Path:   result.Errors()[0].Field(),
		Reason: strings.Join(reasons, "; "),
	}
}

func parseSteps(raw []any) ([]*node, map[string]int, error) {
	nodes := make([]*node, 0, len(raw))
	byID := make(map[string]int, len(raw))
	for i, entry := range raw {
		rawStep, _ := entry.(map[string]any)
		path := fmt.Sprintf("steps[%d]", i)
		n, err := parseStep(rawStep, path)
		if err != nil {
			return nil, nil, err
		}
		if prev, dup := byID[n.step.ID]; dup {
			return nil, nil, &ontology.ValidationError{
				Kind:   ontology.KindStructural,
				Path:   path + ".step_id",
				Value:  n.step.ID,
				Reason: fmt.Sprintf("step id already used at steps[%d]", prev),
			}
		}
		byID[n.step.ID] = i
		nodes = append(nodes, n)
	}
	return nodes, byID, nil
}

func parseStep(raw map[string]any, path string) (*node, error) {
	n := &node{parentID: normalize.String(raw, "parent_id")}
	n.step.ID = normalize.String(raw, "step_id")
	n.step.Name = normalize.String(raw, "name")

	start, err := normalize.RequireTime(Format, raw, "started_at", path+".started_at")
	if err != nil {
		return nil, err
	}
	n.step.StartTime = start
	if n.step.EndTime, err = normalize.Time(Format, raw, "ended_at", path+".ended_at"); err != nil {
		return nil, err
	}

	for i, entry := range normalize.Slice(raw, "messages") {
		rawMsg, _ := entry.(map[string]any)
		msg, err := parseMessage(rawMsg, fmt.Sprintf("%s.messages[%d]", path, i))
		if err != nil {
			return nil, err
		}
		n.step.Messages = append(n.step.Messages, msg)
	}
	for i, entry := range normalize.Slice(raw, "tool_calls") {
		rawCall, _ := entry.(map[string]any)
		call, err := parseToolCall(rawCall, fmt.Sprintf("%s.tool_calls[%d]", path, i))
		if err != nil {
			return nil, err
		}
		n.step.ToolCalls = append(n.step.ToolCalls, call)
	}
	if err := parseLayers(&n.step, raw, path); err != nil {
		return nil, err
	}
	return n, nil
}

func parseMessage(raw map[string]any, path string) (ontology.Message, error) {
	msg := ontology.Message{
		ID:      normalize.String(raw, "id"),
		Role:    ontology.Role(normalize.String(raw, "role")),
		Content: normalize.String(raw, "content"),
	}
	ts, err := normalize.Time(Format, raw, "timestamp", path+".timestamp")
	if err != nil {
		return ontology.Message{}, err
	}
	msg.Timestamp = ts
	return msg, nil
}

func parseToolCall(raw map[string]any, path string) (ontology.ToolCall, error) {
	call := ontology.ToolCall{
		ID:     normalize.String(raw, "id"),
		Name:   normalize.String(raw, "name"),
		Input:  normalize.Map(raw, "input"),
		Output: normalize.Map(raw, "output"),
	}
	var err error
	if call.StartTime, err = normalize.Time(Format, raw, "invoked_at", path+".invoked_at"); err != nil {
		return ontology.ToolCall{}, err
	}
	if call.EndTime, err = normalize.Time(Format, raw, "completed_at", path+".completed_at"); err != nil {
		return ontology.ToolCall{}, err
	}
	return call, nil
}

// attachDetached folds the optional top-level messages and tool_calls
// arrays into their owning steps. A record naming an unknown step id
// is a dangling reference and fails the document.
func attachDetached(doc map[string]any, nodes []*node, byID map[string]int) error {
	for i, entry := range normalize.Slice(doc, "messages") {
		raw, _ := entry.(map[string]any)
		path := fmt.Sprintf("messages[%d]", i)
		idx, err := resolveStep(raw, byID, path)
		if err != nil {
			return err
		}
		msg, err := parseMessage(raw, path)
		if err != nil {
			return err
		}
		nodes[idx].step.Messages = append(nodes[idx].step.Messages, msg)
	}
	for i, entry := range normalize.Slice(doc, "tool_calls") {
		raw, _ := entry.(map[string]any)
		path := fmt.Sprintf("tool_calls[%d]", i)
		idx, err := resolveStep(raw, byID, path)
		if err != nil {
			return err
		}
		call, err := parseToolCall(raw, path)
		if err != nil {
			return err
		}
		nodes[idx].step.ToolCalls = append(nodes[idx].step.ToolCalls, call)
	}
	return nil
}

func resolveStep(raw map[string]any, byID map[string]int, path string) (int, error) {
	stepID := normalize.String(raw, "step_id")
	idx, ok := byID[stepID]
	if !ok {
		return 0, &normalize.NormalizationError{
			Format: Format,
			Kind:   normalize.KindDanglingReference,
			Path:   path + ".step_id",
			Value:  stepID,
			Reason: "no step with this id in the document",
		}
	}
	return idx, nil
}

// checkParents rejects unknown parent ids and parent chains that loop
// back on themselves. Every step's chain is walked with a visited set,
// so a cycle is reported rather than silently truncating the tree.
func checkParents(nodes []*node, byID map[string]int) error {
	for i, n := range nodes {
		if n.parentID == "" {
			continue
		}
		visited := map[string]bool{n.step.ID: true}
		current := n.parentID
		path := fmt.Sprintf("steps[%d].parent_id", i)
		for current != "" {
			if visited[current] {
				return &normalize.NormalizationError{
					Format: Format,
					Kind:   normalize.KindCyclicReference,
					Path:   path,
					Value:  n.parentID,
					Reason: "parent references form a cycle through " + current,
				}
			}
			visited[current] = true
			idx, ok := byID[current]
			if !ok {
				return &normalize.NormalizationError{
					Format: Format,
					Kind:   normalize.KindDanglingReference,
					Path:   path,
					Value:  current,
					Reason: "no step with this id in the document",
				}
			}
			current = nodes[idx].parentID
		}
	}
	return nil
}

// link records child indices on each parent, keeping document order,
// and returns the root indices.
func link(nodes []*node, byID map[string]int) []int {
	var roots []int
	for i, n := range nodes {
		if n.parentID == "" {
			roots = append(roots, i)
			continue
		}
		parent := nodes[byID[n.parentID]]
		parent.children = append(parent.children, i)
	}
	return roots
}

// build materializes the owned step tree for node i. Parent chains are
// already cycle-checked, so recursion depth is bounded by the document.
func build(nodes []*node, i int) ontology.Step {
	step := nodes[i].step
	for _, child := range nodes[i].children {
		step.SubSteps = append(step.SubSteps, build(nodes, child))
	}
	return step
}

// parseLayers maps the optional per-layer payloads onto the step's
// snapshot attachments. A missing payload stays nil: not reported.
func parseLayers(step *ontology.Step, raw map[string]any, path string) error {
	if rawSnap := normalize.Map(raw, "perception"); rawSnap != nil {
		snap := &layers.PerceptionSnapshot{QueueSize: int(normalize.Float(rawSnap, "queue_size"))}
		ts, err := normalize.Time(Format, rawSnap, "timestamp", path+".perception.timestamp")
		if err != nil {
			return err
		}
		snap.Timestamp = ts
		for i, entry := range normalize.Slice(rawSnap, "observations") {
			rawObs, _ := entry.(map[string]any)
			obsPath := fmt.Sprintf("%s.perception.observations[%d]", path, i)
			obs := layers.Observation{
				ID:         normalize.String(rawObs, "id"),
				Source:     normalize.String(rawObs, "source"),
				Content:    rawObs["content"],
				Confidence: normalize.Float(rawObs, "confidence"),
			}
			if obs.Timestamp, err = normalize.Time(Format, rawObs, "timestamp", obsPath+".timestamp"); err != nil {
				return err
			}
			snap.Observations = append(snap.Observations, obs)
		}
		step.Perception = snap
	}

	if rawSnap := normalize.Map(raw, "cognition"); rawSnap != nil {
		snap := &layers.CognitionSnapshot{}
		ts, err := normalize.Time(Format, rawSnap, "timestamp", path+".cognition.timestamp")
		if err != nil {
			return err
		}
		snap.Timestamp = ts
		for i, entry := range normalize.Slice(rawSnap, "decisions") {
			rawDec, _ := entry.(map[string]any)
			dec := layers.Decision{
				ID:            normalize.String(rawDec, "id"),
				Strategy:      normalize.String(rawDec, "strategy"),
				Selected:      normalize.Map(rawDec, "selected"),
				Justification: normalize.String(rawDec, "justification"),
				Confidence:    normalize.Float(rawDec, "confidence"),
			}
			decPath := fmt.Sprintf("%s.cognition.decisions[%d]", path, i)
			if dec.Timestamp, err = normalize.Time(Format, rawDec, "timestamp", decPath+".timestamp"); err != nil {
				return err
			}
			snap.Decisions = append(snap.Decisions, dec)
		}
		for _, entry := range normalize.Slice(rawSnap, "assessments") {
			rawRisk, _ := entry.(map[string]any)
			snap.Assessments = append(snap.Assessments, parseRisk(rawRisk))
		}
		step.Cognition = snap
	}

	if rawSnap := normalize.Map(raw, "action"); rawSnap != nil {
		snap := &layers.ActionSnapshot{}
		ts, err := normalize.Time(Format, rawSnap, "timestamp", path+".action.timestamp")
		if err != nil {
			return err
		}
		snap.Timestamp = ts
		for i, entry := range normalize.Slice(rawSnap, "executions") {
			rawExec, _ := entry.(map[string]any)
			exec := layers.ActionExecution{
				ID:     normalize.String(rawExec, "id"),
				Name:   normalize.String(rawExec, "name"),
				Status: normalize.String(rawExec, "status"),
				Params: normalize.Map(rawExec, "params"),
				Result: normalize.Map(rawExec, "result"),
			}
			execPath := fmt.Sprintf("%s.action.executions[%d]", path, i)
			if exec.StartTime, err = normalize.Time(Format, rawExec, "started_at", execPath+".started_at"); err != nil {
				return err
			}
			if exec.EndTime, err = normalize.Time(Format, rawExec, "ended_at", execPath+".ended_at"); err != nil {
				return err
			}
			snap.Executions = append(snap.Executions, exec)
		}
		step.Action = snap
	}

	if rawSnap := normalize.Map(raw, "oversight"); rawSnap != nil {
		snap := &layers.OversightSnapshot{}
		ts, err := normalize.Time(Format, rawSnap, "timestamp", path+".oversight.timestamp")
		if err != nil {
			return err
		}
		snap.Timestamp = ts
		for i, entry := range normalize.Slice(rawSnap, "anomalies") {
			rawAnom, _ := entry.(map[string]any)
			anom := layers.Anomaly{
				ID:          normalize.String(rawAnom, "id"),
				Type:        normalize.String(rawAnom, "type"),
				Severity:    layers.RiskLevel(normalize.String(rawAnom, "severity")),
				Description: normalize.String(rawAnom, "description"),
				Confidence:  normalize.Float(rawAnom, "confidence"),
			}
			anomPath := fmt.Sprintf("%s.oversight.anomalies[%d]", path, i)
			if anom.DetectedAt, err = normalize.Time(Format, rawAnom, "detected_at", anomPath+".detected_at"); err != nil {
				return err
			}
			snap.Anomalies = append(snap.Anomalies, anom)
		}
		for _, entry := range normalize.Slice(rawSnap, "risks") {
			rawRisk, _ := entry.(map[string]any)
			snap.Risks = append(snap.Risks, parseRisk(rawRisk))
		}
		for _, entry := range normalize.Slice(rawSnap, "recommendations") {
			if rec, ok := entry.(string); ok {
				snap.Recommendations = append(snap.Recommendations, rec)
			}
		}
		step.Oversight = snap
	}
	return nil
}

func parseRisk(raw map[string]any) layers.RiskAssessment {
	return layers.RiskAssessment{
		ID:          normalize.String(raw, "id"),
		TargetID:    normalize.String(raw, "target_id"),
		Level:       layers.RiskLevel(normalize.String(raw, "level")),
		Probability: normalize.Float(raw, "probability"),
		Impact:      normalize.Float(raw, "impact"),
		Summary:     normalize.String(raw, "summary"),
	}
}
