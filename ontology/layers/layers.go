// Package layers holds the extended ontology: optional per-step
// snapshots of the perception, cognition, action, and oversight
// concerns of an agent. A source opts in to a layer by attaching its
// snapshot; an absent snapshot means the layer was not reported.
package layers

import "time"

// RiskLevel grades the severity of an anomaly or risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Valid reports whether l is one of the enumerated levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Observation is one processed input the agent perceived.
type Observation struct {
	ID         string     `json:"id,omitempty"`
	Source     string     `json:"source,omitempty"`
	Content    any        `json:"content"`
	Confidence float64    `json:"confidence,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// Decision is one choice the agent committed to.
type Decision struct {
	ID            string         `json:"id,omitempty"`
	Strategy      string         `json:"strategy,omitempty"`
	Selected      map[string]any `json:"selected,omitempty"`
	Justification string         `json:"justification,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	Timestamp     *time.Time     `json:"timestamp,omitempty"`
}

// RiskAssessment grades the risk of a decision or plan.
type RiskAssessment struct {
	ID          string    `json:"id,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`
	Level       RiskLevel `json:"level"`
	Probability float64   `json:"probability,omitempty"`
	Impact      float64   `json:"impact,omitempty"`
	Summary     string    `json:"summary,omitempty"`
}

// ActionExecution records one action the agent carried out.
type ActionExecution struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Status    string         `json:"status,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
}

// Anomaly is a deviation flagged by the oversight layer.
type Anomaly struct {
	ID          string     `json:"id,omitempty"`
	Type        string     `json:"type,omitempty"`
	Severity    RiskLevel  `json:"severity"`
	Description string     `json:"description,omitempty"`
	Confidence  float64    `json:"confidence,omitempty"`
	DetectedAt  *time.Time `json:"detected_at,omitempty"`
}

// PerceptionSnapshot captures what the agent perceived at a step.
type PerceptionSnapshot struct {
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Observations []Observation `json:"observations,omitempty"`
	QueueSize    int           `json:"queue_size,omitempty"`
}

// CognitionSnapshot captures what the agent decided at a step.
type CognitionSnapshot struct {
	Timestamp   *time.Time       `json:"timestamp,omitempty"`
	Decisions   []Decision       `json:"decisions,omitempty"`
	Assessments []RiskAssessment `json:"assessments,omitempty"`
}

// ActionSnapshot captures what the agent executed at a step.
type ActionSnapshot struct {
	Timestamp  *time.Time        `json:"timestamp,omitempty"`
	Executions []ActionExecution `json:"executions,omitempty"`
}

// OversightSnapshot captures anomalies and risks flagged at a step.
type OversightSnapshot struct {
	Timestamp       *time.Time       `json:"timestamp,omitempty"`
	Anomalies       []Anomaly        `json:"anomalies,omitempty"`
	Risks           []RiskAssessment `json:"risks,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
}

// Flagged reports whether the snapshot carries any anomaly or risk.
func (s *OversightSnapshot) Flagged() bool {
	return s != nil && (len(s.Anomalies) > 0 || len(s.Risks) > 0)
}
