package ontology

import "fmt"

// ValidationKind classifies why an entity failed validation.
type ValidationKind string

const (
	// KindMissingField marks a required field that was absent or empty.
	KindMissingField ValidationKind = "missing_field"
	// KindTypeMismatch marks a field whose value has the wrong type or
	// cannot be interpreted (e.g. an unparseable instant).
	KindTypeMismatch ValidationKind = "type_mismatch"
	// KindInvalidEnum marks a value outside its enumerated set.
	KindInvalidEnum ValidationKind = "invalid_enum"
	// KindStructural marks a violated structural invariant: duplicate
	// step ids, or an end time earlier than the matching start time.
	KindStructural ValidationKind = "structural_violation"
)

// ValidationError reports a malformed entity. Path locates the
// offending field within the run (e.g. "steps[0].messages[2].role")
// and Value carries the raw offending value when one exists.
type ValidationError struct {
	Kind   ValidationKind
	Path   string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("ontology: %s at %s (%v): %s", e.Kind, e.Path, e.Value, e.Reason)
	}
	return fmt.Sprintf("ontology: %s at %s: %s", e.Kind, e.Path, e.Reason)
}
