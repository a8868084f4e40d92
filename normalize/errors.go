package normalize

import "fmt"

// Kind classifies why a document could not be normalized.
type Kind string

const (
	// KindBadShape marks a document whose top-level structure is not
	// recognizable as the connector's source format.
	KindBadShape Kind = "document_shape"
	// KindBadTimestamp marks a timestamp string that does not parse.
	KindBadTimestamp Kind = "timestamp"
	// KindDanglingReference marks an entity referring to a step id not
	// present in the document.
	KindDanglingReference Kind = "dangling_reference"
	// KindCyclicReference marks parent references forming a cycle.
	KindCyclicReference Kind = "cyclic_reference"
)

// NormalizationError reports an unconvertible document. Path locates
// the offending field in the raw document and Value carries the raw
// offending value so callers can diagnose without re-parsing the
// source. Errors are terminal: no partial run accompanies them.
type NormalizationError struct {
	Format string
	Kind   Kind
	Path   string
	Value  any
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("normalize %s: %s at %s (%v): %s", e.Format, e.Kind, e.Path, e.Value, e.Reason)
	}
	return fmt.Sprintf("normalize %s: %s at %s: %s", e.Format, e.Kind, e.Path, e.Reason)
}
