// Package normalize converts raw, loosely-structured agent-trace
// documents into validated ontology runs.
//
// A connector is a pure Func from one untyped JSON-decoded document to
// one *ontology.Run; it either returns a fully-populated run or fails
// with a *NormalizationError, never a partial result. Connectors live
// in sub-packages (one per source format) and are dispatched through
// an explicit Registry built at process start — there is no implicit
// global registration. Supporting a new source format means adding a
// connector function; the ontology and query packages never change for
// it.
package normalize

import (
	"fmt"
	"sort"

	"github.com/agentlog/ontology-go/ontology"
)

// Func converts one raw trace document into a validated run.
type Func func(doc map[string]any) (*ontology.Run, error)

// Registry maps source format identifiers to their connectors. It is
// populated once and read-only afterwards, so it is safe for
// concurrent use.
type Registry struct {
	byFormat map[string]Func
}

// NewRegistry builds an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{byFormat: make(map[string]Func)}
}

// Register binds a connector to a format identifier. Rebinding an
// already-registered format is a wiring mistake and fails.
func (r *Registry) Register(format string, fn Func) error {
	if format == "" {
		return fmt.Errorf("format identifier is required")
	}
	if fn == nil {
		return fmt.Errorf("connector for format %q is nil", format)
	}
	if _, exists := r.byFormat[format]; exists {
		return fmt.Errorf("format %q is already registered", format)
	}
	r.byFormat[format] = fn
	return nil
}

// Normalize dispatches the document to the connector registered for
// format.
func (r *Registry) Normalize(format string, doc map[string]any) (*ontology.Run, error) {
	fn, ok := r.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("no connector registered for format %q (have %v)", format, r.Formats())
	}
	return fn(doc)
}

// Formats returns the registered format identifiers, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for format := range r.byFormat {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}
