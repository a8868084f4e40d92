// Package traceio owns file I/O at the edges of the pipeline: reading
// raw trace documents for the normalizer and reading or writing runs
// in their canonical serialized form. The core packages never touch
// the filesystem.
package traceio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/agentlog/ontology-go/ontology"
)

// ReadDocument loads a raw trace file into the untyped document the
// normalizer consumes. Files may carry JSONC comments and trailing
// commas; they are stripped before decoding.
func ReadDocument(path string) (map[string]any, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("trace path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file %q: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode trace file %q: %w", path, err)
	}
	return doc, nil
}

// ReadRun loads a canonical run document from disk.
func ReadRun(path string) (*ontology.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file %q: %w", path, err)
	}
	run, err := ontology.DecodeRun(data)
	if err != nil {
		return nil, fmt.Errorf("run file %q: %w", path, err)
	}
	return run, nil
}

// WriteRun writes the run's canonical form to path, creating parent
// directories as needed.
func WriteRun(path string, run *ontology.Run) error {
	data, err := ontology.EncodeRun(run)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create run dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run file %q: %w", path, err)
	}
	return nil
}
