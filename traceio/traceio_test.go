package traceio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentlog/ontology-go/ontology"
)

func TestReadDocument_StripsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonc")
	content := `{
  // exported 2024-05-01
  "trace_id": "t-1",
  "started_at": "2024-05-01T10:00:00Z",
  "steps": [],
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write trace file: %v", err)
	}

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	if doc["trace_id"] != "t-1" {
		t.Fatalf("document not decoded: %+v", doc)
	}
}

func TestReadDocument_Errors(t *testing.T) {
	if _, err := ReadDocument(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := ReadDocument(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteAndReadRun(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	run := &ontology.Run{
		ID: "r1", Name: "round trip", StartTime: start,
		Steps: []ontology.Step{{ID: "s1", Name: "only", StartTime: start}},
	}

	// Parent directories are created on demand.
	path := filepath.Join(t.TempDir(), "out", "nested", "run.json")
	if err := WriteRun(path, run); err != nil {
		t.Fatalf("failed to write run: %v", err)
	}
	got, err := ReadRun(path)
	if err != nil {
		t.Fatalf("failed to read run back: %v", err)
	}
	if !got.Equal(run) {
		t.Fatalf("run does not round trip through disk: %+v", got)
	}
}

func TestWriteRun_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := WriteRun(path, &ontology.Run{Name: "no id"}); err == nil {
		t.Fatalf("expected invalid run to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("invalid run must not be written")
	}
}
