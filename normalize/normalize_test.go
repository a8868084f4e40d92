package normalize

import (
	"testing"
	"time"

	"github.com/agentlog/ontology-go/ontology"
)

func stubConnector(id string) Func {
	return func(doc map[string]any) (*ontology.Run, error) {
		return ontology.NewRun(id, "stub", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)), nil
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register("fmt-a", stubConnector("from-a")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("fmt-b", stubConnector("from-b")); err != nil {
		t.Fatalf("register: %v", err)
	}

	run, err := registry.Normalize("fmt-b", map[string]any{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if run.ID != "from-b" {
		t.Fatalf("dispatched to wrong connector: %q", run.ID)
	}

	formats := registry.Formats()
	if len(formats) != 2 || formats[0] != "fmt-a" || formats[1] != "fmt-b" {
		t.Fatalf("unexpected formats: %v", formats)
	}
}

func TestRegistry_RejectsRebindAndUnknown(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register("fmt-a", stubConnector("x")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("fmt-a", stubConnector("y")); err == nil {
		t.Fatalf("expected rebind to fail")
	}
	if err := registry.Register("", stubConnector("z")); err == nil {
		t.Fatalf("expected empty format to fail")
	}
	if _, err := registry.Normalize("unknown", map[string]any{}); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestTime_LayoutsAndAbsence(t *testing.T) {
	for _, raw := range []string{
		"2024-05-01T10:00:00Z",
		"2024-05-01T10:00:00.123456789Z",
		"2024-05-01T10:00:00+02:00",
		"2024-05-01T10:00:00",
		"2024-05-01 10:00:00",
	} {
		got, err := Time("test", map[string]any{"ts": raw}, "ts", "ts")
		if err != nil {
			t.Fatalf("layout %q: %v", raw, err)
		}
		if got == nil || got.Location() != time.UTC {
			t.Fatalf("layout %q: expected UTC instant, got %v", raw, got)
		}
	}

	got, err := Time("test", map[string]any{}, "ts", "ts")
	if err != nil || got != nil {
		t.Fatalf("absent timestamp must be nil, never a sentinel: %v, %v", got, err)
	}
	got, err = Time("test", map[string]any{"ts": nil}, "ts", "ts")
	if err != nil || got != nil {
		t.Fatalf("null timestamp must be nil: %v, %v", got, err)
	}
}

func TestTime_Unparseable(t *testing.T) {
	for _, raw := range []any{"yesterday", 12345.0} {
		_, err := Time("test", map[string]any{"ts": raw}, "ts", "steps[0].ts")
		nerr, ok := err.(*NormalizationError)
		if !ok {
			t.Fatalf("value %v: expected *NormalizationError, got %v", raw, err)
		}
		if nerr.Kind != KindBadTimestamp || nerr.Path != "steps[0].ts" {
			t.Fatalf("value %v: unexpected error %v", raw, nerr)
		}
	}
}
