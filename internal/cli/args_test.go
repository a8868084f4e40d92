package cli

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestParseArgs(t *testing.T) {
	opts, positional := parseArgs([]string{
		"normalize", "trace.json",
		"--format=agent-traces",
		"--out=run.json",
		"--limit=25",
	})
	if opts.format != "agent-traces" || opts.out != "run.json" || opts.limit != 25 {
		t.Fatalf("flags not parsed: %+v", opts)
	}
	if len(positional) != 2 || positional[0] != "normalize" || positional[1] != "trace.json" {
		t.Fatalf("positional args not preserved: %v", positional)
	}
}

func TestApplyConfig_FlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"archivePath": "/from/config.db", "defaultFormat": "openai-traces"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	opts := applyConfig(zap.NewNop(), cliOptions{config: path, format: "agent-traces"})
	if opts.format != "agent-traces" {
		t.Fatalf("explicit flag should win over config, got %q", opts.format)
	}
	if opts.archive != "/from/config.db" {
		t.Fatalf("config should fill unset options, got %q", opts.archive)
	}
}
