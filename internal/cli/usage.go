package cli

import (
	"fmt"
	"strings"

	"github.com/agentlog/ontology-go/normalize"
)

func printUsage(registry *normalize.Registry) {
	fmt.Println("agentlog - normalize agent traces into the canonical run ontology")
	fmt.Println("Usage:")
	fmt.Println("  agentlog normalize --format=NAME [--out=run.json] <trace-file>")
	fmt.Println("  agentlog timeline <run-file>")
	fmt.Println("  agentlog metrics <run-file>")
	fmt.Println("  agentlog flagged <run-file>")
	fmt.Println("  agentlog archive [--archive=PATH | --redis=ADDR] <run-file>...")
	fmt.Println("  agentlog runs [--archive=PATH | --redis=ADDR] [--limit=N] [--offset=N]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --format=NAME     Source trace format")
	fmt.Println("  --out=FILE        Write the normalized run to FILE instead of stdout")
	fmt.Println("  --config=FILE     JSON or YAML settings file")
	fmt.Println("  --archive=PATH    SQLite archive database (default ./.agentlog/runs.db)")
	fmt.Println("  --redis=ADDR      Use a Redis archive instead of SQLite")
	fmt.Println()
	fmt.Printf("  available formats: %s\n", strings.Join(registry.Formats(), ", "))
}
