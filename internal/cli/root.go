// Package cli wires the trace loader, connector registry, query layer,
// and run archive behind the agentlog command.
package cli

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/agentlog/ontology-go/normalize"
)

// Run dispatches one CLI invocation. The connector registry is built
// by the caller at process start and passed in explicitly.
func Run(ctx context.Context, registry *normalize.Registry, args []string) {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if len(args) < 1 {
		printUsage(registry)
		return
	}

	switch strings.TrimSpace(args[0]) {
	case "normalize":
		runNormalize(ctx, logger, registry, args[1:])
	case "timeline":
		runTimeline(logger, args[1:])
	case "metrics":
		runMetrics(logger, args[1:])
	case "flagged":
		runFlagged(logger, args[1:])
	case "archive":
		runArchive(ctx, logger, args[1:])
	case "runs":
		runList(ctx, logger, args[1:])
	case "help", "-h", "--help":
		printUsage(registry)
	default:
		logger.Error("unknown command", zap.String("command", args[0]))
		printUsage(registry)
	}
}
