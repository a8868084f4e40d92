package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/agentlog/ontology-go/normalize"
	"github.com/agentlog/ontology-go/ontology"
	"github.com/agentlog/ontology-go/query"
	"github.com/agentlog/ontology-go/store"
	redisstore "github.com/agentlog/ontology-go/store/redis"
	sqlitestore "github.com/agentlog/ontology-go/store/sqlite"
	"github.com/agentlog/ontology-go/traceio"
)

const defaultArchivePath = "./.agentlog/runs.db"

func runNormalize(_ context.Context, logger *zap.Logger, registry *normalize.Registry, args []string) {
	opts, positional := parseArgs(args)
	opts = applyConfig(logger, opts)
	if len(positional) != 1 {
		logger.Fatal("normalize expects exactly one trace file")
	}
	if opts.format == "" {
		logger.Fatal("normalize requires --format (or defaultFormat in config)", zap.Strings("available", registry.Formats()))
	}

	doc, err := traceio.ReadDocument(positional[0])
	if err != nil {
		logger.Fatal("failed to read trace", zap.Error(err))
	}
	run, err := registry.Normalize(opts.format, doc)
	if err != nil {
		logger.Fatal("normalization failed", zap.String("format", opts.format), zap.Error(err))
	}

	if opts.out != "" {
		if err := traceio.WriteRun(opts.out, run); err != nil {
			logger.Fatal("failed to write run", zap.Error(err))
		}
		logger.Info("run written",
			zap.String("run_id", run.ID),
			zap.String("path", opts.out),
			zap.Int("steps", query.Counts(run)[query.MetricSteps]))
		return
	}
	data, err := ontology.EncodeRun(run)
	if err != nil {
		logger.Fatal("failed to encode run", zap.Error(err))
	}
	fmt.Println(string(data))
}

func runTimeline(logger *zap.Logger, args []string) {
	run := loadRunArg(logger, args, "timeline")
	for _, event := range query.Timeline(run) {
		fmt.Printf("%s\t%s\t%s\t%s\n",
			event.Timestamp.Format(time.RFC3339Nano), event.Kind, event.StepID, event.Summary)
	}
}

func runMetrics(logger *zap.Logger, args []string) {
	run := loadRunArg(logger, args, "metrics")
	counts := query.Counts(run)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s\t%d\n", name, counts[name])
	}
}

func runFlagged(logger *zap.Logger, args []string) {
	run := loadRunArg(logger, args, "flagged")
	encoder := json.NewEncoder(os.Stdout)
	for _, entity := range query.Flagged(run) {
		if err := encoder.Encode(entity); err != nil {
			logger.Fatal("failed to encode entity", zap.Error(err))
		}
	}
}

func runArchive(ctx context.Context, logger *zap.Logger, args []string) {
	opts, positional := parseArgs(args)
	opts = applyConfig(logger, opts)
	if len(positional) == 0 {
		logger.Fatal("archive expects one or more run files")
	}

	archive := openArchive(logger, opts)
	defer func() { _ = archive.Close() }()

	for _, path := range positional {
		run, err := traceio.ReadRun(path)
		if err != nil {
			logger.Fatal("failed to load run", zap.String("path", path), zap.Error(err))
		}
		if err := archive.SaveRun(ctx, run); err != nil {
			logger.Fatal("failed to archive run", zap.String("run_id", run.ID), zap.Error(err))
		}
		logger.Info("run archived", zap.String("run_id", run.ID), zap.String("path", path))
	}
}

func runList(ctx context.Context, logger *zap.Logger, args []string) {
	opts, positional := parseArgs(args)
	opts = applyConfig(logger, opts)
	if len(positional) != 0 {
		logger.Fatal("runs takes no positional arguments")
	}

	archive := openArchive(logger, opts)
	defer func() { _ = archive.Close() }()

	summaries, err := archive.ListRuns(ctx, store.ListQuery{Limit: opts.limit, Offset: opts.offset})
	if err != nil {
		logger.Fatal("failed to list runs", zap.Error(err))
	}
	for _, summary := range summaries {
		state := "running"
		if summary.Complete {
			state = "complete"
		}
		fmt.Printf("%s\t%s\t%s\t%d steps\t%s\n",
			summary.ID, summary.Name, summary.StartTime.Format(time.RFC3339), summary.StepCount, state)
	}
}

func loadRunArg(logger *zap.Logger, args []string, command string) *ontology.Run {
	_, positional := parseArgs(args)
	if len(positional) != 1 {
		logger.Fatal(command + " expects exactly one run file")
	}
	run, err := traceio.ReadRun(positional[0])
	if err != nil {
		logger.Fatal("failed to load run", zap.Error(err))
	}
	return run
}

func openArchive(logger *zap.Logger, opts cliOptions) store.Store {
	if opts.redisAddr != "" {
		archive, err := redisstore.New(opts.redisAddr)
		if err != nil {
			logger.Fatal("failed to open redis archive", zap.String("addr", opts.redisAddr), zap.Error(err))
		}
		return archive
	}
	path := opts.archive
	if path == "" {
		path = defaultArchivePath
	}
	archive, err := sqlitestore.New(path)
	if err != nil {
		logger.Fatal("failed to open sqlite archive", zap.String("path", path), zap.Error(err))
	}
	return archive
}
