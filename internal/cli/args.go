package cli

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/agentlog/ontology-go/runtimeconfig"
)

type cliOptions struct {
	format    string
	out       string
	config    string
	archive   string
	redisAddr string
	limit     int
	offset    int
}

func parseArgs(args []string) (cliOptions, []string) {
	opts := cliOptions{}
	positional := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--format="):
			opts.format = strings.TrimSpace(strings.TrimPrefix(arg, "--format="))
		case strings.HasPrefix(arg, "--out="):
			opts.out = strings.TrimSpace(strings.TrimPrefix(arg, "--out="))
		case strings.HasPrefix(arg, "--config="):
			opts.config = strings.TrimSpace(strings.TrimPrefix(arg, "--config="))
		case strings.HasPrefix(arg, "--archive="):
			opts.archive = strings.TrimSpace(strings.TrimPrefix(arg, "--archive="))
		case strings.HasPrefix(arg, "--redis="):
			opts.redisAddr = strings.TrimSpace(strings.TrimPrefix(arg, "--redis="))
		case strings.HasPrefix(arg, "--limit="):
			opts.limit, _ = strconv.Atoi(strings.TrimPrefix(arg, "--limit="))
		case strings.HasPrefix(arg, "--offset="):
			opts.offset, _ = strconv.Atoi(strings.TrimPrefix(arg, "--offset="))
		default:
			positional = append(positional, arg)
		}
	}
	return opts, positional
}

// applyConfig overlays file settings under any explicit flags.
func applyConfig(logger *zap.Logger, opts cliOptions) cliOptions {
	if opts.config == "" {
		return opts
	}
	cfg, err := runtimeconfig.Load(opts.config)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", opts.config), zap.Error(err))
	}
	if opts.archive == "" {
		opts.archive = cfg.ArchivePath
	}
	if opts.redisAddr == "" {
		opts.redisAddr = cfg.RedisAddr
	}
	if opts.format == "" {
		opts.format = cfg.DefaultFormat
	}
	return opts
}
