// Package runtimeconfig loads the CLI's settings file.
package runtimeconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

type Config struct {
	// ArchivePath is the sqlite archive database location.
	ArchivePath string `json:"archivePath" yaml:"archivePath"`
	// RedisAddr switches the archive to Redis when set.
	RedisAddr string `json:"redisAddr" yaml:"redisAddr"`
	// DefaultFormat is used when normalize is called without --format.
	DefaultFormat string `json:"defaultFormat" yaml:"defaultFormat"`
}

// Load reads a JSON or YAML config file, chosen by extension.
func Load(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, fmt.Errorf("config path is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve config path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %q: %w", absPath, err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode config file %q as YAML: %w", absPath, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode config file %q as JSON: %w", absPath, err)
		}
	}
	cfg.ArchivePath = strings.TrimSpace(cfg.ArchivePath)
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)
	cfg.DefaultFormat = strings.TrimSpace(cfg.DefaultFormat)
	return cfg, nil
}
