// Package config assembles crawler settings from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pevans/dailyarxiv/categories"
	"github.com/pevans/dailyarxiv/fetch"
)

// Environment variables read by Load.
const (
	EnvCategories = "CATEGORIES"
	EnvConfigPath = "DAILYARXIV_CONFIG"
	EnvMode       = "DAILYARXIV_MODE"
	EnvOutput     = "DAILYARXIV_OUTPUT"
	EnvArchiveDSN = "DAILYARXIV_ARCHIVE_DSN"
	EnvLogLevel   = "DAILYARXIV_LOG_LEVEL"
)

// Config holds every crawler setting.
type Config struct {
	// Comma-separated category list. Empty selects categories.DefaultCategory.
	Categories string
	// Priority overrides. Nil selects categories.DefaultPriorities.
	Priorities   map[string]int
	Mode         string
	Concurrency  int
	RateInterval time.Duration
	Timeout      time.Duration
	Output       OutputConfig
	Archive      ArchiveConfig
	Log          LogConfig
}

// OutputConfig selects where emitted papers go.
type OutputConfig struct {
	// JSON lines file. Empty or "-" writes to stdout.
	Path string
	// Optional directory store, one file per paper.
	Dir string
}

// ArchiveConfig locates the SQLite archive. An empty DSN disables it.
type ArchiveConfig struct {
	DSN string
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode:         "html",
		Concurrency:  1,
		RateInterval: fetch.DefaultInterval,
		Timeout:      fetch.DefaultTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads .env (if present), then the config file, then the environment.
// The file is DAILYARXIV_CONFIG or ~/.dailyarxiv/config.yaml; a missing file
// is not an error.
func Load() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	path := os.Getenv(EnvConfigPath)
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.ApplyFile(file); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	return cfg, nil
}

// ApplyFile overlays non-empty values from a config file. A nil file is a
// no-op.
func (c *Config) ApplyFile(file *FileConfig) error {
	if file == nil {
		return nil
	}

	if len(file.Categories) > 0 {
		c.Categories = strings.Join(file.Categories, ",")
	}
	if file.Priorities != nil {
		c.Priorities = file.Priorities
	}
	if file.Mode != "" {
		c.Mode = file.Mode
	}
	if file.Concurrency > 0 {
		c.Concurrency = file.Concurrency
	}
	if file.RateInterval != "" {
		d, err := time.ParseDuration(file.RateInterval)
		if err != nil {
			return fmt.Errorf("invalid rate_interval: %w", err)
		}
		c.RateInterval = d
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		c.Timeout = d
	}
	if file.Output.Path != "" {
		c.Output.Path = file.Output.Path
	}
	if file.Output.Dir != "" {
		c.Output.Dir = file.Output.Dir
	}
	if file.Archive.DSN != "" {
		c.Archive.DSN = file.Archive.DSN
	}
	if file.Log.Level != "" {
		c.Log.Level = file.Log.Level
	}
	if file.Log.Format != "" {
		c.Log.Format = file.Log.Format
	}

	return nil
}

// ApplyEnv overlays values from the environment. CATEGORIES is applied only
// when it is non-blank, so an empty variable does not hide the file's list.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvCategories)); v != "" {
		c.Categories = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv(EnvArchiveDSN); v != "" {
		c.Archive.DSN = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// CategorySet builds the target category set.
func (c *Config) CategorySet() categories.Set {
	if c.Priorities == nil {
		return categories.Parse(c.Categories)
	}
	return categories.ParseWithPriorities(c.Categories, c.Priorities)
}
