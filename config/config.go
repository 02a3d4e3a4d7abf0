// Package config loads the engine's YAML configuration: phase work budgets,
// partial-path storage location, log level, whether the filesystem
// watcher is enabled, and whether tracing is exported.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the top-level configuration for a stackgraphctl process.
type EngineConfig struct {
	MaxWorkPerPhase int           `yaml:"max_work_per_phase"`
	IndexWorkers    int           `yaml:"index_workers"`
	Storage         StorageConfig   `yaml:"storage"`
	Log             LogConfig       `yaml:"log"`
	Watch           WatchConfig     `yaml:"watch"`
	Telemetry       TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig configures the partial-path database.
type StorageConfig struct {
	// Path is the Badger data directory. Empty means the CLI's default
	// directory, .stackgraph/db.
	Path string `yaml:"path"`
}

// LogConfig configures the process-wide logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// WatchConfig configures the filesystem watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TelemetryConfig configures the OpenTelemetry tracer provider. When
// Enabled is false (the default), no provider is installed and
// telemetry.StartRun's spans are the inert no-op implementation.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is present.
func Default() EngineConfig {
	return EngineConfig{
		MaxWorkPerPhase: 256,
		IndexWorkers:    8,
		Storage:         StorageConfig{Path: ""},
		Log:             LogConfig{Level: "info"},
		Watch:           WatchConfig{Enabled: false},
		Telemetry:       TelemetryConfig{Enabled: false},
	}
}

// Load reads and validates an EngineConfig from a YAML file at path. A
// missing file is not an error: Load returns Default() unchanged.
func Load(path string) (EngineConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ErrInvalidWorkBudget is returned when MaxWorkPerPhase is not positive.
var ErrInvalidWorkBudget = errors.New("config: max_work_per_phase must be > 0")

// ErrInvalidIndexWorkers is returned when IndexWorkers is not positive.
var ErrInvalidIndexWorkers = errors.New("config: index_workers must be > 0")

// ErrInvalidLogLevel is returned for a log.level outside the known set.
var ErrInvalidLogLevel = errors.New("config: log.level must be one of debug, info, warn, error")

// Validate rejects configuration values the engine cannot act on.
func (c EngineConfig) Validate() error {
	if c.MaxWorkPerPhase <= 0 {
		return ErrInvalidWorkBudget
	}
	if c.IndexWorkers <= 0 {
		return ErrInvalidIndexWorkers
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}
