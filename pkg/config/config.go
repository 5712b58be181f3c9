// Package config loads the optional loom.yaml configuration that tunes the
// pipeline: frame budget, build parallelism and log verbosity.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config represents the optional loom.yaml configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

// PipelineConfig contains pipeline settings.
type PipelineConfig struct {
	// FrameBudget is the time allotted to one frame, e.g. "16ms".
	FrameBudget string `yaml:"frame_budget,omitempty"`
	// BuildWorkers bounds parallel builds of independent subtrees.
	BuildWorkers int `yaml:"build_workers,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	// Verbose includes stack traces in reported build errors.
	Verbose bool `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values with defaults applied.
type Resolved struct {
	FrameBudget  time.Duration
	BuildWorkers int
	LogLevel     zerolog.Level
	Verbose      bool
}

// LoadOptional reads loom.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "loom.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read loom.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse loom.yaml: %w", err)
	}

	return &cfg, nil
}

// Resolve loads loom.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		FrameBudget:  16 * time.Millisecond,
		BuildWorkers: 1,
		LogLevel:     zerolog.InfoLevel,
	}

	if cfg.Pipeline.FrameBudget != "" {
		budget, err := time.ParseDuration(cfg.Pipeline.FrameBudget)
		if err != nil {
			return nil, fmt.Errorf("invalid pipeline.frame_budget: %w", err)
		}
		if budget <= 0 {
			return nil, fmt.Errorf("pipeline.frame_budget must be positive, got %s", budget)
		}
		resolved.FrameBudget = budget
	}

	if cfg.Pipeline.BuildWorkers < 0 {
		return nil, fmt.Errorf("pipeline.build_workers must not be negative, got %d", cfg.Pipeline.BuildWorkers)
	}
	if cfg.Pipeline.BuildWorkers > 0 {
		resolved.BuildWorkers = cfg.Pipeline.BuildWorkers
	}

	if cfg.Log.Level != "" {
		level, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log.level: %w", err)
		}
		resolved.LogLevel = level
	}
	resolved.Verbose = cfg.Log.Verbose

	return resolved, nil
}
