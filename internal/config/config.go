// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig; loader failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address for `serve`, e.g. ":8080".
	Addr string `koanf:"addr"`

	// InputDir is scanned for the submission artifact by `run`.
	InputDir string `koanf:"input_dir"`

	// OutputDir receives results.json from `run`.
	OutputDir string `koanf:"output_dir"`

	// DLPID identifies the data liquidity pool the proof is produced for.
	DLPID int `koanf:"dlp_id"`

	// MinFollowers is the follower count below which the follower-count check is zero.
	MinFollowers int `koanf:"min_followers"`

	// TargetFollowers saturates the follower-count check at 1.0.
	TargetFollowers int `koanf:"target_followers"`

	// MaxHandleLength and MaxDescriptionLength bound text fields.
	MaxHandleLength      int `koanf:"max_handle_length"`
	MaxDescriptionLength int `koanf:"max_description_length"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		InputDir:             "/input",
		OutputDir:            "/output",
		DLPID:                0,
		MinFollowers:         5,
		TargetFollowers:      500,
		MaxHandleLength:      50,
		MaxDescriptionLength: 280,
		WorkerCount:          runtime.NumCPU(),
		QueueSize:            10_000,
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MinFollowers <= 0:
		return fmt.Errorf("%w: min_followers must be positive", ErrInvalidConfig)
	case c.TargetFollowers <= 0:
		return fmt.Errorf("%w: target_followers must be positive", ErrInvalidConfig)
	case c.MinFollowers > c.TargetFollowers:
		return fmt.Errorf("%w: min_followers (%d) exceeds target_followers (%d)", ErrInvalidConfig, c.MinFollowers, c.TargetFollowers)
	case c.MaxHandleLength <= 0 || c.MaxDescriptionLength <= 0:
		return fmt.Errorf("%w: text length limits must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
