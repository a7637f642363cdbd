// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig; load failures wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"time"
)

// Store drivers understood by the service.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log records.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the learner storage backend: sqlite or memory.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the SQLite database file used when StoreDriver is sqlite.
	StorePath string `koanf:"store_path"`

	// SessionTTLMinutes bounds how long an idle activity session is kept.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// QuizAdvanceMS is the delay between answer feedback and the next statement.
	QuizAdvanceMS int `koanf:"quiz_advance_ms"`

	// JournalQueueSize bounds the in-memory activity journal queue.
	JournalQueueSize int `koanf:"journal_queue_size"`

	// JournalWorkers sets the number of journal writers.
	JournalWorkers int `koanf:"journal_workers"`

	// DedupeSize bounds the journal idempotency window.
	DedupeSize int `koanf:"dedupe_size"`

	// SoundDefault is the initial state of each session's sound toggle.
	SoundDefault bool `koanf:"sound_default"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8080",
		StoreDriver:       StoreSQLite,
		StorePath:         "agrikit.db",
		SessionTTLMinutes: 120,
		QuizAdvanceMS:     2000,
		JournalQueueSize:  1024,
		JournalWorkers:    2,
		DedupeSize:        10_000,
		SoundDefault:      true,
	}
}

// SessionTTL returns the session idle timeout.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// QuizAdvance returns the quiz auto-advance delay.
func (c *Config) QuizAdvance() time.Duration {
	return time.Duration(c.QuizAdvanceMS) * time.Millisecond
}

// Validate checks cross-field constraints.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != StoreSQLite && c.StoreDriver != StoreMemory:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StoreSQLite && c.StorePath == "":
		return fmt.Errorf("%w: store_path must not be empty for sqlite", ErrInvalidConfig)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	case c.QuizAdvanceMS < 0:
		return fmt.Errorf("%w: quiz_advance_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
