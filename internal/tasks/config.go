package tasks

import (
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore/internal/config"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// MaxRetries is the maximum number of attempts per task. Default: 3
	MaxRetries int

	// RetryDelay is the backoff duration between attempts. Default: 1m
	RetryDelay time.Duration

	// TaskTimeout bounds a single attempt. Default: 1m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long to keep completed tasks. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       1 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// FromAppConfig converts the application task settings.
func FromAppConfig(cfg config.Tasks) Config {
	defaults := DefaultConfig()
	out := Config{
		Workers:           cfg.Workers,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		TaskTimeout:       cfg.TaskTimeout,
		ReleaseAfter:      cfg.ReleaseAfter,
		CleanupInterval:   cfg.CleanupInterval,
		RetentionDuration: cfg.RetentionDuration,
	}
	if out.Workers <= 0 {
		out.Workers = defaults.Workers
	}
	if out.MaxRetries <= 0 {
		out.MaxRetries = defaults.MaxRetries
	}
	if out.TaskTimeout <= 0 {
		out.TaskTimeout = defaults.TaskTimeout
	}
	if out.ReleaseAfter <= 0 {
		out.ReleaseAfter = defaults.ReleaseAfter
	}
	if out.CleanupInterval <= 0 {
		out.CleanupInterval = defaults.CleanupInterval
	}
	if out.RetentionDuration <= 0 {
		out.RetentionDuration = defaults.RetentionDuration
	}
	return out
}

// Task types report their queue settings through a value-receiver Config()
// method, so the retry policy is read from process-wide defaults that
// NewClient installs.
var (
	queueMu       sync.RWMutex
	queueDefaults = DefaultConfig()
)

func setQueueDefaults(cfg Config) {
	queueMu.Lock()
	queueDefaults = cfg
	queueMu.Unlock()
}

func queueConfig(name string) backlite.QueueConfig {
	queueMu.RLock()
	cfg := queueDefaults
	queueMu.RUnlock()

	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: cfg.MaxRetries,
		Backoff:     cfg.RetryDelay,
		Timeout:     cfg.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   cfg.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}
