package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvWorkerBatchSize    = "LOADEXTRACT_BATCH_SIZE"
	EnvWorkerPollInterval = "LOADEXTRACT_POLL_INTERVAL"
	EnvWorkerStaleMinutes = "LOADEXTRACT_STALE_MINUTES"
	EnvWorkerPollers      = "LOADEXTRACT_POLLERS"
)

// WorkerConfig controls the batch poller.
type WorkerConfig struct {
	BatchSize    int    `toml:"batch_size"`
	PollInterval string `toml:"poll_interval"`
	StaleMinutes int    `toml:"stale_minutes"`
	Pollers      int    `toml:"pollers"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *WorkerConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// StaleAfter returns the age after which an EXTRACTING claim may be taken over.
func (c *WorkerConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleMinutes) * time.Minute
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkerConfig) Merge(overlay *WorkerConfig) {
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.StaleMinutes != 0 {
		c.StaleMinutes = overlay.StaleMinutes
	}
	if overlay.Pollers != 0 {
		c.Pollers = overlay.Pollers
	}
}

func (c *WorkerConfig) loadDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 10
	}
	if c.PollInterval == "" {
		c.PollInterval = "5s"
	}
	if c.StaleMinutes == 0 {
		c.StaleMinutes = 30
	}
	if c.Pollers == 0 {
		c.Pollers = 1
	}
}

func (c *WorkerConfig) loadEnv() {
	if v := os.Getenv(EnvWorkerBatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv(EnvWorkerPollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvWorkerStaleMinutes); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StaleMinutes = n
		}
	}
	if v := os.Getenv(EnvWorkerPollers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pollers = n
		}
	}
}

func (c *WorkerConfig) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.StaleMinutes < 1 {
		return fmt.Errorf("stale_minutes must be positive")
	}
	if c.Pollers < 1 {
		return fmt.Errorf("pollers must be positive")
	}
	if d, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	return nil
}
