package config

import (
	"os"
	"strings"
)

const (
	EnvEventsRedisURL     = "LOADEXTRACT_REDIS_URL"
	EnvEventsRedisStream  = "LOADEXTRACT_REDIS_STREAM"
	EnvEventsKafkaBrokers = "LOADEXTRACT_KAFKA_BROKERS"
	EnvEventsKafkaTopic   = "LOADEXTRACT_KAFKA_TOPIC"
)

// EventsConfig configures optional fan-out of extraction events.
// An empty RedisURL or KafkaBrokers disables that publisher.
type EventsConfig struct {
	RedisURL     string   `toml:"redis_url"`
	RedisStream  string   `toml:"redis_stream"`
	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`
}

// RedisEnabled reports whether a Redis stream publisher is configured.
func (c *EventsConfig) RedisEnabled() bool {
	return c.RedisURL != ""
}

// KafkaEnabled reports whether a Kafka publisher is configured.
func (c *EventsConfig) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Finalize applies defaults and environment variable overrides.
func (c *EventsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *EventsConfig) Merge(overlay *EventsConfig) {
	if overlay.RedisURL != "" {
		c.RedisURL = overlay.RedisURL
	}
	if overlay.RedisStream != "" {
		c.RedisStream = overlay.RedisStream
	}
	if len(overlay.KafkaBrokers) > 0 {
		c.KafkaBrokers = overlay.KafkaBrokers
	}
	if overlay.KafkaTopic != "" {
		c.KafkaTopic = overlay.KafkaTopic
	}
}

func (c *EventsConfig) loadDefaults() {
	if c.RedisStream == "" {
		c.RedisStream = "loadextract:events"
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "loadextract.events"
	}
}

func (c *EventsConfig) loadEnv() {
	if v := os.Getenv(EnvEventsRedisURL); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv(EnvEventsRedisStream); v != "" {
		c.RedisStream = v
	}
	if v := os.Getenv(EnvEventsKafkaBrokers); v != "" {
		var brokers []string
		for b := range strings.SplitSeq(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.KafkaBrokers = brokers
	}
	if v := os.Getenv(EnvEventsKafkaTopic); v != "" {
		c.KafkaTopic = v
	}
}
