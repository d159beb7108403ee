// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies (logging, database, storage, event publishing)
// that domain systems and the extraction pipeline require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/internal/events"
	"github.com/JaimeStill/loadextract/pkg/database"
	"github.com/JaimeStill/loadextract/pkg/lifecycle"
	"github.com/JaimeStill/loadextract/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	// Publisher fans extract events out to Redis and Kafka. Nil when neither is configured.
	Publisher events.Publisher
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	publisher, err := newPublisher(lc.Context(), &cfg.Events, logger)
	if err != nil {
		return nil, fmt.Errorf("events init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Publisher: publisher,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}

	if i.Publisher != nil {
		i.Lifecycle.OnShutdown(func() {
			<-i.Lifecycle.Context().Done()
			if err := i.Publisher.Close(); err != nil {
				i.Logger.Error("event publisher close failed", "error", err)
			}
		})
	}
	return nil
}

func newPublisher(ctx context.Context, cfg *config.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	var publishers []events.Publisher

	if cfg.RedisEnabled() {
		client, err := events.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("publishing events to redis", "stream", cfg.RedisStream)
		publishers = append(publishers, events.NewRedisPublisher(client, cfg.RedisStream))
	}

	if cfg.KafkaEnabled() {
		logger.Info("publishing events to kafka", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
		publishers = append(publishers, events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)))
	}

	return events.Fanout(publishers...), nil
}
