package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Publisher delivers recorded events to an external stream. Delivery is best
// effort: a publish failure is logged and never fails the transition.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// StreamClient is the subset of *redis.Client used by the Redis publisher.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used by the Kafka publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// streamMaxLen bounds the Redis stream with approximate trimming.
const streamMaxLen = 100000

type redisPublisher struct {
	client StreamClient
	stream string
}

// NewRedisPublisher appends events to a Redis stream.
func NewRedisPublisher(client StreamClient, stream string) Publisher {
	return &redisPublisher{client: client, stream: stream}
}

// DialRedis parses url, connects, and verifies the connection with PING.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (p *redisPublisher) Publish(ctx context.Context, e Event) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"id":         e.ID.String(),
			"documentId": e.DocumentID.String(),
			"tenantId":   e.TenantID.String(),
			"type":       string(e.Type),
			"message":    e.Message,
			"timestamp":  e.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

type kafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher writes events as JSON messages keyed by document id.
func NewKafkaPublisher(writer MessageWriter) Publisher {
	return &kafkaPublisher{writer: writer}
}

// NewKafkaWriter creates a writer for topic on the given brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.DocumentID.String()),
		Value: value,
		Time:  e.CreatedAt,
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type fanout []Publisher

// Fanout combines publishers. Nil entries are dropped; with none left it returns nil.
func Fanout(publishers ...Publisher) Publisher {
	var f fanout
	for _, p := range publishers {
		if p != nil {
			f = append(f, p)
		}
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func publish(ctx context.Context, p Publisher, e Event, logger *slog.Logger) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn("event publish failed", "document_id", e.DocumentID, "type", e.Type, "error", err)
	}
}
