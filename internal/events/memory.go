package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory records events in process. It backs tests and single-process runs.
type Memory struct {
	mu        sync.Mutex
	events    []Event
	audit     int
	logger    *slog.Logger
	publisher Publisher
}

// NewMemory creates an empty recorder with an optional publisher.
func NewMemory(logger *slog.Logger, publisher Publisher) *Memory {
	return &Memory{
		logger:    logger.With("system", "events"),
		publisher: publisher,
	}
}

func (m *Memory) Handler() *Handler {
	return NewHandler(m, m.logger)
}

func (m *Memory) Record(ctx context.Context, e Event) error {
	e = e.stamp(time.Now().UTC())

	m.mu.Lock()
	m.events = append(m.events, e)
	m.audit++
	m.mu.Unlock()

	publish(ctx, m.publisher, e, m.logger)
	return nil
}

func (m *Memory) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Event
	for _, e := range m.events {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Types returns the recorded event types for a document in order.
func (m *Memory) Types(documentID uuid.UUID) []Type {
	events, _ := m.ListByDocument(context.Background(), documentID)
	types := make([]Type, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

// AuditCount returns the number of audit entries written.
func (m *Memory) AuditCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audit
}
