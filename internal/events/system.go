package events

import (
	"context"

	"github.com/google/uuid"
)

// Sink accepts stage transitions from the extraction pipeline.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

// System defines the public contract for event operations.
type System interface {
	Sink

	Handler() *Handler

	// ListByDocument returns a document's events in the order they were recorded.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Event, error)
}
