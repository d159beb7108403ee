// Package events records extraction stage transitions. Each transition is
// written once as an extract event and once as an audit log entry, and is
// optionally fanned out to Redis and Kafka for observability tooling.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies an extraction stage transition.
type Type string

const (
	ExtractStart     Type = "EXTRACT_START"
	ExtractRetry     Type = "EXTRACT_RETRY"
	ExtractOCRStart  Type = "EXTRACT_OCR_START"
	ExtractOCRDone   Type = "EXTRACT_OCR_DONE"
	ExtractOCRFailed Type = "EXTRACT_OCR_FAILED"
	ExtractReady     Type = "EXTRACT_READY"
	ExtractReview    Type = "EXTRACT_REVIEW"
	ExtractFailed    Type = "EXTRACT_FAILED"
)

// Event is an append-only record of one transition for one document.
type Event struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	TenantID   uuid.UUID `json:"tenantId"`
	ActorID    uuid.UUID `json:"actorId"`
	Type       Type      `json:"type"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// stamp fills the id and timestamp of a new event.
func (e Event) stamp(now time.Time) Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return e
}
