package examples

import (
	"context"

	"github.com/google/uuid"
)

// Source supplies the read-only example snapshot for one document.
type Source interface {
	// Recent returns up to limit of the tenant's examples, newest first.
	Recent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Example, error)
}

// System defines the public contract for learning example operations.
type System interface {
	Source

	Handler(maxBodySize int64) *Handler

	// Create stores a corrected draft and prunes the tenant corpus to the
	// configured retention size.
	Create(ctx context.Context, cmd CreateCommand) (*Example, error)
}
