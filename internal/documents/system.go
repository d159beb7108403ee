package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/pkg/pagination"
)

// Queue is the claim contract consumed by the extraction poller.
// ClaimBatch selects up to limit UPLOADED or stale EXTRACTING documents,
// oldest first, and claims each with a conditional update. Documents another
// worker claimed first are skipped, not reported.
type Queue interface {
	ClaimBatch(ctx context.Context, limit int) ([]Claim, error)
	Complete(ctx context.Context, claim *Claim, result Result) error
	Fail(ctx context.Context, claim *Claim, message string) error
}

// System defines the public contract for document domain operations.
type System interface {
	Queue

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// Retry returns a FAILED or NEEDS_REVIEW document to UPLOADED.
	Retry(ctx context.Context, id uuid.UUID) (*Document, error)
}
