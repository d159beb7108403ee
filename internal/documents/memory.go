package documents

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/pkg/pagination"
)

// Memory is an in-process document store honouring the same claim contract
// as the Postgres repository. It backs tests and single-process runs.
type Memory struct {
	mu         sync.Mutex
	docs       map[uuid.UUID]*Document
	now        func() time.Time
	staleAfter time.Duration
	logger     *slog.Logger
	pagination pagination.Config
}

// NewMemory creates an empty store. A nil now uses time.Now.
func NewMemory(staleAfter time.Duration, now func() time.Time, logger *slog.Logger) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		docs:       make(map[uuid.UUID]*Document),
		now:        now,
		staleAfter: staleAfter,
		logger:     logger.With("system", "documents"),
		pagination: pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	}
}

// Insert enqueues d. Zero ID, status, and timestamps are filled in.
func (m *Memory) Insert(d Document) Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusUploaded
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = m.now()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.UploadedAt
	}
	stored := d
	m.docs[d.ID] = &stored
	return d
}

func (m *Memory) Handler() *Handler {
	return NewHandler(m, m.logger, m.pagination)
}

func (m *Memory) ClaimBatch(ctx context.Context, limit int) ([]Claim, error) {
	m.mu.Lock()
	candidates := make([]Document, 0)
	for _, d := range m.docs {
		if m.claimable(d, d.Status) {
			candidates = append(candidates, *d)
		}
	}
	m.mu.Unlock()

	slices.SortFunc(candidates, func(a, b Document) int {
		if c := a.UploadedAt.Compare(b.UploadedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	claims := make([]Claim, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return claims, err
		}
		d, ok := m.claim(c.ID, c.Status)
		if !ok {
			continue
		}
		claims = append(claims, Claim{Document: d, Reclaimed: c.Status == StatusExtracting})
	}
	return claims, nil
}

// claim performs the conditional update: it succeeds only if the document
// still has status and still satisfies the claim predicate.
func (m *Memory) claim(id uuid.UUID, status string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok || d.Status != status || !m.claimable(d, status) {
		return Document{}, false
	}
	d.Status = StatusExtracting
	d.UpdatedAt = m.now()
	return *d, true
}

func (m *Memory) claimable(d *Document, status string) bool {
	switch status {
	case StatusUploaded:
		return true
	case StatusExtracting:
		return d.UpdatedAt.Before(m.now().Add(-m.staleAfter))
	}
	return false
}

func (m *Memory) Complete(ctx context.Context, claim *Claim, result Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.held(claim)
	if err != nil {
		return err
	}
	d.Status = result.Status
	if d.Fingerprint == nil {
		d.Fingerprint = result.Fingerprint
	}
	text := result.ExtractedText
	d.ExtractedText = &text
	d.ExtractedJSON = result.Metadata
	d.ExtractedDraft = result.ExtractedDraft
	d.NormalizedDraft = result.NormalizedDraft
	d.ErrorMessage = result.ErrorMessage
	d.UpdatedAt = m.now()
	return nil
}

func (m *Memory) Fail(ctx context.Context, claim *Claim, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.held(claim)
	if err != nil {
		return err
	}
	d.Status = StatusFailed
	d.ErrorMessage = &message
	d.UpdatedAt = m.now()
	return nil
}

func (m *Memory) held(claim *Claim) (*Document, error) {
	d, ok := m.docs[claim.ID]
	if !ok || d.Status != StatusExtracting || !d.UpdatedAt.Equal(claim.UpdatedAt) {
		return nil, ErrNotClaimed
	}
	return d, nil
}

func (m *Memory) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(m.pagination)

	m.mu.Lock()
	var matched []Document
	for _, d := range m.docs {
		if filters.Match(d) {
			matched = append(matched, *d)
		}
	}
	m.mu.Unlock()

	slices.SortFunc(matched, func(a, b Document) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})

	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(matched[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func (m *Memory) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *d
	return &out, nil
}

func (m *Memory) Retry(ctx context.Context, id uuid.UUID) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if d.Status != StatusFailed && d.Status != StatusNeedsReview {
		return nil, ErrInvalidTransition
	}
	d.Status = StatusUploaded
	d.ErrorMessage = nil
	d.UpdatedAt = m.now()
	out := *d
	return &out, nil
}
