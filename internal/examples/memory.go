package examples

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process example store with the same retention rules as
// the Postgres repository.
type Memory struct {
	mu        sync.Mutex
	examples  []Example
	maxCorpus int
	now       func() time.Time
	logger    *slog.Logger
}

// NewMemory creates an empty store. A nil now uses time.Now.
func NewMemory(maxCorpus int, now func() time.Time, logger *slog.Logger) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		maxCorpus: maxCorpus,
		now:       now,
		logger:    logger.With("system", "examples"),
	}
}

// Add stores ex as-is, bypassing schema validation. CreatedAt defaults to now.
func (m *Memory) Add(ex Example) Example {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = m.now()
	}
	m.examples = append(m.examples, ex)
	m.prune(ex.TenantID)
	return ex
}

func (m *Memory) Handler(maxBodySize int64) *Handler {
	return NewHandler(m, m.logger, maxBodySize)
}

func (m *Memory) Recent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Example, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.forTenant(tenantID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, cmd CreateCommand) (*Example, error) {
	ex, err := cmd.build(m.now())
	if err != nil {
		return nil, err
	}
	ex = m.Add(ex)
	return &ex, nil
}

// forTenant returns the tenant's examples newest first, later insertions
// winning ties.
func (m *Memory) forTenant(tenantID uuid.UUID) []Example {
	var out []Example
	for i := len(m.examples) - 1; i >= 0; i-- {
		if m.examples[i].TenantID == tenantID {
			out = append(out, m.examples[i])
		}
	}
	slices.SortStableFunc(out, func(a, b Example) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (m *Memory) prune(tenantID uuid.UUID) {
	keep := m.forTenant(tenantID)
	if len(keep) <= m.maxCorpus {
		return
	}
	retained := make(map[uuid.UUID]bool, m.maxCorpus)
	for _, ex := range keep[:m.maxCorpus] {
		retained[ex.ID] = true
	}
	m.examples = slices.DeleteFunc(m.examples, func(ex Example) bool {
		return ex.TenantID == tenantID && !retained[ex.ID]
	})
}
