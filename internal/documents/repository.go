package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/pkg/pagination"
	"github.com/JaimeStill/loadextract/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	staleAfter time.Duration
}

// New creates a Postgres-backed document repository implementing the System
// interface. EXTRACTING documents untouched for staleAfter become claimable again.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	staleAfter time.Duration,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
		staleAfter: staleAfter,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) ClaimBatch(ctx context.Context, limit int) ([]Claim, error) {
	stale := r.staleAfter.Seconds()

	q := `
		SELECT ` + columns + `
		FROM documents
		WHERE status = 'UPLOADED'
		   OR (status = 'EXTRACTING' AND updated_at < now() - make_interval(secs => $1))
		ORDER BY uploaded_at ASC, id ASC
		LIMIT $2`

	candidates, err := repository.QueryMany(ctx, r.db, q, []any{stale, limit}, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("select claim candidates: %w", err)
	}

	claim := `
		UPDATE documents
		SET status = 'EXTRACTING', updated_at = now()
		WHERE id = $1
		  AND status = $2
		  AND ($2 = 'UPLOADED' OR updated_at < now() - make_interval(secs => $3))
		RETURNING ` + columns

	claims := make([]Claim, 0, len(candidates))
	for _, c := range candidates {
		d, err := repository.QueryOne(ctx, r.db, claim, []any{c.ID, c.Status, stale}, scanDocument)
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("claim lost to another worker", "document_id", c.ID)
			continue
		}
		if err != nil {
			return claims, fmt.Errorf("claim document %s: %w", c.ID, err)
		}
		claims = append(claims, Claim{
			Document:  d,
			Reclaimed: c.Status == StatusExtracting,
		})
	}

	return claims, nil
}

func (r *repo) Complete(ctx context.Context, claim *Claim, result Result) error {
	q := `
		UPDATE documents
		SET status = $3,
			fingerprint = COALESCE(fingerprint, $4),
			extracted_text = $5,
			extracted_json = $6,
			extracted_draft = $7,
			normalized_draft = $8,
			error_message = $9,
			updated_at = now()
		WHERE id = $1 AND status = 'EXTRACTING' AND updated_at = $2`

	err := repository.ExecExpectOne(
		ctx, r.db, q,
		claim.ID,
		claim.UpdatedAt,
		result.Status,
		result.Fingerprint,
		result.ExtractedText,
		repository.NewJSON(result.Metadata),
		repository.NewJSON(result.ExtractedDraft),
		repository.NewJSON(result.NormalizedDraft),
		result.ErrorMessage,
	)
	if err != nil {
		return repository.MapError(err, ErrNotClaimed, ErrDuplicate)
	}

	r.logger.Info("document completed", "document_id", claim.ID, "status", result.Status)
	return nil
}

func (r *repo) Fail(ctx context.Context, claim *Claim, message string) error {
	q := `
		UPDATE documents
		SET status = 'FAILED', error_message = $3, updated_at = now()
		WHERE id = $1 AND status = 'EXTRACTING' AND updated_at = $2`

	if err := repository.ExecExpectOne(ctx, r.db, q, claim.ID, claim.UpdatedAt, message); err != nil {
		return repository.MapError(err, ErrNotClaimed, ErrDuplicate)
	}

	r.logger.Warn("document failed", "document_id", claim.ID, "error", message)
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	where, args := filters.Where()

	var total int
	countSQL := "SELECT COUNT(*) FROM documents WHERE " + where
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL := fmt.Sprintf(
		"SELECT %s FROM documents WHERE %s ORDER BY uploaded_at DESC LIMIT $%d OFFSET $%d",
		columns, where, len(args)+1, len(args)+2,
	)
	pageArgs := append(args, page.PageSize, page.Offset())

	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q := "SELECT " + columns + " FROM documents WHERE id = $1"

	d, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Retry(ctx context.Context, id uuid.UUID) (*Document, error) {
	q := `
		UPDATE documents
		SET status = 'UPLOADED', error_message = NULL, updated_at = now()
		WHERE id = $1 AND status IN ('FAILED', 'NEEDS_REVIEW')
		RETURNING ` + columns

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanDocument)
	})
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := r.Find(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("retry document: %w", err)
	}

	r.logger.Info("document queued for retry", "document_id", id)
	return &d, nil
}
