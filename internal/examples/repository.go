package examples

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/drafts"
	"github.com/JaimeStill/loadextract/pkg/repository"
)

const columns = `id, tenant_id, document_id, broker_name, doc_fingerprint,
	extracted_text, corrected_draft, created_at`

type repo struct {
	db        *sql.DB
	logger    *slog.Logger
	maxCorpus int
}

// New creates a Postgres-backed example repository retaining at most
// maxCorpus examples per tenant.
func New(db *sql.DB, logger *slog.Logger, maxCorpus int) System {
	return &repo{
		db:        db,
		logger:    logger.With("system", "examples"),
		maxCorpus: maxCorpus,
	}
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, maxBodySize)
}

func (r *repo) Recent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Example, error) {
	q := `
		SELECT ` + columns + `
		FROM learning_examples
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	examples, err := repository.QueryMany(ctx, r.db, q, []any{tenantID, limit}, scanExample)
	if err != nil {
		return nil, fmt.Errorf("query learning examples: %w", err)
	}
	return examples, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Example, error) {
	ex, err := cmd.build(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO learning_examples(id, tenant_id, document_id, broker_name, doc_fingerprint, extracted_text, corrected_draft)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + columns

	prune := `
		DELETE FROM learning_examples
		WHERE tenant_id = $1
		  AND id NOT IN (
			SELECT id FROM learning_examples
			WHERE tenant_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		  )`

	args := []any{
		ex.ID,
		ex.TenantID,
		ex.DocumentID,
		ex.BrokerName,
		ex.DocFingerprint,
		ex.ExtractedText,
		repository.NewJSON(&ex.CorrectedDraft),
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Example, error) {
		created, err := repository.QueryOne(ctx, tx, insert, args, scanExample)
		if err != nil {
			return Example{}, err
		}
		res, err := tx.ExecContext(ctx, prune, ex.TenantID, r.maxCorpus)
		if err != nil {
			return Example{}, fmt.Errorf("prune corpus: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			r.logger.Info("learning corpus pruned", "tenant_id", ex.TenantID, "removed", n)
		}
		return created, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("learning example created", "id", created.ID, "tenant_id", created.TenantID)
	return &created, nil
}

func scanExample(s repository.Scanner) (Example, error) {
	var (
		ex    Example
		draft repository.JSON[drafts.Draft]
	)
	err := s.Scan(
		&ex.ID,
		&ex.TenantID,
		&ex.DocumentID,
		&ex.BrokerName,
		&ex.DocFingerprint,
		&ex.ExtractedText,
		&draft,
		&ex.CreatedAt,
	)
	if draft.Val != nil {
		ex.CorrectedDraft = *draft.Val
	}
	return ex, err
}
