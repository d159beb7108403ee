package events

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/pkg/repository"
)

type repo struct {
	db        *sql.DB
	logger    *slog.Logger
	publisher Publisher
}

// New creates a Postgres-backed event recorder. Recorded events are passed
// to publisher after the transaction commits; a nil publisher disables fan-out.
func New(db *sql.DB, logger *slog.Logger, publisher Publisher) System {
	return &repo{
		db:        db,
		logger:    logger.With("system", "events"),
		publisher: publisher,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Record(ctx context.Context, e Event) error {
	e = e.stamp(time.Now().UTC())

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO extract_events(id, document_id, tenant_id, actor_id, type, message, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, e.DocumentID, e.TenantID, e.ActorID, string(e.Type), e.Message, e.CreatedAt,
		); err != nil {
			return struct{}{}, fmt.Errorf("insert extract event: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO audit_logs(id, tenant_id, actor_id, action, entity_type, entity_id, summary, created_at)
			VALUES ($1, $2, $3, $4, 'document', $5, $6, $7)`,
			uuid.New(), e.TenantID, e.ActorID, string(e.Type), e.DocumentID, e.Message, e.CreatedAt,
		); err != nil {
			return struct{}{}, fmt.Errorf("insert audit log: %w", err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("event recorded", "document_id", e.DocumentID, "type", e.Type)
	publish(ctx, r.publisher, e, r.logger)
	return nil
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Event, error) {
	q := `
		SELECT id, document_id, tenant_id, actor_id, type, message, created_at
		FROM extract_events
		WHERE document_id = $1
		ORDER BY seq ASC`

	events, err := repository.QueryMany(ctx, r.db, q, []any{documentID}, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

func scanEvent(s repository.Scanner) (Event, error) {
	var (
		e   Event
		typ string
	)
	err := s.Scan(&e.ID, &e.DocumentID, &e.TenantID, &e.ActorID, &typ, &e.Message, &e.CreatedAt)
	e.Type = Type(typ)
	return e, err
}
