package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgDuplicateKeyCode = "23505"

// MapError converts sql.ErrNoRows to missing and a unique violation to
// duplicate. Stores pass their own sentinels, such as documents.ErrNotClaimed
// for a guarded update that matched no row. Other errors pass through.
func MapError(err error, missing, duplicate error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return missing
	case errors.As(err, &pgErr) && pgErr.Code == pgDuplicateKeyCode:
		return duplicate
	default:
		return err
	}
}
