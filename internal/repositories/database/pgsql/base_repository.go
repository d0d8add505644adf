package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
)

// BaseRepository holds the shared pool and transaction plumbing.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// withTx runs fn inside a database transaction, committing on success and
// rolling back on error. Errors from fn pass through unwrapped so sentinel
// checks on the caller side keep working.
func (r *BaseRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}
