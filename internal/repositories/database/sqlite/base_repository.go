package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
)

// BaseRepository provides common functionality for all sqlite repositories
type BaseRepository struct {
	DB *sql.DB
}

// Begin starts a new database transaction. The connection is opened with
// immediate transaction locking, so a write transaction holds the single
// writer slot from the start.
func (r *BaseRepository) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Rollback rolls back a transaction, tolerating an already-finished one.
func (r *BaseRepository) Rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

// isUniqueViolation reports whether err is a unique index violation.
// modernc.org/sqlite surfaces these as plain errors carrying the SQLite
// message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
