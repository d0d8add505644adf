package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/models"
	"github.com/shopspring/decimal"
)

const transactionColumns = "id, envelope_id, amount, description, user_id, ref_id, transaction_type, created_at"

// SQLiteTransactionRepository implements ledger entry persistence on
// database/sql. SQLite's single-writer model plus immediate write
// transactions keep the balance read-modify-write atomic.
type SQLiteTransactionRepository struct {
	BaseRepository
}

func newSQLiteTransactionRepository(db *sql.DB) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{BaseRepository{DB: db}}
}

var _ portsrepo.TransactionRepositoryFacade = (*SQLiteTransactionRepository)(nil)

func toDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:          m.ID,
		EnvelopeID:  m.EnvelopeID,
		Amount:      m.Amount,
		Description: m.Description,
		UserID:      m.UserID,
		RefID:       m.RefID,
		Type:        domain.TransactionType(m.Type),
		CreatedAt:   m.CreatedAt,
	}
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.ID,
		&m.EnvelopeID,
		&m.Amount,
		&m.Description,
		&m.UserID,
		&m.RefID,
		&m.Type,
		&m.CreatedAt,
	)
	return m, err
}

// activeEnvelopeBalance reads an active envelope's balance within tx.
func activeEnvelopeBalance(ctx context.Context, tx *sql.Tx, envelopeID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	var isDeleted bool
	err := tx.QueryRowContext(ctx, `SELECT balance, is_deleted FROM envelopes WHERE id = ?;`, envelopeID).Scan(&balance, &isDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to read envelope %d: %w", envelopeID, err)
	}
	if isDeleted {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return balance, nil
}

// SaveTransaction inserts a ledger entry and adjusts the envelope balance in
// a single database transaction.
func (r *SQLiteTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(tx)

	balance, err := activeEnvelopeBalance(ctx, tx, txn.EnvelopeID)
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(txn.Amount)
	if newBalance.IsNegative() {
		return nil, &apperrors.InsufficientFundsError{
			Current:  balance,
			Required: txn.Amount.Neg(),
		}
	}

	insertQuery := `
		INSERT INTO transactions (envelope_id, amount, description, user_id, ref_id, transaction_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	res, err := tx.ExecContext(ctx, insertQuery,
		txn.EnvelopeID,
		txn.Amount,
		txn.Description,
		txn.UserID,
		txn.RefID,
		string(txn.Type),
		txn.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert transaction", err)
	}
	txn.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE envelopes SET balance = ?, updated_at = ? WHERE id = ?;`, newBalance, txn.CreatedAt, txn.EnvelopeID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update envelope balance", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return &txn, nil
}

// DeleteTransaction removes a ledger entry and reverses its balance effect
// in a single database transaction. Returns the removed entry.
func (r *SQLiteTransactionRepository) DeleteTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(tx)

	m, err := scanTransaction(tx.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?;`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %d: %w", id, err)
	}

	balance, err := activeEnvelopeBalance(ctx, tx, m.EnvelopeID)
	if err != nil {
		return nil, err
	}
	newBalance := balance.Sub(m.Amount)

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?;`, id); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete transaction", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE envelopes SET balance = ?, updated_at = ? WHERE id = ?;`, newBalance, time.Now(), m.EnvelopeID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update envelope balance", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit transaction", err)
	}

	removed := toDomainTransaction(m)
	return &removed, nil
}

// FindTransactionByID retrieves a single ledger entry.
func (r *SQLiteTransactionRepository) FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	m, err := scanTransaction(r.DB.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?;`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %d: %w", id, err)
	}

	txn := toDomainTransaction(m)
	return &txn, nil
}

// ListTransactionsByEnvelope lists entries for one envelope, newest first.
func (r *SQLiteTransactionRepository) ListTransactionsByEnvelope(ctx context.Context, envelopeID int64, limit int, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE envelope_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?;
	`
	rows, err := r.DB.QueryContext(ctx, query, envelopeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for envelope %d: %w", envelopeID, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, toDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return txns, nil
}
