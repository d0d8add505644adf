package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/models"
	"github.com/shopspring/decimal"
)

const transactionColumns = "id, envelope_id, amount, description, user_id, ref_id, transaction_type, created_at"

// PgxTransactionRepository implements ledger entry persistence using pgx.
// Writes lock the envelope row so the stored balance always equals the sum
// of the envelope's entries.
type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// Helper to convert models.Transaction from DB to domain.Transaction
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

func scanTransaction(row pgx.Row) (models.Transaction, error) {
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

// lockEnvelopeBalance selects an active envelope's balance FOR UPDATE within tx.
func lockEnvelopeBalance(ctx context.Context, tx pgx.Tx, envelopeID int64) (decimal.Decimal, error) {
	query := `SELECT balance, is_deleted FROM envelopes WHERE id = $1 FOR UPDATE;`

	var balance decimal.Decimal
	var isDeleted bool
	err := tx.QueryRow(ctx, query, envelopeID).Scan(&balance, &isDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to lock envelope %d: %w", envelopeID, err)
	}
	if isDeleted {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return balance, nil
}

// SaveTransaction inserts a ledger entry and adjusts the envelope balance in
// a single database transaction. Any write that would leave the balance
// negative fails with an InsufficientFundsError and writes nothing.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		balance, err := lockEnvelopeBalance(ctx, tx, txn.EnvelopeID)
		if err != nil {
			return err
		}

		newBalance := balance.Add(txn.Amount)
		if newBalance.IsNegative() {
			return &apperrors.InsufficientFundsError{
				Current:  balance,
				Required: txn.Amount.Neg(),
			}
		}

		insertQuery := `
			INSERT INTO transactions (envelope_id, amount, description, user_id, ref_id, transaction_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;
		`
		err = tx.QueryRow(ctx, insertQuery,
			txn.EnvelopeID,
			txn.Amount,
			txn.Description,
			txn.UserID,
			txn.RefID,
			string(txn.Type),
			txn.CreatedAt,
		).Scan(&txn.ID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert transaction", err)
		}

		updateQuery := `UPDATE envelopes SET balance = $2, updated_at = $3 WHERE id = $1;`
		if _, err := tx.Exec(ctx, updateQuery, txn.EnvelopeID, newBalance, txn.CreatedAt); err != nil {
			return apperrors.NewAppError(500, "failed to update envelope balance", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// DeleteTransaction removes a ledger entry and reverses its balance effect
// in a single database transaction. Returns the removed entry.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	var removed domain.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE;`
		m, err := scanTransaction(tx.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to find transaction %d: %w", id, err)
		}

		// Reversal may legitimately leave the balance negative, e.g. when a
		// deposit is deleted after the funds were spent.
		balance, err := lockEnvelopeBalance(ctx, tx, m.EnvelopeID)
		if err != nil {
			return err
		}
		newBalance := balance.Sub(m.Amount)

		if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1;`, id); err != nil {
			return apperrors.NewAppError(500, "failed to delete transaction", err)
		}

		updateQuery := `UPDATE envelopes SET balance = $2, updated_at = NOW() WHERE id = $1;`
		if _, err := tx.Exec(ctx, updateQuery, m.EnvelopeID, newBalance); err != nil {
			return apperrors.NewAppError(500, "failed to update envelope balance", err)
		}

		removed = toDomainTransaction(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// FindTransactionByID retrieves a single ledger entry.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %d: %w", id, err)
	}

	txn := toDomainTransaction(m)
	return &txn, nil
}

// ListTransactionsByEnvelope lists entries for one envelope, newest first.
func (r *PgxTransactionRepository) ListTransactionsByEnvelope(ctx context.Context, envelopeID int64, limit int, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE envelope_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, envelopeID, limit, offset)
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
