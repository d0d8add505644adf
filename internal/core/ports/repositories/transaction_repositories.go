package repositories

import (
	"context"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
)

// TransactionReader defines read operations for ledger entries
type TransactionReader interface {
	// FindTransactionByID retrieves a single ledger entry.
	FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error)

	// ListTransactionsByEnvelope lists entries for one envelope, newest first.
	ListTransactionsByEnvelope(ctx context.Context, envelopeID int64, limit int, offset int) ([]domain.Transaction, error)
}

// TransactionWriter defines the balance-consistent write operations.
// Implementations lock the envelope row, enforce the overdraft policy and
// apply the row insert and balance change as one atomic unit.
type TransactionWriter interface {
	// SaveTransaction inserts a ledger entry and adjusts the envelope balance
	// in a single database transaction. Any write that would leave the
	// balance negative fails with an InsufficientFundsError and writes
	// nothing, including a deposit too small to clear an overdraft.
	// Returns the entry with its id set.
	SaveTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)

	// DeleteTransaction removes a ledger entry and reverses its balance
	// effect in a single database transaction. Returns the removed entry.
	DeleteTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
