package services

import (
	"context"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/shopspring/decimal"
)

// TransactionReaderSvc defines read operations for ledger entries
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a single ledger entry.
	GetTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error)

	// ListTransactions lists entries for the named envelope, newest first.
	ListTransactions(ctx context.Context, envelopeName string, userID string, limit int, offset int) ([]domain.Transaction, error)
}

// TransactionWriterSvc defines write operations for ledger entries
type TransactionWriterSvc interface {
	// CreateTransaction validates and records a raw signed entry. The row
	// insert and the envelope balance update are one atomic unit.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// RecordEntry records a signed decimal amount against an envelope,
	// bypassing the float API boundary. An empty txnType is inferred from
	// the amount's sign.
	RecordEntry(ctx context.Context, envelopeID int64, amount decimal.Decimal, description string, txnType domain.TransactionType, userID string, refID *string) (*domain.Transaction, error)

	// Spend records a user-facing positive amount as a negative ledger
	// entry against the named envelope.
	Spend(ctx context.Context, envelopeName string, amount float64, description string, userID string, refID *string) (*domain.Transaction, error)

	// AddFunds records a user-facing positive amount as a deposit into the
	// named envelope.
	AddFunds(ctx context.Context, envelopeName string, amount float64, description string, userID string, refID *string) (*domain.Transaction, error)

	// DeleteTransaction removes an entry and reverses its balance effect
	// atomically. Returns the removed entry.
	DeleteTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
