package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
	"github.com/shopspring/decimal"
)

type TransactionService struct {
	transactionRepo portsrepo.TransactionRepositoryFacade
	envelopeSvc     portssvc.EnvelopeReaderSvc
}

func NewTransactionService(repo portsrepo.TransactionRepositoryFacade, envelopeSvc portssvc.EnvelopeReaderSvc) *TransactionService {
	return &TransactionService{
		transactionRepo: repo,
		envelopeSvc:     envelopeSvc,
	}
}

// validateAmount rejects zero, NaN and infinite amounts before any write.
func validateAmount(amount float64) error {
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("amount must be non-zero and finite: %w", apperrors.ErrInvalidAmount)
	}
	return nil
}

func (s *TransactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	return s.RecordEntry(ctx, req.EnvelopeID, decimal.NewFromFloat(req.Amount), req.Description, domain.TransactionType(req.Type), userID, req.RefID)
}

// RecordEntry records a signed decimal amount against an envelope. Callers
// holding exact decimal amounts use this directly to avoid a float round trip.
func (s *TransactionService) RecordEntry(ctx context.Context, envelopeID int64, amount decimal.Decimal, description string, txnType domain.TransactionType, userID string, refID *string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.IsZero() {
		return nil, fmt.Errorf("amount must be non-zero: %w", apperrors.ErrInvalidAmount)
	}

	// The envelope must exist and be active before we attempt the write; the
	// repository re-checks under its row lock.
	envelope, err := s.envelopeSvc.GetEnvelopeByID(ctx, envelopeID)
	if err != nil {
		return nil, err
	}

	if txnType == "" {
		if amount.IsNegative() {
			txnType = domain.TransactionSpend
		} else {
			txnType = domain.TransactionDeposit
		}
	}

	txn := domain.Transaction{
		EnvelopeID:  envelope.ID,
		Amount:      amount,
		Description: description,
		UserID:      userID,
		RefID:       refID,
		Type:        txnType,
		CreatedAt:   time.Now(),
	}

	saved, err := s.transactionRepo.SaveTransaction(ctx, txn)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to save transaction", slog.String("error", err.Error()), slog.Int64("envelope_id", envelope.ID))
		}
		return nil, err
	}

	logger.Info("Transaction recorded",
		slog.Int64("transaction_id", saved.ID),
		slog.Int64("envelope_id", saved.EnvelopeID),
		slog.String("type", string(saved.Type)),
		slog.String("amount", saved.Amount.StringFixed(2)),
	)
	return saved, nil
}

// Spend records a user-facing positive amount as a negative ledger entry.
func (s *TransactionService) Spend(ctx context.Context, envelopeName string, amount float64, description string, userID string, refID *string) (*domain.Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("spend amount must be positive: %w", apperrors.ErrInvalidAmount)
	}

	envelope, err := s.envelopeSvc.GetEnvelopeByName(ctx, envelopeName, userID)
	if err != nil {
		return nil, err
	}

	return s.CreateTransaction(ctx, dto.CreateTransactionRequest{
		EnvelopeID:  envelope.ID,
		Amount:      -amount,
		Description: description,
		RefID:       refID,
		Type:        string(domain.TransactionSpend),
	}, userID)
}

// AddFunds records a user-facing positive amount as a deposit.
func (s *TransactionService) AddFunds(ctx context.Context, envelopeName string, amount float64, description string, userID string, refID *string) (*domain.Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("deposit amount must be positive: %w", apperrors.ErrInvalidAmount)
	}

	envelope, err := s.envelopeSvc.GetEnvelopeByName(ctx, envelopeName, userID)
	if err != nil {
		return nil, err
	}

	return s.CreateTransaction(ctx, dto.CreateTransactionRequest{
		EnvelopeID:  envelope.ID,
		Amount:      amount,
		Description: description,
		RefID:       refID,
		Type:        string(domain.TransactionDeposit),
	}, userID)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	removed, err := s.transactionRepo.DeleteTransaction(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete transaction", slog.String("error", err.Error()), slog.Int64("transaction_id", id))
		}
		return nil, err
	}

	logger.Info("Transaction deleted and balance reversed",
		slog.Int64("transaction_id", removed.ID),
		slog.Int64("envelope_id", removed.EnvelopeID),
		slog.String("amount", removed.Amount.StringFixed(2)),
	)
	return removed, nil
}

func (s *TransactionService) GetTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	return s.transactionRepo.FindTransactionByID(ctx, id)
}

func (s *TransactionService) ListTransactions(ctx context.Context, envelopeName string, userID string, limit int, offset int) ([]domain.Transaction, error) {
	envelope, err := s.envelopeSvc.GetEnvelopeByName(ctx, envelopeName, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	return s.transactionRepo.ListTransactionsByEnvelope(ctx, envelope.ID, limit, offset)
}
