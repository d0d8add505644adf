package dto

import (
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines a raw signed ledger entry. Most clients
// should prefer the Spend/AddFunds endpoints, which take positive amounts.
type CreateTransactionRequest struct {
	EnvelopeID  int64   `json:"envelopeID" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
	RefID       *string `json:"refID"`
	Type        string  `json:"type" binding:"omitempty,oneof=spend deposit use_product"`
}

// SpendRequest defines a spend against an envelope resolved by name.
type SpendRequest struct {
	Envelope    string  `json:"envelope" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
	RefID       *string `json:"refID"`
}

// AddFundsRequest defines a deposit into an envelope resolved by name.
type AddFundsRequest struct {
	Envelope    string  `json:"envelope" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
	RefID       *string `json:"refID"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	ID          int64           `json:"id"`
	EnvelopeID  int64           `json:"envelopeID"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	UserID      string          `json:"userID"`
	RefID       *string         `json:"refID,omitempty"`
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		EnvelopeID:  t.EnvelopeID,
		Amount:      t.Amount,
		Description: t.Description,
		UserID:      t.UserID,
		RefID:       t.RefID,
		Type:        string(t.Type),
		CreatedAt:   t.CreatedAt,
	}
}

// ToListTransactionResponse converts domain transactions to response DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
