package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes how a ledger entry came about.
type TransactionType string

const (
	TransactionSpend      TransactionType = "spend"
	TransactionDeposit    TransactionType = "deposit"
	TransactionUseProduct TransactionType = "use_product"
)

// Transaction is a single signed ledger entry against an envelope.
// Negative amounts are spends, positive amounts are deposits. A zero
// amount is never valid.
type Transaction struct {
	ID          int64           `json:"id"`
	EnvelopeID  int64           `json:"envelopeID"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	UserID      string          `json:"userID"`          // Who recorded the entry
	RefID       *string         `json:"refID,omitempty"` // External correlation id, e.g. a chat message
	Type        TransactionType `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// IsSpend reports whether the entry reduced the envelope balance.
func (t Transaction) IsSpend() bool {
	return t.Amount.IsNegative()
}
