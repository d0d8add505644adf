package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction mirrors the transactions table. Amount carries the sign:
// negative for spends, positive for deposits.
type Transaction struct {
	ID          int64           `db:"id"`
	EnvelopeID  int64           `db:"envelope_id"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	UserID      string          `db:"user_id"`
	RefID       *string         `db:"ref_id"`
	Type        string          `db:"transaction_type"`
	CreatedAt   time.Time       `db:"created_at"`
}
