package domain

import (
	"github.com/shopspring/decimal"
)

// Product is a fixed-price item bound to an envelope, so repeat purchases
// can be recorded without retyping the amount.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	EnvelopeID int64           `json:"envelopeID"`
	IsDeleted  bool            `json:"isDeleted"`
	AuditFields
}
