package models

import (
	"github.com/shopspring/decimal"
)

// Product mirrors the products table.
type Product struct {
	ID         int64           `db:"id"`
	Name       string          `db:"name"`
	Price      decimal.Decimal `db:"price"`
	EnvelopeID int64           `db:"envelope_id"`
	IsDeleted  bool            `db:"is_deleted"`
	AuditFields
}
