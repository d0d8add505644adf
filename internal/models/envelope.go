package models

import (
	"github.com/shopspring/decimal"
)

// Envelope mirrors the envelopes table.
// UserID is NULL for shared envelopes.
type Envelope struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	Category     string          `db:"category"`
	Allocation   decimal.Decimal `db:"allocation"`
	Balance      decimal.Decimal `db:"balance"`
	Rollover     bool            `db:"rollover"`
	IsIndividual bool            `db:"is_individual"`
	UserID       *string         `db:"user_id"`
	IsDeleted    bool            `db:"is_deleted"`
	AuditFields
}
