package domain

import (
	"github.com/shopspring/decimal"
)

// Envelope represents a budgeting envelope within the core domain.
// Shared envelopes have a nil UserID; individual envelopes belong to exactly
// one user. Soft-deleted envelopes are retained for history but excluded from
// all active listings and balance operations.
type Envelope struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Allocation   decimal.Decimal `json:"allocation"` // Monthly budgeted amount
	Balance      decimal.Decimal `json:"balance"`    // Current spendable amount, may be negative
	Rollover     bool            `json:"rollover"`   // Unspent balance carries into the next month
	IsIndividual bool            `json:"isIndividual"`
	UserID       *string         `json:"userID,omitempty"` // Owner when IsIndividual
	IsDeleted    bool            `json:"isDeleted"`
	AuditFields
}

// IsShared reports whether the envelope is visible to every user.
func (e Envelope) IsShared() bool {
	return !e.IsIndividual
}

// AccessibleBy reports whether userID may spend from or view this envelope.
func (e Envelope) AccessibleBy(userID string) bool {
	if !e.IsIndividual {
		return true
	}
	return e.UserID != nil && *e.UserID == userID
}
