package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NextMonthlyBalance computes an envelope's balance after the month boundary.
// Rollover envelopes keep the old balance and gain a fresh allocation, which
// carries deficits forward faithfully. Non-rollover envelopes reset to the
// allocation regardless of what was left.
func NextMonthlyBalance(e Envelope) decimal.Decimal {
	if e.Rollover {
		return e.Balance.Add(e.Allocation)
	}
	return e.Allocation
}

// MonthlyUpdateEligible reports whether the monthly update should run given
// the marker from the previous run. A missing marker (nil) always permits a
// run; otherwise the run proceeds only when the month has changed.
func MonthlyUpdateEligible(marker *time.Time, now time.Time) bool {
	if marker == nil {
		return true
	}
	return !SameMonth(*marker, now)
}

// EnvelopeUpdate describes the balance change applied to one envelope during
// a monthly update.
type EnvelopeUpdate struct {
	EnvelopeID int64           `json:"envelopeID"`
	Name       string          `json:"name"`
	OldBalance decimal.Decimal `json:"oldBalance"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Allocation decimal.Decimal `json:"allocation"`
	Rollover   bool            `json:"rollover"`
}

// MonthlyUpdateResult summarises one monthly update run.
type MonthlyUpdateResult struct {
	UpdatedEnvelopes        []EnvelopeUpdate `json:"updatedEnvelopes"`
	TotalEnvelopesProcessed int              `json:"totalEnvelopesProcessed"`
	RolloverCount           int              `json:"rolloverCount"`
	ResetCount              int              `json:"resetCount"`
	UpdateDate              time.Time        `json:"updateDate"`
}
