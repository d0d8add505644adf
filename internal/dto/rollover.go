package dto

import (
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RolloverStatusResponse reports whether the monthly update is due.
type RolloverStatusResponse struct {
	Needed      bool       `json:"needed"`
	LastRunDate *time.Time `json:"lastRunDate,omitempty"`
	CheckedAt   time.Time  `json:"checkedAt"`
}

// EnvelopeUpdateResponse is the per-envelope outcome of a monthly update.
type EnvelopeUpdateResponse struct {
	EnvelopeID int64           `json:"envelopeID"`
	Name       string          `json:"name"`
	OldBalance decimal.Decimal `json:"oldBalance"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Allocation decimal.Decimal `json:"allocation"`
	Rollover   bool            `json:"rollover"`
}

// MonthlyUpdateResponse is returned by the rollover run endpoint. Processed
// is false when the run was a same-month no-op, in which case the remaining
// fields are zero.
type MonthlyUpdateResponse struct {
	Processed               bool                     `json:"processed"`
	UpdatedEnvelopes        []EnvelopeUpdateResponse `json:"updatedEnvelopes,omitempty"`
	TotalEnvelopesProcessed int                      `json:"totalEnvelopesProcessed"`
	RolloverCount           int                      `json:"rolloverCount"`
	ResetCount              int                      `json:"resetCount"`
	UpdateDate              *time.Time               `json:"updateDate,omitempty"`
	Summary                 string                   `json:"summary,omitempty"`
}

// ToMonthlyUpdateResponse converts a rollover run result, with its formatted
// summary, to the response DTO. A nil result means the run was a no-op.
func ToMonthlyUpdateResponse(result *domain.MonthlyUpdateResult, summary string) MonthlyUpdateResponse {
	if result == nil {
		return MonthlyUpdateResponse{Processed: false}
	}
	updates := make([]EnvelopeUpdateResponse, len(result.UpdatedEnvelopes))
	for i, u := range result.UpdatedEnvelopes {
		updates[i] = EnvelopeUpdateResponse{
			EnvelopeID: u.EnvelopeID,
			Name:       u.Name,
			OldBalance: u.OldBalance,
			NewBalance: u.NewBalance,
			Allocation: u.Allocation,
			Rollover:   u.Rollover,
		}
	}
	date := result.UpdateDate
	return MonthlyUpdateResponse{
		Processed:               true,
		UpdatedEnvelopes:        updates,
		TotalEnvelopesProcessed: result.TotalEnvelopesProcessed,
		RolloverCount:           result.RolloverCount,
		ResetCount:              result.ResetCount,
		UpdateDate:              &date,
		Summary:                 summary,
	}
}
