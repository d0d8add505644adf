package dto

import (
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEnvelopeRequest defines the data needed to create an envelope.
type CreateEnvelopeRequest struct {
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category"`
	Allocation   float64 `json:"allocation" binding:"gte=0"`
	Rollover     bool    `json:"rollover"`
	IsIndividual bool    `json:"isIndividual"`
	UserID       *string `json:"userID"` // Owner, required when IsIndividual
}

// UpdateEnvelopeRequest defines the data allowed for updating an envelope.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateEnvelopeRequest struct {
	Category   *string  `json:"category"`
	Allocation *float64 `json:"allocation"`
	Rollover   *bool    `json:"rollover"`
}

// EnvelopeResponse defines the data returned for an envelope.
// Mirrors domain.Envelope.
type EnvelopeResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Allocation   decimal.Decimal `json:"allocation"`
	Balance      decimal.Decimal `json:"balance"`
	Rollover     bool            `json:"rollover"`
	IsIndividual bool            `json:"isIndividual"`
	UserID       *string         `json:"userID,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ToEnvelopeResponse converts a domain.Envelope to EnvelopeResponse DTO
func ToEnvelopeResponse(e *domain.Envelope) EnvelopeResponse {
	return EnvelopeResponse{
		ID:           e.ID,
		Name:         e.Name,
		Category:     e.Category,
		Allocation:   e.Allocation,
		Balance:      e.Balance,
		Rollover:     e.Rollover,
		IsIndividual: e.IsIndividual,
		UserID:       e.UserID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// ToListEnvelopeResponse converts a slice of domain.Envelope to response DTOs
func ToListEnvelopeResponse(envelopes []domain.Envelope) []EnvelopeResponse {
	res := make([]EnvelopeResponse, len(envelopes))
	for i := range envelopes {
		res[i] = ToEnvelopeResponse(&envelopes[i])
	}
	return res
}

// EnvelopeSeed is one envelope definition from the seed configuration file.
// Individual seeds are instantiated once per configured user.
type EnvelopeSeed struct {
	Name         string  `mapstructure:"name"`
	Category     string  `mapstructure:"category"`
	Allocation   float64 `mapstructure:"allocation"`
	Rollover     bool    `mapstructure:"rollover"`
	IsIndividual bool    `mapstructure:"is_individual"`
}
