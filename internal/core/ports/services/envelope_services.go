package services

import (
	"context"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
)

// EnvelopeReaderSvc defines read operations for envelope data
type EnvelopeReaderSvc interface {
	// GetEnvelopeByID retrieves an active envelope by id.
	GetEnvelopeByID(ctx context.Context, id int64) (*domain.Envelope, error)

	// GetEnvelopeByName resolves name for userID; the user's individual
	// envelope wins over a shared envelope with the same name.
	GetEnvelopeByName(ctx context.Context, name string, userID string) (*domain.Envelope, error)

	// ListEnvelopes lists the active envelopes visible to userID: all shared
	// ones plus the user's own individual ones.
	ListEnvelopes(ctx context.Context, userID string) ([]domain.Envelope, error)

	// ListCategories returns the distinct categories in use.
	ListCategories(ctx context.Context) ([]string, error)
}

// EnvelopeWriterSvc defines write operations for envelope data
type EnvelopeWriterSvc interface {
	// CreateEnvelope validates and persists a new envelope. The initial
	// balance equals the allocation.
	CreateEnvelope(ctx context.Context, req dto.CreateEnvelopeRequest) (*domain.Envelope, error)

	// CreateOrReenableEnvelope creates the envelope, or updates an active
	// match, or re-enables a soft-deleted match with its balance reset to
	// the allocation.
	CreateOrReenableEnvelope(ctx context.Context, req dto.CreateEnvelopeRequest) (*domain.Envelope, error)

	// UpdateEnvelope updates mutable fields of an existing envelope.
	UpdateEnvelope(ctx context.Context, id int64, req dto.UpdateEnvelopeRequest) (*domain.Envelope, error)

	// DeleteEnvelope soft-deletes the named envelope. An individual envelope
	// is deletable only by its owner; the bool reports whether a row changed.
	DeleteEnvelope(ctx context.Context, name string, userID string) (bool, error)

	// SeedFromConfig applies envelope seeds with create-or-reenable
	// semantics: shared seeds once, individual seeds once per user.
	// Returns how many envelopes were created or revived.
	SeedFromConfig(ctx context.Context, seeds []dto.EnvelopeSeed, users []string) (int, error)
}

// EnvelopeSvcFacade combines all envelope-related service interfaces
type EnvelopeSvcFacade interface {
	EnvelopeReaderSvc
	EnvelopeWriterSvc
}
