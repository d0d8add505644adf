package repositories

import (
	"context"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EnvelopeReader defines read operations for envelope data
type EnvelopeReader interface {
	// FindEnvelopeByID retrieves an envelope by its id, including soft-deleted rows.
	FindEnvelopeByID(ctx context.Context, id int64) (*domain.Envelope, error)

	// FindEnvelopeByName resolves name for userID among active envelopes.
	// When both an individual and a shared envelope carry the name, the
	// user's individual envelope wins.
	FindEnvelopeByName(ctx context.Context, name string, userID string) (*domain.Envelope, error)

	// FindAnyEnvelopeByName retrieves the envelope with the exact owner match
	// (nil userID means shared), including soft-deleted rows. Used by the
	// create-or-reenable path.
	FindAnyEnvelopeByName(ctx context.Context, name string, userID *string) (*domain.Envelope, error)

	// FindActiveEnvelopes lists non-deleted envelopes ordered by name.
	FindActiveEnvelopes(ctx context.Context) ([]domain.Envelope, error)

	// ListCategories returns the distinct categories of active envelopes.
	ListCategories(ctx context.Context) ([]string, error)
}

// EnvelopeWriter defines write operations for envelope data
type EnvelopeWriter interface {
	// SaveEnvelope persists a new envelope and returns it with its id set.
	SaveEnvelope(ctx context.Context, envelope domain.Envelope) (*domain.Envelope, error)

	// UpdateEnvelope updates an existing envelope's mutable fields, including
	// is_deleted for the re-enable path.
	UpdateEnvelope(ctx context.Context, envelope domain.Envelope) error

	// UpdateEnvelopeBalance sets the balance of one envelope. Returns
	// ErrNotFound when no such envelope exists.
	UpdateEnvelopeBalance(ctx context.Context, id int64, balance decimal.Decimal, now time.Time) error

	// SoftDeleteEnvelope marks an envelope as deleted.
	SoftDeleteEnvelope(ctx context.Context, id int64, now time.Time) error
}

// EnvelopeRepositoryFacade combines all envelope-related repository interfaces
type EnvelopeRepositoryFacade interface {
	EnvelopeReader
	EnvelopeWriter
}
