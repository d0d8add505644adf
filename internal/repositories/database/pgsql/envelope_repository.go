package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/models"
	"github.com/shopspring/decimal"
)

const envelopeColumns = "id, name, category, allocation, balance, rollover, is_individual, user_id, is_deleted, created_at, updated_at"

// PgxEnvelopeRepository implements envelope persistence using pgx.
type PgxEnvelopeRepository struct {
	BaseRepository
}

func newPgxEnvelopeRepository(pool *pgxpool.Pool) *PgxEnvelopeRepository {
	return &PgxEnvelopeRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.EnvelopeRepositoryFacade = (*PgxEnvelopeRepository)(nil)

// Helper to convert models.Envelope from DB to domain.Envelope
func toDomainEnvelope(m models.Envelope) domain.Envelope {
	return domain.Envelope{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Allocation:   m.Allocation,
		Balance:      m.Balance,
		Rollover:     m.Rollover,
		IsIndividual: m.IsIndividual,
		UserID:       m.UserID,
		IsDeleted:    m.IsDeleted,
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func scanEnvelope(row pgx.Row) (models.Envelope, error) {
	var m models.Envelope
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Category,
		&m.Allocation,
		&m.Balance,
		&m.Rollover,
		&m.IsIndividual,
		&m.UserID,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

// SaveEnvelope inserts a new envelope and returns it with its id set.
func (r *PgxEnvelopeRepository) SaveEnvelope(ctx context.Context, envelope domain.Envelope) (*domain.Envelope, error) {
	query := `
		INSERT INTO envelopes (name, category, allocation, balance, rollover, is_individual, user_id, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
		RETURNING id;
	`
	err := r.Pool.QueryRow(ctx, query,
		envelope.Name,
		envelope.Category,
		envelope.Allocation,
		envelope.Balance,
		envelope.Rollover,
		envelope.IsIndividual,
		envelope.UserID,
		envelope.CreatedAt,
		envelope.UpdatedAt,
	).Scan(&envelope.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return nil, fmt.Errorf("%w: envelope %q already exists", apperrors.ErrDuplicate, envelope.Name)
			}
		}
		return nil, fmt.Errorf("failed to save envelope %q: %w", envelope.Name, err)
	}
	return &envelope, nil
}

// FindEnvelopeByID retrieves an envelope by id, including soft-deleted rows.
func (r *PgxEnvelopeRepository) FindEnvelopeByID(ctx context.Context, id int64) (*domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE id = $1;`

	m, err := scanEnvelope(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find envelope %d: %w", id, err)
	}

	envelope := toDomainEnvelope(m)
	return &envelope, nil
}

// FindEnvelopeByName resolves name among active envelopes visible to userID.
// The user's individual envelope wins over a shared one with the same name.
func (r *PgxEnvelopeRepository) FindEnvelopeByName(ctx context.Context, name string, userID string) (*domain.Envelope, error) {
	query := `
		SELECT ` + envelopeColumns + `
		FROM envelopes
		WHERE name = $1 AND NOT is_deleted AND (user_id = $2 OR user_id IS NULL)
		ORDER BY (user_id IS NOT NULL) DESC
		LIMIT 1;
	`
	m, err := scanEnvelope(r.Pool.QueryRow(ctx, query, name, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find envelope %q for user %s: %w", name, userID, err)
	}

	envelope := toDomainEnvelope(m)
	return &envelope, nil
}

// FindAnyEnvelopeByName retrieves the envelope with the exact owner match,
// including soft-deleted rows.
func (r *PgxEnvelopeRepository) FindAnyEnvelopeByName(ctx context.Context, name string, userID *string) (*domain.Envelope, error) {
	query := `
		SELECT ` + envelopeColumns + `
		FROM envelopes
		WHERE name = $1 AND user_id IS NOT DISTINCT FROM $2
		LIMIT 1;
	`
	m, err := scanEnvelope(r.Pool.QueryRow(ctx, query, name, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find envelope %q: %w", name, err)
	}

	envelope := toDomainEnvelope(m)
	return &envelope, nil
}

// FindActiveEnvelopes lists non-deleted envelopes ordered by name.
func (r *PgxEnvelopeRepository) FindActiveEnvelopes(ctx context.Context) ([]domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE NOT is_deleted ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []domain.Envelope
	for rows.Next() {
		m, err := scanEnvelope(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan envelope row: %w", err)
		}
		envelopes = append(envelopes, toDomainEnvelope(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate envelope rows: %w", err)
	}
	return envelopes, nil
}

// ListCategories returns the distinct categories of active envelopes.
func (r *PgxEnvelopeRepository) ListCategories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category FROM envelopes
		WHERE NOT is_deleted AND category <> ''
		ORDER BY category;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}
	return categories, nil
}

// UpdateEnvelope updates an existing envelope's mutable fields, including
// is_deleted for the re-enable path.
func (r *PgxEnvelopeRepository) UpdateEnvelope(ctx context.Context, envelope domain.Envelope) error {
	query := `
		UPDATE envelopes
		SET category = $2, allocation = $3, balance = $4, rollover = $5, is_deleted = $6, updated_at = $7
		WHERE id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		envelope.ID,
		envelope.Category,
		envelope.Allocation,
		envelope.Balance,
		envelope.Rollover,
		envelope.IsDeleted,
		envelope.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update envelope %d: %w", envelope.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateEnvelopeBalance sets the balance of one envelope.
func (r *PgxEnvelopeRepository) UpdateEnvelopeBalance(ctx context.Context, id int64, balance decimal.Decimal, now time.Time) error {
	query := `UPDATE envelopes SET balance = $2, updated_at = $3 WHERE id = $1;`

	tag, err := r.Pool.Exec(ctx, query, id, balance, now)
	if err != nil {
		return fmt.Errorf("failed to update balance of envelope %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SoftDeleteEnvelope marks an envelope as deleted.
func (r *PgxEnvelopeRepository) SoftDeleteEnvelope(ctx context.Context, id int64, now time.Time) error {
	query := `UPDATE envelopes SET is_deleted = TRUE, updated_at = $2 WHERE id = $1 AND NOT is_deleted;`

	tag, err := r.Pool.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to soft-delete envelope %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
