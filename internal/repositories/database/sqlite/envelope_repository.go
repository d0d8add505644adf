package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/models"
	"github.com/shopspring/decimal"
)

const envelopeColumns = "id, name, category, allocation, balance, rollover, is_individual, user_id, is_deleted, created_at, updated_at"

// SQLiteEnvelopeRepository implements envelope persistence on database/sql.
type SQLiteEnvelopeRepository struct {
	BaseRepository
}

func newSQLiteEnvelopeRepository(db *sql.DB) *SQLiteEnvelopeRepository {
	return &SQLiteEnvelopeRepository{BaseRepository{DB: db}}
}

var _ portsrepo.EnvelopeRepositoryFacade = (*SQLiteEnvelopeRepository)(nil)

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnvelope(row rowScanner) (models.Envelope, error) {
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
func (r *SQLiteEnvelopeRepository) SaveEnvelope(ctx context.Context, envelope domain.Envelope) (*domain.Envelope, error) {
	query := `
		INSERT INTO envelopes (name, category, allocation, balance, rollover, is_individual, user_id, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, FALSE, ?, ?);
	`
	res, err := r.DB.ExecContext(ctx, query,
		envelope.Name,
		envelope.Category,
		envelope.Allocation,
		envelope.Balance,
		envelope.Rollover,
		envelope.IsIndividual,
		envelope.UserID,
		envelope.CreatedAt,
		envelope.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: envelope %q already exists", apperrors.ErrDuplicate, envelope.Name)
		}
		return nil, fmt.Errorf("failed to save envelope %q: %w", envelope.Name, err)
	}

	envelope.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read envelope id: %w", err)
	}
	return &envelope, nil
}

// FindEnvelopeByID retrieves an envelope by id, including soft-deleted rows.
func (r *SQLiteEnvelopeRepository) FindEnvelopeByID(ctx context.Context, id int64) (*domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE id = ?;`

	m, err := scanEnvelope(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find envelope %d: %w", id, err)
	}

	envelope := toDomainEnvelope(m)
	return &envelope, nil
}

// FindEnvelopeByName resolves name among active envelopes visible to userID,
// preferring the user's individual envelope over a shared one.
func (r *SQLiteEnvelopeRepository) FindEnvelopeByName(ctx context.Context, name string, userID string) (*domain.Envelope, error) {
	query := `
		SELECT ` + envelopeColumns + `
		FROM envelopes
		WHERE name = ? AND NOT is_deleted AND (user_id = ? OR user_id IS NULL)
		ORDER BY (user_id IS NOT NULL) DESC
		LIMIT 1;
	`
	m, err := scanEnvelope(r.DB.QueryRowContext(ctx, query, name, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find envelope %q for user %s: %w", name, userID, err)
	}

	envelope := toDomainEnvelope(m)
	return &envelope, nil
}

// FindAnyEnvelopeByName retrieves the envelope with the exact owner match,
// including soft-deleted rows. The IS comparison is NULL-safe.
func (r *SQLiteEnvelopeRepository) FindAnyEnvelopeByName(ctx context.Context, name string, userID *string) (*domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE name = ? AND user_id IS ? LIMIT 1;`

	m, err := scanEnvelope(r.DB.QueryRowContext(ctx, query, name, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find envelope %q: %w", name, err)
	}

	envelope := toDomainEnvelope(m)
	return &envelope, nil
}

// FindActiveEnvelopes lists non-deleted envelopes ordered by name.
func (r *SQLiteEnvelopeRepository) FindActiveEnvelopes(ctx context.Context) ([]domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE NOT is_deleted ORDER BY name;`

	rows, err := r.DB.QueryContext(ctx, query)
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
func (r *SQLiteEnvelopeRepository) ListCategories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category FROM envelopes
		WHERE NOT is_deleted AND category <> ''
		ORDER BY category;
	`
	rows, err := r.DB.QueryContext(ctx, query)
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

// UpdateEnvelope updates an existing envelope's mutable fields.
func (r *SQLiteEnvelopeRepository) UpdateEnvelope(ctx context.Context, envelope domain.Envelope) error {
	query := `
		UPDATE envelopes
		SET category = ?, allocation = ?, balance = ?, rollover = ?, is_deleted = ?, updated_at = ?
		WHERE id = ?;
	`
	res, err := r.DB.ExecContext(ctx, query,
		envelope.Category,
		envelope.Allocation,
		envelope.Balance,
		envelope.Rollover,
		envelope.IsDeleted,
		envelope.UpdatedAt,
		envelope.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update envelope %d: %w", envelope.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateEnvelopeBalance sets the balance of one envelope.
func (r *SQLiteEnvelopeRepository) UpdateEnvelopeBalance(ctx context.Context, id int64, balance decimal.Decimal, now time.Time) error {
	query := `UPDATE envelopes SET balance = ?, updated_at = ? WHERE id = ?;`

	res, err := r.DB.ExecContext(ctx, query, balance, now, id)
	if err != nil {
		return fmt.Errorf("failed to update balance of envelope %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SoftDeleteEnvelope marks an envelope as deleted.
func (r *SQLiteEnvelopeRepository) SoftDeleteEnvelope(ctx context.Context, id int64, now time.Time) error {
	query := `UPDATE envelopes SET is_deleted = TRUE, updated_at = ? WHERE id = ? AND NOT is_deleted;`

	res, err := r.DB.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete envelope %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
