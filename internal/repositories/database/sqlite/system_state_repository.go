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
)

// SQLiteSystemStateRepository implements process markers and the monthly
// update on database/sql. The write transaction's single-writer lock plays
// the role the marker row lock plays in Postgres.
type SQLiteSystemStateRepository struct {
	BaseRepository
}

func newSQLiteSystemStateRepository(db *sql.DB) *SQLiteSystemStateRepository {
	return &SQLiteSystemStateRepository{BaseRepository{DB: db}}
}

var _ portsrepo.SystemStateRepositoryFacade = (*SQLiteSystemStateRepository)(nil)

// GetSystemState retrieves a state entry by key.
func (r *SQLiteSystemStateRepository) GetSystemState(ctx context.Context, key string) (*domain.SystemState, error) {
	var state domain.SystemState
	err := r.DB.QueryRowContext(ctx, `SELECT key, value, updated_at FROM system_state WHERE key = ?;`, key).
		Scan(&state.Key, &state.Value, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get system state %q: %w", key, err)
	}
	return &state, nil
}

// SetSystemState upserts a state entry.
func (r *SQLiteSystemStateRepository) SetSystemState(ctx context.Context, key string, value string, now time.Time) error {
	query := `
		INSERT INTO system_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`
	if _, err := r.DB.ExecContext(ctx, query, key, value, now); err != nil {
		return fmt.Errorf("failed to set system state %q: %w", key, err)
	}
	return nil
}

// LastRolloverDate parses the monthly update marker. A nil time with a nil
// error means the update has never run.
func (r *SQLiteSystemStateRepository) LastRolloverDate(ctx context.Context) (*time.Time, error) {
	state, err := r.GetSystemState(ctx, domain.LastMonthlyUpdateKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if state.Value == "" {
		return nil, nil
	}
	marker, err := state.MarkerTime()
	if err != nil {
		return nil, fmt.Errorf("malformed monthly update marker %q: %w", state.Value, err)
	}
	return &marker, nil
}

// ProcessMonthlyUpdate applies the month-boundary balance update for runDate
// as one database transaction. Eligibility is re-checked inside the write
// transaction, so the loser of a concurrent double-invocation observes the
// winner's marker and fails with ErrAlreadyProcessed.
func (r *SQLiteSystemStateRepository) ProcessMonthlyUpdate(ctx context.Context, runDate time.Time) (*domain.MonthlyUpdateResult, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(tx)

	var markerValue string
	err = tx.QueryRowContext(ctx, `SELECT value FROM system_state WHERE key = ?;`, domain.LastMonthlyUpdateKey).Scan(&markerValue)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewAppError(500, "failed to read monthly update marker", err)
	}

	if markerValue != "" {
		marker, err := time.Parse(domain.MarkerDateLayout, markerValue)
		if err != nil {
			return nil, fmt.Errorf("malformed monthly update marker %q: %w", markerValue, err)
		}
		if !domain.MonthlyUpdateEligible(&marker, runDate) {
			return nil, apperrors.ErrAlreadyProcessed
		}
	}

	rows, err := tx.QueryContext(ctx, `SELECT `+envelopeColumns+` FROM envelopes WHERE NOT is_deleted ORDER BY name;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list envelopes", err)
	}

	var envelopes []domain.Envelope
	for rows.Next() {
		m, err := scanEnvelope(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan envelope row: %w", err)
		}
		envelopes = append(envelopes, toDomainEnvelope(m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate envelope rows: %w", err)
	}

	result := &domain.MonthlyUpdateResult{
		UpdatedEnvelopes:        make([]domain.EnvelopeUpdate, 0, len(envelopes)),
		TotalEnvelopesProcessed: len(envelopes),
		UpdateDate:              runDate,
	}

	for _, e := range envelopes {
		newBalance := domain.NextMonthlyBalance(e)
		if e.Rollover {
			result.RolloverCount++
		} else {
			result.ResetCount++
		}
		result.UpdatedEnvelopes = append(result.UpdatedEnvelopes, domain.EnvelopeUpdate{
			EnvelopeID: e.ID,
			Name:       e.Name,
			OldBalance: e.Balance,
			NewBalance: newBalance,
			Allocation: e.Allocation,
			Rollover:   e.Rollover,
		})
		if _, err := tx.ExecContext(ctx, `UPDATE envelopes SET balance = ?, updated_at = ? WHERE id = ?;`, newBalance, runDate, e.ID); err != nil {
			return nil, fmt.Errorf("failed to update balance for envelope %d: %w", e.ID, err)
		}
	}

	markerQuery := `
		INSERT INTO system_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`
	if _, err := tx.ExecContext(ctx, markerQuery, domain.LastMonthlyUpdateKey, runDate.Format(domain.MarkerDateLayout), runDate); err != nil {
		return nil, apperrors.NewAppError(500, "failed to advance monthly update marker", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return result, nil
}
