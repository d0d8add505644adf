package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
)

// PgxSystemStateRepository implements process markers and the monthly update
// using pgx. The monthly update serializes concurrent runs on the marker row.
type PgxSystemStateRepository struct {
	BaseRepository
}

func newPgxSystemStateRepository(pool *pgxpool.Pool) *PgxSystemStateRepository {
	return &PgxSystemStateRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SystemStateRepositoryFacade = (*PgxSystemStateRepository)(nil)

// GetSystemState retrieves a state entry by key.
func (r *PgxSystemStateRepository) GetSystemState(ctx context.Context, key string) (*domain.SystemState, error) {
	query := `SELECT key, value, updated_at FROM system_state WHERE key = $1;`

	var state domain.SystemState
	err := r.Pool.QueryRow(ctx, query, key).Scan(&state.Key, &state.Value, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get system state %q: %w", key, err)
	}
	return &state, nil
}

// SetSystemState upserts a state entry.
func (r *PgxSystemStateRepository) SetSystemState(ctx context.Context, key string, value string, now time.Time) error {
	query := `
		INSERT INTO system_state (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.Pool.Exec(ctx, query, key, value, now); err != nil {
		return fmt.Errorf("failed to set system state %q: %w", key, err)
	}
	return nil
}

// LastRolloverDate parses the monthly update marker. A nil time with a nil
// error means the update has never run.
func (r *PgxSystemStateRepository) LastRolloverDate(ctx context.Context) (*time.Time, error) {
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
// as one database transaction: it locks the marker row, re-checks
// eligibility, locks and updates every active envelope, and advances the
// marker. The loser of a concurrent double-invocation blocks on the marker
// lock and then observes the winner's month, failing with ErrAlreadyProcessed.
func (r *PgxSystemStateRepository) ProcessMonthlyUpdate(ctx context.Context, runDate time.Time) (*domain.MonthlyUpdateResult, error) {
	var result *domain.MonthlyUpdateResult
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		// Make sure a marker row exists so there is always something to lock,
		// then serialize on it. An empty value means the update never ran.
		seedQuery := `
			INSERT INTO system_state (key, value, updated_at)
			VALUES ($1, '', $2)
			ON CONFLICT (key) DO NOTHING;
		`
		if _, err := tx.Exec(ctx, seedQuery, domain.LastMonthlyUpdateKey, runDate); err != nil {
			return apperrors.NewAppError(500, "failed to seed monthly update marker", err)
		}

		var markerValue string
		err := tx.QueryRow(ctx, `SELECT value FROM system_state WHERE key = $1 FOR UPDATE;`, domain.LastMonthlyUpdateKey).Scan(&markerValue)
		if err != nil {
			return apperrors.NewAppError(500, "failed to lock monthly update marker", err)
		}

		if markerValue != "" {
			marker, err := time.Parse(domain.MarkerDateLayout, markerValue)
			if err != nil {
				return fmt.Errorf("malformed monthly update marker %q: %w", markerValue, err)
			}
			if !domain.MonthlyUpdateEligible(&marker, runDate) {
				return apperrors.ErrAlreadyProcessed
			}
		}

		// Lock the active envelopes for the batch update.
		rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+` FROM envelopes WHERE NOT is_deleted ORDER BY name FOR UPDATE;`)
		if err != nil {
			return apperrors.NewAppError(500, "failed to lock envelopes", err)
		}

		var envelopes []domain.Envelope
		for rows.Next() {
			m, err := scanEnvelope(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan envelope row: %w", err)
			}
			envelopes = append(envelopes, toDomainEnvelope(m))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate envelope rows: %w", err)
		}

		result = &domain.MonthlyUpdateResult{
			UpdatedEnvelopes:        make([]domain.EnvelopeUpdate, 0, len(envelopes)),
			TotalEnvelopesProcessed: len(envelopes),
			UpdateDate:              runDate,
		}

		updateQuery := `UPDATE envelopes SET balance = $2, updated_at = $3 WHERE id = $1;`
		batch := &pgx.Batch{}
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
			batch.Queue(updateQuery, e.ID, newBalance, runDate)
		}

		if batch.Len() > 0 {
			br := tx.SendBatch(ctx, batch)
			var batchErr error
			for i := 0; i < batch.Len(); i++ {
				ct, err := br.Exec()
				if err != nil {
					if batchErr == nil {
						batchErr = fmt.Errorf("failed to update balance for envelope %d: %w", envelopes[i].ID, err)
					}
				} else if ct.RowsAffected() == 0 {
					if batchErr == nil {
						batchErr = fmt.Errorf("%w: envelope %d vanished during monthly update", apperrors.ErrNotFound, envelopes[i].ID)
					}
				}
			}
			if closeErr := br.Close(); closeErr != nil && batchErr == nil {
				batchErr = fmt.Errorf("failed to close batch results: %w", closeErr)
			}
			if batchErr != nil {
				return batchErr
			}
		}

		markerQuery := `UPDATE system_state SET value = $2, updated_at = $3 WHERE key = $1;`
		if _, err := tx.Exec(ctx, markerQuery, domain.LastMonthlyUpdateKey, runDate.Format(domain.MarkerDateLayout), runDate); err != nil {
			return apperrors.NewAppError(500, "failed to advance monthly update marker", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
