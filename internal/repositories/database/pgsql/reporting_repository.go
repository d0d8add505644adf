package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// PgxReportingRepository serves aggregate reads for budget reports.
type PgxReportingRepository struct {
	BaseRepository
}

func newPgxReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetMonthlySpend sums spend amounts (as positive magnitudes) per envelope
// for the calendar month containing asOf.
func (r *PgxReportingRepository) GetMonthlySpend(ctx context.Context, asOf time.Time) (map[int64]decimal.Decimal, error) {
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT envelope_id, COALESCE(SUM(-amount), 0)
		FROM transactions
		WHERE amount < 0 AND created_at >= $1 AND created_at < $2
		GROUP BY envelope_id;
	`
	rows, err := r.Pool.Query(ctx, query, monthStart, nextMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly spend: %w", err)
	}
	defer rows.Close()

	spend := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var envelopeID int64
		var total decimal.Decimal
		if err := rows.Scan(&envelopeID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan spend row: %w", err)
		}
		spend[envelopeID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spend rows: %w", err)
	}
	return spend, nil
}
