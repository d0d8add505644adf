package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// SQLiteReportingRepository serves aggregate reads for budget reports.
type SQLiteReportingRepository struct {
	BaseRepository
}

func newSQLiteReportingRepository(db *sql.DB) *SQLiteReportingRepository {
	return &SQLiteReportingRepository{BaseRepository{DB: db}}
}

var _ portsrepo.ReportingRepository = (*SQLiteReportingRepository)(nil)

// GetMonthlySpend sums spend amounts (as positive magnitudes) per envelope
// for the calendar month containing asOf.
func (r *SQLiteReportingRepository) GetMonthlySpend(ctx context.Context, asOf time.Time) (map[int64]decimal.Decimal, error) {
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT envelope_id, COALESCE(SUM(-amount), 0)
		FROM transactions
		WHERE amount < 0 AND created_at >= ? AND created_at < ?
		GROUP BY envelope_id;
	`
	rows, err := r.DB.QueryContext(ctx, query, monthStart, nextMonth)
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
