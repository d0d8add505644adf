package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportingRepository defines aggregate read operations for budget reports
type ReportingRepository interface {
	// GetMonthlySpend sums spend amounts (as positive magnitudes) per
	// envelope for the calendar month containing asOf.
	GetMonthlySpend(ctx context.Context, asOf time.Time) (map[int64]decimal.Decimal, error)
}
