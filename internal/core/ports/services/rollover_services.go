package services

import (
	"context"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
)

// RolloverSvcFacade runs the month-boundary balance update.
type RolloverSvcFacade interface {
	// IsRolloverNeeded reports whether the update should run for now's
	// month, based on the persisted marker.
	IsRolloverNeeded(ctx context.Context, now time.Time) (bool, error)

	// LastRolloverDate returns the marker date, or nil when the update has
	// never run.
	LastRolloverDate(ctx context.Context) (*time.Time, error)

	// ProcessMonthlyUpdate applies the update for now's month as one atomic
	// unit. A same-month invocation, including the loser of a concurrent
	// double-run, returns (nil, nil).
	ProcessMonthlyUpdate(ctx context.Context, now time.Time) (*domain.MonthlyUpdateResult, error)

	// FormatRolloverSummary renders a run result as a human-readable
	// multi-line summary.
	FormatRolloverSummary(result *domain.MonthlyUpdateResult) string
}
