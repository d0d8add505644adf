package repositories

import (
	"context"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
)

// SystemStateReader defines read operations for process markers
type SystemStateReader interface {
	// GetSystemState retrieves a state entry by key. ErrNotFound when absent.
	GetSystemState(ctx context.Context, key string) (*domain.SystemState, error)

	// LastRolloverDate parses the monthly update marker. A nil time with a
	// nil error means the marker has never been written.
	LastRolloverDate(ctx context.Context) (*time.Time, error)
}

// SystemStateWriter defines write operations for process markers
type SystemStateWriter interface {
	// SetSystemState upserts a state entry.
	SetSystemState(ctx context.Context, key string, value string, now time.Time) error
}

// MonthlyUpdater runs the month-boundary balance update as one atomic unit:
// re-check eligibility against the locked marker row, lock the active
// envelopes, apply the rollover arithmetic, upsert the marker, commit.
type MonthlyUpdater interface {
	// ProcessMonthlyUpdate applies the monthly update for runDate. Returns
	// ErrAlreadyProcessed when the marker already covers runDate's month,
	// which a concurrent double-invocation's loser will observe.
	ProcessMonthlyUpdate(ctx context.Context, runDate time.Time) (*domain.MonthlyUpdateResult, error)
}

// SystemStateRepositoryFacade combines marker access with the monthly update
type SystemStateRepositoryFacade interface {
	SystemStateReader
	SystemStateWriter
	MonthlyUpdater
}
