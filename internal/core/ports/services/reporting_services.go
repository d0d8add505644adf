package services

import (
	"context"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
)

// ReportingSvcFacade builds read-only budget snapshots.
type ReportingSvcFacade interface {
	// BudgetReport assembles the budget snapshot visible to userID as of
	// now: per-envelope balance, allocation, month-to-date spend, progress.
	BudgetReport(ctx context.Context, userID string, now time.Time) (*dto.BudgetReport, error)

	// EnvelopeReport builds the detail view of one envelope resolved by
	// name: state, month-to-date spend and recent ledger entries.
	EnvelopeReport(ctx context.Context, envelopeName string, userID string, now time.Time) (*dto.EnvelopeReport, error)

	// FormatBudgetReport renders a report as aligned text with progress
	// bars, suitable for chat or terminal output.
	FormatBudgetReport(report *dto.BudgetReport) string
}
