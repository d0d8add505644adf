package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
	"github.com/mark-schultz-wu/envelope-buddy/internal/notify"
	"github.com/shopspring/decimal"
)

type RolloverService struct {
	systemStateRepo portsrepo.SystemStateRepositoryFacade
	notifier        notify.Notifier
}

func NewRolloverService(repo portsrepo.SystemStateRepositoryFacade, notifier notify.Notifier) *RolloverService {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &RolloverService{
		systemStateRepo: repo,
		notifier:        notifier,
	}
}

func (s *RolloverService) LastRolloverDate(ctx context.Context) (*time.Time, error) {
	return s.systemStateRepo.LastRolloverDate(ctx)
}

func (s *RolloverService) IsRolloverNeeded(ctx context.Context, now time.Time) (bool, error) {
	marker, err := s.systemStateRepo.LastRolloverDate(ctx)
	if err != nil {
		return false, err
	}
	return domain.MonthlyUpdateEligible(marker, now), nil
}

// ProcessMonthlyUpdate applies the month-boundary balance update. A nil
// result with a nil error means nothing needed doing: the marker already
// covers this month, or a concurrent run won the race.
func (s *RolloverService) ProcessMonthlyUpdate(ctx context.Context, now time.Time) (*domain.MonthlyUpdateResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	needed, err := s.IsRolloverNeeded(ctx, now)
	if err != nil {
		return nil, err
	}
	if !needed {
		logger.Debug("Monthly update already processed for this month", slog.String("month", now.Format("2006-01")))
		return nil, nil
	}

	result, err := s.systemStateRepo.ProcessMonthlyUpdate(ctx, now)
	if err != nil {
		// Losing a concurrent double-invocation is not a failure; the
		// winner already did the work.
		if errors.Is(err, apperrors.ErrAlreadyProcessed) {
			logger.Info("Monthly update raced a concurrent run, nothing to do")
			return nil, nil
		}
		logger.Error("Monthly update failed", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Monthly update complete",
		slog.Int("envelopes", result.TotalEnvelopesProcessed),
		slog.Int("rollover", result.RolloverCount),
		slog.Int("reset", result.ResetCount),
	)

	// The run is committed; a failed publish only costs the notification.
	summary := s.FormatRolloverSummary(result)
	if err := s.notifier.PublishMonthlyUpdate(ctx, result, summary); err != nil {
		logger.Warn("Failed to publish monthly update notification", slog.String("error", err.Error()))
	}

	return result, nil
}

// FormatRolloverSummary renders a run result as a multi-line summary, e.g.
//
//	Monthly Update - January 2026 - Processed 4 envelopes
//	  Rollover: 3 envelopes | Reset: 1 envelopes
//	  Groceries - Rollover | $50.00 → $150.00 (Allocation: $100.00)
func (s *RolloverService) FormatRolloverSummary(result *domain.MonthlyUpdateResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Monthly Update - %s - Processed %d envelopes\n",
		result.UpdateDate.Format("January 2006"), result.TotalEnvelopesProcessed)
	fmt.Fprintf(&b, "  Rollover: %d envelopes | Reset: %d envelopes\n",
		result.RolloverCount, result.ResetCount)

	for _, u := range result.UpdatedEnvelopes {
		mode := "Reset"
		if u.Rollover {
			mode = "Rollover"
		}
		fmt.Fprintf(&b, "  %s - %s | %s → %s (Allocation: %s)\n",
			u.Name, mode, formatMoney(u.OldBalance), formatMoney(u.NewBalance), formatMoney(u.Allocation))
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatMoney renders a decimal as $x.xx, keeping the sign ahead of the
// currency symbol for negatives: -$4.50.
func formatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
