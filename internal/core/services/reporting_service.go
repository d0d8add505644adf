package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
	"github.com/shopspring/decimal"
)

const (
	progressBarWidth   = 10
	recentEntriesLimit = 5
)

type ReportingService struct {
	envelopeRepo    portsrepo.EnvelopeReader
	transactionRepo portsrepo.TransactionReader
	reportingRepo   portsrepo.ReportingRepository
}

func NewReportingService(envelopeRepo portsrepo.EnvelopeReader, transactionRepo portsrepo.TransactionReader, reportingRepo portsrepo.ReportingRepository) *ReportingService {
	return &ReportingService{
		envelopeRepo:    envelopeRepo,
		transactionRepo: transactionRepo,
		reportingRepo:   reportingRepo,
	}
}

// BudgetReport assembles the budget snapshot visible to userID as of now.
func (s *ReportingService) BudgetReport(ctx context.Context, userID string, now time.Time) (*dto.BudgetReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	envelopes, err := s.envelopeRepo.FindActiveEnvelopes(ctx)
	if err != nil {
		logger.Error("Failed to list envelopes for report", slog.String("error", err.Error()))
		return nil, err
	}

	spentByEnvelope, err := s.reportingRepo.GetMonthlySpend(ctx, now)
	if err != nil {
		logger.Error("Failed to aggregate monthly spend", slog.String("error", err.Error()))
		return nil, err
	}

	report := &dto.BudgetReport{
		Entries:      make([]dto.BudgetReportEntry, 0, len(envelopes)),
		MonthElapsed: monthElapsed(now),
		GeneratedAt:  now,
	}

	for i := range envelopes {
		e := &envelopes[i]
		if !e.AccessibleBy(userID) {
			continue
		}
		spent := spentByEnvelope[e.ID]
		report.Entries = append(report.Entries, dto.BudgetReportEntry{
			Envelope:   dto.ToEnvelopeResponse(e),
			Spent:      spent,
			Progress:   progressPercent(e.Balance, e.Allocation),
			OverBudget: e.Balance.IsNegative(),
		})
		report.TotalAllocation = report.TotalAllocation.Add(e.Allocation)
		report.TotalBalance = report.TotalBalance.Add(e.Balance)
		report.TotalSpent = report.TotalSpent.Add(spent)
	}

	return report, nil
}

// EnvelopeReport builds the detail view of one envelope: its state,
// month-to-date spend and the most recent ledger entries.
func (s *ReportingService) EnvelopeReport(ctx context.Context, envelopeName string, userID string, now time.Time) (*dto.EnvelopeReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	envelope, err := s.envelopeRepo.FindEnvelopeByName(ctx, strings.TrimSpace(envelopeName), userID)
	if err != nil {
		return nil, err
	}

	spentByEnvelope, err := s.reportingRepo.GetMonthlySpend(ctx, now)
	if err != nil {
		logger.Error("Failed to aggregate monthly spend", slog.String("error", err.Error()))
		return nil, err
	}

	recent, err := s.transactionRepo.ListTransactionsByEnvelope(ctx, envelope.ID, recentEntriesLimit, 0)
	if err != nil {
		logger.Error("Failed to list recent transactions", slog.String("error", err.Error()), slog.Int64("envelope_id", envelope.ID))
		return nil, err
	}

	return &dto.EnvelopeReport{
		Envelope:           dto.ToEnvelopeResponse(envelope),
		Spent:              spentByEnvelope[envelope.ID],
		Remaining:          envelope.Balance,
		Progress:           progressPercent(envelope.Balance, envelope.Allocation),
		OverBudget:         envelope.Balance.IsNegative(),
		RecentTransactions: dto.ToListTransactionResponse(recent),
		MonthElapsed:       monthElapsed(now),
		GeneratedAt:        now,
	}, nil
}

// FormatBudgetReport renders a report as aligned text with progress bars.
func (s *ReportingService) FormatBudgetReport(report *dto.BudgetReport) string {
	if report == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Budget Report - %s\n", report.GeneratedAt.Format("January 2, 2006"))

	for _, entry := range report.Entries {
		e := entry.Envelope
		name := e.Name
		if e.IsIndividual && e.UserID != nil {
			name = fmt.Sprintf("%s (%s)", e.Name, *e.UserID)
		}
		fmt.Fprintf(&b, "%s %s %.1f%% | %s / %s | Spent: %s\n",
			name,
			progressBar(entry.Progress),
			entry.Progress,
			formatSignedMoney(e.Balance),
			formatSignedMoney(e.Allocation),
			formatSignedMoney(entry.Spent),
		)
	}

	fmt.Fprintf(&b, "Total: %s of %s remaining | Spent this month: %s\n",
		formatSignedMoney(report.TotalBalance),
		formatSignedMoney(report.TotalAllocation),
		formatSignedMoney(report.TotalSpent),
	)
	fmt.Fprintf(&b, "Month elapsed: %.0f%%", report.MonthElapsed*100)

	return b.String()
}

// progressPercent is balance over allocation in percent, 0 for an unfunded
// envelope. Negative balances report 0; overspend shows in the amounts.
func progressPercent(balance, allocation decimal.Decimal) float64 {
	if allocation.IsZero() {
		return 0
	}
	pct, _ := balance.Div(allocation).Mul(decimal.NewFromInt(100)).Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// progressBar renders pct (0-100) as a fixed-width bar of █ and ░ runes.
func progressBar(pct float64) string {
	filled := int(pct / 100 * progressBarWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}

// formatSignedMoney renders a decimal with an explicit sign: +$50.00, -$4.50.
func formatSignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

// monthElapsed is the fraction of now's month that has passed, by day.
func monthElapsed(now time.Time) float64 {
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return float64(now.Day()) / float64(daysInMonth)
}
