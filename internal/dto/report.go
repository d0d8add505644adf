package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetReportEntry is one envelope's line in the budget report.
type BudgetReportEntry struct {
	Envelope   EnvelopeResponse `json:"envelope"`
	Spent      decimal.Decimal  `json:"spent"`      // This month's spend, positive magnitude
	Progress   float64          `json:"progress"`   // balance/allocation in percent, 0 when allocation is 0
	OverBudget bool             `json:"overBudget"` // Balance is negative
}

// EnvelopeReport is the detail view of one envelope: its current state,
// month-to-date spend and the most recent ledger entries.
type EnvelopeReport struct {
	Envelope           EnvelopeResponse      `json:"envelope"`
	Spent              decimal.Decimal       `json:"spent"`
	Remaining          decimal.Decimal       `json:"remaining"` // Same as the balance, named for readers
	Progress           float64               `json:"progress"`
	OverBudget         bool                  `json:"overBudget"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
	MonthElapsed       float64               `json:"monthElapsed"`
	GeneratedAt        time.Time             `json:"generatedAt"`
}

// BudgetReport is the full budget snapshot for one user's view.
type BudgetReport struct {
	Entries         []BudgetReportEntry `json:"entries"`
	TotalAllocation decimal.Decimal     `json:"totalAllocation"`
	TotalBalance    decimal.Decimal     `json:"totalBalance"`
	TotalSpent      decimal.Decimal     `json:"totalSpent"`
	MonthElapsed    float64             `json:"monthElapsed"` // Fraction of the month passed, for pacing
	GeneratedAt     time.Time           `json:"generatedAt"`
}
