package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/repositories/database/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// SQLiteRepositorySuite exercises the repository invariants against a real
// store: balance atomicity, the overdraft gate, soft-delete visibility and
// the monthly update's arithmetic and idempotency.
type SQLiteRepositorySuite struct {
	suite.Suite
	repos portsrepo.RepositoryProvider
}

func (suite *SQLiteRepositorySuite) SetupTest() {
	db, err := sqlite.Open(filepath.Join(suite.T().TempDir(), "test.db"))
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { db.Close() })
	suite.repos = sqlite.NewRepositoryProvider(db)
}

func (suite *SQLiteRepositorySuite) createEnvelope(name string, balance, allocation int64, rollover bool, userID *string) *domain.Envelope {
	now := time.Now().UTC()
	saved, err := suite.repos.EnvelopeRepo.SaveEnvelope(context.Background(), domain.Envelope{
		Name:         name,
		Category:     "general",
		Allocation:   decimal.NewFromInt(allocation),
		Balance:      decimal.NewFromInt(balance),
		Rollover:     rollover,
		IsIndividual: userID != nil,
		UserID:       userID,
		AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	})
	suite.Require().NoError(err)
	return saved
}

func (suite *SQLiteRepositorySuite) balanceOf(envelopeID int64) decimal.Decimal {
	envelope, err := suite.repos.EnvelopeRepo.FindEnvelopeByID(context.Background(), envelopeID)
	suite.Require().NoError(err)
	return envelope.Balance
}

func entry(envelopeID int64, amount int64, txnType domain.TransactionType) domain.Transaction {
	return domain.Transaction{
		EnvelopeID:  envelopeID,
		Amount:      decimal.NewFromInt(amount),
		Description: "test entry",
		UserID:      "alice",
		Type:        txnType,
		CreatedAt:   time.Now().UTC(),
	}
}

// --- Transactions ---

func (suite *SQLiteRepositorySuite) TestSaveTransaction_AdjustsBalance() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", 100, 100, false, nil)

	saved, err := suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, -40, domain.TransactionSpend))

	suite.Require().NoError(err)
	suite.NotZero(saved.ID)
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(60)))
}

func (suite *SQLiteRepositorySuite) TestSaveTransaction_OverdraftWritesNothing() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", 10, 100, false, nil)

	_, err := suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, -50, domain.TransactionSpend))

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)
	suite.True(insufficient.Current.Equal(decimal.NewFromInt(10)))
	suite.True(insufficient.Required.Equal(decimal.NewFromInt(50)))

	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(10)))
	txns, err := suite.repos.TransactionRepo.ListTransactionsByEnvelope(ctx, env.ID, 10, 0)
	suite.Require().NoError(err)
	suite.Empty(txns)
}

func (suite *SQLiteRepositorySuite) TestSaveTransaction_DepositMustClearOverdraft() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", -100, 100, true, nil)

	// A deposit too small to bring the balance back to zero is refused.
	_, err := suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, 50, domain.TransactionDeposit))
	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(-100)))

	_, err = suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, 150, domain.TransactionDeposit))
	suite.Require().NoError(err)
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(50)))
}

func (suite *SQLiteRepositorySuite) TestSaveTransaction_UnknownEnvelope() {
	_, err := suite.repos.TransactionRepo.SaveTransaction(context.Background(), entry(999, -5, domain.TransactionSpend))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SQLiteRepositorySuite) TestSaveTransaction_DeletedEnvelopeRefused() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", 100, 100, false, nil)
	suite.Require().NoError(suite.repos.EnvelopeRepo.SoftDeleteEnvelope(ctx, env.ID, time.Now().UTC()))

	_, err := suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, -5, domain.TransactionSpend))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SQLiteRepositorySuite) TestDeleteTransaction_ReversesBalance() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", 100, 100, false, nil)
	saved, err := suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, -30, domain.TransactionSpend))
	suite.Require().NoError(err)
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(70)))

	removed, err := suite.repos.TransactionRepo.DeleteTransaction(ctx, saved.ID)

	suite.Require().NoError(err)
	suite.Equal(saved.ID, removed.ID)
	suite.True(removed.Amount.Equal(decimal.NewFromInt(-30)))
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(100)))

	_, err = suite.repos.TransactionRepo.FindTransactionByID(ctx, saved.ID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SQLiteRepositorySuite) TestDeleteTransaction_DepositReversalMayOverdraw() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", 0, 100, true, nil)
	deposit, err := suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, 80, domain.TransactionDeposit))
	suite.Require().NoError(err)
	_, err = suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, -50, domain.TransactionSpend))
	suite.Require().NoError(err)

	// Removing a deposit that was already spent leaves the envelope in the red.
	_, err = suite.repos.TransactionRepo.DeleteTransaction(ctx, deposit.ID)

	suite.Require().NoError(err)
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(-50)))
}

func (suite *SQLiteRepositorySuite) TestListTransactionsByEnvelope_NewestFirst() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", 100, 100, false, nil)

	first := entry(env.ID, -10, domain.TransactionSpend)
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	_, err := suite.repos.TransactionRepo.SaveTransaction(ctx, first)
	suite.Require().NoError(err)
	second, err := suite.repos.TransactionRepo.SaveTransaction(ctx, entry(env.ID, -20, domain.TransactionSpend))
	suite.Require().NoError(err)

	txns, err := suite.repos.TransactionRepo.ListTransactionsByEnvelope(ctx, env.ID, 10, 0)

	suite.Require().NoError(err)
	suite.Require().Len(txns, 2)
	suite.Equal(second.ID, txns[0].ID)
}

// --- Envelope visibility ---

func (suite *SQLiteRepositorySuite) TestFindEnvelopeByName_IndividualWinsOverShared() {
	ctx := context.Background()
	alice := "alice"
	suite.createEnvelope("allowance", 10, 10, false, nil)
	individual := suite.createEnvelope("allowance", 20, 20, false, &alice)

	found, err := suite.repos.EnvelopeRepo.FindEnvelopeByName(ctx, "allowance", "alice")

	suite.Require().NoError(err)
	suite.Equal(individual.ID, found.ID)
}

func (suite *SQLiteRepositorySuite) TestSoftDeletedEnvelopeExcluded() {
	ctx := context.Background()
	env := suite.createEnvelope("groceries", 100, 100, false, nil)
	suite.Require().NoError(suite.repos.EnvelopeRepo.SoftDeleteEnvelope(ctx, env.ID, time.Now().UTC()))

	_, err := suite.repos.EnvelopeRepo.FindEnvelopeByName(ctx, "groceries", "alice")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	active, err := suite.repos.EnvelopeRepo.FindActiveEnvelopes(ctx)
	suite.Require().NoError(err)
	suite.Empty(active)
}

// --- Monthly update ---

func (suite *SQLiteRepositorySuite) TestProcessMonthlyUpdate_Arithmetic() {
	ctx := context.Background()
	carries := suite.createEnvelope("carries", 25, 100, true, nil)
	resets := suite.createEnvelope("resets", 40, 60, false, nil)
	overdrawn := suite.createEnvelope("overdrawn", -10, 50, true, nil)
	runDate := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	result, err := suite.repos.SystemStateRepo.ProcessMonthlyUpdate(ctx, runDate)

	suite.Require().NoError(err)
	suite.Equal(3, result.TotalEnvelopesProcessed)
	suite.Equal(2, result.RolloverCount)
	suite.Equal(1, result.ResetCount)

	suite.True(suite.balanceOf(carries.ID).Equal(decimal.NewFromInt(125)))
	suite.True(suite.balanceOf(resets.ID).Equal(decimal.NewFromInt(60)))
	suite.True(suite.balanceOf(overdrawn.ID).Equal(decimal.NewFromInt(40)))

	marker, err := suite.repos.SystemStateRepo.LastRolloverDate(ctx)
	suite.Require().NoError(err)
	suite.Require().NotNil(marker)
	suite.Equal("2026-02-01", marker.Format(domain.MarkerDateLayout))
}

func (suite *SQLiteRepositorySuite) TestProcessMonthlyUpdate_IdempotentWithinMonth() {
	ctx := context.Background()
	env := suite.createEnvelope("carries", 25, 100, true, nil)
	runDate := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	_, err := suite.repos.SystemStateRepo.ProcessMonthlyUpdate(ctx, runDate)
	suite.Require().NoError(err)

	_, err = suite.repos.SystemStateRepo.ProcessMonthlyUpdate(ctx, runDate.Add(48*time.Hour))

	suite.Require().ErrorIs(err, apperrors.ErrAlreadyProcessed)
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(125)))
}

func (suite *SQLiteRepositorySuite) TestProcessMonthlyUpdate_RunsAgainNextMonth() {
	ctx := context.Background()
	env := suite.createEnvelope("carries", 25, 100, true, nil)

	_, err := suite.repos.SystemStateRepo.ProcessMonthlyUpdate(ctx, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	result, err := suite.repos.SystemStateRepo.ProcessMonthlyUpdate(ctx, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalEnvelopesProcessed)
	suite.True(suite.balanceOf(env.ID).Equal(decimal.NewFromInt(225)))
}

func (suite *SQLiteRepositorySuite) TestProcessMonthlyUpdate_SkipsDeletedEnvelopes() {
	ctx := context.Background()
	kept := suite.createEnvelope("kept", 10, 100, true, nil)
	gone := suite.createEnvelope("gone", 10, 100, true, nil)
	suite.Require().NoError(suite.repos.EnvelopeRepo.SoftDeleteEnvelope(ctx, gone.ID, time.Now().UTC()))

	result, err := suite.repos.SystemStateRepo.ProcessMonthlyUpdate(ctx, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.Equal(1, result.TotalEnvelopesProcessed)
	suite.True(suite.balanceOf(kept.ID).Equal(decimal.NewFromInt(110)))
	suite.True(suite.balanceOf(gone.ID).Equal(decimal.NewFromInt(10)))
}

func (suite *SQLiteRepositorySuite) TestLastRolloverDate_NilBeforeFirstRun() {
	marker, err := suite.repos.SystemStateRepo.LastRolloverDate(context.Background())
	suite.Require().NoError(err)
	suite.Nil(marker)
}

func TestSQLiteRepositorySuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositorySuite))
}
