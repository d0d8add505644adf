package services_test

import (
	"context"
	"math"
	"testing"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByEnvelope(ctx context.Context, envelopeID int64, limit int, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, envelopeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// MockEnvelopeReaderSvc is a mock type for the EnvelopeReaderSvc interface
type MockEnvelopeReaderSvc struct {
	mock.Mock
}

func (m *MockEnvelopeReaderSvc) GetEnvelopeByID(ctx context.Context, id int64) (*domain.Envelope, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeReaderSvc) GetEnvelopeByName(ctx context.Context, name string, userID string) (*domain.Envelope, error) {
	args := m.Called(ctx, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeReaderSvc) ListEnvelopes(ctx context.Context, userID string) ([]domain.Envelope, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeReaderSvc) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Test Suite Setup ---

type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo        *MockTransactionRepository
	mockEnvelopeSvc *MockEnvelopeReaderSvc
	service         *services.TransactionService
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.mockEnvelopeSvc = new(MockEnvelopeReaderSvc)
	suite.service = services.NewTransactionService(suite.mockRepo, suite.mockEnvelopeSvc)
}

// --- Test Cases ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_InvalidAmounts() {
	ctx := context.Background()
	for _, amount := range []float64{0, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := suite.service.CreateTransaction(ctx, dto.CreateTransactionRequest{
			EnvelopeID: 1,
			Amount:     amount,
		}, "alice")
		suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_DefaultsTypeBySign() {
	ctx := context.Background()
	envelope := &domain.Envelope{ID: 1, Name: "groceries", Balance: decimal.NewFromInt(100)}
	suite.mockEnvelopeSvc.On("GetEnvelopeByID", ctx, int64(1)).Return(envelope, nil).Twice()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(&domain.Transaction{ID: 1}, nil).Twice()

	_, err := suite.service.CreateTransaction(ctx, dto.CreateTransactionRequest{EnvelopeID: 1, Amount: -12.5}, "alice")
	suite.Require().NoError(err)
	_, err = suite.service.CreateTransaction(ctx, dto.CreateTransactionRequest{EnvelopeID: 1, Amount: 30}, "alice")
	suite.Require().NoError(err)

	spend := suite.mockRepo.Calls[0].Arguments.Get(1).(domain.Transaction)
	deposit := suite.mockRepo.Calls[1].Arguments.Get(1).(domain.Transaction)
	suite.Equal(domain.TransactionSpend, spend.Type)
	suite.Equal(domain.TransactionDeposit, deposit.Type)
}

func (suite *TransactionServiceTestSuite) TestRecordEntry_ExactDecimalReachesRepo() {
	ctx := context.Background()
	envelope := &domain.Envelope{ID: 1, Name: "groceries", Balance: decimal.NewFromInt(100)}
	suite.mockEnvelopeSvc.On("GetEnvelopeByID", ctx, int64(1)).Return(envelope, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(&domain.Transaction{ID: 1}, nil).Once()

	amount, err := decimal.NewFromString("-0.30")
	suite.Require().NoError(err)
	_, err = suite.service.RecordEntry(ctx, 1, amount, "3x Gum", domain.TransactionUseProduct, "alice", nil)

	suite.Require().NoError(err)
	saved := suite.mockRepo.Calls[0].Arguments.Get(1).(domain.Transaction)
	suite.Equal("-0.30", saved.Amount.StringFixed(2))
	suite.Equal(domain.TransactionUseProduct, saved.Type)
}

func (suite *TransactionServiceTestSuite) TestRecordEntry_ZeroAmountRejected() {
	_, err := suite.service.RecordEntry(context.Background(), 1, decimal.Zero, "noop", "", "alice", nil)

	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *TransactionServiceTestSuite) TestSpend_NegatesAmount() {
	ctx := context.Background()
	envelope := &domain.Envelope{ID: 2, Name: "dining", Balance: decimal.NewFromInt(50)}
	suite.mockEnvelopeSvc.On("GetEnvelopeByName", ctx, "dining", "alice").Return(envelope, nil).Once()
	suite.mockEnvelopeSvc.On("GetEnvelopeByID", ctx, int64(2)).Return(envelope, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(&domain.Transaction{ID: 3, EnvelopeID: 2, Amount: decimal.NewFromFloat(-12.5)}, nil).Once()

	txn, err := suite.service.Spend(ctx, "dining", 12.5, "lunch", "alice", nil)

	suite.Require().NoError(err)
	suite.True(txn.Amount.IsNegative())

	saved := suite.mockRepo.Calls[0].Arguments.Get(1).(domain.Transaction)
	suite.True(saved.Amount.Equal(decimal.NewFromFloat(-12.5)))
	suite.Equal(domain.TransactionSpend, saved.Type)
	suite.Equal("lunch", saved.Description)
}

func (suite *TransactionServiceTestSuite) TestSpend_InsufficientFundsPassesThrough() {
	ctx := context.Background()
	envelope := &domain.Envelope{ID: 2, Name: "dining", Balance: decimal.NewFromInt(10)}
	suite.mockEnvelopeSvc.On("GetEnvelopeByName", ctx, "dining", "alice").Return(envelope, nil).Once()
	suite.mockEnvelopeSvc.On("GetEnvelopeByID", ctx, int64(2)).Return(envelope, nil).Once()

	fundsErr := &apperrors.InsufficientFundsError{
		Current:  decimal.NewFromInt(10),
		Required: decimal.NewFromInt(20),
	}
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(nil, fundsErr).Once()

	_, err := suite.service.Spend(ctx, "dining", 20, "dinner", "alice", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	var ife *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &ife)
	suite.True(ife.Current.Equal(decimal.NewFromInt(10)))
}

func (suite *TransactionServiceTestSuite) TestSpend_NegativeAmountRejected() {
	_, err := suite.service.Spend(context.Background(), "dining", -5, "", "alice", nil)
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *TransactionServiceTestSuite) TestAddFunds_KeepsPositiveAmount() {
	ctx := context.Background()
	envelope := &domain.Envelope{ID: 4, Name: "car", Balance: decimal.NewFromInt(0)}
	suite.mockEnvelopeSvc.On("GetEnvelopeByName", ctx, "car", "bob").Return(envelope, nil).Once()
	suite.mockEnvelopeSvc.On("GetEnvelopeByID", ctx, int64(4)).Return(envelope, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(&domain.Transaction{ID: 5}, nil).Once()

	_, err := suite.service.AddFunds(ctx, "car", 75, "refund", "bob", nil)

	suite.Require().NoError(err)
	saved := suite.mockRepo.Calls[0].Arguments.Get(1).(domain.Transaction)
	suite.True(saved.Amount.Equal(decimal.NewFromInt(75)))
	suite.Equal(domain.TransactionDeposit, saved.Type)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_ReturnsRemovedEntry() {
	ctx := context.Background()
	removed := &domain.Transaction{ID: 8, EnvelopeID: 2, Amount: decimal.NewFromInt(-40)}
	suite.mockRepo.On("DeleteTransaction", ctx, int64(8)).Return(removed, nil).Once()

	txn, err := suite.service.DeleteTransaction(ctx, 8)

	suite.Require().NoError(err)
	suite.Equal(removed, txn)
}

func (suite *TransactionServiceTestSuite) TestListTransactions_DefaultsLimit() {
	ctx := context.Background()
	envelope := &domain.Envelope{ID: 2, Name: "dining"}
	suite.mockEnvelopeSvc.On("GetEnvelopeByName", ctx, "dining", "alice").Return(envelope, nil).Once()
	suite.mockRepo.On("ListTransactionsByEnvelope", ctx, int64(2), 20, 0).
		Return([]domain.Transaction{}, nil).Once()

	_, err := suite.service.ListTransactions(ctx, "dining", "alice", 0, 0)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
