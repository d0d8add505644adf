package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockSystemStateRepository is a mock type for the SystemStateRepositoryFacade interface
type MockSystemStateRepository struct {
	mock.Mock
}

func (m *MockSystemStateRepository) GetSystemState(ctx context.Context, key string) (*domain.SystemState, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemState), args.Error(1)
}

func (m *MockSystemStateRepository) LastRolloverDate(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockSystemStateRepository) SetSystemState(ctx context.Context, key string, value string, now time.Time) error {
	args := m.Called(ctx, key, value, now)
	return args.Error(0)
}

func (m *MockSystemStateRepository) ProcessMonthlyUpdate(ctx context.Context, runDate time.Time) (*domain.MonthlyUpdateResult, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlyUpdateResult), args.Error(1)
}

// MockNotifier is a mock type for the notify.Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PublishMonthlyUpdate(ctx context.Context, result *domain.MonthlyUpdateResult, summary string) error {
	args := m.Called(ctx, result, summary)
	return args.Error(0)
}

func (m *MockNotifier) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Test Suite Setup ---

type RolloverServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockSystemStateRepository
	mockNotifier *MockNotifier
	service      *services.RolloverService
}

func (suite *RolloverServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockSystemStateRepository)
	suite.mockNotifier = new(MockNotifier)
	suite.service = services.NewRolloverService(suite.mockRepo, suite.mockNotifier)
}

// --- Test Cases ---

func (suite *RolloverServiceTestSuite) TestIsRolloverNeeded_NeverRan() {
	ctx := context.Background()
	suite.mockRepo.On("LastRolloverDate", ctx).Return(nil, nil).Once()

	needed, err := suite.service.IsRolloverNeeded(ctx, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.True(needed)
}

func (suite *RolloverServiceTestSuite) TestIsRolloverNeeded_SameMonth() {
	ctx := context.Background()
	marker := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("LastRolloverDate", ctx).Return(&marker, nil).Once()

	needed, err := suite.service.IsRolloverNeeded(ctx, time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.False(needed)
}

func (suite *RolloverServiceTestSuite) TestProcessMonthlyUpdate_SameMonthIsNoop() {
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	marker := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("LastRolloverDate", ctx).Return(&marker, nil).Once()

	result, err := suite.service.ProcessMonthlyUpdate(ctx, now)

	suite.Require().NoError(err)
	suite.Nil(result)
	suite.mockRepo.AssertNotCalled(suite.T(), "ProcessMonthlyUpdate")
	suite.mockNotifier.AssertNotCalled(suite.T(), "PublishMonthlyUpdate")
}

func (suite *RolloverServiceTestSuite) TestProcessMonthlyUpdate_LosingRaceIsNoop() {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC)
	marker := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	suite.mockRepo.On("LastRolloverDate", ctx).Return(&marker, nil).Once()
	suite.mockRepo.On("ProcessMonthlyUpdate", ctx, now).
		Return(nil, apperrors.ErrAlreadyProcessed).Once()

	result, err := suite.service.ProcessMonthlyUpdate(ctx, now)

	suite.Require().NoError(err)
	suite.Nil(result)
	suite.mockNotifier.AssertNotCalled(suite.T(), "PublishMonthlyUpdate")
}

func (suite *RolloverServiceTestSuite) TestProcessMonthlyUpdate_PublishesNotification() {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC)
	suite.mockRepo.On("LastRolloverDate", ctx).Return(nil, nil).Once()

	result := &domain.MonthlyUpdateResult{
		UpdatedEnvelopes: []domain.EnvelopeUpdate{
			{EnvelopeID: 1, Name: "groceries", OldBalance: decimal.NewFromInt(50), NewBalance: decimal.NewFromInt(150), Allocation: decimal.NewFromInt(100), Rollover: true},
		},
		TotalEnvelopesProcessed: 1,
		RolloverCount:           1,
		UpdateDate:              now,
	}
	suite.mockRepo.On("ProcessMonthlyUpdate", ctx, now).Return(result, nil).Once()
	suite.mockNotifier.On("PublishMonthlyUpdate", ctx, result, mock.AnythingOfType("string")).Return(nil).Once()

	got, err := suite.service.ProcessMonthlyUpdate(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(result, got)
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *RolloverServiceTestSuite) TestProcessMonthlyUpdate_PublishFailureIsNotFatal() {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC)
	suite.mockRepo.On("LastRolloverDate", ctx).Return(nil, nil).Once()

	result := &domain.MonthlyUpdateResult{TotalEnvelopesProcessed: 2, UpdateDate: now}
	suite.mockRepo.On("ProcessMonthlyUpdate", ctx, now).Return(result, nil).Once()
	suite.mockNotifier.On("PublishMonthlyUpdate", ctx, result, mock.AnythingOfType("string")).
		Return(errors.New("broker unreachable")).Once()

	got, err := suite.service.ProcessMonthlyUpdate(ctx, now)

	suite.Require().NoError(err, "the run committed; only the notification was lost")
	suite.Equal(result, got)
}

func (suite *RolloverServiceTestSuite) TestFormatRolloverSummary() {
	result := &domain.MonthlyUpdateResult{
		UpdatedEnvelopes: []domain.EnvelopeUpdate{
			{Name: "groceries", OldBalance: decimal.NewFromInt(50), NewBalance: decimal.NewFromInt(150), Allocation: decimal.NewFromInt(100), Rollover: true},
			{Name: "dining", OldBalance: decimal.NewFromInt(75), NewBalance: decimal.NewFromInt(200), Allocation: decimal.NewFromInt(200), Rollover: false},
		},
		TotalEnvelopesProcessed: 2,
		RolloverCount:           1,
		ResetCount:              1,
		UpdateDate:              time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	summary := suite.service.FormatRolloverSummary(result)

	expected := "Monthly Update - January 2026 - Processed 2 envelopes\n" +
		"  Rollover: 1 envelopes | Reset: 1 envelopes\n" +
		"  groceries - Rollover | $50.00 → $150.00 (Allocation: $100.00)\n" +
		"  dining - Reset | $75.00 → $200.00 (Allocation: $200.00)"
	suite.Equal(expected, summary)
}

func (suite *RolloverServiceTestSuite) TestFormatRolloverSummary_NegativeBalance() {
	result := &domain.MonthlyUpdateResult{
		UpdatedEnvelopes: []domain.EnvelopeUpdate{
			{Name: "car", OldBalance: decimal.NewFromInt(-25), NewBalance: decimal.NewFromInt(75), Allocation: decimal.NewFromInt(100), Rollover: true},
		},
		TotalEnvelopesProcessed: 1,
		RolloverCount:           1,
		UpdateDate:              time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	summary := suite.service.FormatRolloverSummary(result)

	suite.Contains(summary, "car - Rollover | -$25.00 → $75.00 (Allocation: $100.00)")
}

func (suite *RolloverServiceTestSuite) TestFormatRolloverSummary_NilResult() {
	suite.Equal("", suite.service.FormatRolloverSummary(nil))
}

func TestRolloverServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RolloverServiceTestSuite))
}
