package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockEnvelopeRepository is a mock type for the EnvelopeRepositoryFacade interface
type MockEnvelopeRepository struct {
	mock.Mock
}

func (m *MockEnvelopeRepository) FindEnvelopeByID(ctx context.Context, id int64) (*domain.Envelope, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) FindEnvelopeByName(ctx context.Context, name string, userID string) (*domain.Envelope, error) {
	args := m.Called(ctx, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) FindAnyEnvelopeByName(ctx context.Context, name string, userID *string) (*domain.Envelope, error) {
	args := m.Called(ctx, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) FindActiveEnvelopes(ctx context.Context) ([]domain.Envelope, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockEnvelopeRepository) SaveEnvelope(ctx context.Context, envelope domain.Envelope) (*domain.Envelope, error) {
	args := m.Called(ctx, envelope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) UpdateEnvelope(ctx context.Context, envelope domain.Envelope) error {
	args := m.Called(ctx, envelope)
	return args.Error(0)
}

func (m *MockEnvelopeRepository) UpdateEnvelopeBalance(ctx context.Context, id int64, balance decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, id, balance, now)
	return args.Error(0)
}

func (m *MockEnvelopeRepository) SoftDeleteEnvelope(ctx context.Context, id int64, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type EnvelopeServiceTestSuite struct {
	suite.Suite
	mockRepo *MockEnvelopeRepository
	service  *services.EnvelopeService
}

func (suite *EnvelopeServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockEnvelopeRepository)
	suite.service = services.NewEnvelopeService(suite.mockRepo)
}

// --- Test Cases ---

func (suite *EnvelopeServiceTestSuite) TestCreateEnvelope_Success() {
	ctx := context.Background()
	req := dto.CreateEnvelopeRequest{
		Name:       "groceries",
		Category:   "living",
		Allocation: 400,
		Rollover:   false,
	}

	suite.mockRepo.On("SaveEnvelope", ctx, mock.AnythingOfType("domain.Envelope")).
		Return(&domain.Envelope{
			ID:         1,
			Name:       "groceries",
			Category:   "living",
			Allocation: decimal.NewFromInt(400),
			Balance:    decimal.NewFromInt(400),
		}, nil).Once()

	created, err := suite.service.CreateEnvelope(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal("groceries", created.Name)
	suite.True(created.Balance.Equal(decimal.NewFromInt(400)))

	// The persisted envelope starts fully funded
	saved := suite.mockRepo.Calls[0].Arguments.Get(1).(domain.Envelope)
	suite.True(saved.Balance.Equal(saved.Allocation))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EnvelopeServiceTestSuite) TestCreateEnvelope_EmptyName() {
	_, err := suite.service.CreateEnvelope(context.Background(), dto.CreateEnvelopeRequest{Name: "   "})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConfig)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveEnvelope")
}

func (suite *EnvelopeServiceTestSuite) TestCreateEnvelope_NegativeAllocation() {
	_, err := suite.service.CreateEnvelope(context.Background(), dto.CreateEnvelopeRequest{
		Name:       "groceries",
		Allocation: -10,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *EnvelopeServiceTestSuite) TestCreateEnvelope_IndividualWithoutUser() {
	_, err := suite.service.CreateEnvelope(context.Background(), dto.CreateEnvelopeRequest{
		Name:         "allowance",
		Allocation:   100,
		IsIndividual: true,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConfig)
}

func (suite *EnvelopeServiceTestSuite) TestCreateOrReenable_RevivedResetsBalance() {
	ctx := context.Background()
	req := dto.CreateEnvelopeRequest{
		Name:       "dining",
		Category:   "fun",
		Allocation: 150,
		Rollover:   true,
	}

	deleted := &domain.Envelope{
		ID:         7,
		Name:       "dining",
		Allocation: decimal.NewFromInt(100),
		Balance:    decimal.NewFromInt(-30),
		IsDeleted:  true,
	}
	suite.mockRepo.On("FindAnyEnvelopeByName", ctx, "dining", (*string)(nil)).Return(deleted, nil).Once()
	suite.mockRepo.On("UpdateEnvelope", ctx, mock.AnythingOfType("domain.Envelope")).Return(nil).Once()

	revived, err := suite.service.CreateOrReenableEnvelope(ctx, req)

	suite.Require().NoError(err)
	suite.False(revived.IsDeleted)
	suite.True(revived.Rollover)
	suite.True(revived.Balance.Equal(decimal.NewFromInt(150)), "revived envelope restarts at the new allocation")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EnvelopeServiceTestSuite) TestCreateOrReenable_ActiveMatchKeepsBalance() {
	ctx := context.Background()
	active := &domain.Envelope{
		ID:         3,
		Name:       "car",
		Allocation: decimal.NewFromInt(200),
		Balance:    decimal.NewFromInt(55),
	}
	suite.mockRepo.On("FindAnyEnvelopeByName", ctx, "car", (*string)(nil)).Return(active, nil).Once()
	suite.mockRepo.On("UpdateEnvelope", ctx, mock.AnythingOfType("domain.Envelope")).Return(nil).Once()

	updated, err := suite.service.CreateOrReenableEnvelope(ctx, dto.CreateEnvelopeRequest{
		Name:       "car",
		Allocation: 250,
	})

	suite.Require().NoError(err)
	suite.True(updated.Allocation.Equal(decimal.NewFromInt(250)))
	suite.True(updated.Balance.Equal(decimal.NewFromInt(55)), "active envelope keeps its balance")
}

func (suite *EnvelopeServiceTestSuite) TestCreateOrReenable_CreatesWhenAbsent() {
	ctx := context.Background()
	suite.mockRepo.On("FindAnyEnvelopeByName", ctx, "new", (*string)(nil)).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveEnvelope", ctx, mock.AnythingOfType("domain.Envelope")).
		Return(&domain.Envelope{ID: 9, Name: "new"}, nil).Once()

	created, err := suite.service.CreateOrReenableEnvelope(ctx, dto.CreateEnvelopeRequest{Name: "new"})

	suite.Require().NoError(err)
	suite.Equal(int64(9), created.ID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EnvelopeServiceTestSuite) TestGetEnvelopeByID_DeletedIsNotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindEnvelopeByID", ctx, int64(4)).
		Return(&domain.Envelope{ID: 4, IsDeleted: true}, nil).Once()

	_, err := suite.service.GetEnvelopeByID(ctx, 4)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *EnvelopeServiceTestSuite) TestListEnvelopes_FiltersOtherUsers() {
	ctx := context.Background()
	alice := "alice"
	bob := "bob"
	suite.mockRepo.On("FindActiveEnvelopes", ctx).Return([]domain.Envelope{
		{ID: 1, Name: "groceries"},
		{ID: 2, Name: "allowance", IsIndividual: true, UserID: &alice},
		{ID: 3, Name: "allowance", IsIndividual: true, UserID: &bob},
	}, nil).Once()

	visible, err := suite.service.ListEnvelopes(ctx, "alice")

	suite.Require().NoError(err)
	suite.Require().Len(visible, 2)
	suite.Equal(int64(1), visible[0].ID)
	suite.Equal(int64(2), visible[1].ID)
}

func (suite *EnvelopeServiceTestSuite) TestDeleteEnvelope_Success() {
	ctx := context.Background()
	suite.mockRepo.On("FindEnvelopeByName", ctx, "dining", "alice").
		Return(&domain.Envelope{ID: 5, Name: "dining"}, nil).Once()
	suite.mockRepo.On("SoftDeleteEnvelope", ctx, int64(5), mock.AnythingOfType("time.Time")).Return(nil).Once()

	deleted, err := suite.service.DeleteEnvelope(ctx, "dining", "alice")

	suite.Require().NoError(err)
	suite.True(deleted)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EnvelopeServiceTestSuite) TestDeleteEnvelope_UnknownNameIsNoop() {
	ctx := context.Background()
	suite.mockRepo.On("FindEnvelopeByName", ctx, "ghost", "alice").
		Return(nil, apperrors.ErrNotFound).Once()

	deleted, err := suite.service.DeleteEnvelope(ctx, "ghost", "alice")

	suite.Require().NoError(err)
	suite.False(deleted)
	suite.mockRepo.AssertNotCalled(suite.T(), "SoftDeleteEnvelope")
}

func (suite *EnvelopeServiceTestSuite) TestDeleteEnvelope_RefusesForeignEnvelope() {
	ctx := context.Background()
	bob := "bob"
	suite.mockRepo.On("FindEnvelopeByName", ctx, "allowance", "alice").
		Return(&domain.Envelope{ID: 6, Name: "allowance", IsIndividual: true, UserID: &bob}, nil).Once()

	deleted, err := suite.service.DeleteEnvelope(ctx, "allowance", "alice")

	suite.Require().NoError(err)
	suite.False(deleted)
	suite.mockRepo.AssertNotCalled(suite.T(), "SoftDeleteEnvelope")
}

func (suite *EnvelopeServiceTestSuite) TestSeedFromConfig_ExpandsIndividualSeeds() {
	ctx := context.Background()
	seeds := []dto.EnvelopeSeed{
		{Name: "groceries", Allocation: 400},
		{Name: "allowance", Allocation: 100, IsIndividual: true},
	}

	suite.mockRepo.On("FindAnyEnvelopeByName", ctx, "groceries", (*string)(nil)).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAnyEnvelopeByName", ctx, "allowance", mock.AnythingOfType("*string")).
		Return(nil, apperrors.ErrNotFound).Twice()
	suite.mockRepo.On("SaveEnvelope", ctx, mock.AnythingOfType("domain.Envelope")).
		Return(&domain.Envelope{ID: 1}, nil).Times(3)

	created, err := suite.service.SeedFromConfig(ctx, seeds, []string{"alice", "bob"})

	suite.Require().NoError(err)
	suite.Equal(3, created, "one shared plus one per user")
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestEnvelopeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EnvelopeServiceTestSuite))
}
