package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/acquire_ledger/internal/adapters/objstore/memory"
	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockAccountGroupRepository is a mock type for the AccountGroupRepositoryFacade interface
type MockAccountGroupRepository struct {
	mock.Mock
}

func (m *MockAccountGroupRepository) FindAccountUID(ctx context.Context, group, name string) (string, error) {
	args := m.Called(ctx, group, name)
	return args.String(0), args.Error(1)
}

func (m *MockAccountGroupRepository) ListAccountNames(ctx context.Context, group string) ([]string, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAccountGroupRepository) SaveAccountName(ctx context.Context, group, name, accountUID string) error {
	args := m.Called(ctx, group, name, accountUID)
	return args.Error(0)
}

type AccountGroupServiceTestSuite struct {
	suite.Suite
	f *ledgerFixture
}

func (suite *AccountGroupServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(suite.T())
}

func (suite *AccountGroupServiceTestSuite) TestCreateAccount_Idempotent() {
	ctx := suite.f.ctx
	first, err := suite.f.groups.CreateAccount(ctx, services.DefaultAccountGroup, dto.CreateAccountRequest{Name: "Rent/Bills", OverdraftLimit: "10"}, "tester")
	suite.Require().NoError(err)

	second, err := suite.f.groups.CreateAccount(ctx, services.DefaultAccountGroup, dto.CreateAccountRequest{Name: " Rent/Bills "}, "tester")
	suite.Require().NoError(err)
	suite.Equal(first.UID, second.UID)
	suite.True(dec("10").Equal(second.OverdraftLimit))

	other, err := suite.f.groups.CreateAccount(ctx, "savings", dto.CreateAccountRequest{Name: "Rent/Bills"}, "tester")
	suite.Require().NoError(err)
	suite.NotEqual(first.UID, other.UID)
}

func (suite *AccountGroupServiceTestSuite) TestLookupAndList() {
	ctx := suite.f.ctx
	zed, err := suite.f.groups.CreateAccount(ctx, "g", dto.CreateAccountRequest{Name: "zed"}, "tester")
	suite.Require().NoError(err)
	amy, err := suite.f.groups.CreateAccount(ctx, "g", dto.CreateAccountRequest{Name: "amy"}, "tester")
	suite.Require().NoError(err)
	loose := suite.f.createAccount(suite.T(), "loose", "")

	got, err := suite.f.groups.GetAccount(ctx, "g", "amy")
	suite.Require().NoError(err)
	suite.Equal(amy.UID, got.UID)

	_, err = suite.f.groups.GetAccount(ctx, "g", "nobody")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	names, err := suite.f.groups.ListAccounts(ctx, "g")
	suite.Require().NoError(err)
	suite.Equal([]string{"amy", "zed"}, names)

	ok, err := suite.f.groups.Contains(ctx, "g", zed.UID)
	suite.Require().NoError(err)
	suite.True(ok)
	ok, err = suite.f.groups.Contains(ctx, "g", loose.UID)
	suite.Require().NoError(err)
	suite.False(ok)

	names, err = suite.f.groups.ListAccounts(ctx, "empty")
	suite.Require().NoError(err)
	suite.Empty(names)
}

func (suite *AccountGroupServiceTestSuite) TestCreateAccount_MissingName() {
	_, err := suite.f.groups.CreateAccount(suite.f.ctx, "g", dto.CreateAccountRequest{Name: "  "}, "tester")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestAccountGroupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountGroupServiceTestSuite))
}

func TestAccountGroupService_IndexWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	locker := mutex.NewLocker(store)
	f := newLedgerFixture(t)

	repo := new(MockAccountGroupRepository)
	indexErr := errors.New("index unavailable")
	repo.On("FindAccountUID", mock.Anything, "g", "acct").Return("", apperrors.ErrNotFound).Once()
	repo.On("SaveAccountName", mock.Anything, "g", "acct", mock.AnythingOfType("string")).Return(indexErr).Once()

	svc := services.NewAccountGroupService(repo, f.accounts, locker)
	_, err := svc.CreateAccount(ctx, "g", dto.CreateAccountRequest{Name: "acct"}, "tester")
	require.ErrorIs(t, err, indexErr)
	repo.AssertExpectations(t)

	repo.On("ListAccountNames", mock.Anything, "g").Return(nil, indexErr).Once()
	ok, err := svc.Contains(ctx, "g", "uid")
	assert.False(t, ok)
	assert.ErrorIs(t, err, indexErr)
}
