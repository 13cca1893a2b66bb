package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

// MockUserRepo is a mock implementation of the UserRepo interface
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateProfile(ctx context.Context, profile *types.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

func (m *MockUserRepo) GetProfileByUsername(ctx context.Context, username string) (*types.UserProfile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.UserProfile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

func (m *MockUserRepo) ChangeUsername(ctx context.Context, userID uuid.UUID, username string) (*types.UserProfile, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

func newServiceFixture() (*MockUserRepo, *UserServiceImpl) {
	repo := new(MockUserRepo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, NewUserService(repo, logger)
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "janedoe42", sanitizeUsername("Jane.Doe+42"))
	assert.Equal(t, "abc", sanitizeUsername("a b-c"))
	assert.Equal(t, "", sanitizeUsername("!@#$"))
}

func TestCreateFromAuth_DerivesUsernameFromEmail(t *testing.T) {
	repo, service := newServiceFixture()
	user := &types.UserAuth{ID: uuid.New(), Email: "jane.doe@x.com", FirstName: "Jane", LastName: "Doe"}

	repo.On("GetProfileByUserID", mock.Anything, user.ID).Return(nil, types.ErrNotFound)
	repo.On("GetProfileByUsername", mock.Anything, "janedoe").Return(nil, types.ErrNotFound)
	repo.On("CreateProfile", mock.Anything, mock.AnythingOfType("*types.UserProfile")).Return(nil)

	profile, err := service.CreateFromAuth(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", profile.Username)
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, user.ID, profile.UserID)
}

func TestCreateFromAuth_CollisionGetsSuffix(t *testing.T) {
	repo, service := newServiceFixture()
	user := &types.UserAuth{ID: uuid.New(), Email: "jane@x.com"}

	repo.On("GetProfileByUserID", mock.Anything, user.ID).Return(nil, types.ErrNotFound)
	repo.On("GetProfileByUsername", mock.Anything, "jane").Return(&types.UserProfile{Username: "jane"}, nil)
	repo.On("GetProfileByUsername", mock.Anything, "jane1").Return(nil, types.ErrNotFound)
	repo.On("CreateProfile", mock.Anything, mock.Anything).Return(nil)

	profile, err := service.CreateFromAuth(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "jane1", profile.Username)
}

func TestCreateFromAuth_Idempotent(t *testing.T) {
	repo, service := newServiceFixture()
	user := &types.UserAuth{ID: uuid.New(), Email: "jane@x.com"}
	existing := &types.UserProfile{ID: uuid.New(), UserID: user.ID, Username: "jane"}

	repo.On("GetProfileByUserID", mock.Anything, user.ID).Return(existing, nil)

	profile, err := service.CreateFromAuth(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, existing, profile)
	repo.AssertNotCalled(t, "CreateProfile", mock.Anything, mock.Anything)
}

func TestChangeUsername_Normalizes(t *testing.T) {
	repo, service := newServiceFixture()
	userID := uuid.New()

	repo.On("ChangeUsername", mock.Anything, userID, "newname").Return(&types.UserProfile{
		Username:        "newname",
		UsernameChanged: true,
	}, nil)

	profile, err := service.ChangeUsername(context.Background(), userID, "New.Name")
	require.NoError(t, err)
	assert.Equal(t, "newname", profile.Username)
	assert.True(t, profile.UsernameChanged)
}

func TestChangeUsername_TooShortAfterNormalization(t *testing.T) {
	repo, service := newServiceFixture()

	_, err := service.ChangeUsername(context.Background(), uuid.New(), "a!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrBadRequest))
	repo.AssertNotCalled(t, "ChangeUsername", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeUsername_SecondRenameForbidden(t *testing.T) {
	repo, service := newServiceFixture()
	userID := uuid.New()

	repo.On("ChangeUsername", mock.Anything, userID, "another").Return(nil, types.ErrForbidden)

	_, err := service.ChangeUsername(context.Background(), userID, "another")
	assert.True(t, errors.Is(err, types.ErrForbidden))
}
