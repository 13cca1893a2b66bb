package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, user *types.UserAuth) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) SetVerificationCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error {
	args := m.Called(ctx, userID, code, expires)
	return args.Error(0)
}

func (m *MockAuthRepo) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthRepo) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	args := m.Called(ctx, userID, token, expires)
	return args.Error(0)
}

func (m *MockAuthRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error {
	args := m.Called(ctx, userID, newHashedPassword)
	return args.Error(0)
}

func (m *MockAuthRepo) LinkProvider(ctx context.Context, userID uuid.UUID, method types.AuthMethod) error {
	args := m.Called(ctx, userID, method)
	return args.Error(0)
}

func (m *MockAuthRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockSessionTracker is a mock implementation of the SessionTracker interface
type MockSessionTracker struct {
	mock.Mock
}

func (m *MockSessionTracker) Create(ctx context.Context, userID uuid.UUID, method types.AuthMethod, meta types.RequestMeta) (*types.Session, error) {
	args := m.Called(ctx, userID, method, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Session), args.Error(1)
}

func (m *MockSessionTracker) Touch(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Session), args.Error(1)
}

func (m *MockSessionTracker) Revoke(ctx context.Context, userID uuid.UUID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockSessionTracker) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockProfileService is a mock implementation of the ProfileService interface
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) CreateFromAuth(ctx context.Context, user *types.UserAuth) (*types.UserProfile, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

func (m *MockProfileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserProfile), args.Error(1)
}

// MockMailer records sends without touching any relay.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(ctx context.Context, email, firstName, code string) {
	m.Called(ctx, email, firstName, code)
}

func (m *MockMailer) SendForgotPasswordEmail(ctx context.Context, email, firstName, code string) {
	m.Called(ctx, email, firstName, code)
}

func (m *MockMailer) SendWelcomeEmail(ctx context.Context, email, firstName string) {
	m.Called(ctx, email, firstName)
}

type serviceFixture struct {
	repo     *MockAuthRepo
	sessions *MockSessionTracker
	profiles *MockProfileService
	mailer   *MockMailer
	service  *AuthServiceImpl
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	f := &serviceFixture{
		repo:     new(MockAuthRepo),
		sessions: new(MockSessionTracker),
		profiles: new(MockProfileService),
		mailer:   new(MockMailer),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewAuthService(f.repo, f.sessions, f.profiles, f.mailer, issuer, DefaultOTPWindow, logger)
	return f
}

func TestRegister_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(nil, types.ErrNotFound)
	f.repo.On("CreateUser", ctx, mock.AnythingOfType("*types.UserAuth")).Return(nil)
	f.mailer.On("SendVerificationEmail", ctx, "a@x.com", "A", mock.AnythingOfType("string")).Return()

	user, err := f.service.Register(ctx, types.CreateAccountRequest{
		Email:           "A@X.com",
		Password:        "Secret123!",
		ConfirmPassword: "Secret123!",
		FirstName:       "A",
		LastName:        "B",
	})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", user.Email, "email should be normalized")
	assert.False(t, user.Verified)
	require.NotNil(t, user.VerificationCode)
	assert.Len(t, *user.VerificationCode, 6)
	require.NotNil(t, user.VerificationExpires)
	assert.True(t, user.VerificationExpires.After(time.Now()))
	require.NotNil(t, user.PasswordHash)
	assert.NoError(t, VerifyPassword("Secret123!", *user.PasswordHash))

	f.repo.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestRegister_ExistingEmailConflict(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(&types.UserAuth{ID: uuid.New(), Email: "a@x.com"}, nil)

	_, err := f.service.Register(ctx, types.CreateAccountRequest{
		Email:           "a@x.com",
		Password:        "Secret123!",
		ConfirmPassword: "Secret123!",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConflict))
	f.repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestVerifyEmail_EndToEnd(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// Register first, capturing the generated code.
	var created *types.UserAuth
	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(nil, types.ErrNotFound).Once()
	f.repo.On("CreateUser", ctx, mock.AnythingOfType("*types.UserAuth")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*types.UserAuth)
	}).Return(nil)
	f.mailer.On("SendVerificationEmail", ctx, "a@x.com", "A", mock.AnythingOfType("string")).Return()

	_, err := f.service.Register(ctx, types.CreateAccountRequest{
		Email:           "a@x.com",
		Password:        "Secret123!",
		ConfirmPassword: "Secret123!",
		FirstName:       "A",
		LastName:        "B",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	// Then verify with that code.
	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(created, nil)
	f.repo.On("MarkVerified", ctx, created.ID).Return(nil)
	f.profiles.On("CreateFromAuth", ctx, created).Return(&types.UserProfile{
		ID:       uuid.New(),
		UserID:   created.ID,
		Username: "a",
	}, nil)
	f.mailer.On("SendWelcomeEmail", ctx, "a@x.com", "A").Return()
	f.sessions.On("Create", ctx, created.ID, types.AuthMethodEmail, mock.Anything).Return(&types.Session{
		ID:        uuid.New(),
		UserID:    created.ID,
		SessionID: uuid.NewString(),
	}, nil)

	payload, err := f.service.VerifyEmail(ctx, "a@x.com", *created.VerificationCode, types.RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, created.ID, payload.User.ID)
	assert.Equal(t, "a", payload.User.Username)
	assert.NotEmpty(t, payload.Tokens.AccessToken)
	assert.NotEmpty(t, payload.Tokens.RefreshToken)
	assert.NotEmpty(t, payload.SessionID)
	f.repo.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestVerifyEmail_WrongCode(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	code := "123456"
	expires := time.Now().Add(time.Minute)
	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(&types.UserAuth{
		ID:                  uuid.New(),
		Email:               "a@x.com",
		VerificationCode:    &code,
		VerificationExpires: &expires,
	}, nil)

	_, err := f.service.VerifyEmail(ctx, "a@x.com", "654321", types.RequestMeta{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrBadRequest))
}

func TestVerifyEmail_ExpiredCode(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	code := "123456"
	expires := time.Now().Add(-time.Minute)
	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(&types.UserAuth{
		ID:                  uuid.New(),
		Email:               "a@x.com",
		VerificationCode:    &code,
		VerificationExpires: &expires,
	}, nil)

	_, err := f.service.VerifyEmail(ctx, "a@x.com", "123456", types.RequestMeta{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrBadRequest))
}

func TestVerifyEmail_AlreadyVerified(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(&types.UserAuth{
		ID:       uuid.New(),
		Email:    "a@x.com",
		Verified: true,
	}, nil)

	_, err := f.service.VerifyEmail(ctx, "a@x.com", "123456", types.RequestMeta{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConflict))
}

func verifiedUser(t *testing.T, password string) *types.UserAuth {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &types.UserAuth{
		ID:           uuid.New(),
		Email:        "a@x.com",
		PasswordHash: &hash,
		FirstName:    "A",
		LastName:     "B",
		Verified:     true,
		AuthMethod:   types.AuthMethodEmail,
	}
}

func TestLogin_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := verifiedUser(t, "Secret123!")

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(user, nil)
	f.profiles.On("GetByUserID", ctx, user.ID).Return(&types.UserProfile{Username: "a"}, nil)
	f.sessions.On("Create", ctx, user.ID, types.AuthMethodEmail, mock.Anything).Return(&types.Session{
		SessionID: uuid.NewString(),
	}, nil)

	payload, err := f.service.Login(ctx, "a@x.com", "Secret123!", types.RequestMeta{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, payload.User.ID)
	assert.NotEmpty(t, payload.SessionID)
	assert.NotEmpty(t, payload.Tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(verifiedUser(t, "Secret123!"), nil)

	_, err := f.service.Login(ctx, "a@x.com", "WrongPassword", types.RequestMeta{})
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "nobody@x.com").Return(nil, types.ErrNotFound)

	_, err := f.service.Login(ctx, "nobody@x.com", "Secret123!", types.RequestMeta{})
	assert.True(t, errors.Is(err, types.ErrUnauthenticated),
		"unknown email must collapse into the same generic error as a bad password")
}

func TestLogin_OAuthOnlyAccount(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(&types.UserAuth{
		ID:         uuid.New(),
		Email:      "a@x.com",
		Verified:   true,
		AuthMethod: types.AuthMethodGoogle,
	}, nil)

	_, err := f.service.Login(ctx, "a@x.com", "Secret123!", types.RequestMeta{})
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))
}

func TestLogin_UnverifiedAccount(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := verifiedUser(t, "Secret123!")
	user.Verified = false

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(user, nil)

	_, err := f.service.Login(ctx, "a@x.com", "Secret123!", types.RequestMeta{})
	assert.True(t, errors.Is(err, types.ErrForbidden))
}

func TestRefresh_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := verifiedUser(t, "Secret123!")
	sessionID := uuid.NewString()

	pair, err := f.service.tokens.IssuePair(user.ID, user.Email)
	require.NoError(t, err)

	f.repo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	f.sessions.On("Touch", ctx, user.ID, sessionID).Return(&types.Session{SessionID: sessionID}, nil)

	newPair, err := f.service.Refresh(ctx, pair.RefreshToken, sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
	assert.NotEmpty(t, newPair.RefreshToken)
}

func TestRefresh_RevokedSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := verifiedUser(t, "Secret123!")
	sessionID := uuid.NewString()

	pair, err := f.service.tokens.IssuePair(user.ID, user.Email)
	require.NoError(t, err)

	f.repo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	f.sessions.On("Touch", ctx, user.ID, sessionID).Return(nil, types.ErrNotFound)

	_, err = f.service.Refresh(ctx, pair.RefreshToken, sessionID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSessionRevoked),
		"a valid refresh token with a revoked session must be rejected")
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := verifiedUser(t, "Secret123!")

	pair, err := f.service.tokens.IssuePair(user.ID, user.Email)
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, pair.AccessToken, uuid.NewString())
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "nobody@x.com").Return(nil, types.ErrNotFound)

	assert.NoError(t, f.service.ForgotPassword(ctx, "nobody@x.com"),
		"forgot-password must not disclose whether the account exists")
	f.repo.AssertNotCalled(t, "SetResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResendVerification_UnknownEmailSilent(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetUserByEmail", ctx, "nobody@x.com").Return(nil, types.ErrNotFound)

	assert.NoError(t, f.service.ResendVerification(ctx, "nobody@x.com"))
}

func TestResetPassword_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	token := "123456"
	expires := time.Now().Add(time.Minute)
	user := verifiedUser(t, "OldSecret1!")
	user.ResetToken = &token
	user.ResetExpires = &expires

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(user, nil)
	f.repo.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).Return(nil)
	f.sessions.On("RevokeAll", ctx, user.ID).Return(nil)

	err := f.service.ResetPassword(ctx, types.ResetPasswordRequest{
		Email:           "a@x.com",
		Token:           token,
		Password:        "NewSecret1!",
		ConfirmPassword: "NewSecret1!",
	})
	require.NoError(t, err)
	f.sessions.AssertCalled(t, "RevokeAll", ctx, user.ID)
}

func TestResetPassword_BadToken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	token := "123456"
	expires := time.Now().Add(time.Minute)
	user := verifiedUser(t, "OldSecret1!")
	user.ResetToken = &token
	user.ResetExpires = &expires

	f.repo.On("GetUserByEmail", ctx, "a@x.com").Return(user, nil)

	err := f.service.ResetPassword(ctx, types.ResetPasswordRequest{
		Email:           "a@x.com",
		Token:           "999999",
		Password:        "NewSecret1!",
		ConfirmPassword: "NewSecret1!",
	})
	assert.True(t, errors.Is(err, types.ErrBadRequest))
	f.repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogout_Passthrough(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.NewString()

	f.sessions.On("Revoke", ctx, userID, sessionID).Return(types.ErrSessionRevoked)

	err := f.service.Logout(ctx, userID, sessionID)
	assert.True(t, errors.Is(err, types.ErrSessionRevoked))
}
