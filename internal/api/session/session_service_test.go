package session

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

// MockSessionRepo is a mock implementation of the SessionRepo interface
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, session *types.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) Touch(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Session), args.Error(1)
}

func (m *MockSessionRepo) Get(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Session), args.Error(1)
}

func (m *MockSessionRepo) Revoke(ctx context.Context, userID uuid.UUID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepo) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]types.Session, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Session), args.Error(1)
}

func newServiceFixture() (*MockSessionRepo, *SessionServiceImpl) {
	repo := new(MockSessionRepo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, NewSessionService(repo, DefaultPageSize, logger)
}

const chromeLinuxUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestCreate_ParsesUserAgent(t *testing.T) {
	repo, service := newServiceFixture()
	userID := uuid.New()

	var captured *types.Session
	repo.On("Create", mock.Anything, mock.AnythingOfType("*types.Session")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*types.Session)
	}).Return(nil)

	session, err := service.Create(context.Background(), userID, types.AuthMethodEmail, types.RequestMeta{
		UserAgent: chromeLinuxUA,
		IP:        "203.0.113.7",
	})
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, userID, session.UserID)
	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, "Chrome", captured.Browser)
	assert.Equal(t, "Linux", captured.OS)
	assert.Equal(t, "Desktop", captured.Device)
	assert.Equal(t, "203.0.113.7", captured.IP)
}

func TestCreate_UnknownUserAgent(t *testing.T) {
	repo, service := newServiceFixture()

	var captured *types.Session
	repo.On("Create", mock.Anything, mock.AnythingOfType("*types.Session")).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*types.Session)
	}).Return(nil)

	_, err := service.Create(context.Background(), uuid.New(), types.AuthMethodEmail, types.RequestMeta{})
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "Unknown", captured.Browser)
	assert.Equal(t, "Unknown", captured.OS)
	assert.Equal(t, "Unknown", captured.Device)
}

func TestCreate_UniqueSessionIDs(t *testing.T) {
	repo, service := newServiceFixture()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := service.Create(context.Background(), uuid.New(), types.AuthMethodEmail, types.RequestMeta{})
		require.NoError(t, err)
		assert.False(t, seen[s.SessionID], "session id %q repeated", s.SessionID)
		seen[s.SessionID] = true
	}
}

func TestList_UsesConfiguredPageSize(t *testing.T) {
	repo := new(MockSessionRepo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewSessionService(repo, 5, logger)
	userID := uuid.New()

	repo.On("List", mock.Anything, userID, 5).Return([]types.Session{}, nil)

	_, err := service.List(context.Background(), userID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestParseClient_Devices(t *testing.T) {
	browser, os, device := parseClient("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	assert.Equal(t, "Safari", browser)
	assert.Equal(t, "iOS", os)
	assert.Equal(t, "Mobile", device)

	_, _, device = parseClient("gibberish-agent/1.0")
	assert.Equal(t, "Unknown", device)
}
