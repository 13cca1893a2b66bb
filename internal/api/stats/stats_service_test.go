package stats

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStatsRepo is a mock implementation of the StatsRepo interface
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) Get(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepo) Increment(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func newServiceFixture() (*MockStatsRepo, *StatsServiceImpl) {
	repo := new(MockStatsRepo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, NewStatsService(repo, logger)
}

func TestGetDownloads_CachesReads(t *testing.T) {
	repo, service := newServiceFixture()
	ctx := context.Background()

	repo.On("Get", ctx, StatDownloads).Return(int64(42), nil).Once()

	for i := 0; i < 5; i++ {
		value, err := service.GetDownloads(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), value)
	}
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestIncrementDownloads_RefreshesCache(t *testing.T) {
	repo, service := newServiceFixture()
	ctx := context.Background()

	repo.On("Get", ctx, StatDownloads).Return(int64(42), nil).Once()
	repo.On("Increment", ctx, StatDownloads).Return(int64(43), nil).Once()

	_, err := service.GetDownloads(ctx)
	require.NoError(t, err)

	value, err := service.IncrementDownloads(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), value)

	// The cached read now reflects the increment without another DB hit.
	value, err = service.GetDownloads(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), value)
	repo.AssertNumberOfCalls(t, "Get", 1)
}
