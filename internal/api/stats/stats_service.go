package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
)

// StatDownloads is the counter tracked since launch.
const StatDownloads = "downloads"

// readCacheTTL is how stale a counter read may be. Increments bypass the
// cache and refresh it with the authoritative value.
const readCacheTTL = 30 * time.Second

var _ StatsService = (*StatsServiceImpl)(nil)

type StatsService interface {
	GetDownloads(ctx context.Context) (int64, error)
	IncrementDownloads(ctx context.Context) (int64, error)
}

type StatsServiceImpl struct {
	logger *slog.Logger
	repo   StatsRepo
	reads  *cache.Cache
}

func NewStatsService(repo StatsRepo, logger *slog.Logger) *StatsServiceImpl {
	return &StatsServiceImpl{
		logger: logger,
		repo:   repo,
		reads:  cache.New(readCacheTTL, time.Minute),
	}
}

func (s *StatsServiceImpl) GetDownloads(ctx context.Context) (int64, error) {
	if cached, found := s.reads.Get(StatDownloads); found {
		if value, ok := cached.(int64); ok {
			return value, nil
		}
	}

	value, err := s.repo.Get(ctx, StatDownloads)
	if err != nil {
		return 0, err
	}
	s.reads.Set(StatDownloads, value, cache.DefaultExpiration)
	return value, nil
}

func (s *StatsServiceImpl) IncrementDownloads(ctx context.Context) (int64, error) {
	value, err := s.repo.Increment(ctx, StatDownloads)
	if err != nil {
		return 0, err
	}
	s.reads.Set(StatDownloads, value, cache.DefaultExpiration)
	return value, nil
}
