package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ StatsRepo = (*PostgresStatsRepo)(nil)

// StatsRepo defines the contract for app_stats persistence.
type StatsRepo interface {
	Get(ctx context.Context, name string) (int64, error)
	// Increment bumps the named counter atomically and returns the new value.
	Increment(ctx context.Context, name string) (int64, error)
}

type PostgresStatsRepo struct {
	logger *slog.Logger
	db     api.DB
}

func NewPostgresStatsRepo(db api.DB, logger *slog.Logger) *PostgresStatsRepo {
	return &PostgresStatsRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresStatsRepo) Get(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.QueryRow(ctx, `SELECT value FROM app_stats WHERE name = $1`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, types.ErrNotFound
		}
		return 0, fmt.Errorf("failed to read stat %q: %w", name, err)
	}
	return value, nil
}

func (r *PostgresStatsRepo) Increment(ctx context.Context, name string) (int64, error) {
	query := `
        INSERT INTO app_stats (name, value) VALUES ($1, 1)
        ON CONFLICT (name) DO UPDATE SET value = app_stats.value + 1, updated_at = now()
        RETURNING value`
	var value int64
	if err := r.db.QueryRow(ctx, query, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to increment stat %q: %w", name, err)
	}
	return value, nil
}
