package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-saas-starter/app/observability/metrics"
	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ SessionRepo = (*PostgresSessionRepo)(nil)

// SessionRepo defines the contract for user_sessions persistence.
type SessionRepo interface {
	Create(ctx context.Context, session *types.Session) error
	// Touch bumps last_active_at if and only if the session is not revoked.
	// A revoked or unknown session returns types.ErrNotFound.
	Touch(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error)
	Get(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error)
	Revoke(ctx context.Context, userID uuid.UUID, sessionID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]types.Session, error)
}

type PostgresSessionRepo struct {
	logger *slog.Logger
	db     api.DB
}

func NewPostgresSessionRepo(db api.DB, logger *slog.Logger) *PostgresSessionRepo {
	return &PostgresSessionRepo{
		logger: logger,
		db:     db,
	}
}

const sessionColumns = `id, user_id, session_id, auth_method, browser, os, device, ip,
       location, created_at, last_active_at, revoked_at`

func scanSession(row pgx.Row) (*types.Session, error) {
	var s types.Session
	err := row.Scan(&s.ID, &s.UserID, &s.SessionID, &s.AuthMethod, &s.Browser, &s.OS,
		&s.Device, &s.IP, &s.Location, &s.CreatedAt, &s.LastActiveAt, &s.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan user_sessions: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionRepo) Create(ctx context.Context, session *types.Session) error {
	ctx, span := otel.Tracer("SessionRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "user_sessions"),
	))
	defer span.End()

	query := `
        INSERT INTO user_sessions (id, user_id, session_id, auth_method, browser, os, device, ip, location)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, last_active_at`
	err := r.db.QueryRow(ctx, query,
		session.ID, session.UserID, session.SessionID, session.AuthMethod,
		session.Browser, session.OS, session.Device, session.IP, session.Location,
	).Scan(&session.CreatedAt, &session.LastActiveAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Touch is a single conditional UPDATE so the active check and the bump are
// atomic. There is no read-then-write window where a concurrent revoke could
// be missed.
func (r *PostgresSessionRepo) Touch(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error) {
	start := time.Now()
	defer func() {
		// Runs on every authenticated request, so it carries the query
		// duration histogram.
		metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(
				attribute.String("db.operation", "UPDATE"),
				attribute.String("db.sql.table", "user_sessions"),
			))
	}()

	query := `
        UPDATE user_sessions
        SET last_active_at = now()
        WHERE user_id = $1 AND session_id = $2 AND revoked_at IS NULL
        RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, userID, sessionID))
}

func (r *PostgresSessionRepo) Get(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE user_id = $1 AND session_id = $2`
	return scanSession(r.db.QueryRow(ctx, query, userID, sessionID))
}

// Revoke stamps revoked_at. It distinguishes a session that is already
// revoked (types.ErrSessionRevoked) from one that does not exist
// (types.ErrNotFound).
func (r *PostgresSessionRepo) Revoke(ctx context.Context, userID uuid.UUID, sessionID string) error {
	query := `
        UPDATE user_sessions
        SET revoked_at = now()
        WHERE user_id = $1 AND session_id = $2 AND revoked_at IS NULL`
	tag, err := r.db.Exec(ctx, query, userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var revoked bool
	err = r.db.QueryRow(ctx,
		`SELECT revoked_at IS NOT NULL FROM user_sessions WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID,
	).Scan(&revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to inspect session: %w", err)
	}
	if revoked {
		return types.ErrSessionRevoked
	}
	return types.ErrNotFound
}

func (r *PostgresSessionRepo) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_sessions SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresSessionRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]types.Session, error) {
	query := `SELECT ` + sessionColumns + `
        FROM user_sessions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.Session
	for rows.Next() {
		var s types.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.SessionID, &s.AuthMethod, &s.Browser, &s.OS,
			&s.Device, &s.IP, &s.Location, &s.CreatedAt, &s.LastActiveAt, &s.RevokedAt); err != nil {
			return nil, fmt.Errorf("scan user_sessions: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
