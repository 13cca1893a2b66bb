package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for user_auth persistence.
type AuthRepo interface {
	CreateUser(ctx context.Context, user *types.UserAuth) error
	GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
	SetVerificationCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error
	// UpdatePassword stores a new hash and clears any outstanding reset token.
	UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error
	// LinkProvider attaches an OAuth method to an existing identity without
	// touching its password hash.
	LinkProvider(ctx context.Context, userID uuid.UUID, method types.AuthMethod) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     api.DB
}

func NewPostgresAuthRepo(db api.DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

const userAuthColumns = `id, email, password_hash, first_name, last_name, verified,
       verification_code, verification_expires_at, reset_token, reset_expires_at,
       auth_method, created_at, updated_at`

func scanUserAuth(row pgx.Row) (*types.UserAuth, error) {
	var u types.UserAuth
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Verified,
		&u.VerificationCode, &u.VerificationExpires, &u.ResetToken, &u.ResetExpires,
		&u.AuthMethod, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan user_auth: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, user *types.UserAuth) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "user_auth"),
	))
	defer span.End()

	_, err := r.db.Exec(ctx,
		`INSERT INTO user_auth (id, email, password_hash, first_name, last_name, verified,
                verification_code, verification_expires_at, auth_method, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Verified,
		user.VerificationCode, user.VerificationExpires, user.AuthMethod)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", types.ErrConflict)
		}
		return fmt.Errorf("create user: db insert failed: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userAuthColumns+` FROM user_auth WHERE email = $1`, email)
	return scanUserAuth(row)
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userAuthColumns+` FROM user_auth WHERE id = $1`, userID)
	return scanUserAuth(row)
}

func (r *PostgresAuthRepo) SetVerificationCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_auth
         SET verification_code = $1, verification_expires_at = $2, updated_at = now()
         WHERE id = $3`,
		code, expires, userID)
	if err != nil {
		return fmt.Errorf("set verification code: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresAuthRepo) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_auth
         SET verified = TRUE, verification_code = NULL, verification_expires_at = NULL, updated_at = now()
         WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("mark verified: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresAuthRepo) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_auth
         SET reset_token = $1, reset_expires_at = $2, updated_at = now()
         WHERE id = $3`,
		token, expires, userID)
	if err != nil {
		return fmt.Errorf("set reset token: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresAuthRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "UpdatePassword", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "user_auth"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx,
		`UPDATE user_auth
         SET password_hash = $1, reset_token = NULL, reset_expires_at = NULL, updated_at = now()
         WHERE id = $2`,
		newHashedPassword, userID)
	if err != nil {
		return fmt.Errorf("update password: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresAuthRepo) LinkProvider(ctx context.Context, userID uuid.UUID, method types.AuthMethod) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_auth SET auth_method = $1, verified = TRUE, updated_at = now() WHERE id = $2`,
		method, userID)
	if err != nil {
		return fmt.Errorf("link provider: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresAuthRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	// Profiles and sessions go with it via ON DELETE CASCADE.
	tag, err := r.db.Exec(ctx, `DELETE FROM user_auth WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
