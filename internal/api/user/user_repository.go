package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user_profiles persistence.
type UserRepo interface {
	CreateProfile(ctx context.Context, profile *types.UserProfile) error
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	GetProfileByUsername(ctx context.Context, username string) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.UserProfile, error)
	// ChangeUsername flips username_changed in the same statement; a second
	// rename matches no rows and returns types.ErrForbidden.
	ChangeUsername(ctx context.Context, userID uuid.UUID, username string) (*types.UserProfile, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	db     api.DB
}

func NewPostgresUserRepo(db api.DB, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		db:     db,
	}
}

const profileColumns = `id, user_id, name, username, avatar_url, bio, location, website,
       date_of_birth, username_changed, created_at, updated_at`

func scanProfile(row pgx.Row) (*types.UserProfile, error) {
	var p types.UserProfile
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Username, &p.AvatarURL, &p.Bio,
		&p.Location, &p.Website, &p.DateOfBirth, &p.UsernameChanged, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("scan user_profiles: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresUserRepo) CreateProfile(ctx context.Context, profile *types.UserProfile) error {
	query := `
        INSERT INTO user_profiles (id, user_id, name, username)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		profile.ID, profile.UserID, profile.Name, profile.Username,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile or username already exists: %w", types.ErrConflict)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *PostgresUserRepo) GetProfileByUsername(ctx context.Context, username string) (*types.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE username = $1`
	return scanProfile(r.db.QueryRow(ctx, query, username))
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.UserProfile, error) {
	query := `
        UPDATE user_profiles
        SET name          = COALESCE($2, name),
            avatar_url    = COALESCE($3, avatar_url),
            bio           = COALESCE($4, bio),
            location      = COALESCE($5, location),
            website       = COALESCE($6, website),
            date_of_birth = COALESCE($7, date_of_birth),
            updated_at    = now()
        WHERE user_id = $1
        RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, userID,
		req.Name, req.AvatarURL, req.Bio, req.Location, req.Website, req.DateOfBirth))
}

func (r *PostgresUserRepo) ChangeUsername(ctx context.Context, userID uuid.UUID, username string) (*types.UserProfile, error) {
	query := `
        UPDATE user_profiles
        SET username = $2, username_changed = TRUE, updated_at = now()
        WHERE user_id = $1 AND username_changed = FALSE
        RETURNING ` + profileColumns
	profile, err := scanProfile(r.db.QueryRow(ctx, query, userID, username))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("username already taken: %w", types.ErrConflict)
		}
		if errors.Is(err, types.ErrNotFound) {
			// No row matched: either the profile does not exist or the
			// one-time rename was already spent.
			if _, gerr := r.GetProfileByUserID(ctx, userID); gerr == nil {
				return nil, fmt.Errorf("username already changed once: %w", types.ErrForbidden)
			}
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}
