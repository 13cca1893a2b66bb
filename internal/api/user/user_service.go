package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

// usernameAttempts bounds collision retries when deriving a username from
// an email local part.
const usernameAttempts = 10

var _ UserService = (*UserServiceImpl)(nil)
var _ auth.ProfileService = (*UserServiceImpl)(nil)

// UserService manages public profiles. Profiles come into existence through
// CreateFromAuth at verification time, never through a direct endpoint.
type UserService interface {
	CreateFromAuth(ctx context.Context, user *types.UserAuth) (*types.UserProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.UserProfile, error)
	ChangeUsername(ctx context.Context, userID uuid.UUID, username string) (*types.UserProfile, error)
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// sanitizeUsername lowercases the candidate and strips everything that is
// not a letter or digit.
func sanitizeUsername(candidate string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(candidate) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// deriveUsername builds the initial username from the email local part,
// appending a numeric suffix until it no longer collides.
func (s *UserServiceImpl) deriveUsername(ctx context.Context, email string) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	base := sanitizeUsername(local)
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; i <= usernameAttempts; i++ {
		_, err := s.repo.GetProfileByUsername(ctx, candidate)
		if errors.Is(err, types.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	// Collision space exhausted; fall back to a random suffix.
	return fmt.Sprintf("%s%s", base, uuid.NewString()[:8]), nil
}

// CreateFromAuth materializes the public profile for a freshly verified
// identity. Idempotent: an existing profile is returned as-is.
func (s *UserServiceImpl) CreateFromAuth(ctx context.Context, user *types.UserAuth) (*types.UserProfile, error) {
	l := s.logger.With(slog.String("method", "CreateFromAuth"))

	if existing, err := s.repo.GetProfileByUserID(ctx, user.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	username, err := s.deriveUsername(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	profile := &types.UserProfile{
		ID:       uuid.New(),
		UserID:   user.ID,
		Name:     strings.TrimSpace(user.FirstName + " " + user.LastName),
		Username: username,
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, types.ErrConflict) {
			// Lost a race against a concurrent verification of the same user.
			return s.repo.GetProfileByUserID(ctx, user.ID)
		}
		return nil, err
	}

	l.InfoContext(ctx, "Profile created",
		slog.String("userID", user.ID.String()),
		slog.String("username", username),
	)
	return profile, nil
}

func (s *UserServiceImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	return s.repo.GetProfileByUserID(ctx, userID)
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.UserProfile, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

// ChangeUsername performs the one-time rename. The chosen name is
// normalized the same way derived names are.
func (s *UserServiceImpl) ChangeUsername(ctx context.Context, userID uuid.UUID, username string) (*types.UserProfile, error) {
	l := s.logger.With(slog.String("method", "ChangeUsername"))

	normalized := sanitizeUsername(username)
	if len(normalized) < 3 {
		return nil, fmt.Errorf("username must be at least 3 characters: %w", types.ErrBadRequest)
	}

	profile, err := s.repo.ChangeUsername(ctx, userID, normalized)
	if err != nil {
		return nil, err
	}
	l.InfoContext(ctx, "Username changed",
		slog.String("userID", userID.String()),
		slog.String("username", normalized),
	)
	return profile, nil
}
