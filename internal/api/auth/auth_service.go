package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-saas-starter/app/observability/metrics"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

// Mailer is the outbound email contract. Sends are fire-and-forget: the
// implementation detaches, and a failed send is never compensated — the
// code is already persisted.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, firstName, code string)
	SendForgotPasswordEmail(ctx context.Context, email, firstName, code string)
	SendWelcomeEmail(ctx context.Context, email, firstName string)
}

// SessionTracker is the slice of the session service the auth flows need.
type SessionTracker interface {
	Create(ctx context.Context, userID uuid.UUID, method types.AuthMethod, meta types.RequestMeta) (*types.Session, error)
	Touch(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Session, error)
	Revoke(ctx context.Context, userID uuid.UUID, sessionID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// ProfileService is the slice of the user profile service the auth flows
// need: profile creation on verification and username lookups for the
// authenticated identity.
type ProfileService interface {
	CreateFromAuth(ctx context.Context, user *types.UserAuth) (*types.UserProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
}

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService orchestrates signup, verification, login, password reset and
// token refresh.
type AuthService interface {
	Register(ctx context.Context, req types.CreateAccountRequest) (*types.UserAuth, error)
	VerifyEmail(ctx context.Context, email, code string, meta types.RequestMeta) (*types.AuthPayload, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string, meta types.RequestMeta) (*types.AuthPayload, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req types.ResetPasswordRequest) error
	Refresh(ctx context.Context, refreshToken, sessionID string) (*types.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID, sessionID string) error
	GetUserAuthByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type AuthServiceImpl struct {
	logger    *slog.Logger
	repo      AuthRepo
	sessions  SessionTracker
	profiles  ProfileService
	mailer    Mailer
	tokens    *TokenIssuer
	otpWindow time.Duration
}

func NewAuthService(repo AuthRepo, sessions SessionTracker, profiles ProfileService, mailer Mailer, tokens *TokenIssuer, otpWindow time.Duration, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:    logger,
		repo:      repo,
		sessions:  sessions,
		profiles:  profiles,
		mailer:    mailer,
		tokens:    tokens,
		otpWindow: otpWindow,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// observeAuthDuration records how long an auth flow took, success or not.
// Deferred with time.Now() so the clock starts at the call site.
func observeAuthDuration(ctx context.Context, operation string, start time.Time) {
	metrics.Get().AuthDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)))
}

// Register creates an unverified identity and mails its verification code.
// A password signup against an existing email is always a conflict; only a
// provider-verified email may attach to an existing identity (see oauth).
func (s *AuthServiceImpl) Register(ctx context.Context, req types.CreateAccountRequest) (*types.UserAuth, error) {
	defer observeAuthDuration(ctx, "register", time.Now())
	l := s.logger.With(slog.String("method", "Register"))
	email := normalizeEmail(req.Email)

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("account already exists: %w", types.ErrConflict)
	} else if !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	code, err := GenerateOTP()
	if err != nil {
		return nil, err
	}
	expires := OTPExpiry(s.otpWindow)

	user := &types.UserAuth{
		ID:                  uuid.New(),
		Email:               email,
		PasswordHash:        &hash,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Verified:            false,
		VerificationCode:    &code,
		VerificationExpires: &expires,
		AuthMethod:          types.AuthMethodEmail,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.mailer.SendVerificationEmail(ctx, user.Email, user.FirstName, code)
	metrics.Get().SignupsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Account created, verification pending", slog.String("userID", user.ID.String()))
	return user, nil
}

// VerifyEmail promotes an identity to verified, creates its public profile
// and logs it in.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, email, code string, meta types.RequestMeta) (*types.AuthPayload, error) {
	defer observeAuthDuration(ctx, "verify_email", time.Now())
	l := s.logger.With(slog.String("method", "VerifyEmail"))

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired verification code: %w", types.ErrBadRequest)
		}
		return nil, err
	}
	if user.Verified {
		return nil, fmt.Errorf("account already verified: %w", types.ErrConflict)
	}
	if user.VerificationCode == nil || user.VerificationExpires == nil ||
		!SecretsEqual(*user.VerificationCode, code) || time.Now().After(*user.VerificationExpires) {
		return nil, fmt.Errorf("invalid or expired verification code: %w", types.ErrBadRequest)
	}

	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.Verified = true

	profile, err := s.profiles.CreateFromAuth(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.mailer.SendWelcomeEmail(ctx, user.Email, user.FirstName)
	metrics.Get().VerificationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Email verified", slog.String("userID", user.ID.String()))

	return s.issuePayload(ctx, user, profile.Username, types.AuthMethodEmail, meta)
}

// ResendVerification re-issues a code. It reports success whether or not
// the account exists, to avoid user enumeration.
func (s *AuthServiceImpl) ResendVerification(ctx context.Context, email string) error {
	l := s.logger.With(slog.String("method", "ResendVerification"))

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.Verified {
		return nil
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.repo.SetVerificationCode(ctx, user.ID, code, OTPExpiry(s.otpWindow)); err != nil {
		return err
	}
	s.mailer.SendVerificationEmail(ctx, user.Email, user.FirstName, code)
	l.InfoContext(ctx, "Verification code re-issued", slog.String("userID", user.ID.String()))
	return nil
}

// Login authenticates credentials. Unknown email, OAuth-only account and
// wrong password all collapse into the same generic unauthenticated error.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string, meta types.RequestMeta) (*types.AuthPayload, error) {
	defer observeAuthDuration(ctx, "login", time.Now())
	l := s.logger.With(slog.String("method", "Login"))
	metrics.Get().LoginAttemptsTotal.Add(ctx, 1)

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			metrics.Get().LoginFailuresTotal.Add(ctx, 1)
			return nil, types.ErrUnauthenticated
		}
		return nil, err
	}
	if user.PasswordHash == nil {
		metrics.Get().LoginFailuresTotal.Add(ctx, 1)
		return nil, types.ErrUnauthenticated
	}
	if err := VerifyPassword(password, *user.PasswordHash); err != nil {
		metrics.Get().LoginFailuresTotal.Add(ctx, 1)
		if errors.Is(err, types.ErrUnauthenticated) || errors.Is(err, types.ErrBadRequest) {
			return nil, types.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.Verified {
		return nil, fmt.Errorf("account not verified: %w", types.ErrForbidden)
	}

	username := ""
	if profile, perr := s.profiles.GetByUserID(ctx, user.ID); perr == nil {
		username = profile.Username
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID.String()))
	return s.issuePayload(ctx, user, username, types.AuthMethodEmail, meta)
}

// ForgotPassword issues a reset token. Like ResendVerification it never
// discloses whether the account exists.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, token, OTPExpiry(s.otpWindow)); err != nil {
		return err
	}
	s.mailer.SendForgotPasswordEmail(ctx, user.Email, user.FirstName, token)
	return nil
}

// ResetPassword completes the reset flow and revokes every session so a
// stolen refresh token dies with the old password.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, req types.ResetPasswordRequest) error {
	l := s.logger.With(slog.String("method", "ResetPassword"))

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("invalid or expired reset token: %w", types.ErrBadRequest)
		}
		return err
	}
	if user.ResetToken == nil || user.ResetExpires == nil ||
		!SecretsEqual(*user.ResetToken, req.Token) || time.Now().After(*user.ResetExpires) {
		return fmt.Errorf("invalid or expired reset token: %w", types.ErrBadRequest)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.sessions.RevokeAll(ctx, user.ID); err != nil {
		l.WarnContext(ctx, "Failed to revoke sessions after password reset", slog.Any("error", err))
	}
	metrics.Get().PasswordResetsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Password reset completed", slog.String("userID", user.ID.String()))
	return nil
}

// Refresh mints a new token pair. The presented session must still be
// active: a valid refresh token with a revoked session is rejected, which
// is what makes logout effective before token expiry.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken, sessionID string) (*types.TokenPair, error) {
	defer observeAuthDuration(ctx, "refresh", time.Now())
	claims, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	userID, err := SubjectID(claims)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrUnauthenticated
		}
		return nil, err
	}

	if _, err := s.sessions.Touch(ctx, user.ID, sessionID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("no active session: %w", types.ErrSessionRevoked)
		}
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	metrics.Get().TokenRefreshesTotal.Add(ctx, 1)
	return &pair, nil
}

// Logout revokes the current session. Revoking an already-revoked session
// surfaces types.ErrSessionRevoked so the handler can report it distinctly.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID uuid.UUID, sessionID string) error {
	return s.sessions.Revoke(ctx, userID, sessionID)
}

func (s *AuthServiceImpl) GetUserAuthByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// DeleteAccount removes the identity; profile and sessions cascade at the
// storage layer.
func (s *AuthServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteAccount"))
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	l.InfoContext(ctx, "Account deleted", slog.String("userID", userID.String()))
	return nil
}

func (s *AuthServiceImpl) issuePayload(ctx context.Context, user *types.UserAuth, username string, method types.AuthMethod, meta types.RequestMeta) (*types.AuthPayload, error) {
	session, err := s.sessions.Create(ctx, user.ID, method, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &types.AuthPayload{
		User: types.AuthenticatedUser{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  username,
		},
		Tokens:    pair,
		SessionID: session.SessionID,
	}, nil
}
