package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/markbates/goth"

	"github.com/FACorreiaa/go-saas-starter/app/observability/metrics"
	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

var _ OAuthService = (*OAuthServiceImpl)(nil)

// OAuthService turns a provider-asserted identity into a logged-in account.
// Linking policy: a provider email that matches an existing identity links
// the provider to that identity; password signup against an existing email
// stays a conflict (see auth.Register).
type OAuthService interface {
	HandleProviderUser(ctx context.Context, method types.AuthMethod, gu goth.User, meta types.RequestMeta) (*types.AuthPayload, error)
}

type OAuthServiceImpl struct {
	logger   *slog.Logger
	repo     auth.AuthRepo
	sessions auth.SessionTracker
	profiles auth.ProfileService
	tokens   *auth.TokenIssuer
}

func NewOAuthService(repo auth.AuthRepo, sessions auth.SessionTracker, profiles auth.ProfileService, tokens *auth.TokenIssuer, logger *slog.Logger) *OAuthServiceImpl {
	return &OAuthServiceImpl{
		logger:   logger,
		repo:     repo,
		sessions: sessions,
		profiles: profiles,
		tokens:   tokens,
	}
}

// MethodForProvider maps a goth provider name to the stored auth method.
func MethodForProvider(provider string) (types.AuthMethod, error) {
	switch provider {
	case "google":
		return types.AuthMethodGoogle, nil
	case "github":
		return types.AuthMethodGitHub, nil
	default:
		return "", fmt.Errorf("unsupported provider %q: %w", provider, types.ErrBadRequest)
	}
}

func splitName(gu goth.User) (first, last string) {
	first, last = gu.FirstName, gu.LastName
	if first != "" || last != "" {
		return first, last
	}
	parts := strings.Fields(gu.Name)
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}

// HandleProviderUser finds or creates the identity behind a provider login
// and issues a session plus token pair. Provider emails are treated as
// verified, so OAuth accounts skip the OTP flow entirely.
func (s *OAuthServiceImpl) HandleProviderUser(ctx context.Context, method types.AuthMethod, gu goth.User, meta types.RequestMeta) (*types.AuthPayload, error) {
	l := s.logger.With(slog.String("method", "HandleProviderUser"), slog.String("provider", string(method)))

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" {
		return nil, fmt.Errorf("provider did not share an email address: %w", types.ErrBadRequest)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.AuthMethod != method {
			if lerr := s.repo.LinkProvider(ctx, user.ID, method); lerr != nil {
				return nil, fmt.Errorf("failed to link provider: %w", lerr)
			}
			l.InfoContext(ctx, "Provider linked to existing account", slog.String("userID", user.ID.String()))
		}
		if !user.Verified {
			// The provider vouches for the email; promote the pending signup.
			if verr := s.repo.MarkVerified(ctx, user.ID); verr != nil {
				return nil, verr
			}
			user.Verified = true
		}
	case errors.Is(err, types.ErrNotFound):
		first, last := splitName(gu)
		user = &types.UserAuth{
			ID:         uuid.New(),
			Email:      email,
			FirstName:  first,
			LastName:   last,
			Verified:   true,
			AuthMethod: method,
		}
		if cerr := s.repo.CreateUser(ctx, user); cerr != nil {
			return nil, cerr
		}
		metrics.Get().SignupsTotal.Add(ctx, 1)
		l.InfoContext(ctx, "Account created from provider login", slog.String("userID", user.ID.String()))
	default:
		return nil, err
	}

	profile, err := s.profiles.CreateFromAuth(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}

	session, err := s.sessions.Create(ctx, user.ID, method, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	metrics.Get().OAuthLoginsTotal.Add(ctx, 1)
	return &types.AuthPayload{
		User: types.AuthenticatedUser{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  profile.Username,
		},
		Tokens:    pair,
		SessionID: session.SessionID,
	}, nil
}
