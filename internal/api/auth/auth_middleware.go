package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-saas-starter/internal/api"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

type contextKey string

const (
	UserKey      contextKey = "authenticatedUser"
	UserIDKey    contextKey = "userID"
	SessionIDKey contextKey = "sessionID"
)

// SessionIDHeader must accompany the bearer token on every authenticated
// request.
const SessionIDHeader = "x-session-id"

// UserLoader is the slice of AuthService the guard needs.
type UserLoader interface {
	GetUserAuthByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
}

// Authenticate composes the full request guard: bearer token, token
// verification, user existence, verified flag, session header, and a
// session touch. The touch hits the database on every request on purpose:
// JWTs are unrevocable by design, so revocation has to be enforced here,
// never cached.
func Authenticate(logger *slog.Logger, tokens *TokenIssuer, users UserLoader, profiles ProfileService, sessions SessionTracker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization token required")
				return
			}
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization token required")
				return
			}

			claims, err := tokens.Verify(headerParts[1], TokenTypeAccess)
			if err != nil {
				l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			userID, err := SubjectID(claims)
			if err != nil {
				l.WarnContext(ctx, "Invalid subject claim", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			// A deleted account can still hold a cryptographically valid
			// token until expiry; the lookup closes that window.
			user, err := users.GetUserAuthByID(ctx, userID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					l.WarnContext(ctx, "Token subject no longer exists", slog.String("userID", userID.String()))
					api.ErrorResponse(w, r, http.StatusUnauthorized, "User not found")
					return
				}
				l.ErrorContext(ctx, "Failed to load user", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}

			if !user.Verified {
				api.ErrorResponse(w, r, http.StatusForbidden, "Account not verified")
				return
			}

			sessionID := r.Header.Get(SessionIDHeader)
			if sessionID == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Session context missing")
				return
			}

			if _, err := sessions.Touch(ctx, user.ID, sessionID); err != nil {
				if errors.Is(err, types.ErrNotFound) {
					l.WarnContext(ctx, "No active session for request",
						slog.String("userID", user.ID.String()), slog.String("sessionID", sessionID))
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Session revoked. Please log in again.")
					return
				}
				l.ErrorContext(ctx, "Session touch failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}

			username := ""
			if profile, perr := profiles.GetByUserID(ctx, user.ID); perr == nil {
				username = profile.Username
			}

			authed := &types.AuthenticatedUser{
				ID:        user.ID,
				Email:     user.Email,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Username:  username,
			}
			ctx = context.WithValue(ctx, UserKey, authed)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			ctx = context.WithValue(ctx, SessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext returns the authenticated user id set by Authenticate.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetSessionIDFromContext returns the session id set by Authenticate.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok
}

// GetAuthenticatedUserFromContext returns the minimal identity struct set
// by Authenticate.
func GetAuthenticatedUserFromContext(ctx context.Context) (*types.AuthenticatedUser, bool) {
	user, ok := ctx.Value(UserKey).(*types.AuthenticatedUser)
	return user, ok
}
