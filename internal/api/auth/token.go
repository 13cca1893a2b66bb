package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-saas-starter/config"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

// Token type discriminators. Carried in claims so an access token can never
// be replayed against the refresh endpoint or vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenIssuer signs and verifies the stateless access/refresh token pair.
// The two secrets are independent to limit blast radius if one leaks.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.SecretKey == "" || cfg.RefreshSecretKey == "" {
		return nil, errors.New("JWT secret keys must be configured")
	}
	if cfg.SecretKey == cfg.RefreshSecretKey {
		return nil, errors.New("JWT access and refresh secrets must differ")
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.SecretKey),
		refreshSecret: []byte(cfg.RefreshSecretKey),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssuePair mints a fresh access/refresh token pair for a subject.
func (t *TokenIssuer) IssuePair(userID uuid.UUID, email string) (types.TokenPair, error) {
	access, err := t.issue(userID, email, TokenTypeAccess, t.accessTTL, t.accessSecret)
	if err != nil {
		return types.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := t.issue(userID, email, TokenTypeRefresh, t.refreshTTL, t.refreshSecret)
	if err != nil {
		return types.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return types.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) issue(userID uuid.UUID, email, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if t.audience != "" {
		claims.Audience = jwt.ClaimStrings{t.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify validates signature, expiry, issuer and the type discriminator.
// Every failure collapses into types.ErrUnauthenticated; the cause is
// wrapped for server-side logs only. Verification does no I/O.
func (t *TokenIssuer) Verify(tokenString, expectedType string) (*types.Claims, error) {
	secret := t.accessSecret
	if expectedType == TokenTypeRefresh {
		secret = t.refreshSecret
	}

	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w: %w", err, types.ErrUnauthenticated)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token marked invalid: %w", types.ErrUnauthenticated)
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("token type mismatch (got %q, want %q): %w", claims.TokenType, expectedType, types.ErrUnauthenticated)
	}
	return claims, nil
}

// SubjectID extracts the user id from verified claims.
func SubjectID(claims *types.Claims) (uuid.UUID, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", types.ErrUnauthenticated)
	}
	return id, nil
}
