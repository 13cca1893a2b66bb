package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-saas-starter/config"
	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:        "test-access-secret",
		RefreshSecretKey: "test-refresh-secret",
		Issuer:           "go-saas-starter-test",
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       7 * 24 * time.Hour,
	}
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	cfg := testJWTConfig()
	cfg.SecretKey = ""
	_, err := NewTokenIssuer(cfg)
	assert.Error(t, err)

	cfg = testJWTConfig()
	cfg.RefreshSecretKey = cfg.SecretKey
	_, err = NewTokenIssuer(cfg)
	assert.Error(t, err, "shared access/refresh secret must be rejected")
}

func TestIssuePair_VerifyRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	userID := uuid.New()
	pair, err := issuer.IssuePair(userID, "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := issuer.Verify(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	subject, err := SubjectID(claims)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)

	refreshClaims, err := issuer.Verify(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
}

func TestVerify_TypeConfusionRejected(t *testing.T) {
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	pair, err := issuer.IssuePair(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = issuer.Verify(pair.AccessToken, TokenTypeRefresh)
	require.Error(t, err, "access token must not verify as refresh")
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))

	_, err = issuer.Verify(pair.RefreshToken, TokenTypeAccess)
	require.Error(t, err, "refresh token must not verify as access")
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	other := testJWTConfig()
	other.SecretKey = "completely-different-secret"
	otherIssuer, err := NewTokenIssuer(other)
	require.NoError(t, err)

	pair, err := issuer.IssuePair(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = otherIssuer.Verify(pair.AccessToken, TokenTypeAccess)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))
}

func TestVerify_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTTL = time.Millisecond
	issuer, err := NewTokenIssuer(cfg)
	require.NoError(t, err)

	pair, err := issuer.IssuePair(uuid.New(), "a@x.com")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = issuer.Verify(pair.AccessToken, TokenTypeAccess)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))
}

func TestVerify_Garbage(t *testing.T) {
	issuer, err := NewTokenIssuer(testJWTConfig())
	require.NoError(t, err)

	_, err = issuer.Verify("not.a.token", TokenTypeAccess)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnauthenticated))
}
