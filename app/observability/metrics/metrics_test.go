package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_InitializesEveryInstrument(t *testing.T) {
	m := Get()
	require.NotNil(t, m)

	assert.NotNil(t, m.SignupsTotal)
	assert.NotNil(t, m.LoginAttemptsTotal)
	assert.NotNil(t, m.LoginFailuresTotal)
	assert.NotNil(t, m.VerificationsTotal)
	assert.NotNil(t, m.SessionsCreatedTotal)
	assert.NotNil(t, m.SessionsRevokedTotal)
	assert.NotNil(t, m.TokenRefreshesTotal)
	assert.NotNil(t, m.OAuthLoginsTotal)
	assert.NotNil(t, m.PasswordResetsTotal)
	assert.NotNil(t, m.AuthDurationSeconds)
	assert.NotNil(t, m.DbQueryDurationSeconds)

	// Recording against the default no-op provider must not panic.
	m.AuthDurationSeconds.Record(context.Background(), 0.01)
	m.DbQueryDurationSeconds.Record(context.Background(), 0.01)
}
