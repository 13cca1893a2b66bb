package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "OTP %q contains non-digit %q", code, r)
		}
	}
}

func TestGenerateOTP_NotTriviallyRepeating(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		seen[code]++
	}
	// With a million possible codes, 200 draws collapsing to a handful of
	// values would indicate a broken source.
	assert.Greater(t, len(seen), 150)
}

func TestOTPExpiry(t *testing.T) {
	expiry := OTPExpiry(5 * time.Minute)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiry, 2*time.Second)

	// Non-positive windows fall back to the default.
	fallback := OTPExpiry(0)
	assert.WithinDuration(t, time.Now().Add(DefaultOTPWindow), fallback, 2*time.Second)
}

func TestSecretsEqual(t *testing.T) {
	assert.True(t, SecretsEqual("123456", "123456"))
	assert.False(t, SecretsEqual("123456", "123457"))
	assert.False(t, SecretsEqual("123456", "12345"))
	assert.False(t, SecretsEqual("", "123456"))
	assert.True(t, SecretsEqual("", ""))
}
