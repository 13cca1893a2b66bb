package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// DefaultOTPWindow bounds how long a verification or reset code stays valid.
const DefaultOTPWindow = 10 * time.Minute

const otpModulus = 1_000_000

// GenerateOTP produces a 6-digit, left-zero-padded numeric code from the
// platform CSPRNG. A general-purpose PRNG is not acceptable here.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpModulus))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SecretsEqual compares a stored challenge secret (OTP, reset token) with
// user input in constant time.
func SecretsEqual(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// OTPExpiry returns the expiry timestamp for a code issued now. A
// non-positive window falls back to the default.
func OTPExpiry(window time.Duration) time.Time {
	if window <= 0 {
		window = DefaultOTPWindow
	}
	return time.Now().Add(window)
}
