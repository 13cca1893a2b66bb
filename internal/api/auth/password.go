package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-saas-starter/internal/types"
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
// An empty plaintext is rejected before the primitive runs.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password must not be empty: %w", types.ErrBadRequest)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// The comparison against the hash is constant-time inside bcrypt.
func VerifyPassword(plain, hash string) error {
	if plain == "" || hash == "" {
		return fmt.Errorf("password and hash must not be empty: %w", types.ErrBadRequest)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return types.ErrUnauthenticated
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
