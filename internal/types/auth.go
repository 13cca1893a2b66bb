package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMethod identifies how an identity authenticates.
type AuthMethod string

const (
	AuthMethodEmail  AuthMethod = "email"
	AuthMethodGoogle AuthMethod = "google"
	AuthMethodGitHub AuthMethod = "github"
)

// UserAuth is the credential/identity record, distinct from the public
// profile. PasswordHash is nil only for pure-OAuth accounts that never set
// a password.
type UserAuth struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        *string    `json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Verified            bool       `json:"verified"`
	VerificationCode    *string    `json:"-"`
	VerificationExpires *time.Time `json:"-"`
	ResetToken          *string    `json:"-"`
	ResetExpires        *time.Time `json:"-"`
	AuthMethod          AuthMethod `json:"auth_method"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Claims are the JWT claims carried by both token types. TokenType prevents
// a refresh token from being replayed as an access token and vice versa.
type Claims struct {
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// AuthenticatedUser is the minimal identity handed to request handlers once
// the middleware chain has fully validated a request.
type AuthenticatedUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
}

// CreateAccountRequest is the expected JSON body for password signup.
type CreateAccountRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
}

// LoginRequest is the expected JSON body for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest submits the OTP sent on signup.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResendVerificationRequest re-issues a verification code.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required,len=6,numeric"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is the issued access/refresh token set.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthPayload is returned after login, email verification, and OAuth
// callbacks: the public identity plus tokens and the session handle the
// client must echo back in the x-session-id header.
type AuthPayload struct {
	User      AuthenticatedUser `json:"user"`
	Tokens    TokenPair         `json:"tokens"`
	SessionID string            `json:"sessionId"`
}
