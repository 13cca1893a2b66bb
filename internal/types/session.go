package types

import (
	"time"

	"github.com/google/uuid"
)

// Session is one tracked login instance. CreatedAt is immutable; RevokedAt
// is terminal once set — a revoked session never touches again.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	SessionID    string     `json:"session_id"`
	AuthMethod   AuthMethod `json:"auth_method"`
	Browser      string     `json:"browser"`
	OS           string     `json:"os"`
	Device       string     `json:"device"`
	IP           string     `json:"ip"`
	Location     *string    `json:"location,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	RevokedAt    *time.Time `json:"revoked_at"`
}

// RequestMeta carries the client fingerprint captured at login time.
type RequestMeta struct {
	UserAgent string
	IP        string
}
