package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the public-facing profile, linked 1:1 to UserAuth. It is
// created only after email verification succeeds, or immediately on first
// OAuth login.
type UserProfile struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Name            string     `json:"name"`
	Username        string     `json:"username"`
	AvatarURL       *string    `json:"avatar_url,omitempty"`
	Bio             *string    `json:"bio,omitempty"`
	Location        *string    `json:"location,omitempty"`
	Website         *string    `json:"website,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	UsernameChanged bool       `json:"username_changed"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UpdateProfileRequest carries the mutable profile fields. Pointer fields
// left nil are not updated.
type UpdateProfileRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	AvatarURL   *string    `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio         *string    `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=100"`
	Website     *string    `json:"website,omitempty" validate:"omitempty,url"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// ChangeUsernameRequest renames the profile. Allowed exactly once.
type ChangeUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
}
