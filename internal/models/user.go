package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
// A user may act as buyer and seller in different conversations.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// DisplayName is the name shown to other users.
	DisplayName string `json:"displayName"`

	// AvatarURL is the profile picture URL, empty if none is set.
	AvatarURL string `json:"avatarUrl,omitempty"`

	// IdentityVerified reports whether the user passed identity verification.
	// The verification decision itself is made by an external service; this
	// is only the stored outcome.
	IdentityVerified bool `json:"identityVerified"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PublicProfile is the subset of User safe to show to the opposite party
// in a conversation.
type PublicProfile struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	IdentityVerified bool   `json:"identityVerified"`
}

// Public returns the user's public profile.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:               u.ID,
		DisplayName:      u.DisplayName,
		AvatarURL:        u.AvatarURL,
		IdentityVerified: u.IdentityVerified,
	}
}
