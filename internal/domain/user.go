package domain

import (
	"time"

	"github.com/google/uuid"
)

// Skills holds the levels gating equipment
type Skills struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Ranged  int `json:"ranged"`
	Magic   int `json:"magic"`
	Healing int `json:"healing"`
	Slayer  int `json:"slayer"`
}

// Character is a playable character with a coin balance
type Character struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             string     `json:"user_id"`
	Name               string     `json:"name"`
	Coins              int64      `json:"coins"`
	Skills             Skills     `json:"skills"`
	OwnerSessionUserID *string    `json:"owner_session_user_id,omitempty"`
	ActiveSessionID    *uuid.UUID `json:"active_session_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsOwnedBy reports whether the character is currently owned by the given user
func (c *Character) IsOwnedBy(userID string) bool {
	return c.OwnerSessionUserID != nil && *c.OwnerSessionUserID == userID
}

// Session is an authenticated caller
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
