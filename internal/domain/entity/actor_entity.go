package entity

import (
	"time"
)

// Actor is the authenticated entity attempting an action.
// Actors are provisioned outside the authorization core and never mutated by it.
//
// Passwords are stored as bcrypt hashes in Password field
type Actor struct {
	ID         string
	Email      string
	Password   string
	Name       string
	AvatarURL  string
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
