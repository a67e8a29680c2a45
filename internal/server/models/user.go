// Package models holds the development server's stored records.
package models

import (
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/wire"
)

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	Active       bool
	PasswordHash []byte
	CreatedAt    time.Time
}

// Wire returns the public profile; the password hash never leaves the server.
func (u *User) Wire() *wire.Profile {
	return &wire.Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Active:    u.Active,
	}
}
