package models

import "time"

// RefreshToken is an opaque, single-use token. Using it deletes it.
type RefreshToken struct {
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
