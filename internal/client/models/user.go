package models

import "strings"

// UserProfile is the authoritative identity record returned by the admin API.
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

// Equal compares two profiles field by field. Two nil profiles are equal.
func (u *UserProfile) Equal(other *UserProfile) bool {
	if u == nil || other == nil {
		return u == other
	}
	return *u == *other
}

// DisplayName is "First Last" when a name is known, the email otherwise.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Clone returns a copy that callers may keep without aliasing the cache.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// LoginRequest carries what the user typed on the login surface.
type LoginRequest struct {
	Identifier string
	Secret     []byte
}

// LoginResponse is the decoded body of a successful login call.
type LoginResponse struct {
	User *UserProfile
}
