package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialPair is the access/refresh token pair proving a session. Both
// tokens are opaque to the console.
type CredentialPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Complete reports whether both tokens are present. A half-written pair is
// treated as no pair at all.
func (p CredentialPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// AccessExpiry returns the exp claim of the access token when the token is a
// JWT. The signature is NOT verified; the value is for display only.
func (p CredentialPair) AccessExpiry() (time.Time, bool) {
	if p.AccessToken == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// CredentialEventKind tells subscribers what happened to the stored pair.
type CredentialEventKind int

const (
	CredentialsSet CredentialEventKind = iota + 1
	CredentialsCleared
	// CredentialsChangedExternally is reported when another console process
	// sharing the same database wrote or removed the pair.
	CredentialsChangedExternally
)

func (k CredentialEventKind) String() string {
	switch k {
	case CredentialsSet:
		return "set"
	case CredentialsCleared:
		return "cleared"
	case CredentialsChangedExternally:
		return "changed_externally"
	default:
		return "unknown"
	}
}

// CredentialEvent is published by the credential store on every change.
type CredentialEvent struct {
	Kind   CredentialEventKind
	Origin string
}
