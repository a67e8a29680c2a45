package auth

import (
	"context"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
)

// CredentialStore holds the token pair. Subscribe delivers change events for
// writes from this process and from other processes sharing the store.
type CredentialStore interface {
	Get(ctx context.Context) (models.CredentialPair, bool, error)
	Clear(ctx context.Context) error
	Subscribe() (<-chan models.CredentialEvent, func())
}

// SessionCache keeps the last verified profile. Store must return only after
// the write is durable.
type SessionCache interface {
	User() *models.UserProfile
	Store(ctx context.Context, u *models.UserProfile) error
	Clear(ctx context.Context) error
	Reload(ctx context.Context) error
}

// API is the server side of authentication. Login persists the credential
// pair into the CredentialStore as a side effect.
type API interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Notifier shows fire-and-forget messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Navigator interface {
	Replace(path string)
	Push(path string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type nopNavigator struct{}

func (nopNavigator) Replace(string) {}
func (nopNavigator) Push(string)    {}
