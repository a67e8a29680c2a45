package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrLoginRejected covers every failed login: bad credentials, an
	// unreachable server, or a success reply that cannot be trusted.
	ErrLoginRejected           = errors.New("login rejected")
	ErrMalformedLoginResponse  = fmt.Errorf("%w: response carries no user profile", ErrLoginRejected)
	ErrCredentialsNotPersisted = fmt.Errorf("%w: credentials were not persisted", ErrLoginRejected)

	ErrVerificationUnauthorized = errors.New("session verification: unauthorized")
	ErrVerificationTransient    = errors.New("session verification: transient failure")

	// ErrLogoutFailed reports a failed server call. Local state is cleared
	// regardless.
	ErrLogoutFailed = errors.New("logout failed")

	ErrStopped        = errors.New("reconciler is not running")
	ErrAlreadyRunning = errors.New("reconciler is already running")
)
