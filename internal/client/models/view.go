package models

// AuthState is the coarse state of the derived view.
type AuthState int

const (
	StateLoggedOut AuthState = iota
	// StateUnknown: a credential pair exists but no profile has been
	// verified yet.
	StateUnknown
	StateLoggedIn
)

func (s AuthState) String() string {
	switch s {
	case StateLoggedOut:
		return "logged out"
	case StateUnknown:
		return "checking session"
	case StateLoggedIn:
		return "logged in"
	default:
		return "invalid"
	}
}

// AuthView is the read-only projection consumed by the rest of the console
// (route guard, prompt, whoami). It is recomputed on demand, never stored.
type AuthView struct {
	User            *UserProfile
	IsAuthenticated bool
	IsLoading       bool
	State           AuthState
}

// DeriveView computes the view from its three inputs. credsPresent must come
// from a live read of the credential store.
func DeriveView(user *UserProfile, credsPresent, pending bool) AuthView {
	v := AuthView{
		User:            user.Clone(),
		IsAuthenticated: user != nil || credsPresent,
		IsLoading:       pending && user == nil && credsPresent,
	}
	switch {
	case user != nil:
		v.State = StateLoggedIn
	case credsPresent:
		v.State = StateUnknown
	default:
		v.State = StateLoggedOut
	}
	return v
}

// AuthErrorKind classifies a failed verification.
type AuthErrorKind int

const (
	// Transient failures (network, server hiccups) never clear credentials.
	Transient AuthErrorKind = iota
	// Unauthorized means the server rejected the credentials themselves.
	Unauthorized
)

func (k AuthErrorKind) String() string {
	if k == Unauthorized {
		return "unauthorized"
	}
	return "transient"
}
