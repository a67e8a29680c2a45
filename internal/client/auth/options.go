package auth

import "time"

const (
	DefaultVerifyAttempts = 2
	DefaultVerifyBackoff  = 300 * time.Millisecond
	DefaultLoginPath      = "/login"
	DefaultHomePath       = "/"
)

type Options struct {
	// VerifyAttempts bounds profile calls per verification, the first one
	// included. Unauthorized answers are never retried.
	VerifyAttempts int
	VerifyBackoff  time.Duration

	// SettleDelay is waited between committing a login and navigating.
	SettleDelay time.Duration

	// RecheckInterval enables a periodic re-verification when positive.
	RecheckInterval time.Duration

	LoginPath string
	HomePath  string
}

func DefaultOptions() Options {
	return Options{
		VerifyAttempts: DefaultVerifyAttempts,
		VerifyBackoff:  DefaultVerifyBackoff,
		LoginPath:      DefaultLoginPath,
		HomePath:       DefaultHomePath,
	}
}

func (o Options) normalized() Options {
	if o.VerifyAttempts <= 0 {
		o.VerifyAttempts = DefaultVerifyAttempts
	}
	if o.VerifyBackoff < 0 {
		o.VerifyBackoff = 0
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.LoginPath == "" {
		o.LoginPath = DefaultLoginPath
	}
	if o.HomePath == "" {
		o.HomePath = DefaultHomePath
	}
	return o
}
