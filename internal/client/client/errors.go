package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMalformedResponse is returned when a 2xx/OK reply cannot be used.
	ErrMalformedResponse = errors.New("malformed server response")

	ErrUnknownTransport = errors.New("unknown transport")
)
