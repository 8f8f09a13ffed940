package app

import "errors"

var (
	// ErrUnauthenticated means there is no resolvable session for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrValidation covers input rejected before any write is attempted.
	ErrValidation = errors.New("validation failed")
)
