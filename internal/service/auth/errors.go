package auth

import "errors"

// Token validation failures. Callers above this package wrap them in
// domain.ErrUnauthenticated.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures, unexpected
	// signing methods and unparseable claims
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned once exp has passed; there is no leeway
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates an empty token string
	ErrMissingToken = errors.New("authentication token is missing")
)
