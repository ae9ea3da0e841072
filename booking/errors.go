package booking

import "errors"

var (
	// ErrIncomplete indicates the session has not progressed far enough to
	// be finalized.
	ErrIncomplete = errors.New("booking session incomplete")
	// ErrInvalidToken indicates the presented magic token does not match
	// the stored hash.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrTokenExpired indicates the magic token's grace window has passed.
	ErrTokenExpired = errors.New("access token expired")
)
