// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Login failure. Deliberately a single value for unknown user and
	// wrong password, so behavior does not leak which one it was.
	ErrUnauthorized = errors.New("unauthorized")

	// Uniqueness conflicts, surfaced as 400-class responses.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already registered")
	ErrPhoneTaken    = errors.New("phone number already registered")

	// Ownership mismatch.
	ErrForbidden = errors.New("forbidden")

	// Token errors.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrMissingSubject = errors.New("token has no subject")

	// Current-user resolution errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserGone        = errors.New("token subject no longer exists")
)
