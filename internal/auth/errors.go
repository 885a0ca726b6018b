package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential indicates an absent or malformed Authorization header.
	ErrMissingCredential = errors.New("missing or malformed authorization header")
	// ErrInvalidToken indicates a token that failed signature or structural checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a token past its expiry instant.
	ErrTokenExpired = errors.New("token expired")
	// ErrMalformedClaims indicates a token missing required claims or
	// carrying a role outside the known set.
	ErrMalformedClaims = errors.New("malformed token claims")
	// ErrAccountDisabled indicates a principal whose role is disabled.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrEmailTaken indicates a registration against an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// ForbiddenError reports a policy the principal's role does not satisfy.
type ForbiddenError struct {
	Required Policy
	Actual   Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: requires %s role, got %s", e.Required, e.Actual)
}
