package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrOwnershipViolation indicates access to a record owned by another user.
	ErrOwnershipViolation = errors.New("record belongs to another user")
)
