package auth

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles carried inside a token.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
	RoleDisabled   Role = "disabled"
)

// ParseRole maps a raw claim value onto the known role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser, RoleAdmin, RoleSuperadmin, RoleDisabled:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrMalformedClaims, raw)
	}
}

// Policy declares which roles may invoke a route group.
type Policy string

const (
	// PolicyRequireUser admits only regular user accounts.
	PolicyRequireUser Policy = "user"
	// PolicyRequireAdmin admits admin accounts. Superadmin accounts carry
	// admin privileges and are admitted as well.
	PolicyRequireAdmin Policy = "admin"
	// PolicyRequireEither admits any non-disabled authenticated account.
	PolicyRequireEither Policy = "both"
)

// Principal is the authenticated identity reconstructed from a verified
// token. It lives for the duration of one request and is never persisted.
type Principal struct {
	UserID    int64
	Fullname  string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Authorize decides whether the principal satisfies the route policy.
// A disabled account never satisfies any policy, PolicyRequireEither
// included.
func Authorize(p *Principal, policy Policy) error {
	if p == nil {
		return ErrMissingCredential
	}
	switch p.Role {
	case RoleDisabled:
		return ErrAccountDisabled
	case RoleUser, RoleAdmin, RoleSuperadmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrMalformedClaims, p.Role)
	}

	switch policy {
	case PolicyRequireAdmin:
		if p.Role == RoleAdmin || p.Role == RoleSuperadmin {
			return nil
		}
	case PolicyRequireUser:
		if p.Role == RoleUser {
			return nil
		}
	case PolicyRequireEither:
		return nil
	}
	return &ForbiddenError{Required: policy, Actual: p.Role}
}

// User represents a stored user account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Fullname     string    `json:"fullname" db:"fullname"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
