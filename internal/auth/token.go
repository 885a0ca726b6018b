package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const bearerPrefix = "Bearer "

// Claims is the JWT payload carried by a bearer token.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer. An empty secret is refused so the
// server fails closed on misconfiguration.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the given user.
func (i *TokenIssuer) Issue(u *User) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		UserID:   u.ID,
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// TTL exposes the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Verifier validates bearer tokens presented in Authorization headers.
// Verification is a pure function of (header value, clock, secret); it
// performs no I/O.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier constructs a Verifier. An empty secret is refused.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	return &Verifier{secret: []byte(secret), now: time.Now}, nil
}

// Verify decodes and validates the raw Authorization header value and
// returns the embedded principal.
func (v *Verifier) Verify(rawHeader string) (*Principal, error) {
	if !strings.HasPrefix(rawHeader, bearerPrefix) {
		return nil, ErrMissingCredential
	}
	raw := strings.TrimSpace(strings.TrimPrefix(rawHeader, bearerPrefix))
	if raw == "" {
		return nil, ErrMissingCredential
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(v.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidToken
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user_id", ErrMalformedClaims)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}

	p := &Principal{
		UserID:   claims.UserID,
		Fullname: claims.Fullname,
		Email:    claims.Email,
		Role:     role,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
