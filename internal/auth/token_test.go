package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	return issuer
}

func testVerifier(t *testing.T) *Verifier {
	t.Helper()
	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)
	return verifier
}

func TestNewTokenIssuerRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenIssuer("secret", 0)
	assert.Error(t, err)
}

func TestVerifyRoundTrip(t *testing.T) {
	issuer := testIssuer(t)
	verifier := testVerifier(t)

	token, err := issuer.Issue(&User{
		ID:       7,
		Fullname: "Dana Keeper",
		Email:    "dana@example.com",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)

	p, err := verifier.Verify("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.UserID)
	assert.Equal(t, "Dana Keeper", p.Fullname)
	assert.Equal(t, "dana@example.com", p.Email)
	assert.Equal(t, RoleAdmin, p.Role)
	assert.False(t, p.IssuedAt.IsZero())
	assert.False(t, p.ExpiresAt.IsZero())
}

func TestVerifyRejectsMalformedHeaders(t *testing.T) {
	verifier := testVerifier(t)

	cases := []string{
		"",
		"Bearer",
		"Bearer ",
		"bearer abc.def.ghi",
		"Basic dXNlcjpwYXNz",
		"abc.def.ghi",
	}
	for _, header := range cases {
		_, err := verifier.Verify(header)
		assert.ErrorIs(t, err, ErrMissingCredential, "header %q", header)
	}
}

func TestVerifyRejectsGarbageToken(t *testing.T) {
	verifier := testVerifier(t)

	_, err := verifier.Verify("Bearer not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("a completely different secret", time.Hour)
	require.NoError(t, err)
	verifier := testVerifier(t)

	token, err := issuer.Issue(&User{ID: 1, Role: RoleUser})
	require.NoError(t, err)

	_, err = verifier.Verify("Bearer " + token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := testIssuer(t)
	issuer.now = func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}
	verifier := testVerifier(t)

	token, err := issuer.Issue(&User{ID: 1, Role: RoleUser})
	require.NoError(t, err)

	_, err = verifier.Verify("Bearer " + token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	verifier := testVerifier(t)

	claims := Claims{
		UserID: 5,
		Role:   string(RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = verifier.Verify("Bearer " + signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	verifier := testVerifier(t)

	claims := Claims{
		Role: string(RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = verifier.Verify("Bearer " + signed)
	assert.ErrorIs(t, err, ErrMalformedClaims)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	verifier := testVerifier(t)

	claims := Claims{
		UserID: 5,
		Role:   "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = verifier.Verify("Bearer " + signed)
	assert.ErrorIs(t, err, ErrMalformedClaims)
}
