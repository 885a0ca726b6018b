package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRevoker struct {
	revoked bool
	err     error
}

func (s *stubRevoker) IsRevoked(ctx context.Context, p *Principal) (bool, error) {
	return s.revoked, s.err
}

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		require.NotNil(t, p, "principal must be attached before the handler runs")
		w.WriteHeader(http.StatusNoContent)
	})
}

func runMiddleware(t *testing.T, mw Middleware, policy Policy, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw.RequireRole(policy)(protectedHandler(t)).ServeHTTP(rec, req)
	return rec
}

func TestRequireRoleAdmitsMatchingRole(t *testing.T) {
	issuer := testIssuer(t)
	mw := Middleware{Verifier: testVerifier(t)}

	token, err := issuer.Issue(&User{ID: 3, Role: RoleUser})
	require.NoError(t, err)

	rec := runMiddleware(t, mw, PolicyRequireUser, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRoleMissingHeader(t *testing.T) {
	mw := Middleware{Verifier: testVerifier(t)}

	rec := runMiddleware(t, mw, PolicyRequireUser, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized - Missing or invalid authorization header"}`, rec.Body.String())
}

func TestRequireRoleInvalidToken(t *testing.T) {
	mw := Middleware{Verifier: testVerifier(t)}

	rec := runMiddleware(t, mw, PolicyRequireUser, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
}

func TestRequireRoleExpiredToken(t *testing.T) {
	issuer := testIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	mw := Middleware{Verifier: testVerifier(t)}

	token, err := issuer.Issue(&User{ID: 3, Role: RoleUser})
	require.NoError(t, err)

	rec := runMiddleware(t, mw, PolicyRequireUser, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Token expired"}`, rec.Body.String())
}

func TestRequireRoleDisabledAccount(t *testing.T) {
	issuer := testIssuer(t)
	mw := Middleware{Verifier: testVerifier(t)}

	token, err := issuer.Issue(&User{ID: 3, Role: RoleDisabled})
	require.NoError(t, err)

	rec := runMiddleware(t, mw, PolicyRequireEither, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized - Account is disabled"}`, rec.Body.String())
}

func TestRequireRoleInsufficientRole(t *testing.T) {
	issuer := testIssuer(t)
	mw := Middleware{Verifier: testVerifier(t)}

	token, err := issuer.Issue(&User{ID: 3, Role: RoleUser})
	require.NoError(t, err)

	rec := runMiddleware(t, mw, PolicyRequireAdmin, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden - Insufficient permissions","requiredRole":"admin","userRole":"user"}`, rec.Body.String())
}

func TestRequireRoleRevokedToken(t *testing.T) {
	issuer := testIssuer(t)
	mw := Middleware{Verifier: testVerifier(t), Revoker: &stubRevoker{revoked: true}}

	token, err := issuer.Issue(&User{ID: 3, Role: RoleUser})
	require.NoError(t, err)

	rec := runMiddleware(t, mw, PolicyRequireUser, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
}

func TestRequireRoleFailsClosedOnRevokerError(t *testing.T) {
	issuer := testIssuer(t)
	mw := Middleware{Verifier: testVerifier(t), Revoker: &stubRevoker{err: errors.New("redis down")}}

	token, err := issuer.Issue(&User{ID: 3, Role: RoleUser})
	require.NoError(t, err)

	rec := runMiddleware(t, mw, PolicyRequireUser, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
}
