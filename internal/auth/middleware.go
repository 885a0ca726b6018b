package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive/internal/shared"
)

// Middleware wires bearer-token authentication and role authorization for
// HTTP handlers. On success the decoded principal is attached to the
// request context for downstream handlers.
type Middleware struct {
	Verifier *Verifier
	Revoker  Revoker
	Logger   *slog.Logger
}

// RequireRole returns middleware enforcing the given role policy. The
// request short-circuits with a structured JSON error on any failure; the
// wrapped handler is never invoked.
func (m Middleware) RequireRole(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.Verifier.Verify(r.Header.Get("Authorization"))
			if err != nil {
				m.reject(w, r, err)
				return
			}

			if m.Revoker != nil {
				revoked, err := m.Revoker.IsRevoked(r.Context(), principal)
				if err != nil {
					// Fail closed: a broken revocation store must not
					// admit potentially revoked tokens.
					if m.Logger != nil {
						m.Logger.Error("revocation check", slog.Any("error", err))
					}
					shared.JSONMessage(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				if revoked {
					shared.JSONMessage(w, http.StatusUnauthorized, "Invalid token")
					return
				}
			}

			if err := Authorize(principal, policy); err != nil {
				m.reject(w, r, err)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	var forbidden *ForbiddenError
	switch {
	case errors.Is(err, ErrMissingCredential):
		shared.JSONError(w, http.StatusUnauthorized, "Unauthorized - Missing or invalid authorization header")
	case errors.Is(err, ErrTokenExpired):
		shared.JSONMessage(w, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, ErrMalformedClaims):
		shared.JSONError(w, http.StatusUnauthorized, "Unauthorized - Invalid token payload")
	case errors.Is(err, ErrInvalidToken):
		shared.JSONMessage(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, ErrAccountDisabled):
		shared.JSONError(w, http.StatusUnauthorized, "Unauthorized - Account is disabled")
	case errors.As(err, &forbidden):
		if m.Logger != nil {
			m.Logger.Warn("authorization denied",
				slog.String("path", r.URL.Path),
				slog.String("required_role", string(forbidden.Required)),
				slog.String("user_role", string(forbidden.Actual)))
		}
		shared.JSON(w, http.StatusForbidden, map[string]string{
			"error":        "Forbidden - Insufficient permissions",
			"requiredRole": string(forbidden.Required),
			"userRole":     string(forbidden.Actual),
		})
	default:
		shared.JSONMessage(w, http.StatusUnauthorized, "Authentication failed")
	}
}
