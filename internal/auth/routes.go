package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/ratelimit"
)

// MountRoutes registers auth routes. Register and login sit behind the
// strict auth limiter; the user management routes require the admin role
// and share the general API limiter wired by the caller.
func (h *Handler) MountRoutes(r chi.Router, mw Middleware, authLimiter *ratelimit.Limiter) {
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return authLimiter.Middleware(next) })
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(PolicyRequireAdmin))
		r.Get("/users", h.ListUsers)
		r.Get("/users/{id}", h.GetUser)
		r.Put("/users/{id}", h.UpdateUser)
		r.Post("/users/{id}/deactivate", h.DeactivateUser)
	})
}
