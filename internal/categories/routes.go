package categories

import (
	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/auth"
)

// MountRoutes registers category routes. Every endpoint requires the user
// role and is scoped to the authenticated principal.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(auth.PolicyRequireUser))
		r.Post("/categories", h.Create)
		r.Get("/categories", h.List)
		r.Get("/categories/{id}", h.Get)
		r.Put("/categories/{id}", h.Update)
		r.Delete("/categories/{id}", h.Delete)
	})
}
