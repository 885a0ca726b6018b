package tasks

import (
	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/auth"
)

// MountRoutes registers task routes. Every endpoint requires the user
// role and is scoped to the authenticated principal.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(auth.PolicyRequireUser))

		r.Post("/tasks", h.Create)
		r.Get("/tasks", h.List)

		// Static segments must be registered alongside the {id} wildcard;
		// chi resolves the literal match first.
		r.Get("/tasks/completed", h.ListCompleted)
		r.Get("/tasks/pending", h.ListPending)
		r.Get("/tasks/due-today", h.ListDueToday)
		r.Get("/tasks/overdue", h.ListOverdue)
		r.Get("/tasks/stats", h.Stats)

		r.Get("/tasks/status/{status}", h.ListByStatus)
		r.Get("/tasks/priority/{priority}", h.ListByPriority)
		r.Get("/tasks/category/{categoryID}", h.ListByCategory)

		r.Get("/tasks/{id}", h.Get)
		r.Put("/tasks/{id}", h.Update)
		r.Delete("/tasks/{id}", h.Delete)
		r.Post("/tasks/{id}/toggle", h.Toggle)
	})
}
