package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/categories"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/ratelimit"
	"github.com/taskhive/taskhive/internal/tasks"
	"github.com/taskhive/taskhive/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthMiddleware  auth.Middleware
	AuthHandler     *auth.Handler
	TaskHandler     *tasks.Handler
	CategoryHandler *categories.Handler
	AuthLimiter     *ratelimit.Limiter
	APILimiter      *ratelimit.Limiter
	Metrics         *observability.Metrics
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with TaskHive defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, params.AuthMiddleware, params.AuthLimiter)
		})

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler { return params.APILimiter.Middleware(next) })
			params.TaskHandler.MountRoutes(r, params.AuthMiddleware)
			params.CategoryHandler.MountRoutes(r, params.AuthMiddleware)

			if params.JobsHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					r.Use(params.AuthMiddleware.RequireRole(auth.PolicyRequireAdmin))
					params.JobsHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}
