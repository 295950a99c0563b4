package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anveshm/vidtube/internal/logging"
	"github.com/anveshm/vidtube/internal/server/config"
)

// NewRouter wires the API routes, auth middleware and metrics into a single
// handler. Logout sits behind the access token check; every other endpoint
// is public.
func NewRouter(service UserService, l logging.Logger, cfg *config.Config, metrics *Metrics) http.Handler {
	r := chi.NewRouter()
	h := NewHandler(service, l, cfg)

	r.Use(metrics.Middleware)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(RequireAccessToken([]byte(cfg.AccessTokenSecret)))
			r.Post("/logout", h.Logout)
		})
	})

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
