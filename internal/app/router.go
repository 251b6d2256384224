package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wayfarer-travel/wayfarer/internal/accommodations"
	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/audit"
	"github.com/wayfarer-travel/wayfarer/internal/auth"
	"github.com/wayfarer-travel/wayfarer/internal/posts"
	"github.com/wayfarer-travel/wayfarer/internal/rbac"
	"github.com/wayfarer-travel/wayfarer/internal/sponsorships"
	"github.com/wayfarer-travel/wayfarer/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware *auth.Middleware
	RBACMiddleware rbac.Middleware

	AuthHandler          *auth.Handler
	PostsHandler         *posts.Handler
	AccommodationHandler *accommodations.Handler
	UsersHandler         *users.Handler
	SponsorshipHandler   *sponsorships.Handler
	RBACHandler          *rbac.Handler
	AuditHandler         *audit.Handler
}

// NewRouter constructs the chi.Router with Wayfarer defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
		Auth:   params.AuthMiddleware,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", params.AuthHandler.Routes())
		r.Mount("/posts", params.PostsHandler.Routes())
		r.Mount("/accommodations", params.AccommodationHandler.Routes())
		r.Mount("/users", params.UsersHandler.Routes())
		r.Mount("/sponsorships", params.SponsorshipHandler.Routes())
		if params.RBACHandler != nil {
			r.With(params.RBACMiddleware.Require(actor.PermRolesEdit)).
				Mount("/admin", params.RBACHandler.Routes())
		}
		if params.AuditHandler != nil {
			r.With(params.RBACMiddleware.Require(actor.PermRolesView)).
				Mount("/audit", params.AuditHandler.Routes())
		}
	})

	return r
}
