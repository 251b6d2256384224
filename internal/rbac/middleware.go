package rbac

import (
	"log/slog"
	"net/http"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/platform/httpx"
)

// Middleware gates routes on the permission tags carried by the actor.
type Middleware struct {
	Logger *slog.Logger
}

// Require rejects requests whose actor lacks the permission tag. Anonymous
// actors get 401, authenticated ones 403.
func (m Middleware) Require(tag string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			act := actor.FromContext(r.Context())
			if act.Can(tag) {
				next.ServeHTTP(w, r)
				return
			}
			if act.Anonymous() {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("route denied",
					slog.String("permission", tag),
					slog.String("actor_id", act.ID.String()),
					slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission "+tag)
		})
	}
}
