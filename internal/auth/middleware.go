package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/platform/httpx"
)

// PermissionSource resolves the effective permission names for a user.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Middleware resolves the acting user from the Authorization header and
// stores it on the request context. Requests without a token proceed as
// guests; requests presenting a bad token are rejected outright.
type Middleware struct {
	logger *slog.Logger
	tokens *TokenIssuer
	perms  PermissionSource
}

// NewMiddleware builds the auth middleware.
func NewMiddleware(logger *slog.Logger, tokens *TokenIssuer, perms PermissionSource) *Middleware {
	return &Middleware{logger: logger, tokens: tokens, perms: perms}
}

// Resolve is the actor-resolution middleware.
func (m *Middleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r.WithContext(actor.ContextWithActor(r.Context(), actor.Guest())))
			return
		}
		claims, err := m.tokens.Verify(raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		userID, _ := uuid.Parse(claims.Subject)
		perms, err := m.perms.EffectivePermissions(r.Context(), userID)
		if err != nil {
			m.logger.Error("resolve permissions",
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		act := actor.Actor{
			ID:          userID,
			Role:        roleFromClaim(claims.Role),
			Permissions: actor.NewPermissionSet(perms...),
		}
		next.ServeHTTP(w, r.WithContext(actor.ContextWithActor(r.Context(), act)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func roleFromClaim(role string) actor.Role {
	switch actor.Role(role) {
	case actor.RoleMember, actor.RoleEditor, actor.RoleAdmin:
		return actor.Role(role)
	default:
		return actor.RoleMember
	}
}
