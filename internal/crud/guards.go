package crud

import (
	"errors"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
)

// ErrHidden is returned by a view guard when the actor may not learn that the
// entity exists. The pipeline resolves it to a null read result instead of a
// FORBIDDEN error.
var ErrHidden = errors.New("crud: entity hidden from actor")

// ErrDenied is the generic guard denial. The pipeline maps it to FORBIDDEN,
// or to UNAUTHORIZED when the actor is anonymous.
var ErrDenied = errors.New("crud: permission denied")

// EntityGuard authorizes an operation against a fetched or about-to-be-created
// entity. Guards are pure: they inspect only the actor and the entity's
// ownership/visibility fields, never the store.
type EntityGuard[E Entity] func(act actor.Actor, e E) error

// ActorGuard authorizes an operation that has no single target entity.
type ActorGuard func(act actor.Actor) error

// Guards is the per-entity permission predicate table. A nil predicate allows
// the operation; denial semantics stay explicit and table-driven.
type Guards[E Entity] struct {
	Create     EntityGuard[E]
	Update     EntityGuard[E]
	View       EntityGuard[E]
	SoftDelete EntityGuard[E]
	HardDelete EntityGuard[E]
	Restore    EntityGuard[E]
	List       ActorGuard
	Search     ActorGuard
	Count      ActorGuard
}

// RequirePermission builds an ActorGuard that denies unless the actor holds
// the permission tag.
func RequirePermission(tag string) ActorGuard {
	return func(act actor.Actor) error {
		if !act.Can(tag) {
			return ErrDenied
		}
		return nil
	}
}

// RequireAdmin builds an ActorGuard that denies everyone but admins.
func RequireAdmin() ActorGuard {
	return func(act actor.Actor) error {
		if !act.IsAdmin() {
			return ErrDenied
		}
		return nil
	}
}
