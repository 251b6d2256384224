// Package actor models the identity performing an operation. The actor is
// resolved once at the request boundary and threaded through every service
// call; services never re-derive identity mid-flight.
package actor

import "github.com/google/uuid"

// Role is the coarse classification of an actor.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleMember Role = "member"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// PermissionSet is a flat set of permission tags.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from tags.
func NewPermissionSet(tags ...string) PermissionSet {
	set := make(PermissionSet, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// Has reports whether the tag is in the set.
func (s PermissionSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Actor is the immutable per-request identity. The guest variant carries a
// nil ID and the guest role; every other variant was authenticated upstream.
type Actor struct {
	ID          uuid.UUID
	Role        Role
	Permissions PermissionSet
}

// Guest returns the unauthenticated actor.
func Guest() Actor {
	return Actor{Role: RoleGuest}
}

// Anonymous reports whether the actor is the guest variant.
func (a Actor) Anonymous() bool {
	return a.Role == RoleGuest || a.ID == uuid.Nil
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Can reports whether the actor holds the permission tag. Admins hold every
// permission implicitly.
func (a Actor) Can(tag string) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Permissions.Has(tag)
}

// Owns reports whether the actor owns the record created by createdBy.
func (a Actor) Owns(createdBy uuid.UUID) bool {
	return !a.Anonymous() && a.ID == createdBy
}
