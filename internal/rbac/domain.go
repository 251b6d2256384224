// Package rbac stores roles and permission assignments and resolves the
// effective permission set attached to an actor at the request boundary.
package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// UserRole links a user to a role.
type UserRole struct {
	UserID    uuid.UUID
	RoleID    int64
	CreatedAt time.Time
}
