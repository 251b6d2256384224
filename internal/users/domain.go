// Package users implements the account service.
package users

import (
	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// User represents a platform account.
type User struct {
	crud.Record
	Email        string
	Username     string
	Name         string
	PasswordHash string
	Role         actor.Role
	IsActive     bool
}

// EntitySlug implements crud.Entity; accounts are addressed by username.
func (u *User) EntitySlug() string { return u.Username }
