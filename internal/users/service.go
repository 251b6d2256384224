package users

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Service is the user pipeline instantiation.
type Service = crud.Service[*User, CreateInput, UpdateInput]

// Mailer queues transactional mail for new accounts.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

// NewService wires the user definition into the generic pipeline. Account
// management is an admin surface; self-signup lives with the auth provider
// and is out of scope here. A nil mailer disables the welcome email.
func NewService(model crud.Model[*User], mail Mailer, opts crud.Options) *Service {
	def := crud.Definition[*User, CreateInput, UpdateInput]{
		Name:        "user",
		Model:       model,
		Guards:      guards(),
		Hooks: crud.Hooks[*User]{
			AfterCreate: welcomeHook(mail),
		},
		FromCreate:  fromCreate,
		ApplyUpdate: applyUpdate,
	}
	return crud.New(def, opts)
}

// welcomeHook queues the welcome email after the account lands. Failures are
// logged by the pipeline, never returned to the caller.
func welcomeHook(mail Mailer) crud.Hook[*User] {
	if mail == nil {
		return nil
	}
	return func(ctx context.Context, _ actor.Actor, u *User) error {
		return mail.SendWelcome(ctx, u.Email, u.Name)
	}
}

func guards() crud.Guards[*User] {
	return crud.Guards[*User]{
		Create:     func(act actor.Actor, _ *User) error { return requireTag(act, actor.PermUsersEdit) },
		Update:     canUpdate,
		View:       canView,
		SoftDelete: func(act actor.Actor, _ *User) error { return requireTag(act, actor.PermUsersEdit) },
		HardDelete: canHardDelete,
		Restore:    func(act actor.Actor, _ *User) error { return requireTag(act, actor.PermUsersEdit) },
		List:       crud.RequirePermission(actor.PermUsersView),
		Search:     crud.RequirePermission(actor.PermUsersView),
		Count:      crud.RequirePermission(actor.PermUsersView),
	}
}

func requireTag(act actor.Actor, tag string) error {
	if !act.Can(tag) {
		return crud.ErrDenied
	}
	return nil
}

// canUpdate admits the account holder and user admins.
func canUpdate(act actor.Actor, u *User) error {
	if !act.Anonymous() && act.ID == u.ID {
		return nil
	}
	return requireTag(act, actor.PermUsersEdit)
}

// canView admits the account holder and user admins; everyone else cannot
// tell whether the account exists.
func canView(act actor.Actor, u *User) error {
	if !act.Anonymous() && act.ID == u.ID {
		return nil
	}
	if act.Can(actor.PermUsersView) {
		return nil
	}
	return crud.ErrHidden
}

func canHardDelete(act actor.Actor, _ *User) error {
	if act.IsAdmin() {
		return nil
	}
	return crud.ErrDenied
}

// fromCreate normalizes the payload and hashes the password. The plaintext
// never leaves this function.
func fromCreate(act actor.Actor, in CreateInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := actor.Role(in.Role)
	if role == "" {
		role = actor.RoleMember
	}
	if role == actor.RoleAdmin && !act.IsAdmin() {
		return nil, crud.Errorf(crud.CodeForbidden, "granting the admin role requires an admin")
	}
	u := &User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Username:     strings.ToLower(strings.TrimSpace(in.Username)),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	u.Touch(act.ID, time.Now().UTC())
	return u, nil
}

func applyUpdate(act actor.Actor, u *User, in UpdateInput) error {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = string(hash)
	}
	if in.Role != nil {
		// Role changes are reserved for admins.
		if !act.IsAdmin() {
			return crud.Errorf(crud.CodeForbidden, "changing roles requires an admin")
		}
		u.Role = actor.Role(*in.Role)
	}
	if in.IsActive != nil {
		// Deactivation is reserved for user admins.
		if !act.Can(actor.PermUsersEdit) {
			return crud.Errorf(crud.CodeForbidden, "changing activation requires %s", actor.PermUsersEdit)
		}
		u.IsActive = *in.IsActive
	}
	u.Touch(act.ID, time.Now().UTC())
	return nil
}
