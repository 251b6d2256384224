package users

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

type memoryModel struct {
	items map[uuid.UUID]*User
}

func newMemoryModel() *memoryModel {
	return &memoryModel{items: make(map[uuid.UUID]*User)}
}

func (m *memoryModel) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*User, bool, error) {
	u, ok := m.items[id]
	if !ok || (!includeDeleted && u.Deleted()) {
		return nil, false, nil
	}
	return u, true, nil
}

func (m *memoryModel) FindOne(_ context.Context, f crud.Filter) (*User, bool, error) {
	for _, u := range m.items {
		if u.Deleted() {
			continue
		}
		if email, ok := f["email"].(string); ok && u.Email == email {
			return u, true, nil
		}
		if slug, ok := f["slug"].(string); ok && u.Username == slug {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (m *memoryModel) FindAll(_ context.Context, _ crud.Filter, _ crud.Page) ([]*User, int, error) {
	var out []*User
	for _, u := range m.items {
		if !u.Deleted() {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (m *memoryModel) Count(ctx context.Context, f crud.Filter) (int, error) {
	_, total, err := m.FindAll(ctx, f, crud.Page{})
	return total, err
}

func (m *memoryModel) Create(_ context.Context, u *User) (*User, error) {
	m.items[u.ID] = u
	return u, nil
}

func (m *memoryModel) Update(_ context.Context, u *User) (*User, error) {
	m.items[u.ID] = u
	return u, nil
}

func (m *memoryModel) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) (int64, error) {
	u, ok := m.items[id]
	if !ok || u.Deleted() {
		return 0, nil
	}
	now := time.Now().UTC()
	u.DeletedAt = &now
	u.DeletedBy = &deletedBy
	u.IsActive = false
	return 1, nil
}

func (m *memoryModel) HardDelete(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.items[id]
	delete(m.items, id)
	return ok, nil
}

func (m *memoryModel) Restore(_ context.Context, id uuid.UUID) (*User, bool, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, false, nil
	}
	u.DeletedAt = nil
	u.DeletedBy = nil
	return u, true, nil
}

type recordingMailer struct {
	sent []string
}

func (r *recordingMailer) SendWelcome(_ context.Context, to, _ string) error {
	r.sent = append(r.sent, to)
	return nil
}

func userAdmin() actor.Actor {
	return actor.Actor{
		ID:          uuid.New(),
		Role:        actor.RoleEditor,
		Permissions: actor.NewPermissionSet(actor.PermUsersView, actor.PermUsersEdit),
	}
}

func validCreate() CreateInput {
	return CreateInput{
		Email:    "Nora@Example.COM",
		Username: "nora",
		Name:     "Nora Lindgren",
		Password: "correct horse battery",
	}
}

func TestCreateHashesPasswordAndNormalizes(t *testing.T) {
	model := newMemoryModel()
	mailer := &recordingMailer{}
	svc := NewService(model, mailer, crud.Options{})

	out := svc.Create(context.Background(), userAdmin(), validCreate())
	require.True(t, out.OK())
	require.Equal(t, "nora@example.com", out.Data.Email)
	require.Equal(t, actor.RoleMember, out.Data.Role)
	require.True(t, out.Data.IsActive)
	require.NotEqual(t, "correct horse battery", out.Data.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(out.Data.PasswordHash), []byte("correct horse battery")))
	require.Equal(t, []string{"nora@example.com"}, mailer.sent)
}

func TestCreateRequiresUsersEdit(t *testing.T) {
	svc := NewService(newMemoryModel(), nil, crud.Options{})

	out := svc.Create(context.Background(), actor.Actor{ID: uuid.New(), Role: actor.RoleMember}, validCreate())
	require.False(t, out.OK())
	require.Equal(t, crud.CodeForbidden, out.Err.Code)
}

func TestCreateAdminRoleNeedsAdmin(t *testing.T) {
	svc := NewService(newMemoryModel(), nil, crud.Options{})

	in := validCreate()
	in.Role = string(actor.RoleAdmin)
	out := svc.Create(context.Background(), userAdmin(), in)
	require.False(t, out.OK())
	require.Equal(t, crud.CodeForbidden, out.Err.Code)

	out = svc.Create(context.Background(), actor.Actor{ID: uuid.New(), Role: actor.RoleAdmin}, in)
	require.True(t, out.OK())
	require.Equal(t, actor.RoleAdmin, out.Data.Role)
}

func TestWeakPasswordRejected(t *testing.T) {
	svc := NewService(newMemoryModel(), nil, crud.Options{})

	in := validCreate()
	in.Password = "short"
	out := svc.Create(context.Background(), userAdmin(), in)
	require.False(t, out.OK())
	require.Equal(t, crud.CodeValidation, out.Err.Code)
	require.Contains(t, out.Err.Details, "Password")
}

func TestSelfUpdateAllowedButNotActivation(t *testing.T) {
	model := newMemoryModel()
	svc := NewService(model, nil, crud.Options{})

	created := svc.Create(context.Background(), userAdmin(), validCreate())
	require.True(t, created.OK())

	self := actor.Actor{ID: created.Data.ID, Role: actor.RoleMember}
	name := "Nora L."
	out := svc.Update(context.Background(), self, created.Data.ID, UpdateInput{Name: &name})
	require.True(t, out.OK())
	require.Equal(t, "Nora L.", out.Data.Name)

	inactive := false
	out = svc.Update(context.Background(), self, created.Data.ID, UpdateInput{IsActive: &inactive})
	require.False(t, out.OK())
	require.Equal(t, crud.CodeForbidden, out.Err.Code)
}

func TestRoleChangeNeedsAdmin(t *testing.T) {
	model := newMemoryModel()
	svc := NewService(model, nil, crud.Options{})

	created := svc.Create(context.Background(), userAdmin(), validCreate())
	require.True(t, created.OK())

	editor := string(actor.RoleEditor)
	out := svc.Update(context.Background(), userAdmin(), created.Data.ID, UpdateInput{Role: &editor})
	require.False(t, out.OK())
	require.Equal(t, crud.CodeForbidden, out.Err.Code)

	out = svc.Update(context.Background(), actor.Actor{ID: uuid.New(), Role: actor.RoleAdmin}, created.Data.ID, UpdateInput{Role: &editor})
	require.True(t, out.OK())
	require.Equal(t, actor.RoleEditor, out.Data.Role)
}

func TestStrangersCannotSeeAccounts(t *testing.T) {
	model := newMemoryModel()
	svc := NewService(model, nil, crud.Options{})

	created := svc.Create(context.Background(), userAdmin(), validCreate())
	require.True(t, created.OK())

	out := svc.GetByID(context.Background(), actor.Actor{ID: uuid.New(), Role: actor.RoleMember}, created.Data.ID)
	require.True(t, out.OK())
	require.Nil(t, out.Data)

	out = svc.GetBySlug(context.Background(), userAdmin(), created.Data.Username)
	require.True(t, out.OK())
	require.NotNil(t, out.Data)
}

func TestStartLogOmitsPassword(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := NewService(newMemoryModel(), nil, crud.Options{Logger: logger})

	out := svc.Create(context.Background(), userAdmin(), validCreate())
	require.True(t, out.OK())

	logged := buf.String()
	require.Contains(t, logged, "create:start")
	require.Contains(t, logged, "Nora@Example.COM")
	require.NotContains(t, logged, "correct horse battery")

	pw := "an entirely new secret"
	out = svc.Update(context.Background(), userAdmin(), out.Data.ID, UpdateInput{Password: &pw})
	require.True(t, out.OK())
	require.NotContains(t, buf.String(), pw)
}

func TestUsernameNormalizedLowercase(t *testing.T) {
	svc := NewService(newMemoryModel(), nil, crud.Options{})

	in := validCreate()
	in.Username = "NorthernLights"
	out := svc.Create(context.Background(), userAdmin(), in)
	require.True(t, out.OK())
	require.Equal(t, strings.ToLower("NorthernLights"), out.Data.Username)
}
