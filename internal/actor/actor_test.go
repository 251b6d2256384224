package actor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGuestIsAnonymous(t *testing.T) {
	g := Guest()
	require.True(t, g.Anonymous())
	require.False(t, g.IsAdmin())
	require.False(t, g.Can(PermPostsView))
}

func TestNilIDIsAnonymousRegardlessOfRole(t *testing.T) {
	a := Actor{Role: RoleMember}
	require.True(t, a.Anonymous())
}

func TestCanChecksPermissionSet(t *testing.T) {
	a := Actor{
		ID:          uuid.New(),
		Role:        RoleMember,
		Permissions: NewPermissionSet(PermPostsView, PermPostsEdit),
	}
	require.True(t, a.Can(PermPostsView))
	require.True(t, a.Can(PermPostsEdit))
	require.False(t, a.Can(PermPostsPublish))
}

func TestAdminHoldsEveryPermission(t *testing.T) {
	a := Actor{ID: uuid.New(), Role: RoleAdmin}
	for _, tag := range append(append(ContentScopes(), CatalogScopes()...), CoreScopes()...) {
		require.True(t, a.Can(tag), tag)
	}
}

func TestOwns(t *testing.T) {
	id := uuid.New()
	a := Actor{ID: id, Role: RoleMember}
	require.True(t, a.Owns(id))
	require.False(t, a.Owns(uuid.New()))
	require.False(t, Guest().Owns(uuid.Nil), "guests own nothing")
}
