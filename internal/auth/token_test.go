package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "wayfarer", time.Hour)
	userID := uuid.New()

	signed, expiresAt, err := issuer.Issue(userID, actor.RoleEditor)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, userID.String(), claims.Subject)
	require.Equal(t, string(actor.RoleEditor), claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", "wayfarer", time.Hour)
	other := NewTokenIssuer("secret-b", "wayfarer", time.Hour)

	signed, _, err := issuer.Issue(uuid.New(), actor.RoleMember)
	require.NoError(t, err)

	_, err = other.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", "wayfarer", time.Hour)
	other := NewTokenIssuer("secret", "someone-else", time.Hour)

	signed, _, err := issuer.Issue(uuid.New(), actor.RoleMember)
	require.NoError(t, err)

	_, err = other.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := &TokenIssuer{secret: []byte("secret"), issuer: "wayfarer", ttl: -time.Minute}

	signed, _, err := issuer.Issue(uuid.New(), actor.RoleMember)
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("secret", "wayfarer", time.Hour)
	_, err := issuer.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
