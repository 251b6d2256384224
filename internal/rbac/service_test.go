package rbac

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type scriptedExec struct {
	statements []string
	failOn     string
}

func (s *scriptedExec) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	s.statements = append(s.statements, sql)
	if s.failOn != "" && strings.Contains(sql, s.failOn) {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	return pgconn.CommandTag{}, nil
}

func TestReplaceRolePermissionsDeletesThenInserts(t *testing.T) {
	tx := &scriptedExec{}

	err := replaceRolePermissions(context.Background(), tx, 7, []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, tx.statements, 2)
	require.Contains(t, tx.statements[0], "DELETE FROM role_permissions")
	require.Contains(t, tx.statements[1], "INSERT INTO role_permissions")
	require.Contains(t, tx.statements[1], "unnest")
}

func TestReplaceRolePermissionsEmptySetOnlyDeletes(t *testing.T) {
	tx := &scriptedExec{}

	err := replaceRolePermissions(context.Background(), tx, 7, nil)
	require.NoError(t, err)
	require.Len(t, tx.statements, 1)
	require.Contains(t, tx.statements[0], "DELETE FROM role_permissions")
}

func TestReplaceRolePermissionsInsertFailureSurfaces(t *testing.T) {
	tx := &scriptedExec{failOn: "INSERT"}

	err := replaceRolePermissions(context.Background(), tx, 7, []int64{1, 2})
	require.Error(t, err)
	// The surfaced error rolls the enclosing transaction back, so the delete
	// never commits and the previous permission set survives.
	require.Len(t, tx.statements, 2)
}
