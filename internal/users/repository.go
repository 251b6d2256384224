package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, username, name, password_hash, role, is_active, created_at, updated_at, created_by, updated_by, deleted_at, deleted_by`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt, &u.CreatedBy, &u.UpdatedBy, &u.DeletedAt, &u.DeletedBy)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID implements crud.Model.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*User, bool, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

// FindOne implements crud.Model.
func (r *Repository) FindOne(ctx context.Context, f crud.Filter) (*User, bool, error) {
	where, args, err := userWhere(f)
	if err != nil {
		return nil, false, err
	}
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` LIMIT 1`, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

// FindAll implements crud.Model.
func (r *Repository) FindAll(ctx context.Context, f crud.Filter, page crud.Page) ([]*User, int, error) {
	where, args, err := userWhere(f)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY username LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count implements crud.Model.
func (r *Repository) Count(ctx context.Context, f crud.Filter) (int, error) {
	where, args, err := userWhere(f)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Create implements crud.Model.
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, username, name, password_hash, role, is_active, created_at, updated_at, created_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+userColumns,
		u.ID, u.Email, u.Username, u.Name, u.PasswordHash, u.Role, u.IsActive,
		u.CreatedAt, u.UpdatedAt, u.CreatedBy, u.UpdatedBy)
	created, err := scanUser(row)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return created, nil
}

// Update implements crud.Model.
func (r *Repository) Update(ctx context.Context, u *User) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, password_hash = $3, role = $4, is_active = $5, updated_at = $6, updated_by = $7
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+userColumns,
		u.ID, u.Name, u.PasswordHash, u.Role, u.IsActive, u.UpdatedAt, u.UpdatedBy)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, crud.Errorf(crud.CodeNotFound, "user %s not found", u.ID)
		}
		return nil, mapPgErr(err)
	}
	return updated, nil
}

// SoftDelete implements crud.Model.
func (r *Repository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET deleted_at = $2, deleted_by = $3, is_active = FALSE WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC(), deletedBy)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete implements crud.Model.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Restore implements crud.Model.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) (*User, bool, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET deleted_at = NULL, deleted_by = NULL WHERE id = $1 RETURNING `+userColumns, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

func userWhere(f crud.Filter) (string, []any, error) {
	clauses := []string{}
	args := []any{}
	includeDeleted := false

	for key, val := range f {
		switch key {
		case "include_deleted":
			includeDeleted, _ = val.(bool)
		case "slug", "username":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("username = $%d", len(args)))
		case "email":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("email = $%d", len(args)))
		case "is_active":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
		case "q":
			args = append(args, fmt.Sprintf("%%%v%%", val))
			clauses = append(clauses, fmt.Sprintf("(username ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
		default:
			return "", nil, fmt.Errorf("users: unsupported filter %q", key)
		}
	}
	if !includeDeleted {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "TRUE")
	}
	where := clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args, nil
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return crud.Errorf(crud.CodeConflict, "email or username already taken")
	}
	return err
}
