package posts

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

// Repository provides PostgreSQL backed persistence for posts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const postColumns = `id, title, slug, summary, body, visibility, created_at, updated_at, created_by, updated_by, deleted_at, deleted_by`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Body, &p.Visibility,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy, &p.DeletedAt, &p.DeletedBy)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID implements crud.Model.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Post, bool, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	p, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}

// FindOne implements crud.Model.
func (r *Repository) FindOne(ctx context.Context, f crud.Filter) (*Post, bool, error) {
	where, args, err := postWhere(f)
	if err != nil {
		return nil, false, err
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE ` + where + ` LIMIT 1`
	p, err := scanPost(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}

// FindAll implements crud.Model.
func (r *Repository) FindAll(ctx context.Context, f crud.Filter, page crud.Page) ([]*Post, int, error) {
	where, args, err := postWhere(f)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count implements crud.Model.
func (r *Repository) Count(ctx context.Context, f crud.Filter) (int, error) {
	where, args, err := postWhere(f)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Create implements crud.Model.
func (r *Repository) Create(ctx context.Context, p *Post) (*Post, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO posts (id, title, slug, summary, body, visibility, created_at, updated_at, created_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+postColumns,
		p.ID, p.Title, p.Slug, p.Summary, p.Body, p.Visibility,
		p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy)
	created, err := scanPost(row)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return created, nil
}

// Update implements crud.Model.
func (r *Repository) Update(ctx context.Context, p *Post) (*Post, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE posts SET title = $2, slug = $3, summary = $4, body = $5, visibility = $6, updated_at = $7, updated_by = $8
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+postColumns,
		p.ID, p.Title, p.Slug, p.Summary, p.Body, p.Visibility, p.UpdatedAt, p.UpdatedBy)
	updated, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, crud.Errorf(crud.CodeNotFound, "post %s not found", p.ID)
		}
		return nil, mapPgErr(err)
	}
	return updated, nil
}

// SoftDelete implements crud.Model.
func (r *Repository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET deleted_at = $2, deleted_by = $3 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC(), deletedBy)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete implements crud.Model.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Restore implements crud.Model.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) (*Post, bool, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE posts SET deleted_at = NULL, deleted_by = NULL WHERE id = $1 RETURNING `+postColumns, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}

// postWhere translates a conjunctive filter into SQL. Soft-deleted rows are
// excluded unless the filter opts in.
func postWhere(f crud.Filter) (string, []any, error) {
	clauses := []string{}
	args := []any{}
	includeDeleted := false

	for key, val := range f {
		switch key {
		case "include_deleted":
			includeDeleted, _ = val.(bool)
		case "slug":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("slug = $%d", len(args)))
		case "visibility":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("visibility = $%d", len(args)))
		case "created_by":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("created_by = $%d", len(args)))
		case "visible_to":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("(visibility = 'PUBLIC' OR created_by = $%d)", len(args)))
		case "q":
			args = append(args, fmt.Sprintf("%%%v%%", val))
			clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR summary ILIKE $%d)", len(args), len(args)))
		default:
			return "", nil, fmt.Errorf("posts: unsupported filter %q", key)
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

// mapPgErr translates unique violations into typed conflicts.
func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return crud.Errorf(crud.CodeConflict, "post slug already exists")
	}
	return err
}
