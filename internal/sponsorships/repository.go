package sponsorships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Repository provides PostgreSQL backed persistence for sponsorships.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sponsorshipColumns = `id, post_id, sponsor, starts_at, ends_at, active, created_at, updated_at, created_by, updated_by, deleted_at, deleted_by`

func scanSponsorship(row pgx.Row) (*Sponsorship, error) {
	var s Sponsorship
	err := row.Scan(&s.ID, &s.PostID, &s.Sponsor, &s.StartsAt, &s.EndsAt, &s.Active,
		&s.CreatedAt, &s.UpdatedAt, &s.CreatedBy, &s.UpdatedBy, &s.DeletedAt, &s.DeletedBy)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// HasActiveForPost reports whether the post still has an active sponsorship.
// Consumed by the post service's delete-blocking hook.
func (r *Repository) HasActiveForPost(ctx context.Context, postID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sponsorships WHERE post_id = $1 AND active AND deleted_at IS NULL)`,
		postID).Scan(&exists)
	return exists, err
}

// FindByID implements crud.Model.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Sponsorship, bool, error) {
	query := `SELECT ` + sponsorshipColumns + ` FROM sponsorships WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	s, err := scanSponsorship(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return s, true, nil
}

// FindOne implements crud.Model.
func (r *Repository) FindOne(ctx context.Context, f crud.Filter) (*Sponsorship, bool, error) {
	where, args, err := sponsorshipWhere(f)
	if err != nil {
		return nil, false, err
	}
	s, err := scanSponsorship(r.pool.QueryRow(ctx, `SELECT `+sponsorshipColumns+` FROM sponsorships WHERE `+where+` LIMIT 1`, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return s, true, nil
}

// FindAll implements crud.Model.
func (r *Repository) FindAll(ctx context.Context, f crud.Filter, page crud.Page) ([]*Sponsorship, int, error) {
	where, args, err := sponsorshipWhere(f)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sponsorships WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM sponsorships WHERE %s ORDER BY starts_at DESC LIMIT $%d OFFSET $%d`,
		sponsorshipColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Sponsorship
	for rows.Next() {
		s, err := scanSponsorship(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count implements crud.Model.
func (r *Repository) Count(ctx context.Context, f crud.Filter) (int, error) {
	where, args, err := sponsorshipWhere(f)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sponsorships WHERE `+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Create implements crud.Model.
func (r *Repository) Create(ctx context.Context, s *Sponsorship) (*Sponsorship, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sponsorships (id, post_id, sponsor, starts_at, ends_at, active, created_at, updated_at, created_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+sponsorshipColumns,
		s.ID, s.PostID, s.Sponsor, s.StartsAt, s.EndsAt, s.Active,
		s.CreatedAt, s.UpdatedAt, s.CreatedBy, s.UpdatedBy)
	return scanSponsorship(row)
}

// Update implements crud.Model.
func (r *Repository) Update(ctx context.Context, s *Sponsorship) (*Sponsorship, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE sponsorships SET sponsor = $2, ends_at = $3, active = $4, updated_at = $5, updated_by = $6
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+sponsorshipColumns,
		s.ID, s.Sponsor, s.EndsAt, s.Active, s.UpdatedAt, s.UpdatedBy)
	updated, err := scanSponsorship(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, crud.Errorf(crud.CodeNotFound, "sponsorship %s not found", s.ID)
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete implements crud.Model.
func (r *Repository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sponsorships SET deleted_at = $2, deleted_by = $3 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC(), deletedBy)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete implements crud.Model.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sponsorships WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Restore implements crud.Model.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) (*Sponsorship, bool, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE sponsorships SET deleted_at = NULL, deleted_by = NULL WHERE id = $1 RETURNING `+sponsorshipColumns, id)
	s, err := scanSponsorship(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return s, true, nil
}

func sponsorshipWhere(f crud.Filter) (string, []any, error) {
	clauses := []string{}
	args := []any{}
	includeDeleted := false

	for key, val := range f {
		switch key {
		case "include_deleted":
			includeDeleted, _ = val.(bool)
		case "post_id":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("post_id = $%d", len(args)))
		case "active":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("active = $%d", len(args)))
		case "q":
			args = append(args, fmt.Sprintf("%%%v%%", val))
			clauses = append(clauses, fmt.Sprintf("sponsor ILIKE $%d", len(args)))
		default:
			return "", nil, fmt.Errorf("sponsorships: unsupported filter %q", key)
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
