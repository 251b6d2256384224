package accommodations

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

// Repository provides PostgreSQL backed persistence for accommodations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accommodationColumns = `id, name, slug, kind, destination, description, price_per_night, rating, published, created_at, updated_at, created_by, updated_by, deleted_at, deleted_by`

func scanAccommodation(row pgx.Row) (*Accommodation, error) {
	var a Accommodation
	err := row.Scan(&a.ID, &a.Name, &a.Slug, &a.Kind, &a.Destination, &a.Description,
		&a.PricePerNight, &a.Rating, &a.Published,
		&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy, &a.DeletedAt, &a.DeletedBy)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByID implements crud.Model.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Accommodation, bool, error) {
	query := `SELECT ` + accommodationColumns + ` FROM accommodations WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	a, err := scanAccommodation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return a, true, nil
}

// FindOne implements crud.Model.
func (r *Repository) FindOne(ctx context.Context, f crud.Filter) (*Accommodation, bool, error) {
	where, args, err := accommodationWhere(f)
	if err != nil {
		return nil, false, err
	}
	query := `SELECT ` + accommodationColumns + ` FROM accommodations WHERE ` + where + ` LIMIT 1`
	a, err := scanAccommodation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return a, true, nil
}

// FindAll implements crud.Model.
func (r *Repository) FindAll(ctx context.Context, f crud.Filter, page crud.Page) ([]*Accommodation, int, error) {
	where, args, err := accommodationWhere(f)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accommodations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM accommodations WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		accommodationColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Accommodation
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count implements crud.Model.
func (r *Repository) Count(ctx context.Context, f crud.Filter) (int, error) {
	where, args, err := accommodationWhere(f)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accommodations WHERE `+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Create implements crud.Model.
func (r *Repository) Create(ctx context.Context, a *Accommodation) (*Accommodation, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO accommodations (id, name, slug, kind, destination, description, price_per_night, rating, published, created_at, updated_at, created_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+accommodationColumns,
		a.ID, a.Name, a.Slug, a.Kind, a.Destination, a.Description, a.PricePerNight, a.Rating, a.Published,
		a.CreatedAt, a.UpdatedAt, a.CreatedBy, a.UpdatedBy)
	created, err := scanAccommodation(row)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return created, nil
}

// Update implements crud.Model.
func (r *Repository) Update(ctx context.Context, a *Accommodation) (*Accommodation, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE accommodations SET name = $2, slug = $3, kind = $4, destination = $5, description = $6, price_per_night = $7, rating = $8, published = $9, updated_at = $10, updated_by = $11
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+accommodationColumns,
		a.ID, a.Name, a.Slug, a.Kind, a.Destination, a.Description, a.PricePerNight, a.Rating, a.Published,
		a.UpdatedAt, a.UpdatedBy)
	updated, err := scanAccommodation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, crud.Errorf(crud.CodeNotFound, "accommodation %s not found", a.ID)
		}
		return nil, mapPgErr(err)
	}
	return updated, nil
}

// SoftDelete implements crud.Model.
func (r *Repository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accommodations SET deleted_at = $2, deleted_by = $3 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC(), deletedBy)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete implements crud.Model.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accommodations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Restore implements crud.Model.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) (*Accommodation, bool, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE accommodations SET deleted_at = NULL, deleted_by = NULL WHERE id = $1 RETURNING `+accommodationColumns, id)
	a, err := scanAccommodation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return a, true, nil
}

func accommodationWhere(f crud.Filter) (string, []any, error) {
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
		case "kind":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("kind = $%d", len(args)))
		case "destination":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("destination = $%d", len(args)))
		case "published":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("published = $%d", len(args)))
		case "created_by":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("created_by = $%d", len(args)))
		case "visible_to":
			args = append(args, val)
			clauses = append(clauses, fmt.Sprintf("(published OR created_by = $%d)", len(args)))
		case "q":
			args = append(args, fmt.Sprintf("%%%v%%", val))
			clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR destination ILIKE $%d)", len(args), len(args)))
		default:
			return "", nil, fmt.Errorf("accommodations: unsupported filter %q", key)
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
		return crud.Errorf(crud.CodeConflict, "accommodation slug already exists")
	}
	return err
}
