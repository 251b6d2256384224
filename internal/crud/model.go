package crud

import (
	"context"

	"github.com/google/uuid"
)

// Entity is the minimal contract a record must satisfy to flow through the
// pipeline. Concrete entities embed their audit and soft-delete columns and
// expose them through these accessors.
type Entity interface {
	EntityID() uuid.UUID
	EntitySlug() string
	Deleted() bool
}

// Filter is a conjunctive set of column constraints interpreted by the model
// adapter. Keys are adapter-specific; all entries must match.
type Filter map[string]any

// Page bounds a listing. Zero values are normalized to the defaults before
// the adapter sees them.
type Page struct {
	Page    int
	PerPage int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int { return (p.Page - 1) * p.PerPage }

// Model is the persistence port consumed by the pipeline. Adapters return
// plain data and report absence with a false bool, never with an error; the
// pipeline owns the translation into NOT_FOUND or null results. Adapters have
// no authorization awareness.
type Model[E Entity] interface {
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (E, bool, error)
	FindOne(ctx context.Context, f Filter) (E, bool, error)
	FindAll(ctx context.Context, f Filter, p Page) ([]E, int, error)
	Count(ctx context.Context, f Filter) (int, error)
	Create(ctx context.Context, e E) (E, error)
	Update(ctx context.Context, e E) (E, error)
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) (int64, error)
	HardDelete(ctx context.Context, id uuid.UUID) (bool, error)
	Restore(ctx context.Context, id uuid.UUID) (E, bool, error)
}
