package crud

import (
	"time"

	"github.com/google/uuid"
)

// Record carries the audit and soft-delete columns shared by every entity.
// Entities embed it and add their own EntitySlug accessor.
type Record struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy uuid.UUID
	UpdatedBy uuid.UUID
	DeletedAt *time.Time
	DeletedBy *uuid.UUID
}

// EntityID implements Entity.
func (r *Record) EntityID() uuid.UUID { return r.ID }

// Deleted implements Entity.
func (r *Record) Deleted() bool { return r.DeletedAt != nil }

// Touch stamps the audit columns for a new record.
func (r *Record) Touch(actorID uuid.UUID, now time.Time) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
		r.CreatedAt = now
		r.CreatedBy = actorID
	}
	r.UpdatedAt = now
	r.UpdatedBy = actorID
}
