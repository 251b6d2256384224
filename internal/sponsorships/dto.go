package sponsorships

import (
	"time"

	"github.com/google/uuid"
)

// CreateInput is the strict payload accepted by Create.
type CreateInput struct {
	PostID   uuid.UUID `json:"post_id" validate:"required"`
	Sponsor  string    `json:"sponsor" validate:"required,min=2,max=200"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

// UpdateInput is the strict patch payload accepted by Update.
type UpdateInput struct {
	Sponsor *string    `json:"sponsor" validate:"omitempty,min=2,max=200"`
	EndsAt  *time.Time `json:"ends_at" validate:"-"`
	Active  *bool      `json:"active" validate:"-"`
}
