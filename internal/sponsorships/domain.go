// Package sponsorships implements the post sponsorship service.
package sponsorships

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Sponsorship is a paid placement attached to a post for a date window.
type Sponsorship struct {
	crud.Record
	PostID   uuid.UUID
	Sponsor  string
	StartsAt time.Time
	EndsAt   time.Time
	Active   bool
}

// EntitySlug implements crud.Entity; sponsorships have no slug.
func (s *Sponsorship) EntitySlug() string { return "" }
