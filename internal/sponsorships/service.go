package sponsorships

import (
	"strings"
	"time"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Service is the sponsorship pipeline instantiation.
type Service = crud.Service[*Sponsorship, CreateInput, UpdateInput]

// NewService wires the sponsorship definition into the generic pipeline.
// Sponsorships are a back-office surface gated entirely by permission tags.
func NewService(model crud.Model[*Sponsorship], opts crud.Options) *Service {
	def := crud.Definition[*Sponsorship, CreateInput, UpdateInput]{
		Name:        "sponsorship",
		Model:       model,
		Guards:      guards(),
		FromCreate:  fromCreate,
		ApplyUpdate: applyUpdate,
	}
	return crud.New(def, opts)
}

func guards() crud.Guards[*Sponsorship] {
	edit := func(act actor.Actor, _ *Sponsorship) error {
		if !act.Can(actor.PermSponsorshipsEdit) {
			return crud.ErrDenied
		}
		return nil
	}
	return crud.Guards[*Sponsorship]{
		Create:     edit,
		Update:     edit,
		SoftDelete: edit,
		Restore:    edit,
		HardDelete: func(act actor.Actor, _ *Sponsorship) error {
			if !act.IsAdmin() {
				return crud.ErrDenied
			}
			return nil
		},
		View: func(act actor.Actor, _ *Sponsorship) error {
			if !act.Can(actor.PermSponsorshipsView) {
				return crud.ErrHidden
			}
			return nil
		},
		List:   crud.RequirePermission(actor.PermSponsorshipsView),
		Search: crud.RequirePermission(actor.PermSponsorshipsView),
		Count:  crud.RequirePermission(actor.PermSponsorshipsView),
	}
}

func fromCreate(act actor.Actor, in CreateInput) (*Sponsorship, error) {
	s := &Sponsorship{
		PostID:   in.PostID,
		Sponsor:  strings.TrimSpace(in.Sponsor),
		StartsAt: in.StartsAt.UTC(),
		EndsAt:   in.EndsAt.UTC(),
		Active:   true,
	}
	s.Touch(act.ID, time.Now().UTC())
	return s, nil
}

func applyUpdate(act actor.Actor, s *Sponsorship, in UpdateInput) error {
	if in.Sponsor != nil {
		s.Sponsor = strings.TrimSpace(*in.Sponsor)
	}
	if in.EndsAt != nil {
		if !in.EndsAt.After(s.StartsAt) {
			return crud.Errorf(crud.CodeValidation, "ends_at must be after starts_at")
		}
		s.EndsAt = in.EndsAt.UTC()
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	s.Touch(act.ID, time.Now().UTC())
	return nil
}
