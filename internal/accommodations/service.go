package accommodations

import (
	"strings"
	"time"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
	"github.com/wayfarer-travel/wayfarer/internal/slug"
)

// Service is the accommodation pipeline instantiation.
type Service = crud.Service[*Accommodation, CreateInput, UpdateInput]

// NewService wires the accommodation definition into the generic pipeline.
func NewService(model crud.Model[*Accommodation], opts crud.Options) *Service {
	def := crud.Definition[*Accommodation, CreateInput, UpdateInput]{
		Name:        "accommodation",
		Model:       model,
		Guards:      guards(),
		FromCreate:  fromCreate,
		ApplyUpdate: applyUpdate,
		ScopeList:   scopeList,
		SearchFilter: func(act actor.Actor, p crud.SearchParams) crud.Filter {
			f := crud.Filter{"q": strings.TrimSpace(p.Query)}
			scopeFilter(act, f)
			return f
		},
	}
	return crud.New(def, opts)
}

func guards() crud.Guards[*Accommodation] {
	return crud.Guards[*Accommodation]{
		Create:     canCreate,
		Update:     canManage,
		View:       canView,
		SoftDelete: canManage,
		HardDelete: canHardDelete,
		Restore:    canManage,
		List:       func(actor.Actor) error { return nil },
		Search:     func(actor.Actor) error { return nil },
		Count:      func(actor.Actor) error { return nil },
	}
}

func canCreate(act actor.Actor, _ *Accommodation) error {
	if act.Anonymous() {
		return crud.ErrDenied
	}
	return nil
}

// canManage admits the listing owner and catalog editors.
func canManage(act actor.Actor, a *Accommodation) error {
	if act.Owns(a.CreatedBy) || act.Can(actor.PermAccommodationsEdit) {
		return nil
	}
	return crud.ErrDenied
}

func canView(act actor.Actor, a *Accommodation) error {
	if a.Published {
		return nil
	}
	if act.Owns(a.CreatedBy) || act.Can(actor.PermAccommodationsView) {
		return nil
	}
	return crud.ErrHidden
}

func canHardDelete(act actor.Actor, _ *Accommodation) error {
	if act.IsAdmin() {
		return nil
	}
	return crud.ErrDenied
}

func fromCreate(act actor.Actor, in CreateInput) (*Accommodation, error) {
	name := strings.TrimSpace(in.Name)
	a := &Accommodation{
		Name:          name,
		Slug:          slug.Make(name),
		Kind:          Kind(in.Kind),
		Destination:   strings.TrimSpace(in.Destination),
		Description:   strings.TrimSpace(in.Description),
		PricePerNight: in.PricePerNight,
		Rating:        in.Rating,
	}
	a.Touch(act.ID, time.Now().UTC())
	return a, nil
}

// applyUpdate normalizes the patch onto the fetched listing. Publishing is
// reserved for catalog editors.
func applyUpdate(act actor.Actor, a *Accommodation, in UpdateInput) error {
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
		a.Slug = slug.Make(a.Name)
	}
	if in.Kind != nil {
		a.Kind = Kind(*in.Kind)
	}
	if in.Destination != nil {
		a.Destination = strings.TrimSpace(*in.Destination)
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	if in.PricePerNight != nil {
		a.PricePerNight = *in.PricePerNight
	}
	if in.Rating != nil {
		a.Rating = *in.Rating
	}
	if in.Published != nil {
		if *in.Published && !a.Published && !act.Can(actor.PermAccommodationsEdit) {
			return crud.Errorf(crud.CodeForbidden, "publishing requires %s", actor.PermAccommodationsEdit)
		}
		a.Published = *in.Published
	}
	a.Touch(act.ID, time.Now().UTC())
	return nil
}

func scopeList(act actor.Actor, p *crud.ListParams) {
	if p.Filter == nil {
		p.Filter = crud.Filter{}
	}
	scopeFilter(act, p.Filter)
}

func scopeFilter(act actor.Actor, f crud.Filter) {
	if act.Can(actor.PermAccommodationsView) {
		return
	}
	if act.Anonymous() {
		f["published"] = true
		return
	}
	f["visible_to"] = act.ID
}
