package posts

import (
	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// guards is the post permission table. Any authenticated member may write
// posts they own; editing, deleting and restoring other people's posts needs
// the matching permission tag. Reads of non-public posts resolve to hidden
// for everyone but the owner and privileged actors, so drafts never leak.
func guards() crud.Guards[*Post] {
	return crud.Guards[*Post]{
		Create:     canCreate,
		Update:     canUpdate,
		View:       canView,
		SoftDelete: canSoftDelete,
		HardDelete: canHardDelete,
		Restore:    canRestore,
		List:       func(actor.Actor) error { return nil },
		Search:     func(actor.Actor) error { return nil },
		Count:      crud.RequirePermission(actor.PermPostsView),
	}
}

func canCreate(act actor.Actor, _ *Post) error {
	if act.Anonymous() {
		return crud.ErrDenied
	}
	return nil
}

func canUpdate(act actor.Actor, p *Post) error {
	if act.Owns(p.CreatedBy) || act.Can(actor.PermPostsEdit) {
		return nil
	}
	return crud.ErrDenied
}

func canView(act actor.Actor, p *Post) error {
	if p.Visibility == VisibilityPublic {
		return nil
	}
	if act.Owns(p.CreatedBy) || act.Can(actor.PermPostsView) {
		return nil
	}
	return crud.ErrHidden
}

func canSoftDelete(act actor.Actor, p *Post) error {
	if act.Owns(p.CreatedBy) || act.Can(actor.PermPostsDelete) {
		return nil
	}
	return crud.ErrDenied
}

func canHardDelete(act actor.Actor, _ *Post) error {
	if act.IsAdmin() {
		return nil
	}
	return crud.ErrDenied
}

func canRestore(act actor.Actor, p *Post) error {
	if act.Owns(p.CreatedBy) || act.Can(actor.PermPostsDelete) {
		return nil
	}
	return crud.ErrDenied
}
