package posts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
	"github.com/wayfarer-travel/wayfarer/internal/crud"
	"github.com/wayfarer-travel/wayfarer/internal/slug"
)

// Service is the post pipeline instantiation.
type Service = crud.Service[*Post, CreateInput, UpdateInput]

// SponsorshipChecker reports whether a post still has an active sponsorship.
// Posts with one cannot be soft-deleted.
type SponsorshipChecker interface {
	HasActiveForPost(ctx context.Context, postID uuid.UUID) (bool, error)
}

// NewService wires the post definition into the generic pipeline.
func NewService(model crud.Model[*Post], sponsorships SponsorshipChecker, opts crud.Options) *Service {
	def := crud.Definition[*Post, CreateInput, UpdateInput]{
		Name:        "post",
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
		Hooks: crud.Hooks[*Post]{
			BeforeSoftDelete: blockSponsoredDelete(sponsorships),
		},
	}
	return crud.New(def, opts)
}

// fromCreate normalizes a validated payload into a new post: trimmed fields,
// generated slug, DRAFT default, stamped audit columns. The creator owns the
// post, so creating it public needs no extra permission; the publish gate in
// applyUpdate only matters for non-owners.
func fromCreate(act actor.Actor, in CreateInput) (*Post, error) {
	title := strings.TrimSpace(in.Title)
	p := &Post{
		Title:      title,
		Slug:       slug.Make(title),
		Summary:    strings.TrimSpace(in.Summary),
		Body:       strings.TrimSpace(in.Body),
		Visibility: VisibilityDraft,
	}
	if in.Visibility != "" {
		p.Visibility = Visibility(in.Visibility)
	}
	p.Touch(act.ID, time.Now().UTC())
	return p, nil
}

// applyUpdate normalizes the patch onto the fetched post. Making someone
// else's post public is a publish and needs the publish permission; owners
// publish their own work freely.
func applyUpdate(act actor.Actor, p *Post, in UpdateInput) error {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
		p.Slug = slug.Make(p.Title)
	}
	if in.Summary != nil {
		p.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Body != nil {
		p.Body = strings.TrimSpace(*in.Body)
	}
	if in.Visibility != nil {
		next := Visibility(*in.Visibility)
		if next == VisibilityPublic && p.Visibility != VisibilityPublic {
			if !act.Can(actor.PermPostsPublish) && !act.Owns(p.CreatedBy) {
				return crud.Errorf(crud.CodeForbidden, "publishing requires %s", actor.PermPostsPublish)
			}
		}
		p.Visibility = next
	}
	p.Touch(act.ID, time.Now().UTC())
	return nil
}

// scopeList constrains listings to what the actor may see. Guests and plain
// members without the view permission only see public posts, except members
// also see their own.
func scopeList(act actor.Actor, p *crud.ListParams) {
	if p.Filter == nil {
		p.Filter = crud.Filter{}
	}
	scopeFilter(act, p.Filter)
}

func scopeFilter(act actor.Actor, f crud.Filter) {
	if act.Can(actor.PermPostsView) {
		return
	}
	if act.Anonymous() {
		f["visibility"] = string(VisibilityPublic)
		return
	}
	f["visible_to"] = act.ID
}

// blockSponsoredDelete rejects soft deletes while an active sponsorship still
// references the post.
func blockSponsoredDelete(checker SponsorshipChecker) crud.Hook[*Post] {
	if checker == nil {
		return nil
	}
	return func(ctx context.Context, _ actor.Actor, p *Post) error {
		active, err := checker.HasActiveForPost(ctx, p.ID)
		if err != nil {
			return err
		}
		if active {
			return crud.Errorf(crud.CodeConflict, "post %s has an active sponsorship", p.ID)
		}
		return nil
	}
}
