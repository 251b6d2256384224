package crud

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
)

// PageResult is the payload of List and Search.
type PageResult[E Entity] struct {
	Items []E
	Total int
}

// CountResult is the payload of Count.
type CountResult struct {
	Count int
}

// DeleteResult is the payload of SoftDelete. Count is the number of rows
// marked deleted; 0 when the entity was already soft-deleted.
type DeleteResult struct {
	Count int64
}

// HardDeleteResult is the payload of HardDelete.
type HardDeleteResult struct {
	Success bool
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Options collects the pipeline's injected collaborators. Nil fields fall
// back to no-op or default implementations so tests stay lightweight.
type Options struct {
	Logger   *slog.Logger
	Validate *validator.Validate
	Events   Emitter
	Audit    Auditor
}

// Service executes the fixed pipeline for one entity: validate, normalize,
// authorize, pre-hook, persist, post-hook, log, wrap. Invocations are
// independent and stateless; no step of one invocation interleaves with
// another. Nothing escapes a public method as a raw error or panic.
type Service[E Entity, C any, U any] struct {
	def      Definition[E, C, U]
	log      *slog.Logger
	validate *validator.Validate
	events   Emitter
	audit    Auditor
}

// New builds a Service from an entity definition.
func New[E Entity, C any, U any](def Definition[E, C, U], opts Options) *Service[E, C, U] {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	v := opts.Validate
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	events := opts.Events
	if events == nil {
		events = NopEmitter{}
	}
	audit := opts.Audit
	if audit == nil {
		audit = nopAuditor{}
	}
	return &Service[E, C, U]{def: def, log: log, validate: v, events: events, audit: audit}
}

// Create validates and normalizes the input, authorizes the actor against the
// normalized entity and persists it.
func (s *Service[E, C, U]) Create(ctx context.Context, act actor.Actor, in C) Output[E] {
	s.logStart("create", act, in)
	out := guarded(s.log, s.def.Name, "create", func() Output[E] {
		if verr := s.validateInput(in); verr != nil {
			return fail[E](verr)
		}
		e, err := s.def.FromCreate(act, in)
		if err != nil {
			return fail[E](validationErr(err))
		}
		if g := s.def.Guards.Create; g != nil {
			if err := g(act, e); err != nil {
				return fail[E](s.deny("create", act, err))
			}
		}
		if err := s.runHook(ctx, act, e, s.def.Hooks.BeforeCreate); err != nil {
			return fail[E](internalErr(err))
		}
		created, err := s.def.Model.Create(ctx, e)
		if err != nil {
			return fail[E](internalErr(err))
		}
		s.runAfterHook(ctx, act, created, "create", s.def.Hooks.AfterCreate)
		s.recordMutation(ctx, act, EventCreated, created.EntityID(), created.EntitySlug())
		return ok(created)
	})
	s.logEnd("create", act, out.Err)
	return out
}

// Update fetches the entity, applies the normalized patch, authorizes the
// actor against it and persists the result.
func (s *Service[E, C, U]) Update(ctx context.Context, act actor.Actor, id uuid.UUID, in U) Output[E] {
	s.logStart("update", act, in)
	out := guarded(s.log, s.def.Name, "update", func() Output[E] {
		if verr := s.validateInput(in); verr != nil {
			return fail[E](verr)
		}
		existing, found, err := s.def.Model.FindByID(ctx, id, false)
		if err != nil {
			return fail[E](internalErr(err))
		}
		if !found {
			return fail[E](Errorf(CodeNotFound, "%s %s not found", s.def.Name, id))
		}
		if err := s.def.ApplyUpdate(act, existing, in); err != nil {
			return fail[E](validationErr(err))
		}
		if g := s.def.Guards.Update; g != nil {
			if err := g(act, existing); err != nil {
				return fail[E](s.deny("update", act, err))
			}
		}
		if err := s.runHook(ctx, act, existing, s.def.Hooks.BeforeUpdate); err != nil {
			return fail[E](internalErr(err))
		}
		updated, err := s.def.Model.Update(ctx, existing)
		if err != nil {
			return fail[E](internalErr(err))
		}
		s.runAfterHook(ctx, act, updated, "update", s.def.Hooks.AfterUpdate)
		s.recordMutation(ctx, act, EventUpdated, updated.EntityID(), updated.EntitySlug())
		return ok(updated)
	})
	s.logEnd("update", act, out.Err)
	return out
}

// GetByID returns the entity, or the zero value when it is absent or the
// view guard hides it from the actor. Hidden and absent are indistinguishable
// to the caller so private content does not leak its existence.
func (s *Service[E, C, U]) GetByID(ctx context.Context, act actor.Actor, id uuid.UUID) Output[E] {
	s.logStart("getById", act, id)
	out := guarded(s.log, s.def.Name, "getById", func() Output[E] {
		e, found, err := s.def.Model.FindByID(ctx, id, false)
		if err != nil {
			return fail[E](internalErr(err))
		}
		if !found {
			var zero E
			return ok(zero)
		}
		return s.view(act, e)
	})
	s.logEnd("getById", act, out.Err)
	return out
}

// GetBySlug behaves like GetByID keyed by slug.
func (s *Service[E, C, U]) GetBySlug(ctx context.Context, act actor.Actor, slug string) Output[E] {
	s.logStart("getBySlug", act, slug)
	out := guarded(s.log, s.def.Name, "getBySlug", func() Output[E] {
		e, found, err := s.def.Model.FindOne(ctx, Filter{"slug": slug})
		if err != nil {
			return fail[E](internalErr(err))
		}
		if !found {
			var zero E
			return ok(zero)
		}
		return s.view(act, e)
	})
	s.logEnd("getBySlug", act, out.Err)
	return out
}

// List returns a page of entities the actor may see, plus the total count.
func (s *Service[E, C, U]) List(ctx context.Context, act actor.Actor, params ListParams) Output[PageResult[E]] {
	s.logStart("list", act, params)
	out := guarded(s.log, s.def.Name, "list", func() Output[PageResult[E]] {
		if verr := s.validateInput(&params); verr != nil {
			return fail[PageResult[E]](verr)
		}
		if g := s.def.Guards.List; g != nil {
			if err := g(act); err != nil {
				return fail[PageResult[E]](s.deny("list", act, err))
			}
		}
		if s.def.ScopeList != nil {
			s.def.ScopeList(act, &params)
		}
		page := normalizePage(Page{Page: params.Page, PerPage: params.PerPage})
		items, total, err := s.def.Model.FindAll(ctx, params.Filter, page)
		if err != nil {
			return fail[PageResult[E]](internalErr(err))
		}
		return ok(PageResult[E]{Items: items, Total: total})
	})
	s.logEnd("list", act, out.Err)
	return out
}

// Search returns a page of entities matching the query.
func (s *Service[E, C, U]) Search(ctx context.Context, act actor.Actor, params SearchParams) Output[PageResult[E]] {
	s.logStart("search", act, params)
	out := guarded(s.log, s.def.Name, "search", func() Output[PageResult[E]] {
		if verr := s.validateInput(&params); verr != nil {
			return fail[PageResult[E]](verr)
		}
		if g := s.def.Guards.Search; g != nil {
			if err := g(act); err != nil {
				return fail[PageResult[E]](s.deny("search", act, err))
			}
		}
		filter := Filter{"q": params.Query}
		if s.def.SearchFilter != nil {
			filter = s.def.SearchFilter(act, params)
		}
		page := normalizePage(Page{Page: params.Page, PerPage: params.PerPage})
		items, total, err := s.def.Model.FindAll(ctx, filter, page)
		if err != nil {
			return fail[PageResult[E]](internalErr(err))
		}
		return ok(PageResult[E]{Items: items, Total: total})
	})
	s.logEnd("search", act, out.Err)
	return out
}

// Count returns how many entities match the filter.
func (s *Service[E, C, U]) Count(ctx context.Context, act actor.Actor, params CountParams) Output[CountResult] {
	s.logStart("count", act, params)
	out := guarded(s.log, s.def.Name, "count", func() Output[CountResult] {
		if g := s.def.Guards.Count; g != nil {
			if err := g(act); err != nil {
				return fail[CountResult](s.deny("count", act, err))
			}
		}
		n, err := s.def.Model.Count(ctx, params.Filter)
		if err != nil {
			return fail[CountResult](internalErr(err))
		}
		return ok(CountResult{Count: n})
	})
	s.logEnd("count", act, out.Err)
	return out
}

// SoftDelete marks the entity deleted. Deleting an already-deleted entity is
// a no-op returning count 0 without touching the adapter's delete.
func (s *Service[E, C, U]) SoftDelete(ctx context.Context, act actor.Actor, id uuid.UUID) Output[DeleteResult] {
	s.logStart("softDelete", act, id)
	out := guarded(s.log, s.def.Name, "softDelete", func() Output[DeleteResult] {
		e, found, err := s.def.Model.FindByID(ctx, id, true)
		if err != nil {
			return fail[DeleteResult](internalErr(err))
		}
		if !found {
			return fail[DeleteResult](Errorf(CodeNotFound, "%s %s not found", s.def.Name, id))
		}
		if e.Deleted() {
			return ok(DeleteResult{Count: 0})
		}
		if g := s.def.Guards.SoftDelete; g != nil {
			if err := g(act, e); err != nil {
				return fail[DeleteResult](s.deny("softDelete", act, err))
			}
		}
		if err := s.runHook(ctx, act, e, s.def.Hooks.BeforeSoftDelete); err != nil {
			return fail[DeleteResult](internalErr(err))
		}
		count, err := s.def.Model.SoftDelete(ctx, id, act.ID)
		if err != nil {
			return fail[DeleteResult](internalErr(err))
		}
		s.runAfterHook(ctx, act, e, "softDelete", s.def.Hooks.AfterSoftDelete)
		s.recordMutation(ctx, act, EventSoftDeleted, e.EntityID(), e.EntitySlug())
		return ok(DeleteResult{Count: count})
	})
	s.logEnd("softDelete", act, out.Err)
	return out
}

// HardDelete removes the entity permanently.
func (s *Service[E, C, U]) HardDelete(ctx context.Context, act actor.Actor, id uuid.UUID) Output[HardDeleteResult] {
	s.logStart("hardDelete", act, id)
	out := guarded(s.log, s.def.Name, "hardDelete", func() Output[HardDeleteResult] {
		e, found, err := s.def.Model.FindByID(ctx, id, true)
		if err != nil {
			return fail[HardDeleteResult](internalErr(err))
		}
		if !found {
			return fail[HardDeleteResult](Errorf(CodeNotFound, "%s %s not found", s.def.Name, id))
		}
		if g := s.def.Guards.HardDelete; g != nil {
			if err := g(act, e); err != nil {
				return fail[HardDeleteResult](s.deny("hardDelete", act, err))
			}
		}
		deleted, err := s.def.Model.HardDelete(ctx, id)
		if err != nil {
			return fail[HardDeleteResult](internalErr(err))
		}
		s.recordMutation(ctx, act, EventHardDeleted, e.EntityID(), e.EntitySlug())
		return ok(HardDeleteResult{Success: deleted})
	})
	s.logEnd("hardDelete", act, out.Err)
	return out
}

// Restore clears the soft-delete marker. Restoring a live entity is a no-op
// returning the entity unchanged.
func (s *Service[E, C, U]) Restore(ctx context.Context, act actor.Actor, id uuid.UUID) Output[E] {
	s.logStart("restore", act, id)
	out := guarded(s.log, s.def.Name, "restore", func() Output[E] {
		e, found, err := s.def.Model.FindByID(ctx, id, true)
		if err != nil {
			return fail[E](internalErr(err))
		}
		if !found {
			return fail[E](Errorf(CodeNotFound, "%s %s not found", s.def.Name, id))
		}
		if !e.Deleted() {
			return ok(e)
		}
		if g := s.def.Guards.Restore; g != nil {
			if err := g(act, e); err != nil {
				return fail[E](s.deny("restore", act, err))
			}
		}
		restored, found, err := s.def.Model.Restore(ctx, id)
		if err != nil {
			return fail[E](internalErr(err))
		}
		if !found {
			return fail[E](Errorf(CodeNotFound, "%s %s not found", s.def.Name, id))
		}
		s.runAfterHook(ctx, act, restored, "restore", s.def.Hooks.AfterRestore)
		s.recordMutation(ctx, act, EventRestored, restored.EntityID(), restored.EntitySlug())
		return ok(restored)
	})
	s.logEnd("restore", act, out.Err)
	return out
}

// view resolves the view guard for a fetched entity. ErrHidden becomes a
// null result; any other denial surfaces as an error.
func (s *Service[E, C, U]) view(act actor.Actor, e E) Output[E] {
	if g := s.def.Guards.View; g != nil {
		if err := g(act, e); err != nil {
			if errors.Is(err, ErrHidden) {
				var zero E
				return ok(zero)
			}
			return fail[E](s.deny("view", act, err))
		}
	}
	return ok(e)
}

func (s *Service[E, C, U]) validateInput(in any) *Error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			return &Error{Code: CodeValidation, Message: "invalid input", Details: details}
		}
		return &Error{Code: CodeValidation, Message: err.Error()}
	}
	return nil
}

// validationErr types a normalizer failure. Normalizers may return a typed
// Error to pick a different code.
func validationErr(err error) *Error {
	if se := AsError(err); se != nil {
		return se
	}
	return &Error{Code: CodeValidation, Message: err.Error()}
}

// deny classifies a guard failure: anonymous actors attempting gated
// operations are overrides (UNAUTHORIZED), authenticated actors lacking a
// rule are denials (FORBIDDEN). Typed errors pass through unchanged.
func (s *Service[E, C, U]) deny(op string, act actor.Actor, err error) *Error {
	if se := AsError(err); se != nil {
		s.log.Warn(op+":denied",
			slog.String("entity", s.def.Name),
			slog.String("actor_id", act.ID.String()),
			slog.String("code", string(se.Code)))
		return se
	}
	if act.Anonymous() {
		s.log.Warn(op+":override",
			slog.String("entity", s.def.Name),
			slog.String("reason", "anonymous actor"))
		return Errorf(CodeUnauthorized, "authentication required")
	}
	s.log.Warn(op+":denied",
		slog.String("entity", s.def.Name),
		slog.String("actor_id", act.ID.String()),
		slog.String("role", string(act.Role)))
	return Errorf(CodeForbidden, "permission denied")
}

func (s *Service[E, C, U]) runHook(ctx context.Context, act actor.Actor, e E, hook Hook[E]) error {
	if hook == nil {
		return nil
	}
	return hook(ctx, act, e)
}

// runAfterHook runs a post-mutation hook. Failures are logged, never
// propagated: the mutation already happened.
func (s *Service[E, C, U]) runAfterHook(ctx context.Context, act actor.Actor, e E, op string, hook Hook[E]) {
	if hook == nil {
		return
	}
	if err := hook(ctx, act, e); err != nil {
		s.log.Error(op+":after-hook",
			slog.String("entity", s.def.Name),
			slog.Any("error", err))
	}
}

// recordMutation emits the mutation event and writes the audit record. Both
// are decoupled from the operation outcome; failures are logged only.
func (s *Service[E, C, U]) recordMutation(ctx context.Context, act actor.Actor, kind EventKind, id uuid.UUID, slug string) {
	ev := Event{Kind: kind, Entity: s.def.Name, EntityID: id, Slug: slug, ActorID: act.ID}
	if err := s.events.Emit(ctx, ev); err != nil {
		s.log.Error("emit event",
			slog.String("entity", s.def.Name),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
	}
	entry := AuditEntry{
		ActorID:  act.ID,
		Action:   s.def.Name + "." + string(kind),
		Entity:   s.def.Name,
		EntityID: id.String(),
		Meta:     map[string]any{"slug": slug},
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Error("audit record",
			slog.String("entity", s.def.Name),
			slog.Any("error", err))
	}
}

// logStart records the operation, the actor and its input. Inputs carrying
// secrets implement slog.LogValuer to keep them out of the log.
func (s *Service[E, C, U]) logStart(op string, act actor.Actor, input any) {
	s.log.Info(op+":start",
		slog.String("entity", s.def.Name),
		slog.String("actor_id", act.ID.String()),
		slog.String("role", string(act.Role)),
		slog.Any("input", input))
}

func (s *Service[E, C, U]) logEnd(op string, act actor.Actor, serr *Error) {
	if serr != nil {
		s.log.Info(op+":end",
			slog.String("entity", s.def.Name),
			slog.String("actor_id", act.ID.String()),
			slog.String("code", string(serr.Code)))
		return
	}
	s.log.Info(op+":end",
		slog.String("entity", s.def.Name),
		slog.String("actor_id", act.ID.String()),
		slog.String("code", "OK"))
}

// guarded keeps panics from hooks, normalizers or adapters inside the service
// boundary, translating them into INTERNAL_ERROR.
func guarded[T any](log *slog.Logger, entity, op string, fn func() Output[T]) (out Output[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(op+":panic",
				slog.String("entity", entity),
				slog.Any("panic", r))
			out = fail[T](Errorf(CodeInternal, "internal error"))
		}
	}()
	return fn()
}

func normalizePage(p Page) Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}
