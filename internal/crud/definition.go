package crud

import (
	"github.com/wayfarer-travel/wayfarer/internal/actor"
)

// ListParams bounds and filters a listing. Filter entries are pre-scoped by
// the entity's ScopeList func before the adapter sees them.
type ListParams struct {
	Page    int    `validate:"gte=0"`
	PerPage int    `validate:"gte=0,lte=100"`
	Filter  Filter `validate:"-"`
}

// SearchParams drives a text search over an entity's searchable columns.
type SearchParams struct {
	Query   string `validate:"required,min=2,max=200"`
	Page    int    `validate:"gte=0"`
	PerPage int    `validate:"gte=0,lte=100"`
}

// CountParams filters a count.
type CountParams struct {
	Filter Filter `validate:"-"`
}

// Definition wires one entity into the generic pipeline: its model adapter,
// permission predicates, lifecycle hooks and input normalizers. Entity
// services build a Definition instead of subclassing anything.
type Definition[E Entity, C any, U any] struct {
	// Name identifies the entity in logs, audit records and events.
	Name string

	Model  Model[E]
	Guards Guards[E]
	Hooks  Hooks[E]

	// FromCreate maps a validated create input to a new entity. It owns
	// normalization (trimming, slug generation, defaulting) so that guards
	// and hooks observe normalized data.
	FromCreate func(act actor.Actor, in C) (E, error)

	// ApplyUpdate normalizes a validated update input and applies it onto
	// the fetched entity before guards run.
	ApplyUpdate func(act actor.Actor, e E, in U) error

	// ScopeList lets the entity constrain a listing to what the actor may
	// see, typically by adding visibility filter entries. Optional.
	ScopeList func(act actor.Actor, p *ListParams)

	// SearchFilter translates search params into an adapter filter.
	// Optional; when nil, Search uses Filter{"q": params.Query}.
	SearchFilter func(act actor.Actor, p SearchParams) Filter
}
