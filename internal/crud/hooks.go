package crud

import (
	"context"

	"github.com/wayfarer-travel/wayfarer/internal/actor"
)

// Hook runs around a mutation with the in-flight entity. Before-hooks may
// block the operation by returning an error; after-hook errors are logged and
// never propagated, so the operation's outcome does not depend on them.
type Hook[E Entity] func(ctx context.Context, act actor.Actor, e E) error

// Hooks is the per-entity lifecycle table. Nil entries are skipped.
type Hooks[E Entity] struct {
	BeforeCreate     Hook[E]
	AfterCreate      Hook[E]
	BeforeUpdate     Hook[E]
	AfterUpdate      Hook[E]
	BeforeSoftDelete Hook[E]
	AfterSoftDelete  Hook[E]
	AfterRestore     Hook[E]
}
