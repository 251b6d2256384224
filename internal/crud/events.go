package crud

import (
	"context"

	"github.com/google/uuid"
)

// EventKind names a mutation outcome emitted by the pipeline.
type EventKind string

const (
	EventCreated     EventKind = "created"
	EventUpdated     EventKind = "updated"
	EventSoftDeleted EventKind = "soft_deleted"
	EventHardDeleted EventKind = "hard_deleted"
	EventRestored    EventKind = "restored"
)

// Event describes a completed mutation. Events decouple side effects
// (reindexing, cache invalidation, notifications) from the operation itself:
// the pipeline emits and moves on, delivery failures are logged, never
// surfaced to the caller.
type Event struct {
	Kind     EventKind
	Entity   string
	EntityID uuid.UUID
	Slug     string
	ActorID  uuid.UUID
}

// Emitter is the outbound side-effect port. The production implementation
// enqueues background tasks; tests use NopEmitter or a recording fake.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(context.Context, Event) error { return nil }

// Auditor records successful mutations for the audit trail.
type Auditor interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditEntry is one audit trail record.
type AuditEntry struct {
	ActorID  uuid.UUID
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, AuditEntry) error { return nil }
