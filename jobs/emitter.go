package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Emitter turns pipeline events into queued tasks. Every mutation drops the
// entity's cached listings; post mutations additionally refresh the search
// index. Delivery failures surface to the pipeline, which logs them without
// failing the request.
type Emitter struct {
	client *asynq.Client
}

// NewEmitter builds an Emitter on top of an Asynq client.
func NewEmitter(client *asynq.Client) *Emitter {
	return &Emitter{client: client}
}

// Emit implements crud.Emitter.
func (e *Emitter) Emit(ctx context.Context, event crud.Event) error {
	task, err := NewCacheInvalidateTask(CacheInvalidatePayload{
		Entity:   event.Entity,
		EntityID: event.EntityID,
	})
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return err
	}
	if event.Entity != "post" {
		return nil
	}
	reindex, err := NewSearchReindexTask(SearchReindexPayload{
		Entity:   event.Entity,
		EntityID: event.EntityID,
		Action:   string(event.Kind),
	})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, reindex)
	return err
}
