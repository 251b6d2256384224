package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wayfarer-travel/wayfarer/internal/platform/cache"
)

// Handlers carries the dependencies shared by the task handlers.
type Handlers struct {
	logger *slog.Logger
	redis  *redis.Client
	pool   *pgxpool.Pool
}

// NewHandlers builds the handler set.
func NewHandlers(logger *slog.Logger, rdb *redis.Client, pool *pgxpool.Pool) *Handlers {
	return &Handlers{logger: logger, redis: rdb, pool: pool}
}

// HandleCacheInvalidate drops the cached listings named by the payload.
func (h *Handlers) HandleCacheInvalidate(ctx context.Context, t *asynq.Task) error {
	var payload CacheInvalidatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	removed, err := cache.InvalidateEntity(ctx, h.redis, payload.Entity)
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", payload.Entity, err)
	}
	h.logger.Info("cache invalidated",
		slog.String("entity", payload.Entity),
		slog.Int64("keys", removed))
	return nil
}

// HandleSearchReindex processes TaskTypeSearchReindex tasks.
func (h *Handlers) HandleSearchReindex(ctx context.Context, t *asynq.Task) error {
	var payload SearchReindexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// TODO: push to the search backend once one is provisioned.
	h.logger.Info("search reindex",
		slog.String("entity", payload.Entity),
		slog.String("entity_id", payload.EntityID.String()),
		slog.String("action", payload.Action))
	return nil
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (h *Handlers) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// TODO: wire the SMTP relay once the notification provider is chosen.
	h.logger.Info("send email",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject))
	return nil
}

// HandleSponsorshipExpire deactivates sponsorships whose end date has passed.
func (h *Handlers) HandleSponsorshipExpire(ctx context.Context, _ *asynq.Task) error {
	tag, err := h.pool.Exec(ctx,
		`UPDATE sponsorships SET active = FALSE, updated_at = NOW()
		 WHERE active AND ends_at < NOW() AND deleted_at IS NULL`)
	if err != nil {
		return fmt.Errorf("expire sponsorships: %w", err)
	}
	if tag.RowsAffected() > 0 {
		h.logger.Info("sponsorships expired", slog.Int64("count", tag.RowsAffected()))
	}
	return nil
}

// HandleAuditTrim prunes audit entries older than the retention window.
func (h *Handlers) HandleAuditTrim(ctx context.Context, t *asynq.Task) error {
	payload := AuditTrimPayload{RetainDays: 90}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.RetainDays <= 0 {
		payload.RetainDays = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -payload.RetainDays)
	tag, err := h.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("trim audit logs: %w", err)
	}
	h.logger.Info("audit trimmed",
		slog.Int64("count", tag.RowsAffected()),
		slog.Time("cutoff", cutoff))
	return nil
}
