// Package jobs defines the background task types and the Asynq worker that
// processes them. Side effects of the write pipeline (cache invalidation,
// notification mail, scheduled maintenance) run here, never inline with the
// request.
package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeCacheInvalidate drops cached listings for an entity.
	TaskTypeCacheInvalidate = "cache:invalidate"
	// TaskTypeSendEmail sends a transactional email.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeSearchReindex refreshes the search index entry for a post.
	TaskTypeSearchReindex = "search:reindex"
	// TaskTypeSponsorshipExpire deactivates sponsorships past their end date.
	TaskTypeSponsorshipExpire = "sponsorships:expire"
	// TaskTypeAuditTrim prunes audit log entries older than the retention window.
	TaskTypeAuditTrim = "audit:trim"
)

// CacheInvalidatePayload names the entity whose listings went stale.
type CacheInvalidatePayload struct {
	Entity   string    `json:"entity"`
	EntityID uuid.UUID `json:"entity_id"`
}

// NewCacheInvalidateTask constructs a cache invalidation task.
func NewCacheInvalidateTask(payload CacheInvalidatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCacheInvalidate, data, asynq.Queue(QueueDefault)), nil
}

// SearchReindexPayload names the entity whose index entry is stale.
type SearchReindexPayload struct {
	Entity   string    `json:"entity"`
	EntityID uuid.UUID `json:"entity_id"`
	Action   string    `json:"action"`
}

// NewSearchReindexTask constructs a search reindex task.
func NewSearchReindexTask(payload SearchReindexPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSearchReindex, data, asynq.Queue(QueueDefault)), nil
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs a send-email task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueDefault)), nil
}

// NewSponsorshipExpireTask constructs the scheduled sponsorship sweep task.
func NewSponsorshipExpireTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSponsorshipExpire, nil, asynq.Queue(QueueDefault))
}

// AuditTrimPayload bounds the audit retention sweep.
type AuditTrimPayload struct {
	RetainDays int `json:"retain_days"`
}

// NewAuditTrimTask constructs the scheduled audit trim task.
func NewAuditTrimTask(retainDays int) (*asynq.Task, error) {
	data, err := json.Marshal(AuditTrimPayload{RetainDays: retainDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditTrim, data, asynq.Queue(QueueDefault)), nil
}
