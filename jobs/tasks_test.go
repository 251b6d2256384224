package jobs

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCacheInvalidateTaskPayload(t *testing.T) {
	id := uuid.New()
	task, err := NewCacheInvalidateTask(CacheInvalidatePayload{Entity: "post", EntityID: id})
	require.NoError(t, err)
	require.Equal(t, TaskTypeCacheInvalidate, task.Type())

	var payload CacheInvalidatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "post", payload.Entity)
	require.Equal(t, id, payload.EntityID)
}

func TestSearchReindexTaskPayload(t *testing.T) {
	id := uuid.New()
	task, err := NewSearchReindexTask(SearchReindexPayload{Entity: "post", EntityID: id, Action: "updated"})
	require.NoError(t, err)
	require.Equal(t, TaskTypeSearchReindex, task.Type())

	var payload SearchReindexPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, id, payload.EntityID)
	require.Equal(t, "updated", payload.Action)
}

func TestSendEmailTaskPayload(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "nora@example.com", Subject: "Welcome"})
	require.NoError(t, err)
	require.Equal(t, TaskTypeSendEmail, task.Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "nora@example.com", payload.To)
}

func TestAuditTrimTaskPayload(t *testing.T) {
	task, err := NewAuditTrimTask(30)
	require.NoError(t, err)
	require.Equal(t, TaskTypeAuditTrim, task.Type())

	var payload AuditTrimPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, 30, payload.RetainDays)
}

func TestSponsorshipExpireTaskHasNoPayload(t *testing.T) {
	task := NewSponsorshipExpireTask()
	require.Equal(t, TaskTypeSponsorshipExpire, task.Type())
	require.Empty(t, task.Payload())
}
