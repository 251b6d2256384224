package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Key builds a listing cache key for an entity.
func Key(entity, suffix string) string {
	return fmt.Sprintf("wayfarer:listing:%s:%s", entity, suffix)
}

// WrapModel serves FindAll pages from Redis, falling back to the wrapped
// model on a miss and caching the result under the entity's listing keys.
// Mutations pass straight through; the cache:invalidate job drops the pages
// after each one. The entity name must match the pipeline definition so
// invalidation hits the right keys.
func WrapModel[E crud.Entity](entity string, client *redis.Client, model crud.Model[E], ttl time.Duration) crud.Model[E] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &cachedModel[E]{Model: model, entity: entity, client: client, ttl: ttl}
}

type cachedModel[E crud.Entity] struct {
	crud.Model[E]
	entity string
	client *redis.Client
	ttl    time.Duration
}

type listingPage[E any] struct {
	Items []E `json:"items"`
	Total int `json:"total"`
}

// FindAll reads through the cache. Redis failures degrade to the wrapped
// model; a stale-but-unparseable entry is treated as a miss.
func (c *cachedModel[E]) FindAll(ctx context.Context, f crud.Filter, p crud.Page) ([]E, int, error) {
	key := Key(c.entity, pageDigest(f, p))
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var page listingPage[E]
		if json.Unmarshal(raw, &page) == nil {
			return page.Items, page.Total, nil
		}
	}
	items, total, err := c.Model.FindAll(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	if raw, err := json.Marshal(listingPage[E]{Items: items, Total: total}); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return items, total, nil
}

// pageDigest folds the filter and page bounds into a stable key suffix.
// json.Marshal writes map keys in sorted order, so equal filters digest
// equally.
func pageDigest(f crud.Filter, p crud.Page) string {
	raw, _ := json.Marshal(struct {
		Filter  crud.Filter `json:"filter"`
		Page    int         `json:"page"`
		PerPage int         `json:"per_page"`
	}{f, p.Page, p.PerPage})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

// InvalidateEntity removes every cached listing for the entity. Used by the
// cache-invalidation job after a mutation.
func InvalidateEntity(ctx context.Context, client *redis.Client, entity string) (int64, error) {
	pattern := fmt.Sprintf("wayfarer:listing:%s:*", entity)
	var removed int64
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("platform/cache: del %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("platform/cache: scan: %w", err)
	}
	return removed, nil
}
