package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-airtable/core"
)

const cursorCacheKeyPrefix = "go-airtable::webhook_cursor::v1"

// CachedWebhookCursorStore fronts a cursor store with a read-through cache.
// Writes go to the base store first and then invalidate, so a failed write
// never leaves a stale cached watermark behind.
type CachedWebhookCursorStore struct {
	base  core.WebhookCursorStore
	cache repositorycache.CacheService
}

func NewCachedWebhookCursorStore(
	base core.WebhookCursorStore,
	cacheService repositorycache.CacheService,
) (*CachedWebhookCursorStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base webhook cursor store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: cursor cache service is required")
	}
	return &CachedWebhookCursorStore{base: base, cache: cacheService}, nil
}

// WebhookCursorCacheKey returns the deterministic cache key for one webhook's
// cursor: go-airtable::webhook_cursor::v1::<webhook_id> with the id
// URL-path escaped.
func WebhookCursorCacheKey(webhookID string) (string, error) {
	webhookID = strings.TrimSpace(webhookID)
	if webhookID == "" {
		return "", fmt.Errorf("sqlstore: webhook id is required")
	}
	return cursorCacheKeyPrefix + "::" + url.PathEscape(webhookID), nil
}

func (s *CachedWebhookCursorStore) Get(ctx context.Context, webhookID string) (core.WebhookCursor, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: cached webhook cursor store is not configured")
	}
	cacheKey, err := WebhookCursorCacheKey(webhookID)
	if err != nil {
		return core.WebhookCursor{}, err
	}

	cursor, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.WebhookCursor, error) {
		fetched, fetchErr := s.base.Get(ctx, strings.TrimSpace(webhookID))
		if fetchErr != nil {
			return core.WebhookCursor{}, fetchErr
		}
		return cloneWebhookCursor(fetched), nil
	})
	if err != nil {
		return core.WebhookCursor{}, err
	}
	return cloneWebhookCursor(cursor), nil
}

func (s *CachedWebhookCursorStore) Upsert(ctx context.Context, in core.UpsertWebhookCursorInput) (core.WebhookCursor, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: cached webhook cursor store is not configured")
	}
	cursor, err := s.base.Upsert(ctx, in)
	if err != nil {
		return core.WebhookCursor{}, err
	}
	if err := s.invalidate(ctx, cursor.WebhookID); err != nil {
		return core.WebhookCursor{}, err
	}
	return cursor, nil
}

func (s *CachedWebhookCursorStore) Advance(ctx context.Context, in core.AdvanceWebhookCursorInput) (core.WebhookCursor, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: cached webhook cursor store is not configured")
	}
	cursor, err := s.base.Advance(ctx, in)
	if err != nil {
		return core.WebhookCursor{}, err
	}
	if err := s.invalidate(ctx, cursor.WebhookID); err != nil {
		return core.WebhookCursor{}, err
	}
	return cursor, nil
}

func (s *CachedWebhookCursorStore) invalidate(ctx context.Context, webhookID string) error {
	cacheKey, err := WebhookCursorCacheKey(webhookID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func cloneWebhookCursor(cursor core.WebhookCursor) core.WebhookCursor {
	cursor.LastPolledAt = cloneTimePointer(cursor.LastPolledAt)
	cursor.Metadata = copyAnyMap(cursor.Metadata)
	return cursor
}
