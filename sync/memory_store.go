package sync

import (
	"context"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-airtable/core"
)

// MemoryCursorStore keeps cursors in process memory. Suitable for tests and
// single-process pollers that can afford to replay the feed after a restart.
type MemoryCursorStore struct {
	mu      gosync.RWMutex
	cursors map[string]core.WebhookCursor
	Now     func() time.Time
}

func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{
		cursors: map[string]core.WebhookCursor{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryCursorStore) Get(_ context.Context, webhookID string) (core.WebhookCursor, error) {
	if s == nil {
		return core.WebhookCursor{}, fmt.Errorf("sync: cursor store is nil")
	}
	webhookID = strings.TrimSpace(webhookID)
	if webhookID == "" {
		return core.WebhookCursor{}, fmt.Errorf("sync: webhook id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	cursor, ok := s.cursors[webhookID]
	if !ok {
		return core.WebhookCursor{}, fmt.Errorf("%w: %s", core.ErrCursorNotFound, webhookID)
	}
	return cloneCursor(cursor), nil
}

func (s *MemoryCursorStore) Upsert(_ context.Context, in core.UpsertWebhookCursorInput) (core.WebhookCursor, error) {
	if s == nil {
		return core.WebhookCursor{}, fmt.Errorf("sync: cursor store is nil")
	}
	webhookID := strings.TrimSpace(in.WebhookID)
	if webhookID == "" {
		return core.WebhookCursor{}, fmt.Errorf("sync: webhook id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cursor := core.WebhookCursor{
		WebhookID:    webhookID,
		Value:        in.Value,
		LastPolledAt: cloneTime(in.LastPolledAt),
		UpdatedAt:    s.now(),
		Metadata:     cloneMetadata(in.Metadata),
	}
	s.cursors[webhookID] = cursor
	return cloneCursor(cursor), nil
}

// Advance applies the optimistic check: the stored value must still equal
// ExpectedValue or the call fails with a conflict and the store is unchanged.
func (s *MemoryCursorStore) Advance(_ context.Context, in core.AdvanceWebhookCursorInput) (core.WebhookCursor, error) {
	if s == nil {
		return core.WebhookCursor{}, fmt.Errorf("sync: cursor store is nil")
	}
	webhookID := strings.TrimSpace(in.WebhookID)
	if webhookID == "" {
		return core.WebhookCursor{}, fmt.Errorf("sync: webhook id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cursor, ok := s.cursors[webhookID]
	if !ok {
		return core.WebhookCursor{}, fmt.Errorf("%w: %s", core.ErrCursorNotFound, webhookID)
	}
	if cursor.Value != in.ExpectedValue {
		return core.WebhookCursor{}, advanceConflictError(webhookID, in.ExpectedValue, cursor.Value)
	}

	cursor.Value = in.Value
	cursor.LastPolledAt = cloneTime(in.LastPolledAt)
	cursor.UpdatedAt = s.now()
	if in.Metadata != nil {
		cursor.Metadata = cloneMetadata(in.Metadata)
	}
	s.cursors[webhookID] = cursor
	return cloneCursor(cursor), nil
}

func (s *MemoryCursorStore) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func advanceConflictError(webhookID string, expected int64, actual int64) error {
	return goerrors.Wrap(
		core.ErrCursorConflict,
		goerrors.CategoryConflict,
		fmt.Sprintf("sync: cursor advance conflict for %s", webhookID),
	).
		WithTextCode(core.ClientErrorCursorConflict).
		WithMetadata(map[string]any{
			"webhook_id": webhookID,
			"expected":   expected,
			"actual":     actual,
		})
}

func cloneCursor(cursor core.WebhookCursor) core.WebhookCursor {
	cursor.LastPolledAt = cloneTime(cursor.LastPolledAt)
	cursor.Metadata = cloneMetadata(cursor.Metadata)
	return cursor
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := value.UTC()
	return &copied
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(metadata))
	for key, value := range metadata {
		copied[key] = value
	}
	return copied
}

var _ core.WebhookCursorStore = (*MemoryCursorStore)(nil)
