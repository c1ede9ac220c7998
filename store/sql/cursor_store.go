package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-airtable/core"
)

// WebhookCursorStore persists webhook cursors in a bun-managed table. One row
// per webhook; Advance holds the optimistic expected-value check inside a
// transaction so concurrent pollers cannot rewind each other.
type WebhookCursorStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookCursorRecord]
}

func NewWebhookCursorStore(db *bun.DB) (*WebhookCursorStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookCursorRecord](db, webhookCursorHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook cursor repository wiring: %w", err)
		}
	}
	return &WebhookCursorStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *WebhookCursorStore) Get(ctx context.Context, webhookID string) (core.WebhookCursor, error) {
	if s == nil || s.db == nil {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: webhook cursor store is not configured")
	}
	webhookID = strings.TrimSpace(webhookID)
	if webhookID == "" {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: webhook id is required")
	}

	record := &webhookCursorRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.webhook_id = ?", webhookID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.WebhookCursor{}, fmt.Errorf("%w: %s", core.ErrCursorNotFound, webhookID)
		}
		return core.WebhookCursor{}, err
	}
	return record.toDomain(), nil
}

func (s *WebhookCursorStore) Upsert(ctx context.Context, in core.UpsertWebhookCursorInput) (core.WebhookCursor, error) {
	if s == nil || s.db == nil {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: webhook cursor store is not configured")
	}
	in.WebhookID = strings.TrimSpace(in.WebhookID)
	if in.WebhookID == "" {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: webhook id is required")
	}
	if in.Value <= 0 {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: cursor value must be positive")
	}
	now := time.Now().UTC()

	var out core.WebhookCursor
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findWebhookCursorTx(ctx, tx, in.WebhookID)
		if err != nil {
			return err
		}
		if record == nil {
			record = &webhookCursorRecord{
				ID:           uuid.NewString(),
				WebhookID:    in.WebhookID,
				Value:        in.Value,
				LastPolledAt: cloneTimePointer(in.LastPolledAt),
				Metadata:     RedactMetadata(copyAnyMap(in.Metadata)),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if isUniqueViolation(insertErr) {
					record, err = findWebhookCursorTx(ctx, tx, in.WebhookID)
					if err != nil {
						return err
					}
					if record == nil {
						return insertErr
					}
				} else {
					return insertErr
				}
			}
			out = record.toDomain()
			return nil
		}

		record.Value = in.Value
		record.LastPolledAt = cloneTimePointer(in.LastPolledAt)
		record.Metadata = RedactMetadata(copyAnyMap(in.Metadata))
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.WebhookCursor{}, err
	}
	return out, nil
}

func (s *WebhookCursorStore) Advance(ctx context.Context, in core.AdvanceWebhookCursorInput) (core.WebhookCursor, error) {
	if s == nil || s.db == nil {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: webhook cursor store is not configured")
	}
	in.WebhookID = strings.TrimSpace(in.WebhookID)
	if in.WebhookID == "" {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: webhook id is required")
	}
	if in.Value <= 0 {
		return core.WebhookCursor{}, fmt.Errorf("sqlstore: cursor value must be positive")
	}

	var out core.WebhookCursor
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findWebhookCursorTx(ctx, tx, in.WebhookID)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("%w: %s", core.ErrCursorNotFound, in.WebhookID)
		}
		if record.Value != in.ExpectedValue {
			return advanceConflict(in.WebhookID, in.ExpectedValue, record.Value)
		}

		record.Value = in.Value
		record.LastPolledAt = cloneTimePointer(in.LastPolledAt)
		record.UpdatedAt = time.Now().UTC()
		if in.Metadata != nil {
			record.Metadata = RedactMetadata(copyAnyMap(in.Metadata))
		}
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.WebhookCursor{}, err
	}
	return out, nil
}

func findWebhookCursorTx(ctx context.Context, tx bun.Tx, webhookID string) (*webhookCursorRecord, error) {
	record := &webhookCursorRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.webhook_id = ?", strings.TrimSpace(webhookID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func advanceConflict(webhookID string, expected int64, actual int64) error {
	return goerrors.Wrap(
		core.ErrCursorConflict,
		goerrors.CategoryConflict,
		fmt.Sprintf("sqlstore: cursor advance conflict for %s", webhookID),
	).
		WithTextCode(core.ClientErrorCursorConflict).
		WithMetadata(map[string]any{
			"webhook_id": webhookID,
			"expected":   expected,
			"actual":     actual,
		})
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

func cloneTimePointer(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := input.UTC()
	return &value
}
