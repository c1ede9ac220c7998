package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-airtable/core"
)

type webhookCursorRecord struct {
	bun.BaseModel `bun:"table:airtable_webhook_cursors,alias:awc"`

	ID           string         `bun:"id,pk"`
	WebhookID    string         `bun:"webhook_id,notnull,unique"`
	Value        int64          `bun:"value,notnull"`
	LastPolledAt *time.Time     `bun:"last_polled_at,nullzero"`
	Metadata     map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *webhookCursorRecord) toDomain() core.WebhookCursor {
	if r == nil {
		return core.WebhookCursor{}
	}
	cursor := core.WebhookCursor{
		WebhookID: r.WebhookID,
		Value:     r.Value,
		UpdatedAt: r.UpdatedAt,
		Metadata:  copyAnyMap(r.Metadata),
	}
	if r.LastPolledAt != nil {
		value := r.LastPolledAt.UTC()
		cursor.LastPolledAt = &value
	}
	return cursor
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
