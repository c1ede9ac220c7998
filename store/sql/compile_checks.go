package sqlstore

import "github.com/goliatone/go-airtable/core"

var (
	_ core.WebhookCursorStore = (*WebhookCursorStore)(nil)
	_ core.WebhookCursorStore = (*CachedWebhookCursorStore)(nil)
)
