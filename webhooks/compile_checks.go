package webhooks

import "github.com/goliatone/go-airtable/core"

var (
	_ Executor      = (*core.Client)(nil)
	_ PayloadLister = (*API)(nil)
)
